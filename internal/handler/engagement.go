package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"postdeck/internal/httputil"
	"postdeck/internal/model"
	"postdeck/internal/service"
	"postdeck/internal/transport/http/middleware"
)

// EngagementHandler exposes the scoring engine: predictions for stored
// drafts and ad-hoc scoring for the composer.
type EngagementHandler struct {
	draftService *service.DraftService
}

func NewEngagementHandler(draftService *service.DraftService) *EngagementHandler {
	return &EngagementHandler{draftService: draftService}
}

// Predict handles POST /drafts/{id}/predict
func (h *EngagementHandler) Predict(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	draftID, err := draftIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid draft ID")
		return
	}

	resp, err := h.draftService.Predict(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only score your own drafts")
		default:
			log.Printf("[ERROR] Predict handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to score draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Score handles POST /engagement/score
func (h *EngagementHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req model.AdhocScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.draftService.AdhocScore(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrTextTooLong) {
			httputil.WriteBadRequest(w, "Text too long (max 2200 characters)")
			return
		}
		httputil.WriteInternalError(w, "Failed to score content")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
