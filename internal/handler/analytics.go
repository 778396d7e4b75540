package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"postdeck/internal/httputil"
	"postdeck/internal/model"
	"postdeck/internal/service"
	"postdeck/internal/transport/http/middleware"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// PostStats handles GET /drafts/{id}/analytics
func (h *AnalyticsHandler) PostStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.analyticsService.PostStats(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only view analytics for your own posts")
		case errors.Is(err, model.ErrNotPublished):
			httputil.WriteConflict(w, "Draft has not been published")
		default:
			log.Printf("[ERROR] PostStats handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to fetch analytics")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// Summary handles GET /analytics/summary?limit=
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	summary, err := h.analyticsService.Summary(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[ERROR] Summary handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to build analytics summary")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
