package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"postdeck/internal/httputil"
	"postdeck/internal/model"
	"postdeck/internal/service"
	"postdeck/internal/transport/http/middleware"
)

type DraftHandler struct {
	draftService *service.DraftService
}

func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Create handles POST /drafts
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	draft, err := h.draftService.Create(r.Context(), userID, &req)
	if err != nil {
		writeDraftError(w, err, func() {
			log.Printf("[ERROR] Create draft handler: user=%d err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create draft")
		})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, draft)
}

// GetByID handles GET /drafts/{id}
func (h *DraftHandler) GetByID(w http.ResponseWriter, r *http.Request) {
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

	draft, err := h.draftService.Get(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only access your own drafts")
		default:
			log.Printf("[ERROR] Get draft handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to get draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, draft)
}

// Update handles PUT /drafts/{id}
func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	draft, err := h.draftService.Update(r.Context(), draftID, userID, &req)
	if err != nil {
		writeDraftError(w, err, func() {
			log.Printf("[ERROR] Update draft handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to update draft")
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, draft)
}

// Delete handles DELETE /drafts/{id}
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	err = h.draftService.Delete(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only delete your own drafts")
		default:
			log.Printf("[ERROR] Delete draft handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to delete draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Draft deleted"})
}

// List handles GET /drafts?status=&cursor=&limit=
func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var status, cursor *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.draftService.List(r.Context(), userID, status, cursor, limit)
	if err != nil {
		log.Printf("[ERROR] List drafts handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list drafts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func draftIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeDraftError maps validation errors shared by create and update;
// anything unrecognized falls through to the caller's default.
func writeDraftError(w http.ResponseWriter, err error, fallback func()) {
	switch {
	case errors.Is(err, model.ErrTextTooLong):
		httputil.WriteBadRequest(w, "Draft text too long (max 2200 characters)")
	case errors.Is(err, model.ErrTooManyMedia):
		httputil.WriteBadRequest(w, "Too many media items (max 10)")
	case errors.Is(err, model.ErrInvalidMediaType):
		httputil.WriteBadRequest(w, "Media type must be image or video")
	case errors.Is(err, model.ErrUnknownPlatform):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrDraftNotFound):
		httputil.WriteNotFound(w, "Draft not found")
	case errors.Is(err, model.ErrNotDraftOwner):
		httputil.WriteForbidden(w, "You can only modify your own drafts")
	case errors.Is(err, model.ErrDraftNotEditable):
		httputil.WriteConflict(w, "Draft can no longer be edited")
	default:
		fallback()
	}
}
