package handler

import (
	"context"
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

type ApprovalHandler struct {
	approvalService *service.ApprovalService
	userService     *service.UserService
}

func NewApprovalHandler(approvalService *service.ApprovalService, userService *service.UserService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		userService:     userService,
	}
}

// Submit handles POST /drafts/{id}/submit
func (h *ApprovalHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	review, err := h.approvalService.Submit(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only submit your own drafts")
		case errors.Is(err, model.ErrInvalidTransition):
			httputil.WriteConflict(w, "Draft cannot be submitted in its current status")
		case errors.Is(err, model.ErrReviewPendingExists):
			httputil.WriteConflict(w, "Draft already has a pending review")
		default:
			log.Printf("[ERROR] Submit handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to submit draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, review)
}

// Approve handles POST /reviews/{id}/approve
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalService.Approve)
}

// Reject handles POST /reviews/{id}/reject
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.approvalService.Reject)
}

func (h *ApprovalHandler) decide(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, reviewID int64, reviewer *model.User, note string) (*model.Review, error)) {
	user, ok := h.reviewer(w, r)
	if !ok {
		return
	}

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid review ID")
		return
	}

	var req model.DecideReviewRequest
	if r.Body != nil {
		// An empty body means no note.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	review, err := fn(r.Context(), reviewID, user, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrForbidden):
			httputil.WriteForbidden(w, "Only admins and reviewers can decide reviews")
		case errors.Is(err, model.ErrReviewNotFound):
			httputil.WriteNotFound(w, "Review not found")
		case errors.Is(err, model.ErrReviewAlreadyDecided):
			httputil.WriteConflict(w, "Review has already been decided")
		case errors.Is(err, model.ErrInvalidTransition):
			httputil.WriteConflict(w, "Draft is no longer awaiting approval")
		default:
			log.Printf("[ERROR] Decide handler: review=%d err=%v", reviewID, err)
			httputil.WriteInternalError(w, "Failed to decide review")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, review)
}

// ListPending handles GET /reviews/pending
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user, ok := h.reviewer(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reviews, err := h.approvalService.ListPending(r.Context(), user, limit)
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			httputil.WriteForbidden(w, "Only admins and reviewers can list pending reviews")
			return
		}
		log.Printf("[ERROR] ListPending handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list pending reviews")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// reviewer loads the authenticated user for role checks. The JWT role
// claim screens out editors before the user load; the service re-checks
// against the stored role.
func (h *ApprovalHandler) reviewer(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return nil, false
	}

	if role, ok := middleware.GetRoleFromContext(r.Context()); ok && role != model.RoleAdmin && role != model.RoleReviewer {
		httputil.WriteForbidden(w, "Admin or reviewer role required")
		return nil, false
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return nil, false
	}
	return user, true
}
