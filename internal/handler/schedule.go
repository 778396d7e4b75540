package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"postdeck/internal/httputil"
	"postdeck/internal/model"
	"postdeck/internal/service"
	"postdeck/internal/transport/http/middleware"
)

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// Schedule handles POST /drafts/{id}/schedule
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
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

	var req model.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.ScheduledAt.IsZero() {
		httputil.WriteBadRequest(w, "scheduled_at is required")
		return
	}

	draft, err := h.scheduleService.Schedule(r.Context(), draftID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only schedule your own drafts")
		case errors.Is(err, model.ErrNotApproved):
			httputil.WriteConflict(w, "Draft must be approved before scheduling")
		case errors.Is(err, model.ErrScheduleInPast):
			httputil.WriteBadRequest(w, "Scheduled time must be in the future")
		case errors.Is(err, model.ErrNoPlatformsChosen):
			httputil.WriteBadRequest(w, "At least one platform is required")
		case errors.Is(err, model.ErrUnknownPlatform):
			httputil.WriteBadRequest(w, "Unknown platform")
		case errors.Is(err, model.ErrInvalidTransition):
			httputil.WriteConflict(w, "Draft cannot be scheduled in its current status")
		default:
			log.Printf("[ERROR] Schedule handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to schedule draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, draft)
}

// Unschedule handles DELETE /drafts/{id}/schedule
func (h *ScheduleHandler) Unschedule(w http.ResponseWriter, r *http.Request) {
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

	draft, err := h.scheduleService.Unschedule(r.Context(), draftID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDraftNotFound):
			httputil.WriteNotFound(w, "Draft not found")
		case errors.Is(err, model.ErrNotDraftOwner):
			httputil.WriteForbidden(w, "You can only unschedule your own drafts")
		case errors.Is(err, model.ErrNotScheduled):
			httputil.WriteConflict(w, "Draft is not scheduled")
		default:
			log.Printf("[ERROR] Unschedule handler: draft=%d err=%v", draftID, err)
			httputil.WriteInternalError(w, "Failed to unschedule draft")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, draft)
}

// Calendar handles GET /calendar?from=&to=
// Times are RFC 3339; an omitted range defaults to the next 30 days.
func (h *ScheduleHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	from := time.Now()
	to := from.AddDate(0, 0, 30)

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid 'from' time (want RFC 3339)")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid 'to' time (want RFC 3339)")
			return
		}
		to = t
	}
	if to.Before(from) {
		httputil.WriteBadRequest(w, "'to' must not be before 'from'")
		return
	}

	resp, err := h.scheduleService.Calendar(r.Context(), userID, from, to)
	if err != nil {
		log.Printf("[ERROR] Calendar handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to load calendar")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// BestTimes handles GET /schedule/best-times?platforms=a,b
func (h *ScheduleHandler) BestTimes(w http.ResponseWriter, r *http.Request) {
	var platforms []string
	if s := r.URL.Query().Get("platforms"); s != "" {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				platforms = append(platforms, p)
			}
		}
	}

	resp, err := h.scheduleService.BestTimes(platforms)
	if err != nil {
		if errors.Is(err, model.ErrUnknownPlatform) {
			httputil.WriteBadRequest(w, "Unknown platform")
			return
		}
		httputil.WriteInternalError(w, "Failed to load best times")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
