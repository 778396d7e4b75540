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

type InboxHandler struct {
	inboxService *service.InboxService
}

func NewInboxHandler(inboxService *service.InboxService) *InboxHandler {
	return &InboxHandler{inboxService: inboxService}
}

// ListConversations handles GET /inbox/conversations
func (h *InboxHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.inboxService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListConversations handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list conversations")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ListMessages handles GET /inbox/conversations/{id}/messages?cursor=&limit=
func (h *InboxHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	conversationID, err := conversationIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid conversation ID")
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.inboxService.ListMessages(r.Context(), conversationID, userID, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrConversationNotFound) {
			httputil.WriteNotFound(w, "Conversation not found")
			return
		}
		log.Printf("[ERROR] ListMessages handler: conversation=%d err=%v", conversationID, err)
		httputil.WriteInternalError(w, "Failed to list messages")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Reply handles POST /inbox/conversations/{id}/reply
func (h *InboxHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	conversationID, err := conversationIDParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid conversation ID")
		return
	}

	var req model.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	msg, err := h.inboxService.Reply(r.Context(), conversationID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrConversationNotFound):
			httputil.WriteNotFound(w, "Conversation not found")
		case errors.Is(err, model.ErrEmptyMessage):
			httputil.WriteBadRequest(w, "Message text is required")
		default:
			log.Printf("[ERROR] Reply handler: conversation=%d err=%v", conversationID, err)
			httputil.WriteInternalError(w, "Failed to send reply")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// Sync handles POST /inbox/sync/{platform} — an explicit pull for the
// platform, alongside the periodic background sync.
func (h *InboxHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	platform := chi.URLParam(r, "platform")
	inserted, err := h.inboxService.Sync(r.Context(), userID, platform)
	if err != nil {
		if errors.Is(err, model.ErrUnknownPlatform) {
			httputil.WriteBadRequest(w, "Unknown platform")
			return
		}
		log.Printf("[ERROR] Sync handler: user=%d platform=%s err=%v", userID, platform, err)
		httputil.WriteInternalError(w, "Failed to sync inbox")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"new_messages": inserted})
}

func conversationIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
