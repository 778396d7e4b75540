package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"postdeck/internal/ayrshare"
	"postdeck/internal/engagement"
	"postdeck/internal/model"
	"postdeck/internal/repository"
)

// MessagesAPI is the slice of the Ayrshare client the inbox needs.
type MessagesAPI interface {
	Messages(ctx context.Context, platform string) (*ayrshare.MessagesResponse, error)
	SendMessage(ctx context.Context, platform string, req ayrshare.SendMessageRequest) (*ayrshare.DirectMessage, error)
}

// InboxService is the unified inbox: conversations synced from every
// connected platform into one list, with replies pushed back out.
type InboxService struct {
	repo repository.InboxRepository
	api  MessagesAPI
}

func NewInboxService(repo repository.InboxRepository, api MessagesAPI) *InboxService {
	return &InboxService{repo: repo, api: api}
}

// ListConversations returns every conversation for the user, newest activity
// first, with the total unread count.
func (s *InboxService) ListConversations(ctx context.Context, userID int64) (*model.ConversationListResponse, error) {
	convs, totalUnread, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	return &model.ConversationListResponse{
		Conversations: convs,
		TotalUnread:   totalUnread,
	}, nil
}

// ListMessages returns a conversation's history, newest first, and clears
// its unread count.
func (s *InboxService) ListMessages(ctx context.Context, conversationID, userID int64, cursor *string, limit int) (*model.MessageListResponse, error) {
	if _, err := s.repo.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, nextCursor, err := s.repo.ListMessages(ctx, conversationID, cursor, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}

	if err := s.repo.MarkRead(ctx, conversationID, userID); err != nil {
		log.Printf("[InboxService] Mark read failed for conversation %d: %v", conversationID, err)
	}

	return &model.MessageListResponse{
		Messages:   messages,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// Reply sends a message into the conversation on its platform, then records
// the outbound copy locally.
func (s *InboxService) Reply(ctx context.Context, conversationID, userID int64, req *model.ReplyRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, model.ErrEmptyMessage
	}

	conv, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	sent, err := s.api.SendMessage(ctx, conv.Platform, ayrshare.SendMessageRequest{
		ConversationID: conv.ExternalID,
		Message:        req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("send reply: %w", err)
	}

	var externalID *string
	if sent != nil && sent.ID != "" {
		externalID = &sent.ID
	}
	msg, _, err := s.repo.InsertMessage(ctx, conversationID, externalID,
		model.DirectionOut, req.Text, sentAtOrNow(sent))
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Sync pulls new direct messages for one platform into the local inbox.
// Message inserts dedupe on external id so repeated syncs are harmless.
func (s *InboxService) Sync(ctx context.Context, userID int64, platform string) (int, error) {
	if !engagement.KnownPlatform(platform) {
		return 0, model.ErrUnknownPlatform
	}

	resp, err := s.api.Messages(ctx, platform)
	if err != nil {
		return 0, fmt.Errorf("pull messages: %w", err)
	}

	inserted := 0
	for _, dm := range resp.Messages {
		conv, err := s.repo.UpsertConversation(ctx, userID, platform,
			dm.ConversationID, dm.SenderName, dm.CreatedAt)
		if err != nil {
			log.Printf("[InboxService] Upsert conversation %s failed: %v", dm.ConversationID, err)
			continue
		}

		direction := model.DirectionIn
		if dm.FromOwnAccount {
			direction = model.DirectionOut
		}
		externalID := dm.ID
		_, ok, err := s.repo.InsertMessage(ctx, conv.ID, &externalID, direction, dm.Message, dm.CreatedAt)
		if err != nil {
			log.Printf("[InboxService] Insert message %s failed: %v", dm.ID, err)
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func sentAtOrNow(dm *ayrshare.DirectMessage) time.Time {
	if dm != nil && !dm.CreatedAt.IsZero() {
		return dm.CreatedAt
	}
	return time.Now()
}
