package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"postdeck/internal/ayrshare"
	"postdeck/internal/model"
)

type mockInboxRepository struct {
	upsertConversationFn func(ctx context.Context, userID int64, platform, externalID, participant string, lastMessageAt time.Time) (*model.Conversation, error)
	getConversationFn    func(ctx context.Context, conversationID, userID int64) (*model.Conversation, error)
	listConversationsFn  func(ctx context.Context, userID int64) ([]model.Conversation, int, error)
	insertMessageFn      func(ctx context.Context, conversationID int64, externalID *string, direction, text string, sentAt time.Time) (*model.Message, bool, error)
	listMessagesFn       func(ctx context.Context, conversationID int64, cursor *string, limit int) ([]model.Message, *string, error)
	markReadFn           func(ctx context.Context, conversationID, userID int64) error
	markReadCalls        int
}

func (m *mockInboxRepository) UpsertConversation(ctx context.Context, userID int64, platform, externalID, participant string, lastMessageAt time.Time) (*model.Conversation, error) {
	if m.upsertConversationFn != nil {
		return m.upsertConversationFn(ctx, userID, platform, externalID, participant, lastMessageAt)
	}
	return &model.Conversation{ID: 1, UserID: userID, Platform: platform, ExternalID: externalID}, nil
}

func (m *mockInboxRepository) GetConversation(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
	if m.getConversationFn != nil {
		return m.getConversationFn(ctx, conversationID, userID)
	}
	return nil, model.ErrConversationNotFound
}

func (m *mockInboxRepository) ListConversations(ctx context.Context, userID int64) ([]model.Conversation, int, error) {
	if m.listConversationsFn != nil {
		return m.listConversationsFn(ctx, userID)
	}
	return nil, 0, nil
}

func (m *mockInboxRepository) InsertMessage(ctx context.Context, conversationID int64, externalID *string, direction, text string, sentAt time.Time) (*model.Message, bool, error) {
	if m.insertMessageFn != nil {
		return m.insertMessageFn(ctx, conversationID, externalID, direction, text, sentAt)
	}
	return &model.Message{ID: 1, ConversationID: conversationID, Direction: direction, Text: text, SentAt: sentAt}, true, nil
}

func (m *mockInboxRepository) ListMessages(ctx context.Context, conversationID int64, cursor *string, limit int) ([]model.Message, *string, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, conversationID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockInboxRepository) MarkRead(ctx context.Context, conversationID, userID int64) error {
	m.markReadCalls++
	if m.markReadFn != nil {
		return m.markReadFn(ctx, conversationID, userID)
	}
	return nil
}

type mockMessagesAPI struct {
	messagesFn    func(ctx context.Context, platform string) (*ayrshare.MessagesResponse, error)
	sendMessageFn func(ctx context.Context, platform string, req ayrshare.SendMessageRequest) (*ayrshare.DirectMessage, error)
}

func (m *mockMessagesAPI) Messages(ctx context.Context, platform string) (*ayrshare.MessagesResponse, error) {
	if m.messagesFn != nil {
		return m.messagesFn(ctx, platform)
	}
	return &ayrshare.MessagesResponse{Status: "success"}, nil
}

func (m *mockMessagesAPI) SendMessage(ctx context.Context, platform string, req ayrshare.SendMessageRequest) (*ayrshare.DirectMessage, error) {
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, platform, req)
	}
	return &ayrshare.DirectMessage{ID: "sent-1", Message: req.Message, FromOwnAccount: true}, nil
}

func TestInboxService_Sync_CountsOnlyNewMessages(t *testing.T) {
	now := time.Now()
	api := &mockMessagesAPI{
		messagesFn: func(ctx context.Context, platform string) (*ayrshare.MessagesResponse, error) {
			return &ayrshare.MessagesResponse{
				Status: "success",
				Messages: []ayrshare.DirectMessage{
					{ID: "m1", ConversationID: "c1", SenderName: "fan", Message: "hi", CreatedAt: now},
					{ID: "m2", ConversationID: "c1", SenderName: "fan", Message: "again", CreatedAt: now},
					{ID: "m3", ConversationID: "c1", SenderName: "fan", Message: "reply", CreatedAt: now, FromOwnAccount: true},
				},
			}, nil
		},
	}

	seen := map[string]bool{"m2": true} // already in the inbox from an earlier sync
	var directions []string
	repo := &mockInboxRepository{
		insertMessageFn: func(ctx context.Context, conversationID int64, externalID *string, direction, text string, sentAt time.Time) (*model.Message, bool, error) {
			directions = append(directions, direction)
			if externalID != nil && seen[*externalID] {
				return nil, false, nil
			}
			return &model.Message{ID: 1}, true, nil
		},
	}
	svc := NewInboxService(repo, api)

	inserted, err := svc.Sync(context.Background(), 7, "instagram")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
	if len(directions) != 3 || directions[2] != model.DirectionOut {
		t.Errorf("directions = %v, want own-account message stored outbound", directions)
	}
}

func TestInboxService_Sync_UnknownPlatform(t *testing.T) {
	svc := NewInboxService(&mockInboxRepository{}, &mockMessagesAPI{})

	_, err := svc.Sync(context.Background(), 7, "myspace")
	if !errors.Is(err, model.ErrUnknownPlatform) {
		t.Errorf("error = %v, want %v", err, model.ErrUnknownPlatform)
	}
}

func TestInboxService_Reply(t *testing.T) {
	var sentReq ayrshare.SendMessageRequest
	api := &mockMessagesAPI{
		sendMessageFn: func(ctx context.Context, platform string, req ayrshare.SendMessageRequest) (*ayrshare.DirectMessage, error) {
			sentReq = req
			return &ayrshare.DirectMessage{ID: "sent-1", Message: req.Message, FromOwnAccount: true}, nil
		},
	}
	repo := &mockInboxRepository{
		getConversationFn: func(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
			return &model.Conversation{ID: conversationID, UserID: userID, Platform: "instagram", ExternalID: "c1"}, nil
		},
	}
	svc := NewInboxService(repo, api)

	msg, err := svc.Reply(context.Background(), 5, 7, &model.ReplyRequest{Text: "thanks!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentReq.ConversationID != "c1" || sentReq.Message != "thanks!" {
		t.Errorf("sent request = %+v", sentReq)
	}
	if msg.Direction != model.DirectionOut {
		t.Errorf("direction = %q, want %q", msg.Direction, model.DirectionOut)
	}
}

func TestInboxService_Reply_EmptyMessage(t *testing.T) {
	svc := NewInboxService(&mockInboxRepository{}, &mockMessagesAPI{})

	_, err := svc.Reply(context.Background(), 5, 7, &model.ReplyRequest{Text: "   "})
	if !errors.Is(err, model.ErrEmptyMessage) {
		t.Errorf("error = %v, want %v", err, model.ErrEmptyMessage)
	}
}

func TestInboxService_ListMessages_MarksRead(t *testing.T) {
	repo := &mockInboxRepository{
		getConversationFn: func(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
			return &model.Conversation{ID: conversationID, UserID: userID, UnreadCount: 3}, nil
		},
		listMessagesFn: func(ctx context.Context, conversationID int64, cursor *string, limit int) ([]model.Message, *string, error) {
			if limit != 50 {
				t.Errorf("limit = %d, want default 50", limit)
			}
			return []model.Message{{ID: 1, ConversationID: conversationID, Text: "hi"}}, nil, nil
		},
	}
	svc := NewInboxService(repo, &mockMessagesAPI{})

	resp, err := svc.ListMessages(context.Background(), 5, 7, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Messages) != 1 || resp.HasMore {
		t.Errorf("response = %+v", resp)
	}
	if repo.markReadCalls != 1 {
		t.Errorf("mark read calls = %d, want 1", repo.markReadCalls)
	}
}

func TestInboxService_ListMessages_OwnershipChecked(t *testing.T) {
	svc := NewInboxService(&mockInboxRepository{}, &mockMessagesAPI{})

	_, err := svc.ListMessages(context.Background(), 5, 7, nil, 0)
	if !errors.Is(err, model.ErrConversationNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrConversationNotFound)
	}
}
