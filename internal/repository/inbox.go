package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"postdeck/internal/model"
)

const conversationColumns = `id, user_id, platform, external_id, participant,
	unread_count, last_message_at, created_at`

type inboxRepository struct {
	db *sqlx.DB
}

func NewInboxRepository(db *sqlx.DB) InboxRepository {
	return &inboxRepository{db: db}
}

// UpsertConversation keys on (user, platform, external id) so repeated syncs
// converge on the same row. last_message_at only moves forward.
func (r *inboxRepository) UpsertConversation(ctx context.Context, userID int64, platform, externalID, participant string, lastMessageAt time.Time) (*model.Conversation, error) {
	var conv model.Conversation
	query := `
		INSERT INTO conversations (user_id, platform, external_id, participant, last_message_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, platform, external_id) DO UPDATE
		SET participant = EXCLUDED.participant,
		    last_message_at = GREATEST(conversations.last_message_at, EXCLUDED.last_message_at)
		RETURNING ` + conversationColumns
	err := r.db.GetContext(ctx, &conv, query, userID, platform, externalID, participant, lastMessageAt)
	if err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	return &conv, nil
}

func (r *inboxRepository) GetConversation(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
	var conv model.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &conv, query, conversationID, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (r *inboxRepository) ListConversations(ctx context.Context, userID int64) ([]model.Conversation, int, error) {
	var convs []model.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE user_id = $1
		ORDER BY last_message_at DESC`
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}

	totalUnread := 0
	for _, c := range convs {
		totalUnread += c.UnreadCount
	}
	return convs, totalUnread, nil
}

func (r *inboxRepository) InsertMessage(ctx context.Context, conversationID int64, externalID *string, direction, text string, sentAt time.Time) (*model.Message, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var msg model.Message
	query := `
		INSERT INTO messages (conversation_id, external_id, direction, text, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (conversation_id, external_id) WHERE external_id IS NOT NULL DO NOTHING
		RETURNING id, conversation_id, external_id, direction, text, sent_at, created_at
	`
	err = tx.GetContext(ctx, &msg, query, conversationID, externalID, direction, text, sentAt)
	if err == sql.ErrNoRows {
		// Conflict path: the message was already synced.
		return nil, false, tx.Commit()
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert message: %w", err)
	}

	bump := `UPDATE conversations
		SET last_message_at = GREATEST(last_message_at, $1)`
	if direction == model.DirectionIn {
		bump += `, unread_count = unread_count + 1`
	}
	bump += ` WHERE id = $2`
	if _, err := tx.ExecContext(ctx, bump, sentAt, conversationID); err != nil {
		return nil, false, fmt.Errorf("bump conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}
	return &msg, true, nil
}

func (r *inboxRepository) ListMessages(ctx context.Context, conversationID int64, cursor *string, limit int) ([]model.Message, *string, error) {
	query := `
		SELECT id, conversation_id, external_id, direction, text, sent_at, created_at
		FROM messages
		WHERE conversation_id = $1
	`
	args := []interface{}{conversationID}

	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(" AND (sent_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY sent_at DESC, id DESC LIMIT $%d", len(args))

	var messages []model.Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}

	var nextCursor *string
	if len(messages) > limit {
		messages = messages[:limit]
		last := messages[len(messages)-1]
		c := formatCursor(last.SentAt, last.ID)
		nextCursor = &c
	}
	return messages, nextCursor, nil
}

func (r *inboxRepository) MarkRead(ctx context.Context, conversationID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET unread_count = 0 WHERE id = $1 AND user_id = $2`,
		conversationID, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrConversationNotFound
	}
	return nil
}
