package model

import (
	"errors"
	"time"
)

// Message directions.
const (
	DirectionIn  = "in"  // received from the audience
	DirectionOut = "out" // sent by the workspace
)

// Conversation is one direct-message thread on a single platform.
type Conversation struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Platform      string    `db:"platform" json:"platform"`
	ExternalID    string    `db:"external_id" json:"external_id"`
	Participant   string    `db:"participant" json:"participant"`
	UnreadCount   int       `db:"unread_count" json:"unread_count"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Message is one direct message inside a conversation.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	ExternalID     *string   `db:"external_id" json:"external_id,omitempty"`
	Direction      string    `db:"direction" json:"direction"`
	Text           string    `db:"text" json:"text"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationListResponse is the unified inbox listing.
type ConversationListResponse struct {
	Conversations []Conversation `json:"conversations"`
	TotalUnread   int            `json:"total_unread"`
}

// MessageListResponse is the cursor-paginated message history.
type MessageListResponse struct {
	Messages   []Message `json:"messages"`
	NextCursor *string   `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

// ReplyRequest is the body for POST /inbox/conversations/{id}/reply.
type ReplyRequest struct {
	Text string `json:"text"`
}

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message text is required")
)
