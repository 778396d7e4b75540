package repository

import (
	"context"
	"time"

	"postdeck/internal/cache"
	"postdeck/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL, avatarKey string) error
	// ListIDs returns all user ids; used by the inbox-sync ticker.
	ListIDs(ctx context.Context) ([]int64, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type DraftRepository interface {
	Create(ctx context.Context, userID int64, text string, platforms []string, media []model.MediaInput) (*model.Draft, error)
	GetByID(ctx context.Context, draftID int64) (*model.Draft, error)
	GetByIDs(ctx context.Context, draftIDs []int64) ([]model.Draft, error)
	Update(ctx context.Context, draftID int64, text *string, platforms *[]string, media *[]model.MediaInput) (*model.Draft, error)
	Delete(ctx context.Context, draftID, userID int64) error
	List(ctx context.Context, userID int64, status *string, cursor *string, limit int) ([]model.Draft, *string, error)

	// UpdateStatus moves the draft to `to` only if its current status is in
	// `from`. Returns model.ErrInvalidTransition when the guard fails.
	UpdateStatus(ctx context.Context, draftID int64, from []string, to string) error

	// SetSchedule stamps scheduled_at (+ optional platform override) and
	// flips to scheduled status; same transition guard as UpdateStatus.
	SetSchedule(ctx context.Context, draftID int64, scheduledAt time.Time, platforms []string, from []string) error
	ClearSchedule(ctx context.Context, draftID int64) error

	// ClaimDue atomically flips due scheduled drafts to publishing and
	// returns them, so concurrent dispatchers never double-claim.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Draft, error)

	MarkPublished(ctx context.Context, draftID int64, externalPostID string) error
	MarkFailed(ctx context.Context, draftID int64, reason string) error
	SetLastScore(ctx context.Context, draftID int64, score int) error

	// ListScheduledRange returns scheduled drafts inside [from, to].
	ListScheduledRange(ctx context.Context, userID int64, from, to time.Time) ([]model.Draft, error)
	// ScheduledForWarm returns (draftID, unix time) pairs for cache warming.
	ScheduledForWarm(ctx context.Context, userID int64, limit int) ([]cache.ScheduledPost, error)
}

type ReviewRepository interface {
	// Create opens a pending review; fails with ErrReviewPendingExists if
	// one is already open for the draft.
	Create(ctx context.Context, draftID, requestedBy int64) (*model.Review, error)
	GetByID(ctx context.Context, reviewID int64) (*model.Review, error)
	// Decide settles a pending review. Returns ErrReviewAlreadyDecided when
	// it is no longer pending.
	Decide(ctx context.Context, reviewID, reviewerID int64, status string, note *string) (*model.Review, error)
	ListPending(ctx context.Context, limit int) ([]model.Review, error)
}

type InboxRepository interface {
	UpsertConversation(ctx context.Context, userID int64, platform, externalID, participant string, lastMessageAt time.Time) (*model.Conversation, error)
	GetConversation(ctx context.Context, conversationID, userID int64) (*model.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]model.Conversation, int, error)

	// InsertMessage dedupes on (conversation, external id); returns
	// inserted=false for messages already seen. Inbound messages bump the
	// conversation's unread count and last_message_at.
	InsertMessage(ctx context.Context, conversationID int64, externalID *string, direction, text string, sentAt time.Time) (*model.Message, bool, error)
	ListMessages(ctx context.Context, conversationID int64, cursor *string, limit int) ([]model.Message, *string, error)
	MarkRead(ctx context.Context, conversationID, userID int64) error
}
