package model

import (
	"errors"
	"time"

	"github.com/lib/pq"

	"postdeck/internal/engagement"
)

// Draft status lifecycle. A draft moves forward through review and
// scheduling; rejected drafts go back to editing.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusScheduled       = "scheduled"
	StatusPublishing      = "publishing"
	StatusPublished       = "published"
	StatusFailed          = "failed"
)

// Draft is an unsent, editable post: caption text, ordered media, and the
// platform set it targets.
type Draft struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	Text           string         `db:"text" json:"text"`
	Platforms      pq.StringArray `db:"platforms" json:"platforms"`
	Status         string         `db:"status" json:"status"`
	ScheduledAt    *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	PublishedAt    *time.Time     `db:"published_at" json:"published_at,omitempty"`
	ExternalPostID *string        `db:"external_post_id" json:"external_post_id,omitempty"`
	LastScore      *int           `db:"last_score" json:"last_score,omitempty"`
	FailReason     *string        `db:"fail_reason" json:"fail_reason,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at" json:"-"`

	// Joined fields (not in the drafts table)
	Media  []DraftMedia `json:"media"`
	Author *UserSummary `json:"author,omitempty"`
}

// DraftMedia is one attached media item. Order matters for carousels.
type DraftMedia struct {
	ID        int64  `db:"id" json:"id"`
	DraftID   int64  `db:"draft_id" json:"-"`
	MediaURL  string `db:"media_url" json:"media_url"`
	MediaType string `db:"media_type" json:"media_type"` // "image" or "video"
	Position  int    `db:"position" json:"position"`
}

// MediaItems converts the attached media to the scorer's shape.
func (d *Draft) MediaItems() []engagement.MediaItem {
	items := make([]engagement.MediaItem, len(d.Media))
	for i, m := range d.Media {
		items[i] = engagement.MediaItem{Type: m.MediaType}
	}
	return items
}

// Editable reports whether the draft can still be modified.
func (d *Draft) Editable() bool {
	return d.Status == StatusDraft || d.Status == StatusRejected
}

// MediaInput is one media item in a create/update request.
type MediaInput struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// CreateDraftRequest is the body for POST /drafts.
type CreateDraftRequest struct {
	Text      string       `json:"text"`
	Platforms []string     `json:"platforms"`
	Media     []MediaInput `json:"media"`
}

// UpdateDraftRequest is the body for PUT /drafts/{id}. Nil fields are left
// untouched.
type UpdateDraftRequest struct {
	Text      *string       `json:"text"`
	Platforms *[]string     `json:"platforms"`
	Media     *[]MediaInput `json:"media"`
}

// DraftListResponse is the cursor-paginated draft list.
type DraftListResponse struct {
	Drafts     []Draft `json:"drafts"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// PredictionResponse is the engagement-engine output for a draft.
type PredictionResponse struct {
	EngagementScore int                     `json:"engagement_score"`
	Breakdown       engagement.Breakdown    `json:"breakdown"`
	Suggestions     []engagement.Suggestion `json:"suggestions"`
}

// AdhocScoreRequest scores arbitrary content without touching a stored
// draft. The media item shape mirrors MediaInput but only Type is used.
type AdhocScoreRequest struct {
	Text      string       `json:"text"`
	Platforms []string     `json:"platforms"`
	Media     []MediaInput `json:"media"`
}

// Draft constants
const (
	MaxDraftTextLength = 2200
	MaxDraftMediaCount = 10
)

// Draft errors
var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrNotDraftOwner     = errors.New("not the owner of this draft")
	ErrDraftNotEditable  = errors.New("draft is not editable in its current status")
	ErrTextTooLong       = errors.New("draft text too long")
	ErrTooManyMedia      = errors.New("too many media items")
	ErrInvalidMediaType  = errors.New("media type must be image or video")
	ErrUnknownPlatform   = errors.New("unknown platform")
	ErrInvalidTransition = errors.New("invalid status transition")
)
