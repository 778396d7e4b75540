package model

import (
	"errors"
	"time"
)

// Review statuses.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review is one approval-workflow record for a draft. A draft can be
// submitted more than once; each submission creates a fresh review.
type Review struct {
	ID          int64      `db:"id" json:"id"`
	DraftID     int64      `db:"draft_id" json:"draft_id"`
	RequestedBy int64      `db:"requested_by" json:"requested_by"`
	ReviewedBy  *int64     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	Status      string     `db:"status" json:"status"`
	Note        *string    `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	DecidedAt   *time.Time `db:"decided_at" json:"decided_at,omitempty"`

	// Joined fields
	Draft     *Draft       `json:"draft,omitempty"`
	Requester *UserSummary `json:"requester,omitempty"`
}

// DecideReviewRequest is the body for approve/reject endpoints.
type DecideReviewRequest struct {
	Note string `json:"note"`
}

var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrReviewAlreadyDecided = errors.New("review already decided")
	ErrReviewPendingExists  = errors.New("draft already has a pending review")
)
