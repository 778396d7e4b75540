package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"postdeck/internal/model"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, draftID, requestedBy int64) (*model.Review, error) {
	var review model.Review
	query := `
		INSERT INTO reviews (draft_id, requested_by, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, draft_id, requested_by, reviewed_by, status, note, created_at, decided_at
	`
	err := r.db.GetContext(ctx, &review, query, draftID, requestedBy)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, model.ErrReviewPendingExists
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, reviewID int64) (*model.Review, error) {
	var review model.Review
	err := r.db.GetContext(ctx, &review,
		`SELECT id, draft_id, requested_by, reviewed_by, status, note, created_at, decided_at
		 FROM reviews WHERE id = $1`, reviewID)
	if err == sql.ErrNoRows {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// Decide settles a pending review; the status guard makes a second decision
// on the same review a no-op at the SQL level.
func (r *reviewRepository) Decide(ctx context.Context, reviewID, reviewerID int64, status string, note *string) (*model.Review, error) {
	var review model.Review
	query := `
		UPDATE reviews
		SET status = $1, reviewed_by = $2, note = $3, decided_at = NOW()
		WHERE id = $4 AND status = 'pending'
		RETURNING id, draft_id, requested_by, reviewed_by, status, note, created_at, decided_at
	`
	err := r.db.GetContext(ctx, &review, query, status, reviewerID, note, reviewID)
	if err == sql.ErrNoRows {
		var exists bool
		r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM reviews WHERE id = $1)`, reviewID)
		if exists {
			return nil, model.ErrReviewAlreadyDecided
		}
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("decide review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) ListPending(ctx context.Context, limit int) ([]model.Review, error) {
	var reviews []model.Review
	query := `
		SELECT id, draft_id, requested_by, reviewed_by, status, note, created_at, decided_at
		FROM reviews
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &reviews, query, limit); err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	return reviews, nil
}
