package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"postdeck/internal/cache"
	"postdeck/internal/model"
)

const draftColumns = `id, user_id, text, platforms, status, scheduled_at, published_at,
	external_post_id, last_score, fail_reason, created_at, updated_at`

type draftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Create inserts a draft and its media in a transaction.
func (r *draftRepository) Create(ctx context.Context, userID int64, text string, platforms []string, media []model.MediaInput) (*model.Draft, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var draft model.Draft
	query := `
		INSERT INTO drafts (user_id, text, platforms)
		VALUES ($1, $2, $3)
		RETURNING ` + draftColumns
	err = tx.GetContext(ctx, &draft, query, userID, text, pq.Array(platforms))
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}

	draft.Media, err = insertMedia(ctx, tx, draft.ID, media)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &draft, nil
}

func insertMedia(ctx context.Context, tx *sqlx.Tx, draftID int64, media []model.MediaInput) ([]model.DraftMedia, error) {
	out := make([]model.DraftMedia, 0, len(media))
	query := `
		INSERT INTO draft_media (draft_id, media_url, media_type, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, draft_id, media_url, media_type, position
	`
	for i, m := range media {
		var item model.DraftMedia
		if err := tx.GetContext(ctx, &item, query, draftID, m.URL, m.Type, i); err != nil {
			return nil, fmt.Errorf("insert media %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// GetByID retrieves a single draft with its media.
func (r *draftRepository) GetByID(ctx context.Context, draftID int64) (*model.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1 AND deleted_at IS NULL`

	var draft model.Draft
	err := r.db.GetContext(ctx, &draft, query, draftID)
	if err == sql.ErrNoRows {
		return nil, model.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	mediaMap, err := r.getDraftMedia(ctx, []int64{draftID})
	if err != nil {
		return nil, err
	}
	draft.Media = mediaMap[draftID]
	return &draft, nil
}

// GetByIDs retrieves multiple drafts (with media), preserving input order.
func (r *draftRepository) GetByIDs(ctx context.Context, draftIDs []int64) ([]model.Draft, error) {
	if len(draftIDs) == 0 {
		return []model.Draft{}, nil
	}

	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = ANY($1) AND deleted_at IS NULL`
	var drafts []model.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, pq.Array(draftIDs)); err != nil {
		return nil, fmt.Errorf("get drafts by ids: %w", err)
	}

	mediaMap, err := r.getDraftMedia(ctx, draftIDs)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].Media = mediaMap[drafts[i].ID]
	}

	byID := make(map[int64]model.Draft, len(drafts))
	for _, d := range drafts {
		byID[d.ID] = d
	}
	ordered := make([]model.Draft, 0, len(draftIDs))
	for _, id := range draftIDs {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered, nil
}

// Update rewrites text/platforms/media; nil fields are untouched. Media is
// replaced wholesale since order matters.
func (r *draftRepository) Update(ctx context.Context, draftID int64, text *string, platforms *[]string, media *[]model.MediaInput) (*model.Draft, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if text != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE drafts SET text = $1, updated_at = NOW() WHERE id = $2`, *text, draftID); err != nil {
			return nil, fmt.Errorf("update text: %w", err)
		}
	}
	if platforms != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE drafts SET platforms = $1, updated_at = NOW() WHERE id = $2`, pq.Array(*platforms), draftID); err != nil {
			return nil, fmt.Errorf("update platforms: %w", err)
		}
	}

	var draft model.Draft
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1 AND deleted_at IS NULL`
	err = tx.GetContext(ctx, &draft, query, draftID)
	if err == sql.ErrNoRows {
		return nil, model.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reload draft: %w", err)
	}

	if media != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM draft_media WHERE draft_id = $1`, draftID); err != nil {
			return nil, fmt.Errorf("clear media: %w", err)
		}
		draft.Media, err = insertMedia(ctx, tx, draftID, *media)
		if err != nil {
			return nil, err
		}
	} else {
		mediaMap, err := getDraftMediaTx(ctx, tx, []int64{draftID})
		if err != nil {
			return nil, err
		}
		draft.Media = mediaMap[draftID]
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &draft, nil
}

// Delete performs a soft delete, verifying ownership.
func (r *draftRepository) Delete(ctx context.Context, draftID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, draftID, userID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM drafts WHERE id = $1 AND deleted_at IS NULL)`, draftID)
		if exists {
			return model.ErrNotDraftOwner
		}
		return model.ErrDraftNotFound
	}
	return nil
}

// List returns the user's drafts newest-first with keyset pagination and an
// optional status filter.
func (r *draftRepository) List(ctx context.Context, userID int64, status *string, cursor *string, limit int) ([]model.Draft, *string, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE user_id = $1 AND deleted_at IS NULL`
	args := []interface{}{userID}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	var drafts []model.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list drafts: %w", err)
	}

	var nextCursor *string
	if len(drafts) > limit {
		drafts = drafts[:limit]
		last := drafts[len(drafts)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	ids := make([]int64, len(drafts))
	for i, d := range drafts {
		ids[i] = d.ID
	}
	mediaMap, err := r.getDraftMedia(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for i := range drafts {
		drafts[i].Media = mediaMap[drafts[i].ID]
	}

	return drafts, nextCursor, nil
}

// UpdateStatus guards the transition: the row only moves when its current
// status is one of `from`.
func (r *draftRepository) UpdateStatus(ctx context.Context, draftID int64, from []string, to string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3) AND deleted_at IS NULL
	`, to, draftID, pq.Array(from))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return transitionResult(ctx, r.db, result, draftID)
}

func (r *draftRepository) SetSchedule(ctx context.Context, draftID int64, scheduledAt time.Time, platforms []string, from []string) error {
	query := `
		UPDATE drafts SET status = 'scheduled', scheduled_at = $1, updated_at = NOW()
	`
	args := []interface{}{scheduledAt}
	if len(platforms) > 0 {
		args = append(args, pq.Array(platforms))
		query += fmt.Sprintf(", platforms = $%d", len(args))
	}
	args = append(args, draftID, pq.Array(from))
	query += fmt.Sprintf(" WHERE id = $%d AND status = ANY($%d) AND deleted_at IS NULL", len(args)-1, len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set schedule: %w", err)
	}
	return transitionResult(ctx, r.db, result, draftID)
}

func (r *draftRepository) ClearSchedule(ctx context.Context, draftID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET status = 'approved', scheduled_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled' AND deleted_at IS NULL
	`, draftID)
	if err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}
	return transitionResult(ctx, r.db, result, draftID)
}

// ClaimDue flips due rows to publishing and returns them in one statement,
// so two dispatchers can run side by side without double delivery.
func (r *draftRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Draft, error) {
	query := `
		UPDATE drafts SET status = 'publishing', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM drafts
			WHERE status = 'scheduled' AND scheduled_at <= $1 AND deleted_at IS NULL
			ORDER BY scheduled_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + draftColumns

	var drafts []model.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, now, limit); err != nil {
		return nil, fmt.Errorf("claim due drafts: %w", err)
	}

	ids := make([]int64, len(drafts))
	for i, d := range drafts {
		ids[i] = d.ID
	}
	mediaMap, err := r.getDraftMedia(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].Media = mediaMap[drafts[i].ID]
	}
	return drafts, nil
}

func (r *draftRepository) MarkPublished(ctx context.Context, draftID int64, externalPostID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts
		SET status = 'published', published_at = NOW(), external_post_id = $1,
		    fail_reason = NULL, updated_at = NOW()
		WHERE id = $2 AND status = 'publishing' AND deleted_at IS NULL
	`, externalPostID, draftID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return transitionResult(ctx, r.db, result, draftID)
}

func (r *draftRepository) MarkFailed(ctx context.Context, draftID int64, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET status = 'failed', fail_reason = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'publishing' AND deleted_at IS NULL
	`, reason, draftID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return transitionResult(ctx, r.db, result, draftID)
}

func (r *draftRepository) SetLastScore(ctx context.Context, draftID int64, score int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE drafts SET last_score = $1 WHERE id = $2 AND deleted_at IS NULL`,
		score, draftID)
	if err != nil {
		return fmt.Errorf("set last score: %w", err)
	}
	return nil
}

func (r *draftRepository) ListScheduledRange(ctx context.Context, userID int64, from, to time.Time) ([]model.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts
		WHERE user_id = $1 AND status = 'scheduled'
		  AND scheduled_at BETWEEN $2 AND $3 AND deleted_at IS NULL
		ORDER BY scheduled_at`

	var drafts []model.Draft
	if err := r.db.SelectContext(ctx, &drafts, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list scheduled range: %w", err)
	}

	ids := make([]int64, len(drafts))
	for i, d := range drafts {
		ids[i] = d.ID
	}
	mediaMap, err := r.getDraftMedia(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].Media = mediaMap[drafts[i].ID]
	}
	return drafts, nil
}

func (r *draftRepository) ScheduledForWarm(ctx context.Context, userID int64, limit int) ([]cache.ScheduledPost, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM scheduled_at)::bigint AS scheduled_at
		FROM drafts
		WHERE user_id = $1 AND status = 'scheduled' AND deleted_at IS NULL
		ORDER BY scheduled_at
		LIMIT $2
	`
	rows, err := r.db.QueryxContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("scheduled for warm: %w", err)
	}
	defer rows.Close()

	var posts []cache.ScheduledPost
	for rows.Next() {
		var p cache.ScheduledPost
		if err := rows.Scan(&p.DraftID, &p.ScheduledAt); err != nil {
			return nil, fmt.Errorf("scan scheduled post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *draftRepository) getDraftMedia(ctx context.Context, draftIDs []int64) (map[int64][]model.DraftMedia, error) {
	if len(draftIDs) == 0 {
		return map[int64][]model.DraftMedia{}, nil
	}

	var media []model.DraftMedia
	query := `
		SELECT id, draft_id, media_url, media_type, position
		FROM draft_media
		WHERE draft_id = ANY($1)
		ORDER BY draft_id, position
	`
	if err := r.db.SelectContext(ctx, &media, query, pq.Array(draftIDs)); err != nil {
		return nil, fmt.Errorf("get draft media: %w", err)
	}

	out := make(map[int64][]model.DraftMedia, len(draftIDs))
	for _, m := range media {
		out[m.DraftID] = append(out[m.DraftID], m)
	}
	return out, nil
}

func getDraftMediaTx(ctx context.Context, tx *sqlx.Tx, draftIDs []int64) (map[int64][]model.DraftMedia, error) {
	var media []model.DraftMedia
	query := `
		SELECT id, draft_id, media_url, media_type, position
		FROM draft_media
		WHERE draft_id = ANY($1)
		ORDER BY draft_id, position
	`
	if err := tx.SelectContext(ctx, &media, query, pq.Array(draftIDs)); err != nil {
		return nil, fmt.Errorf("get draft media: %w", err)
	}

	out := make(map[int64][]model.DraftMedia)
	for _, m := range media {
		out[m.DraftID] = append(out[m.DraftID], m)
	}
	return out, nil
}

// transitionResult maps a zero-row guarded update to the right sentinel.
func transitionResult(ctx context.Context, db *sqlx.DB, result sql.Result, draftID int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM drafts WHERE id = $1 AND deleted_at IS NULL)`, draftID)
	if exists {
		return model.ErrInvalidTransition
	}
	return model.ErrDraftNotFound
}
