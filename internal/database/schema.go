package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// CreateTables bootstraps the schema. Statements are idempotent so startup
// can run this unconditionally.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	log.Println("Ensuring database schema...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hashed TEXT NOT NULL,
			display_name VARCHAR(100),
			avatar_url TEXT,
			avatar_key TEXT,
			role VARCHAR(20) NOT NULL DEFAULT 'editor',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			revoked_at TIMESTAMPTZ,
			replaced_by UUID,
			device_info TEXT,
			ip_address TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id)`,

		`CREATE TABLE IF NOT EXISTS drafts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text TEXT NOT NULL DEFAULT '',
			platforms TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(30) NOT NULL DEFAULT 'draft',
			scheduled_at TIMESTAMPTZ,
			published_at TIMESTAMPTZ,
			external_post_id TEXT,
			last_score INT,
			fail_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_user_status ON drafts(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_due ON drafts(scheduled_at) WHERE status = 'scheduled'`,

		`CREATE TABLE IF NOT EXISTS draft_media (
			id BIGSERIAL PRIMARY KEY,
			draft_id BIGINT NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
			media_url TEXT NOT NULL,
			media_type VARCHAR(10) NOT NULL,
			position INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_draft_media_draft ON draft_media(draft_id, position)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGSERIAL PRIMARY KEY,
			draft_id BIGINT NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
			requested_by BIGINT NOT NULL REFERENCES users(id),
			reviewed_by BIGINT REFERENCES users(id),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			decided_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_status ON reviews(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_draft ON reviews(draft_id)`,
		// One open review per draft; repository.Create maps the 23505
		// violation to ErrReviewPendingExists.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_pending ON reviews(draft_id) WHERE status = 'pending'`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			platform VARCHAR(20) NOT NULL,
			external_id TEXT NOT NULL,
			participant TEXT NOT NULL,
			unread_count INT NOT NULL DEFAULT 0,
			last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, platform, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, last_message_at DESC)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			external_id TEXT,
			direction VARCHAR(3) NOT NULL,
			text TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, sent_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_external ON messages(conversation_id, external_id) WHERE external_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	log.Println("Database schema ready")
	return nil
}
