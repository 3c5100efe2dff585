package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the tables the bot depends on. Statements are
// idempotent so startup can run this unconditionally.
//
// interactions carries a UNIQUE (post_id, platform) constraint: the
// insert itself is the dedup gate, not a prior existence check.
func InitSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS discovered_posts (
			id BIGSERIAL PRIMARY KEY,
			external_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			hashtag_source TEXT NOT NULL DEFAULT '',
			metrics JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'seen',
			ai_reasoning TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (external_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGSERIAL PRIMARY KEY,
			post_id TEXT NOT NULL,
			username TEXT NOT NULL,
			comment_text TEXT NOT NULL,
			platform TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (post_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			date DATE NOT NULL,
			platform TEXT NOT NULL,
			interaction_count INT NOT NULL DEFAULT 0,
			PRIMARY KEY (date, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS logs (
			id BIGSERIAL PRIMARY KEY,
			level TEXT NOT NULL,
			module TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS llm_logs (
			id BIGSERIAL PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			layer TEXT NOT NULL,
			post_id TEXT,
			platform TEXT,
			user_prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			input_tokens INT NOT NULL DEFAULT 0,
			output_tokens INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS cycle_reports (
			id BIGSERIAL PRIMARY KEY,
			cycle_date DATE NOT NULL UNIQUE,
			metrics JSONB NOT NULL DEFAULT '{}',
			summary TEXT NOT NULL DEFAULT '',
			telegram_message_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS profile_dossiers (
			id BIGSERIAL PRIMARY KEY,
			platform TEXT NOT NULL,
			username TEXT NOT NULL,
			dossier JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (platform, username)
		)`,
		`CREATE TABLE IF NOT EXISTS monthly_themes (
			id BIGSERIAL PRIMARY KEY,
			year INT NOT NULL,
			month INT NOT NULL,
			theme TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (year, month)
		)`,
		`CREATE TABLE IF NOT EXISTS weekly_topics (
			id BIGSERIAL PRIMARY KEY,
			theme_id BIGINT NOT NULL REFERENCES monthly_themes(id),
			year INT NOT NULL,
			week_number INT NOT NULL,
			topic TEXT NOT NULL,
			angle TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (year, week_number)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_briefs (
			id BIGSERIAL PRIMARY KEY,
			topic_id BIGINT NOT NULL REFERENCES weekly_topics(id),
			brief_date DATE NOT NULL UNIQUE,
			headline TEXT NOT NULL,
			key_points TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			slide_urls JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'draft',
			media_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
