package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is written in the subset of SQL shared by SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS learner_fields (
		learner_id TEXT NOT NULL,
		field TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (learner_id, field)
	)`,
	`CREATE TABLE IF NOT EXISTS kv_entries (
		cache_key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS content_bundles (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		grade INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		atom_id TEXT NOT NULL,
		template TEXT NOT NULL,
		subject TEXT NOT NULL,
		grade INTEGER NOT NULL,
		body TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_subject_grade ON content_items (subject, grade)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_bundle ON content_items (bundle_id)`,
	`CREATE TABLE IF NOT EXISTS answer_events (
		sequence BIGINT PRIMARY KEY,
		occurred_at BIGINT NOT NULL,
		learner_id TEXT NOT NULL,
		mission_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		atom_id TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		misconception TEXT NOT NULL DEFAULT '',
		mastery_before DOUBLE PRECISION NOT NULL,
		mastery_after DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS badge_events (
		sequence BIGINT PRIMARY KEY,
		occurred_at BIGINT NOT NULL,
		learner_id TEXT NOT NULL,
		badge_type TEXT NOT NULL,
		reason TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mission_events (
		sequence BIGINT PRIMARY KEY,
		occurred_at BIGINT NOT NULL,
		learner_id TEXT NOT NULL,
		mission_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		action TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		points INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		sequence BIGINT PRIMARY KEY,
		occurred_at BIGINT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		atom_id TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms BIGINT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}
