package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abhisek/termdojo/internal/domain"
)

const currentPromptKey = "current_prompt_id"

const (
	seedPromptTitle   = "Applied IT Engineer"
	seedPromptContent = "Write one question at the level of the Applied Information Technology Engineer Examination related to the word below."
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		word TEXT NOT NULL UNIQUE,
		tag TEXT NOT NULL DEFAULT 'unclassified',
		proficiency INTEGER NOT NULL DEFAULT 30,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS prompts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prompt_instructions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt_id INTEGER NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS study_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term_id INTEGER NOT NULL,
		word TEXT NOT NULL,
		tag TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL,
		proficiency_before INTEGER NOT NULL,
		proficiency_after INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TIMESTAMP NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prompt_instructions_prompt ON prompt_instructions(prompt_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_study_logs_created ON study_logs(created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS terms (
		id BIGSERIAL PRIMARY KEY,
		word TEXT NOT NULL UNIQUE,
		tag TEXT NOT NULL DEFAULT 'unclassified',
		proficiency INTEGER NOT NULL DEFAULT 30,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS prompts (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prompt_instructions (
		id BIGSERIAL PRIMARY KEY,
		prompt_id BIGINT NOT NULL REFERENCES prompts(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS study_logs (
		id BIGSERIAL PRIMARY KEY,
		term_id BIGINT NOT NULL,
		word TEXT NOT NULL,
		tag TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL,
		proficiency_before INTEGER NOT NULL,
		proficiency_after INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prompt_instructions_prompt ON prompt_instructions(prompt_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_study_logs_created ON study_logs(created_at)`,
}

// migrate creates the schema, seeds the default prompt and points the
// selection at it when no selection exists yet.
func (s *Store) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO prompts (id, title, content) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		domain.DefaultPromptID, seedPromptTitle, seedPromptContent)
	if err != nil {
		return fmt.Errorf("seed default prompt: %w", err)
	}

	if s.driver == DriverPostgres {
		// Explicit id inserts do not advance the serial sequence.
		_, err := s.db.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('prompts', 'id'), GREATEST((SELECT MAX(id) FROM prompts), 1))`)
		if err != nil {
			return fmt.Errorf("sync prompt sequence: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`),
		currentPromptKey, strconv.FormatInt(domain.DefaultPromptID, 10))
	if err != nil {
		return fmt.Errorf("seed prompt selection: %w", err)
	}
	return nil
}
