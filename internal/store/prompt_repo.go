package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/termdojo/internal/domain"
)

type promptRepo struct {
	db *sqlx.DB
}

func (r *promptRepo) List(ctx context.Context) ([]domain.Prompt, error) {
	prompts := []domain.Prompt{}
	if err := r.db.SelectContext(ctx, &prompts, `SELECT id, title, content FROM prompts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

func (r *promptRepo) Get(ctx context.Context, id int64) (*domain.Prompt, error) {
	var p domain.Prompt
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT id, title, content FROM prompts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("prompts.get", "prompt", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt %d: %w", id, err)
	}
	return &p, nil
}

func (r *promptRepo) Create(ctx context.Context, title, content string) (*domain.Prompt, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, domain.Validation("prompts.create", "title and content are required")
	}

	p := domain.Prompt{Title: title, Content: content}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO prompts (title, content) VALUES (?, ?) RETURNING id`), title, content).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return &p, nil
}

func (r *promptRepo) Update(ctx context.Context, id int64, title, content string) error {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.Validation("prompts.update", "title and content are required")
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE prompts SET title = ?, content = ? WHERE id = ?`), title, content, id)
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	return requireAffected(res, domain.NotFound("prompts.update", "prompt", id))
}

func (r *promptRepo) Delete(ctx context.Context, id int64) error {
	if id == domain.DefaultPromptID {
		return domain.Validation("prompts.delete", "the default prompt cannot be deleted")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompt_instructions WHERE prompt_id = ?`), id); err != nil {
		return fmt.Errorf("delete instructions: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if err := requireAffected(res, domain.NotFound("prompts.delete", "prompt", id)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE settings SET value = ? WHERE key = ? AND value = ?`),
		strconv.FormatInt(domain.DefaultPromptID, 10), currentPromptKey, strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("reset prompt selection: %w", err)
	}

	return tx.Commit()
}

func (r *promptRepo) SelectedID(ctx context.Context) (int64, error) {
	var value string
	err := r.db.GetContext(ctx, &value, r.db.Rebind(`SELECT value FROM settings WHERE key = ?`), currentPromptKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultPromptID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read prompt selection: %w", err)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return domain.DefaultPromptID, nil
	}
	return id, nil
}

func (r *promptRepo) Selected(ctx context.Context) (*domain.Prompt, error) {
	id, err := r.SelectedID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := r.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) && id != domain.DefaultPromptID {
		return r.Get(ctx, domain.DefaultPromptID)
	}
	return p, err
}

func (r *promptRepo) Select(ctx context.Context, id int64) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`),
		currentPromptKey, strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("select prompt: %w", err)
	}
	return nil
}

func (r *promptRepo) AppendInstruction(ctx context.Context, promptID int64, message string) (*domain.Instruction, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.Validation("prompts.append_instruction", "message is required")
	}
	if _, err := r.Get(ctx, promptID); err != nil {
		return nil, err
	}

	in := domain.Instruction{PromptID: promptID, Message: message, CreatedAt: time.Now().UTC()}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO prompt_instructions (prompt_id, message, created_at) VALUES (?, ?, ?) RETURNING id`),
		in.PromptID, in.Message, in.CreatedAt).Scan(&in.ID)
	if err != nil {
		return nil, fmt.Errorf("insert instruction: %w", err)
	}
	return &in, nil
}

func (r *promptRepo) ListInstructions(ctx context.Context, promptID int64) ([]domain.Instruction, error) {
	logs := []domain.Instruction{}
	err := r.db.SelectContext(ctx, &logs, r.db.Rebind(
		`SELECT id, prompt_id, message, created_at FROM prompt_instructions WHERE prompt_id = ? ORDER BY created_at ASC, id ASC`),
		promptID)
	if err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}
	return logs, nil
}

func (r *promptRepo) DeleteInstruction(ctx context.Context, promptID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM prompt_instructions WHERE id = ? AND prompt_id = ?`), id, promptID)
	if err != nil {
		return fmt.Errorf("delete instruction: %w", err)
	}
	return requireAffected(res, domain.NotFound("prompts.delete_instruction", "instruction", id))
}
