package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/termdojo/internal/domain"
)

type termRepo struct {
	db *sqlx.DB
}

const termColumns = `id, word, tag, proficiency, created_at`

func (r *termRepo) List(ctx context.Context, filter TermFilter) ([]domain.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms`
	var args []any

	if len(filter.Tags) > 0 {
		q, a, err := sqlx.In(query+` WHERE tag IN (?)`, filter.Tags)
		if err != nil {
			return nil, fmt.Errorf("build tag filter: %w", err)
		}
		query, args = q, a
	}

	switch filter.Sort {
	case SortWord:
		query += ` ORDER BY word ASC, id ASC`
	case SortProficiency:
		query += ` ORDER BY proficiency ASC, id ASC`
	default:
		query += ` ORDER BY id DESC`
	}

	terms := []domain.Term{}
	if err := r.db.SelectContext(ctx, &terms, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

func (r *termRepo) Get(ctx context.Context, id int64) (*domain.Term, error) {
	var t domain.Term
	err := r.db.GetContext(ctx, &t, r.db.Rebind(`SELECT `+termColumns+` FROM terms WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("terms.get", "term", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get term %d: %w", id, err)
	}
	return &t, nil
}

func (r *termRepo) Create(ctx context.Context, word, tag string) (*domain.Term, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, domain.Validation("terms.create", "word is required")
	}
	tag = normalizeTag(tag)

	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(*) FROM terms WHERE word = ?`), word); err != nil {
		return nil, fmt.Errorf("check duplicate term: %w", err)
	}
	if exists > 0 {
		return nil, domain.Validation("terms.create", "%q is already registered", word)
	}

	t := domain.Term{
		Word:        word,
		Tag:         tag,
		Proficiency: domain.DefaultProficiency,
		CreatedAt:   time.Now().UTC(),
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO terms (word, tag, proficiency, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		t.Word, t.Tag, t.Proficiency, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("insert term: %w", err)
	}
	return &t, nil
}

func (r *termRepo) UpdateTag(ctx context.Context, id int64, tag string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE terms SET tag = ? WHERE id = ?`), normalizeTag(tag), id)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return requireAffected(res, domain.NotFound("terms.update_tag", "term", id))
}

func (r *termRepo) SetProficiency(ctx context.Context, id int64, proficiency int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE terms SET proficiency = ? WHERE id = ?`), proficiency, id)
	if err != nil {
		return fmt.Errorf("update proficiency: %w", err)
	}
	return requireAffected(res, domain.NotFound("terms.set_proficiency", "term", id))
}

func (r *termRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM terms WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete term: %w", err)
	}
	return requireAffected(res, domain.NotFound("terms.delete", "term", id))
}

func (r *termRepo) DistinctTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	err := r.db.SelectContext(ctx, &tags, `SELECT DISTINCT tag FROM terms WHERE tag <> '' ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func normalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return domain.DefaultTag
	}
	return tag
}

// requireAffected returns notFound when res reports no affected rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
