package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/termdojo/internal/domain"
)

type studyLogRepo struct {
	db *sqlx.DB
}

func (r *studyLogRepo) Append(ctx context.Context, entry domain.StudyLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO study_logs
		(term_id, word, tag, result, proficiency_before, proficiency_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entry.TermID, entry.Word, entry.Tag, string(entry.Result),
		entry.ProficiencyBefore, entry.ProficiencyAfter, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert study log: %w", err)
	}
	return nil
}

// since returns the logs created at or after t.
func (r *studyLogRepo) since(ctx context.Context, t time.Time) ([]domain.StudyLog, error) {
	logs := []domain.StudyLog{}
	err := r.db.SelectContext(ctx, &logs, r.db.Rebind(`SELECT id, term_id, word, tag, result,
		proficiency_before, proficiency_after, created_at
		FROM study_logs WHERE created_at >= ? ORDER BY created_at ASC, id ASC`), t.UTC())
	if err != nil {
		return nil, fmt.Errorf("query study logs: %w", err)
	}
	return logs, nil
}

func (r *studyLogRepo) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	var o Overview
	if err := r.db.GetContext(ctx, &o.TotalTerms, `SELECT COUNT(*) FROM terms`); err != nil {
		return nil, fmt.Errorf("count terms: %w", err)
	}
	if err := r.db.GetContext(ctx, &o.TotalStudied, `SELECT COUNT(*) FROM study_logs`); err != nil {
		return nil, fmt.Errorf("count study logs: %w", err)
	}

	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -7)
	recent, err := r.since(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		correct := 0
		for _, l := range recent {
			if l.Result == domain.ResultCorrect {
				correct++
			}
		}
		acc := int(math.Round(100 * float64(correct) / float64(len(recent))))
		o.RecentAccuracy = &acc
	}
	return &o, nil
}

func (r *studyLogRepo) Daily(ctx context.Context, now time.Time, days int) ([]DailyCount, error) {
	if days <= 0 {
		return []DailyCount{}, nil
	}
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	logs, err := r.since(ctx, start)
	if err != nil {
		return nil, err
	}

	out := make([]DailyCount, days)
	index := make(map[string]int, days)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i].Day = day
		index[day] = i
	}
	for _, l := range logs {
		i, ok := index[l.CreatedAt.In(now.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Total++
		if l.Result == domain.ResultCorrect {
			out[i].Correct++
		}
	}
	return out, nil
}

func (r *studyLogRepo) TagAverages(ctx context.Context) ([]TagAverage, error) {
	rows := []TagAverage{}
	err := r.db.SelectContext(ctx, &rows, `SELECT tag,
		ROUND(AVG(proficiency), 1) AS avg_proficiency,
		COUNT(*) AS count
		FROM terms
		WHERE tag <> ''
		GROUP BY tag
		ORDER BY avg_proficiency ASC, tag ASC`)
	if err != nil {
		return nil, fmt.Errorf("tag averages: %w", err)
	}
	return rows, nil
}

func (r *studyLogRepo) ProficiencyDistribution(ctx context.Context) (*Distribution, error) {
	var d Distribution
	err := r.db.GetContext(ctx, &d, `SELECT
		COALESCE(SUM(CASE WHEN proficiency < 40 THEN 1 ELSE 0 END), 0) AS low,
		COALESCE(SUM(CASE WHEN proficiency >= 40 AND proficiency < 70 THEN 1 ELSE 0 END), 0) AS mid,
		COALESCE(SUM(CASE WHEN proficiency >= 70 THEN 1 ELSE 0 END), 0) AS high
		FROM terms`)
	if err != nil {
		return nil, fmt.Errorf("proficiency distribution: %w", err)
	}
	return &d, nil
}
