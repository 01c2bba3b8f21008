package proficiency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/metrics"
)

// Dojo feedback deltas.
const (
	DojoCorrect = 10
	DojoWrong   = -10
)

// Level is the self-assessed outcome of a manual quiz.
type Level string

const (
	LevelGood    Level = "good"
	LevelPartial Level = "partial"
	LevelMiss    Level = "miss"
)

// LevelDelta returns the proficiency change for a manual quiz level.
func LevelDelta(level Level) (int, error) {
	switch Level(strings.ToLower(strings.TrimSpace(string(level)))) {
	case LevelGood:
		return 20, nil
	case LevelPartial:
		return 10, nil
	case LevelMiss:
		return -10, nil
	}
	return 0, domain.Validation("proficiency.level", "unknown level %q (want good, partial or miss)", level)
}

// Clamp bounds p to [MinProficiency, MaxProficiency].
func Clamp(p int) int {
	return max(domain.MinProficiency, min(domain.MaxProficiency, p))
}

// TermStore is the subset of the term repository the service needs.
type TermStore interface {
	Get(ctx context.Context, id int64) (*domain.Term, error)
	SetProficiency(ctx context.Context, id int64, proficiency int) error
}

// LogStore appends study log entries.
type LogStore interface {
	Append(ctx context.Context, entry domain.StudyLog) error
}

// Service applies proficiency deltas and records them in the study log.
type Service struct {
	terms   TermStore
	logs    LogStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a proficiency service. m may be nil.
func NewService(terms TermStore, logs LogStore, m *metrics.Metrics) *Service {
	return &Service{terms: terms, logs: logs, metrics: m, now: time.Now}
}

// ApplyDelta adds delta to the term's proficiency, clamped to [0,100],
// persists it and appends a study log entry. It returns the new value.
// A zero delta is persisted but not logged, since it is neither a correct
// nor a wrong answer.
//
// The read-modify-write is not transactional; concurrent updates to the
// same term are last-writer-wins.
func (s *Service) ApplyDelta(ctx context.Context, termID int64, delta int) (int, error) {
	t, err := s.terms.Get(ctx, termID)
	if err != nil {
		return 0, err
	}

	// Bound delta first so the sum cannot overflow.
	delta = max(-domain.MaxProficiency, min(domain.MaxProficiency, delta))
	next := Clamp(t.Proficiency + delta)
	if err := s.terms.SetProficiency(ctx, termID, next); err != nil {
		return 0, err
	}
	if delta == 0 {
		return next, nil
	}

	result := domain.ResultWrong
	if delta > 0 {
		result = domain.ResultCorrect
	}
	s.metrics.RecordProficiencyUpdate(result == domain.ResultCorrect)

	entry := domain.StudyLog{
		TermID:            t.ID,
		Word:              t.Word,
		Tag:               t.Tag,
		Result:            result,
		ProficiencyBefore: t.Proficiency,
		ProficiencyAfter:  next,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return next, fmt.Errorf("record study log for term %d: %w", termID, err)
	}
	return next, nil
}
