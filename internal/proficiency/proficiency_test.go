package proficiency

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/store"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-20, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{130, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in), "Clamp(%d)", tt.in)
	}
}

func TestLevelDelta(t *testing.T) {
	tests := []struct {
		level   Level
		want    int
		wantErr bool
	}{
		{LevelGood, 20, false},
		{LevelPartial, 10, false},
		{LevelMiss, -10, false},
		{" GOOD ", 20, false},
		{"great", 0, true},
	}
	for _, tt := range tests {
		got, err := LevelDelta(tt.level)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrValidation)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %q", tt.level)
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApplyDelta(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := NewService(s.TermRepo(), s.StudyLogRepo(), nil)

	term, err := s.TermRepo().Create(ctx, "idempotent", "api")
	require.NoError(t, err)

	got, err := svc.ApplyDelta(ctx, term.ID, DojoCorrect)
	require.NoError(t, err)
	assert.Equal(t, 40, got)

	got, err = svc.ApplyDelta(ctx, term.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got, "clamped at the top")

	stored, err := s.TermRepo().Get(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Proficiency)

	for i := 0; i < 15; i++ {
		got, err = svc.ApplyDelta(ctx, term.ID, DojoWrong)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, got, "clamped at the bottom")

	ov, err := s.StudyLogRepo().Overview(ctx, svc.now())
	require.NoError(t, err)
	assert.Equal(t, 17, ov.TotalStudied)
	require.NotNil(t, ov.RecentAccuracy)
	assert.Equal(t, 12, *ov.RecentAccuracy) // 2 of 17
}

func TestApplyDelta_DeletedTerm(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := NewService(s.TermRepo(), s.StudyLogRepo(), nil)

	term, err := s.TermRepo().Create(ctx, "ephemeral", "")
	require.NoError(t, err)
	require.NoError(t, s.TermRepo().Delete(ctx, term.ID))

	_, err = svc.ApplyDelta(ctx, term.ID, DojoCorrect)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyDelta_ExtremeDeltas(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := NewService(s.TermRepo(), s.StudyLogRepo(), nil)

	term, err := s.TermRepo().Create(ctx, "overflow", "")
	require.NoError(t, err)

	got, err := svc.ApplyDelta(ctx, term.ID, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	got, err = svc.ApplyDelta(ctx, term.ID, math.MinInt)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	stored, err := s.TermRepo().Get(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Proficiency)
}

func TestApplyDelta_ZeroDeltaNotLogged(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := NewService(s.TermRepo(), s.StudyLogRepo(), nil)

	term, err := s.TermRepo().Create(ctx, "noop", "")
	require.NoError(t, err)

	got, err := svc.ApplyDelta(ctx, term.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, got)

	ov, err := s.StudyLogRepo().Overview(ctx, svc.now())
	require.NoError(t, err)
	assert.Equal(t, 0, ov.TotalStudied)
	assert.Nil(t, ov.RecentAccuracy)
}

type failingLog struct{}

func (failingLog) Append(context.Context, domain.StudyLog) error { return errors.New("disk full") }

func TestApplyDelta_LogFailureReported(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := NewService(s.TermRepo(), failingLog{}, nil)

	term, err := s.TermRepo().Create(ctx, "latency", "")
	require.NoError(t, err)

	got, err := svc.ApplyDelta(ctx, term.ID, DojoWrong)
	require.Error(t, err)
	assert.Equal(t, 20, got)

	stored, err := s.TermRepo().Get(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Proficiency, "proficiency write kept")
}
