package dojo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/quizgen"
	"github.com/abhisek/termdojo/internal/store"
)

type fakeTerms struct {
	terms []domain.Term
}

func (f *fakeTerms) List(_ context.Context, filter store.TermFilter) ([]domain.Term, error) {
	var out []domain.Term
	for _, t := range f.terms {
		for _, tag := range filter.Tags {
			if t.Tag == tag {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func makeTerms(tag string, n int) []domain.Term {
	terms := make([]domain.Term, n)
	for i := range terms {
		terms[i] = domain.Term{ID: int64(i + 1), Word: fmt.Sprintf("word-%d", i+1), Tag: tag, Proficiency: 30}
	}
	return terms
}

// fakeGen succeeds unless a word has queued failures.
type fakeGen struct {
	mu       sync.Mutex
	failures map[string][]error
	calls    []quizgen.Request
}

func (g *fakeGen) Generate(_ context.Context, req quizgen.Request) (*quizgen.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if errs := g.failures[req.Word]; len(errs) > 0 {
		g.failures[req.Word] = errs[1:]
		return nil, errs[0]
	}
	return &quizgen.Question{
		Text:        "What is " + req.Word + "?",
		Explanation: req.Word + " explained",
	}, nil
}

type fakeProf struct {
	mu     sync.Mutex
	deltas map[int64][]int
	err    error
}

func (p *fakeProf) ApplyDelta(_ context.Context, termID int64, delta int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	if p.deltas == nil {
		p.deltas = map[int64][]int{}
	}
	p.deltas[termID] = append(p.deltas[termID], delta)
	return 0, nil
}

func newTestEngine(terms []domain.Term, gen QuestionSource, prof ProficiencyUpdater) *Engine {
	return NewEngine(&fakeTerms{terms: terms}, gen, prof, WithRand(rand.New(rand.NewPCG(1, 2))))
}

// answer reveals the explanation and records feedback.
func answer(t *testing.T, e *Engine, correct bool) Step {
	t.Helper()
	_, err := e.RevealExplanation()
	require.NoError(t, err)
	step, err := e.RecordFeedback(context.Background(), correct)
	require.NoError(t, err)
	return step
}

func TestSamplingWithoutReplacement(t *testing.T) {
	e := newTestEngine(makeTerms("net", 6), &fakeGen{}, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"net"}})
	require.NoError(t, err)

	seen := map[string]int{}
	step, err := e.DrawNext(ctx)
	require.NoError(t, err)
	for i := 0; step.Summary == nil; i++ {
		require.Less(t, i, 6, "more draws than terms")
		require.NotNil(t, step.Question)
		seen[step.State.Word]++
		step = answer(t, e, i%2 == 0)
	}

	assert.Len(t, seen, 6)
	for w, n := range seen {
		assert.Equal(t, 1, n, "word %s drawn %d times", w, n)
	}
	assert.Equal(t, Summary{SessionID: step.Summary.SessionID, Drawn: 6, Correct: 3, Wrong: 3, AccuracyPercent: 50}, *step.Summary)
	assert.Equal(t, PhaseIdle, e.State().Phase)
}

func TestFailureRecycling(t *testing.T) {
	gen := &fakeGen{failures: map[string][]error{
		"word-1": {domain.Upstream("quizgen.generate", errors.New("timeout"))},
	}}
	e := newTestEngine(makeTerms("net", 1), gen, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"net"}})
	require.NoError(t, err)

	step, err := e.DrawNext(ctx)
	require.NoError(t, err)
	require.Error(t, step.Failure)
	assert.ErrorIs(t, step.Failure, domain.ErrUpstream)
	assert.Nil(t, step.Question)
	assert.Equal(t, PhaseActive, step.State.Phase)
	assert.Equal(t, 0, step.State.Drawn)
	assert.Equal(t, 1, step.State.Remaining, "failed term returns to the pool")

	step, err = e.DrawNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, step.Question)
	assert.Equal(t, "word-1", step.State.Word)
	assert.Equal(t, 1, step.State.Drawn)
	assert.Equal(t, 0, step.State.Remaining)
}

func TestStart_Cap(t *testing.T) {
	tests := []struct {
		max  int
		want int
	}{
		{3, 3},
		{0, 10},
		{-1, 10},
		{25, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.max), func(t *testing.T) {
			e := newTestEngine(makeTerms("x", 10), &fakeGen{}, &fakeProf{})
			st, err := e.Start(context.Background(), StartOptions{Tags: []string{"x"}, MaxQuestions: tt.max})
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Remaining)
			assert.Equal(t, PhaseActive, st.Phase)
			assert.NotEmpty(t, st.SessionID)
		})
	}
}

func TestStart_Validation(t *testing.T) {
	e := newTestEngine(makeTerms("x", 3), &fakeGen{}, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.Start(ctx, StartOptions{Tags: []string{" ", ""}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.Start(ctx, StartOptions{Tags: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, PhaseIdle, e.State().Phase)
}

func TestStart_DeduplicatesTerms(t *testing.T) {
	terms := makeTerms("x", 2)
	e := NewEngine(&dupTerms{terms: terms}, &fakeGen{}, &fakeProf{})
	st, err := e.Start(context.Background(), StartOptions{Tags: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Remaining)
}

type dupTerms struct{ terms []domain.Term }

func (d *dupTerms) List(context.Context, store.TermFilter) ([]domain.Term, error) {
	return append(append([]domain.Term{}, d.terms...), d.terms...), nil
}

func TestStart_ReplacesActiveSession(t *testing.T) {
	e := newTestEngine(makeTerms("x", 3), &fakeGen{}, &fakeProf{})
	ctx := context.Background()
	events, cancel := e.Subscribe()
	defer cancel()

	first, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.DrawNext(ctx)
	require.NoError(t, err)

	second, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 0, second.Drawn)

	var ended *Summary
	for ended == nil {
		select {
		case ev := <-events:
			ended = ev.Summary
		case <-time.After(time.Second):
			t.Fatal("no summary published for replaced session")
		}
	}
	assert.Equal(t, first.SessionID, ended.SessionID)
	assert.Equal(t, 1, ended.Drawn)
}

func TestSummaryAccuracy(t *testing.T) {
	tests := []struct {
		drawn, correct int
		wrong, acc     int
	}{
		{10, 7, 3, 70},
		{0, 0, 0, 0},
		{3, 2, 1, 67},
		{8, 1, 7, 13}, // 12.5 rounds half away from zero
		{4, 4, 0, 100},
	}
	for _, tt := range tests {
		s := NewSummary("id", tt.drawn, tt.correct)
		assert.Equal(t, tt.wrong, s.Wrong, "wrong for %d/%d", tt.correct, tt.drawn)
		assert.Equal(t, tt.acc, s.AccuracyPercent, "accuracy for %d/%d", tt.correct, tt.drawn)
	}
}

func TestEnd_Idempotent(t *testing.T) {
	e := newTestEngine(makeTerms("x", 3), &fakeGen{}, &fakeProf{})
	ctx := context.Background()

	assert.Equal(t, Summary{}, e.End(), "end without a session")

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.DrawNext(ctx)
	require.NoError(t, err)
	answer(t, e, true)

	first := e.End()
	second := e.End()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Drawn)
	assert.Equal(t, 1, first.Correct)
	assert.Equal(t, PhaseIdle, e.State().Phase)
}

func TestFeedbackDeltas(t *testing.T) {
	prof := &fakeProf{}
	e := newTestEngine(makeTerms("x", 2), &fakeGen{}, prof)
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	first, err := e.DrawNext(ctx)
	require.NoError(t, err)
	second := answer(t, e, true)
	answer(t, e, false)

	assert.Equal(t, []int{10}, prof.deltas[first.State.TermID])
	assert.Equal(t, []int{-10}, prof.deltas[second.State.TermID])
}

func TestFeedback_DeletedTerm(t *testing.T) {
	prof := &fakeProf{err: domain.NotFound("terms.get", "term", 1)}
	e := newTestEngine(makeTerms("x", 2), &fakeGen{}, prof)
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.DrawNext(ctx)
	require.NoError(t, err)
	_, err = e.RevealExplanation()
	require.NoError(t, err)

	step, err := e.RecordFeedback(ctx, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, PhaseActive, step.State.Phase)
	assert.Equal(t, 1, step.State.Correct, "answer still counts")

	prof.err = nil
	step, err = e.DrawNext(ctx)
	require.NoError(t, err)
	assert.NotNil(t, step.Question)
}

func TestPhaseGuards(t *testing.T) {
	e := newTestEngine(makeTerms("x", 2), &fakeGen{}, &fakeProf{})
	ctx := context.Background()

	_, err := e.DrawNext(ctx)
	assert.ErrorIs(t, err, domain.ErrValidation, "draw while idle")
	_, err = e.RevealExplanation()
	assert.ErrorIs(t, err, domain.ErrValidation, "reveal while idle")

	_, err = e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = e.RevealExplanation()
	assert.ErrorIs(t, err, domain.ErrValidation, "reveal before draw")

	step, err := e.DrawNext(ctx)
	require.NoError(t, err)
	assert.Empty(t, step.State.Explanation, "explanation hidden until revealed")

	_, err = e.RecordFeedback(ctx, true)
	assert.ErrorIs(t, err, domain.ErrValidation, "feedback before reveal")
	_, err = e.DrawNext(ctx)
	assert.ErrorIs(t, err, domain.ErrValidation, "draw while presenting")

	expl, err := e.RevealExplanation()
	require.NoError(t, err)
	assert.Equal(t, step.State.Word+" explained", expl)
	assert.Equal(t, expl, e.State().Explanation)
}

// blockingGen blocks until released or its context is cancelled.
type blockingGen struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (g *blockingGen) Generate(ctx context.Context, req quizgen.Request) (*quizgen.Question, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return &quizgen.Question{Text: "late", Explanation: "late"}, nil
	case <-ctx.Done():
		g.ctxErr <- ctx.Err()
		return nil, ctx.Err()
	}
}

func TestLateResultDiscardedAfterEnd(t *testing.T) {
	gen := &blockingGen{started: make(chan struct{}, 1), release: make(chan struct{}), ctxErr: make(chan error, 1)}
	e := newTestEngine(makeTerms("x", 3), gen, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := e.DrawNext(ctx)
		done <- err
	}()
	<-gen.started

	_, err = e.DrawNext(ctx)
	assert.ErrorIs(t, err, domain.ErrValidation, "second concurrent draw rejected")

	sum := e.End()
	assert.Equal(t, 0, sum.Drawn)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("draw did not return after End")
	}
	assert.ErrorIs(t, <-gen.ctxErr, context.Canceled)
	assert.Equal(t, PhaseIdle, e.State().Phase)
	assert.Equal(t, sum, e.End())
}

func TestLateResultDoesNotTouchNewSession(t *testing.T) {
	gen := &blockingGen{started: make(chan struct{}, 1), release: make(chan struct{}), ctxErr: make(chan error, 1)}
	e := newTestEngine(makeTerms("x", 3), gen, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := e.DrawNext(ctx)
		done <- err
	}()
	<-gen.started

	fresh, err := e.Start(ctx, StartOptions{Tags: []string{"x"}, MaxQuestions: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, <-done, ErrSessionClosed)
	st := e.State()
	assert.Equal(t, fresh.SessionID, st.SessionID)
	assert.Equal(t, PhaseActive, st.Phase)
	assert.Equal(t, 2, st.Remaining)
	assert.Equal(t, 0, st.Drawn)
}

func TestCredentialsPassedToGenerator(t *testing.T) {
	gen := &fakeGen{}
	e := newTestEngine(makeTerms("x", 1), gen, &fakeProf{})
	ctx := context.Background()

	_, err := e.Start(ctx, StartOptions{Tags: []string{"x"}, Credential: "k", Model: "m"})
	require.NoError(t, err)
	_, err = e.DrawNext(ctx)
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, quizgen.Request{Word: "word-1", Credential: "k", Model: "m"}, gen.calls[0])
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	e := newTestEngine(makeTerms("x", 1), &fakeGen{}, &fakeProf{})
	events, cancel := e.Subscribe()

	_, err := e.Start(context.Background(), StartOptions{Tags: []string{"x"}})
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, PhaseActive, ev.State.Phase)

	cancel()
	cancel()
	_, ok := <-events
	assert.False(t, ok, "channel closed after cancel")
}

func TestParseMaxQuestions(t *testing.T) {
	tests := map[string]int{
		"":     0,
		"5":    5,
		" 12 ": 12,
		"abc":  0,
		"-3":   0,
		"0":    0,
		"3.0":  3,
		"1e1":  10,
		"2.7":  2,
		"0.5":  0,
		"NaN":  0,
		"Inf":  0,
		"-Inf": 0,
		"1e40": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMaxQuestions(in), "ParseMaxQuestions(%q)", in)
	}
}
