package dojo

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/metrics"
	"github.com/abhisek/termdojo/internal/proficiency"
	"github.com/abhisek/termdojo/internal/quizgen"
	"github.com/abhisek/termdojo/internal/sampling"
	"github.com/abhisek/termdojo/internal/store"
)

// ErrSessionClosed is returned when a generation or feedback result
// arrives for a session that has since ended or been replaced. The
// result is discarded.
var ErrSessionClosed = errors.New("dojo: session closed")

// TermLister lists terms matching a filter.
type TermLister interface {
	List(ctx context.Context, filter store.TermFilter) ([]domain.Term, error)
}

// QuestionSource generates a question for a word.
type QuestionSource interface {
	Generate(ctx context.Context, req quizgen.Request) (*quizgen.Question, error)
}

// ProficiencyUpdater applies a proficiency delta to a term.
type ProficiencyUpdater interface {
	ApplyDelta(ctx context.Context, termID int64, delta int) (int, error)
}

// StartOptions configures a new session.
type StartOptions struct {
	// Tags selects the terms to practise. At least one is required.
	Tags []string

	// MaxQuestions caps the pool size. Zero or negative means no cap.
	MaxQuestions int

	// Credential and Model are passed to every generation request of the
	// session. Empty values use the configured ones.
	Credential string
	Model      string
}

type session struct {
	id    string
	pool  []domain.Term
	phase Phase

	drawn   int
	correct int

	current  *domain.Term
	question *quizgen.Question
	revealed bool

	// token identifies the in-flight draw.
	token      uint64
	cancelDraw context.CancelFunc

	credential string
	model      string
}

// Engine runs one dojo session at a time. It is safe for concurrent use.
type Engine struct {
	terms   TermLister
	gen     QuestionSource
	prof    ProficiencyUpdater
	metrics *metrics.Metrics

	mu        sync.Mutex
	rng       *rand.Rand
	sess      *session
	last      *Summary
	nextToken uint64

	subs   map[int]chan Event
	nextID int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for shuffling and drawing.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithMetrics records session activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an idle engine.
func NewEngine(terms TermLister, gen QuestionSource, prof ProficiencyUpdater, opts ...Option) *Engine {
	e := &Engine{
		terms: terms,
		gen:   gen,
		prof:  prof,
		subs:  make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a session over the terms carrying any of opts.Tags. An
// active session is ended first and its summary published.
func (e *Engine) Start(ctx context.Context, opts StartOptions) (State, error) {
	const op = "dojo.start"

	tags := normalizeTags(opts.Tags)
	if len(tags) == 0 {
		return State{}, domain.Validation(op, "select at least one tag")
	}

	terms, err := e.terms.List(ctx, store.TermFilter{Tags: tags})
	if err != nil {
		return State{}, err
	}
	terms = uniqueByID(terms)
	if len(terms) == 0 {
		return State{}, domain.Validation(op, "no terms tagged %s", strings.Join(tags, ", "))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pool := sampling.Shuffle(e.rng, terms)
	if opts.MaxQuestions > 0 && opts.MaxQuestions < len(pool) {
		pool = pool[:opts.MaxQuestions]
	}

	if e.sess != nil {
		e.endLocked()
	}
	e.sess = &session{
		id:         uuid.NewString(),
		pool:       pool,
		phase:      PhaseActive,
		credential: opts.Credential,
		model:      opts.Model,
	}
	e.last = nil
	e.metrics.RecordSessionStarted()

	st := e.stateLocked()
	e.publishLocked(Event{State: st})
	return st, nil
}

// DrawNext draws a term from the pool and generates its question. When
// the pool is empty the session ends and Step.Summary is set. A failed
// generation puts the term back and is reported in Step.Failure.
func (e *Engine) DrawNext(ctx context.Context) (Step, error) {
	e.mu.Lock()
	if err := e.requireLocked("dojo.draw", PhaseActive); err != nil {
		e.mu.Unlock()
		return Step{}, err
	}
	return e.drawLocked(ctx)
}

// drawLocked must be called with e.mu held. It releases the lock.
func (e *Engine) drawLocked(ctx context.Context) (Step, error) {
	s := e.sess
	if len(s.pool) == 0 {
		sum := e.endLocked()
		st := e.stateLocked()
		e.mu.Unlock()
		return Step{State: st, Summary: &sum}, nil
	}

	i := sampling.Pick(e.rng, len(s.pool))
	term := s.pool[i]
	s.pool = slices.Delete(s.pool, i, i+1)
	s.current = &term
	s.question = nil
	s.revealed = false
	s.phase = PhaseDrawing

	e.nextToken++
	token := e.nextToken
	s.token = token
	genCtx, cancel := context.WithCancel(ctx)
	s.cancelDraw = cancel

	req := quizgen.Request{Word: term.Word, Credential: s.credential, Model: s.model}
	e.publishLocked(Event{State: e.stateLocked()})
	e.mu.Unlock()

	q, genErr := e.gen.Generate(genCtx, req)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != s || s.phase != PhaseDrawing || s.token != token {
		return Step{State: e.stateLocked()}, ErrSessionClosed
	}
	s.cancelDraw = nil

	if genErr != nil {
		s.pool = append(s.pool, term)
		s.current = nil
		s.phase = PhaseActive
		e.metrics.RecordDrawFailure()

		st := e.stateLocked()
		e.publishLocked(Event{State: st, Failure: genErr})
		return Step{State: st, Failure: genErr}, nil
	}

	s.drawn++
	s.question = q
	s.phase = PhasePresenting

	st := e.stateLocked()
	e.publishLocked(Event{State: st})
	return Step{State: st, Question: q}, nil
}

// RevealExplanation returns the explanation of the presented question
// and moves the session to PhaseAwaitingFeedback.
func (e *Engine) RevealExplanation() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireLocked("dojo.reveal", PhasePresenting, PhaseAwaitingFeedback); err != nil {
		return "", err
	}
	s := e.sess
	s.revealed = true
	s.phase = PhaseAwaitingFeedback
	e.publishLocked(Event{State: e.stateLocked()})
	return s.question.Explanation, nil
}

// RecordFeedback applies the self-reported result for the current term
// and draws the next one.
//
// If the proficiency write fails the answer still counts for the session,
// the session returns to PhaseActive and the error is returned without
// drawing.
func (e *Engine) RecordFeedback(ctx context.Context, correct bool) (Step, error) {
	e.mu.Lock()
	if err := e.requireLocked("dojo.feedback", PhaseAwaitingFeedback); err != nil {
		e.mu.Unlock()
		return Step{}, err
	}

	s := e.sess
	term := *s.current
	delta := proficiency.DojoWrong
	if correct {
		s.correct++
		delta = proficiency.DojoCorrect
	}
	e.metrics.RecordAnswer(correct)

	s.current = nil
	s.question = nil
	s.revealed = false
	s.phase = PhaseActive

	if _, err := e.prof.ApplyDelta(ctx, term.ID, delta); err != nil {
		st := e.stateLocked()
		e.publishLocked(Event{State: st, Failure: err})
		e.mu.Unlock()
		return Step{State: st}, err
	}
	return e.drawLocked(ctx)
}

// End finishes the session and returns its summary. It may be called in
// any phase; calling it again returns the same summary. An in-flight
// generation is cancelled and its result discarded.
func (e *Engine) End() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		if e.last != nil {
			return *e.last
		}
		return Summary{}
	}
	return e.endLocked()
}

func (e *Engine) endLocked() Summary {
	s := e.sess
	if s.cancelDraw != nil {
		s.cancelDraw()
	}
	sum := NewSummary(s.id, s.drawn, s.correct)
	e.sess = nil
	e.last = &sum
	e.metrics.RecordSessionEnded()
	e.publishLocked(Event{State: e.stateLocked(), Summary: &sum})
	return sum
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	s := e.sess
	if s == nil {
		return State{Phase: PhaseIdle}
	}
	st := State{
		Phase:     s.phase,
		SessionID: s.id,
		Remaining: len(s.pool),
		Drawn:     s.drawn,
		Correct:   s.correct,
		Revealed:  s.revealed,
	}
	if s.current != nil {
		st.TermID = s.current.ID
		st.Word = s.current.Word
	}
	if s.question != nil {
		st.Question = s.question.Text
		st.Options = slices.Clone(s.question.Options)
		if s.revealed {
			st.Explanation = s.question.Explanation
		}
	}
	return st
}

func (e *Engine) requireLocked(op string, phases ...Phase) error {
	if e.sess == nil {
		return domain.Validation(op, "no active session")
	}
	if slices.Contains(phases, e.sess.phase) {
		return nil
	}
	switch e.sess.phase {
	case PhaseDrawing:
		return domain.Validation(op, "a question is already being generated")
	case PhasePresenting, PhaseAwaitingFeedback:
		return domain.Validation(op, "answer the current question first")
	}
	return domain.Validation(op, "no question is being presented")
}

// Subscribe returns a channel receiving an Event after every transition
// and a function to cancel the subscription. Events are dropped for
// subscribers that fall behind.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan Event, 16)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
}

func (e *Engine) publishLocked(ev Event) {
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func uniqueByID(terms []domain.Term) []domain.Term {
	seen := make(map[int64]bool, len(terms))
	out := make([]domain.Term, 0, len(terms))
	for _, t := range terms {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}
