package dojo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	"github.com/abhisek/termdojo/internal/screens/summary"
	"github.com/abhisek/termdojo/internal/ui/layout"
)

// SessionScreen runs a started dojo session: draw, reveal, grade, repeat.
type SessionScreen struct {
	ctx    context.Context
	engine Engine

	state   dojo.State
	failure string // last generation failure
	errMsg  string // last rejected action

	confirmQuit bool
	spinFrame   int
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// NewSession creates a screen for the engine's active session.
func NewSession(ctx context.Context, engine Engine) *SessionScreen {
	return &SessionScreen{ctx: ctx, engine: engine, state: engine.State()}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.draw(), spinnerTick())
}

func (s *SessionScreen) Title() string {
	return "Dojo"
}

func (s *SessionScreen) Status() string {
	return fmt.Sprintf("✓ %d/%d   %d left", s.state.Correct, s.state.Drawn, s.state.Remaining)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.state.Phase {
	case dojo.PhasePresenting:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Reveal"},
			{Key: "Esc", Description: "End"},
		}
	case dojo.PhaseAwaitingFeedback:
		return []layout.KeyHint{
			{Key: "Y", Description: "Got it"},
			{Key: "N", Description: "Missed it"},
			{Key: "Esc", Description: "End"},
		}
	case dojo.PhaseActive:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "End"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "End"}}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		return s.handleStep(msg)

	case spinnerTickMsg:
		if s.state.Phase != dojo.PhaseDrawing {
			return s, nil
		}
		s.spinFrame++
		return s, spinnerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleStep(msg stepMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, dojo.ErrSessionClosed) {
			return s, nil
		}
		s.errMsg = domain.Message(msg.Err)
		s.state = s.engine.State()
		return s, nil
	}

	step := msg.Step
	if step.Summary != nil {
		return s, showSummary(*step.Summary)
	}
	s.state = step.State
	if step.Failure != nil {
		s.failure = domain.Message(step.Failure)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			return s, showSummary(s.engine.End())
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	switch s.state.Phase {
	case dojo.PhasePresenting:
		if key == "enter" || key == "space" || key == " " {
			s.errMsg = ""
			if _, err := s.engine.RevealExplanation(); err != nil {
				s.errMsg = domain.Message(err)
			}
			s.state = s.engine.State()
		}
	case dojo.PhaseAwaitingFeedback:
		switch key {
		case "y", "Y", "c":
			return s, s.feedback(true)
		case "n", "N", "w":
			return s, s.feedback(false)
		}
	case dojo.PhaseActive:
		if key == "r" || key == "enter" {
			return s, tea.Batch(s.draw(), spinnerTick())
		}
	}
	return s, nil
}

// draw starts generation for the next term.
func (s *SessionScreen) draw() tea.Cmd {
	s.errMsg = ""
	s.failure = ""
	s.state.Phase = dojo.PhaseDrawing
	return func() tea.Msg {
		step, err := s.engine.DrawNext(s.ctx)
		return stepMsg{Step: step, Err: err}
	}
}

func (s *SessionScreen) feedback(correct bool) tea.Cmd {
	s.errMsg = ""
	s.failure = ""
	s.state.Phase = dojo.PhaseDrawing
	return tea.Batch(func() tea.Msg {
		step, err := s.engine.RecordFeedback(s.ctx, correct)
		return stepMsg{Step: step, Err: err}
	}, spinnerTick())
}

func showSummary(sum dojo.Summary) tea.Cmd {
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(sum)}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func itoa(n int) string { return strconv.Itoa(n) }
