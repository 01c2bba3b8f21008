package dojo

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	"github.com/abhisek/termdojo/internal/screens/summary"
)

// fakeEngine scripts the engine side of a session.
type fakeEngine struct {
	state     dojo.State
	startOpts dojo.StartOptions
	startErr  error
	steps     []dojo.Step
	feedback  []bool
	ended     bool
}

func (f *fakeEngine) Start(_ context.Context, opts dojo.StartOptions) (dojo.State, error) {
	f.startOpts = opts
	if f.startErr != nil {
		return dojo.State{}, f.startErr
	}
	f.state = dojo.State{Phase: dojo.PhaseActive, Remaining: 3}
	return f.state, nil
}

func (f *fakeEngine) next() (dojo.Step, error) {
	if len(f.steps) == 0 {
		return dojo.Step{}, errors.New("no scripted step")
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	f.state = step.State
	return step, nil
}

func (f *fakeEngine) DrawNext(context.Context) (dojo.Step, error) { return f.next() }

func (f *fakeEngine) RevealExplanation() (string, error) {
	if f.state.Phase != dojo.PhasePresenting && f.state.Phase != dojo.PhaseAwaitingFeedback {
		return "", domain.Validation("dojo.reveal", "no question is being presented")
	}
	f.state.Phase = dojo.PhaseAwaitingFeedback
	f.state.Revealed = true
	f.state.Explanation = "explained"
	return f.state.Explanation, nil
}

func (f *fakeEngine) RecordFeedback(_ context.Context, correct bool) (dojo.Step, error) {
	f.feedback = append(f.feedback, correct)
	return f.next()
}

func (f *fakeEngine) End() dojo.Summary {
	f.ended = true
	return dojo.NewSummary("s1", f.state.Drawn, f.state.Correct)
}

func (f *fakeEngine) State() dojo.State { return f.state }

type fakeTags []string

func (f fakeTags) DistinctTags(context.Context) ([]string, error) { return f, nil }

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func presenting(word string) dojo.Step {
	return dojo.Step{State: dojo.State{
		Phase: dojo.PhasePresenting, Word: word, Question: "What is " + word + "?",
		Options: []string{"a", "b"}, Drawn: 1, Remaining: 2,
	}}
}

// runCmd executes cmd and feeds its message back, unwrapping batches.
func runCmd(t *testing.T, s screen.Screen, cmd tea.Cmd) (screen.Screen, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	if cmd == nil {
		return s, out
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			m := c()
			if _, ok := m.(spinnerTickMsg); ok {
				continue
			}
			out = append(out, m)
			s, _ = s.Update(m)
		}
	default:
		out = append(out, msg)
		s, _ = s.Update(msg)
	}
	return s, out
}

func TestSetupScreen_StartsWithSelectedTags(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSetup(context.Background(), eng, fakeTags{"api", "db", "net"}, 10)
	var scr screen.Screen = s
	scr, _ = runCmd(t, scr, s.Init())

	scr, _ = scr.Update(keyPress('j'))
	scr, _ = scr.Update(specialKey(tea.KeySpace))
	scr, _ = scr.Update(specialKey(tea.KeyTab))
	scr, _ = scr.Update(specialKey(tea.KeyBackspace))
	scr, _ = scr.Update(keyPress('3'))

	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	_, msgs := runCmd(t, scr, cmd)

	if got := strings.Join(eng.startOpts.Tags, ","); got != "db" {
		t.Errorf("tags = %q, want db", got)
	}
	if eng.startOpts.MaxQuestions != 13 {
		t.Errorf("max questions = %d, want 13", eng.startOpts.MaxQuestions)
	}
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}
}

func TestSetupScreen_ReplacesWithSession(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSetup(context.Background(), eng, fakeTags{"api"}, 0)
	s.Update(tagsLoadedMsg{Tags: []string{"api"}})

	_, cmd := s.Update(startedMsg{State: dojo.State{Phase: dojo.PhaseActive}})
	if cmd == nil {
		t.Fatal("expected navigation")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*SessionScreen); !ok {
		t.Errorf("replaced with %T", msg.Screen)
	}
}

func TestSetupScreen_ShowsStartError(t *testing.T) {
	eng := &fakeEngine{startErr: domain.Validation("dojo.start", "select at least one tag")}
	s := NewSetup(context.Background(), eng, fakeTags{"api"}, 0)
	s.Update(tagsLoadedMsg{Tags: []string{"api"}})

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	runCmd(t, s, cmd)

	if !strings.Contains(s.View(80, 24), "select at least one tag") {
		t.Errorf("error not shown:\n%s", s.View(80, 24))
	}
}

func TestSessionScreen_RevealAndGrade(t *testing.T) {
	eng := &fakeEngine{
		state: dojo.State{Phase: dojo.PhaseActive, Remaining: 3},
		steps: []dojo.Step{presenting("raft"), presenting("paxos")},
	}
	s := NewSession(context.Background(), eng)
	var scr screen.Screen = s
	scr, _ = runCmd(t, scr, s.Init())

	if s.state.Phase != dojo.PhasePresenting || !strings.Contains(s.View(80, 24), "What is raft?") {
		t.Fatalf("expected raft question, state = %+v", s.state)
	}
	if strings.Contains(s.View(80, 24), "explained") {
		t.Error("explanation shown before reveal")
	}

	// Grading is ignored until the explanation is revealed.
	scr, cmd := scr.Update(keyPress('y'))
	if cmd != nil || len(eng.feedback) != 0 {
		t.Fatal("feedback accepted before reveal")
	}

	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if !strings.Contains(s.View(80, 24), "explained") {
		t.Fatal("explanation not shown after reveal")
	}

	scr, cmd = scr.Update(keyPress('n'))
	runCmd(t, scr, cmd)
	if len(eng.feedback) != 1 || eng.feedback[0] {
		t.Errorf("feedback = %v, want [false]", eng.feedback)
	}
	if !strings.Contains(s.View(80, 24), "What is paxos?") {
		t.Error("next question not shown after feedback")
	}
}

func TestSessionScreen_FailureThenRetry(t *testing.T) {
	failed := dojo.Step{
		State:   dojo.State{Phase: dojo.PhaseActive, Remaining: 3},
		Failure: domain.SchemaValidation("quizgen.generate", "oops", errors.New("missing explanation")),
	}
	eng := &fakeEngine{
		state: dojo.State{Phase: dojo.PhaseActive, Remaining: 3},
		steps: []dojo.Step{failed, presenting("gossip")},
	}
	s := NewSession(context.Background(), eng)
	var scr screen.Screen = s
	scr, _ = runCmd(t, scr, s.Init())

	if !strings.Contains(s.View(100, 24), "Could not generate a question") {
		t.Fatalf("failure not shown:\n%s", s.View(100, 24))
	}

	scr, cmd := scr.Update(keyPress('r'))
	runCmd(t, scr, cmd)
	if s.state.Word != "gossip" {
		t.Errorf("retry did not draw, state = %+v", s.state)
	}
}

func TestSessionScreen_SummaryWhenPoolExhausted(t *testing.T) {
	sum := dojo.NewSummary("s1", 1, 1)
	eng := &fakeEngine{
		state: dojo.State{Phase: dojo.PhaseActive, Remaining: 0},
		steps: []dojo.Step{{Summary: &sum}},
	}
	s := NewSession(context.Background(), eng)
	_, msgs := runCmd(t, s, s.Init())

	if len(msgs) == 0 {
		t.Fatal("expected a step message")
	}
	_, cmd := s.Update(msgs[0])
	if cmd == nil {
		t.Fatal("expected navigation to summary")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replaced with %T", msg.Screen)
	}
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	eng := &fakeEngine{state: dojo.State{Phase: dojo.PhasePresenting, Drawn: 1}}
	s := NewSession(context.Background(), eng)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	scr, _ = scr.Update(keyPress('n'))
	if s.confirmQuit || eng.ended {
		t.Fatal("expected confirmation dismissed without ending")
	}

	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	_, cmd := scr.Update(keyPress('y'))
	if cmd == nil || !eng.ended {
		t.Fatal("expected session ended")
	}
}

func TestSessionScreen_IgnoresClosedSession(t *testing.T) {
	eng := &fakeEngine{state: dojo.State{Phase: dojo.PhaseDrawing}}
	s := NewSession(context.Background(), eng)
	_, cmd := s.Update(stepMsg{Err: dojo.ErrSessionClosed})
	if cmd != nil || s.errMsg != "" {
		t.Errorf("closed-session result should be dropped, errMsg = %q", s.errMsg)
	}
}

func TestSessionScreen_Status(t *testing.T) {
	eng := &fakeEngine{state: dojo.State{Phase: dojo.PhaseActive, Drawn: 4, Correct: 3, Remaining: 6}}
	s := NewSession(context.Background(), eng)
	if got := s.Status(); !strings.Contains(got, "3/4") || !strings.Contains(got, "6 left") {
		t.Errorf("status = %q", got)
	}
}
