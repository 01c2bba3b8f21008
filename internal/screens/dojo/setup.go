package dojo

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	"github.com/abhisek/termdojo/internal/ui/components"
	"github.com/abhisek/termdojo/internal/ui/layout"
	"github.com/abhisek/termdojo/internal/ui/theme"
)

// Engine is the part of the dojo engine the screens drive.
type Engine interface {
	Start(ctx context.Context, opts dojo.StartOptions) (dojo.State, error)
	DrawNext(ctx context.Context) (dojo.Step, error)
	RevealExplanation() (string, error)
	RecordFeedback(ctx context.Context, correct bool) (dojo.Step, error)
	End() dojo.Summary
	State() dojo.State
}

// TagLister lists the tags terms can be filtered by.
type TagLister interface {
	DistinctTags(ctx context.Context) ([]string, error)
}

type setupFocus int

const (
	focusTags setupFocus = iota
	focusMax
)

// SetupScreen collects the tags and question cap for a new session.
type SetupScreen struct {
	ctx    context.Context
	engine Engine
	tags   TagLister

	picker   components.MultiSelect
	maxInput components.TextInput
	focus    setupFocus
	loaded   bool
	starting bool
	errMsg   string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// NewSetup creates the session setup screen. defaultMax pre-fills the
// question cap; zero leaves it empty (no cap).
func NewSetup(ctx context.Context, engine Engine, tags TagLister, defaultMax int) *SetupScreen {
	in := components.NewTextInput("all", true, 4)
	in.Model.Blur()
	if defaultMax > 0 {
		in.Model.SetValue(itoa(defaultMax))
	}
	return &SetupScreen{
		ctx:      ctx,
		engine:   engine,
		tags:     tags,
		maxInput: in,
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return func() tea.Msg {
		tags, err := s.tags.DistinctTags(s.ctx)
		return tagsLoadedMsg{Tags: tags, Err: err}
	}
}

func (s *SetupScreen) Title() string {
	return "New Session"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "Toggle tag"},
		{Key: "a", Description: "All"},
		{Key: "Tab", Description: "Question cap"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = domain.Message(msg.Err)
			return s, nil
		}
		s.picker = components.NewMultiSelect(msg.Tags)
		return s, nil

	case startedMsg:
		s.starting = false
		if msg.Err != nil {
			s.errMsg = domain.Message(msg.Err)
			return s, nil
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: NewSession(s.ctx, s.engine)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.starting {
		return s, nil
	}
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "tab", "shift+tab":
		if s.focus == focusTags {
			s.focus = focusMax
			return s, s.maxInput.Model.Focus()
		}
		s.focus = focusTags
		s.maxInput.Model.Blur()
		return s, nil
	case "enter":
		return s.start()
	}

	var cmd tea.Cmd
	if s.focus == focusMax {
		s.maxInput, cmd = s.maxInput.Update(msg)
	} else {
		s.picker, cmd = s.picker.Update(msg)
	}
	return s, cmd
}

func (s *SetupScreen) start() (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	s.starting = true
	opts := dojo.StartOptions{
		Tags:         s.picker.Selected(),
		MaxQuestions: dojo.ParseMaxQuestions(s.maxInput.Value()),
	}
	return s, func() tea.Msg {
		st, err := s.engine.Start(s.ctx, opts)
		return startedMsg{State: st, Err: err}
	}
}

func (s *SetupScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered("\n\nLoading tags...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered("Pick the tags to study", width, theme.Title))
	b.WriteString("\n\n")

	if len(s.picker.Options) == 0 {
		b.WriteString(layout.Centered("No terms yet. Add some with `termdojo terms add`.", width, theme.Hint))
		b.WriteString("\n")
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.picker.View()))
	}

	b.WriteString("\n")
	label := "Max questions: "
	if s.focus == focusMax {
		label = theme.Selected.Render(label)
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, label+s.maxInput.View()))
	b.WriteString("\n\n")

	if s.starting {
		b.WriteString(layout.Centered("Starting...", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	}
	if s.errMsg != "" {
		b.WriteString(layout.Centered(s.errMsg, width, lipgloss.NewStyle().Foreground(theme.Error)))
	}
	return b.String()
}
