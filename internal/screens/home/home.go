package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	dojoscreen "github.com/abhisek/termdojo/internal/screens/dojo"
	"github.com/abhisek/termdojo/internal/screens/terms"
	"github.com/abhisek/termdojo/internal/store"
	"github.com/abhisek/termdojo/internal/ui/components"
	"github.com/abhisek/termdojo/internal/ui/layout"
	"github.com/abhisek/termdojo/internal/ui/theme"
)

// OverviewSource reports study totals.
type OverviewSource interface {
	Overview(ctx context.Context, now time.Time) (*store.Overview, error)
}

// Deps are what the home menu navigates to.
type Deps struct {
	Engine              dojoscreen.Engine
	Terms               store.TermRepo
	Stats               OverviewSource
	DefaultMaxQuestions int
}

type overviewLoadedMsg struct {
	Overview *store.Overview
	Err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	ctx      context.Context
	deps     Deps
	menu     components.Menu
	overview *store.Overview
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(ctx context.Context, deps Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "Start a session", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: dojoscreen.NewSetup(ctx, deps.Engine, deps.Terms, deps.DefaultMaxQuestions)}
			}
		}},
		{Label: "Browse terms", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: terms.New(ctx, deps.Terms)}
			}
		}},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{ctx: ctx, deps: deps, menu: components.NewMenu(items)}
}

// Init reloads the overview; it runs again whenever the stack unwinds
// back to home.
func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Stats == nil {
		return nil
	}
	return func() tea.Msg {
		ov, err := h.deps.Stats.Overview(h.ctx, time.Now())
		return overviewLoadedMsg{Overview: ov, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		if msg.Err == nil {
			h.overview = msg.Overview
		}
		return h, nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("termdojo", width, theme.Title))
	b.WriteString("\n")
	b.WriteString(layout.Centered("drill your vocabulary with generated questions", width, theme.Subtitle))
	b.WriteString("\n\n")

	if ov := h.overview; ov != nil {
		acc := "-"
		if ov.RecentAccuracy != nil {
			acc = fmt.Sprintf("%d%%", *ov.RecentAccuracy)
		}
		line := fmt.Sprintf("%d terms   %d answers logged   7-day accuracy %s", ov.TotalTerms, ov.TotalStudied, acc)
		b.WriteString(layout.Centered(line, width, lipgloss.NewStyle().Foreground(theme.TextDim)))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	return b.String()
}
