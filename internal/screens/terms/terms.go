package terms

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	"github.com/abhisek/termdojo/internal/store"
	"github.com/abhisek/termdojo/internal/ui/components"
	"github.com/abhisek/termdojo/internal/ui/layout"
	"github.com/abhisek/termdojo/internal/ui/theme"
)

// Lister lists terms.
type Lister interface {
	List(ctx context.Context, filter store.TermFilter) ([]domain.Term, error)
}

var sortOrder = []store.TermSort{store.SortProficiency, store.SortWord, store.SortNewest}

type termsLoadedMsg struct {
	Terms []domain.Term
	Err   error
}

// TermsScreen lists terms with their proficiency.
type TermsScreen struct {
	ctx      context.Context
	terms    Lister
	list     []domain.Term
	sortIdx  int
	selected int
	offset   int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*TermsScreen)(nil)
var _ screen.KeyHintProvider = (*TermsScreen)(nil)

// New creates a new TermsScreen.
func New(ctx context.Context, terms Lister) *TermsScreen {
	return &TermsScreen{ctx: ctx, terms: terms}
}

func (s *TermsScreen) Init() tea.Cmd {
	sort := sortOrder[s.sortIdx]
	return func() tea.Msg {
		list, err := s.terms.List(s.ctx, store.TermFilter{Sort: sort})
		return termsLoadedMsg{Terms: list, Err: err}
	}
}

func (s *TermsScreen) Title() string {
	return "Terms"
}

func (s *TermsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "S", Description: "Sort: " + string(sortOrder[s.sortIdx])},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TermsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case termsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.list = msg.Terms
		s.selected, s.offset = 0, 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.list)-1 {
				s.selected++
			}
		case "s":
			s.sortIdx = (s.sortIdx + 1) % len(sortOrder)
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *TermsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered("\n\nError: "+s.errMsg, width, lipgloss.NewStyle().Foreground(theme.Error))
	}
	if !s.loaded {
		return layout.Centered("\n\n  Loading terms...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	if len(s.list) == 0 {
		return layout.Centered("\n\n  No terms yet. Add some with `termdojo terms add`.", width, theme.Hint)
	}

	rows := max(height-2, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}

	var b strings.Builder
	b.WriteString("\n")
	end := min(s.offset+rows, len(s.list))
	for i := s.offset; i < end; i++ {
		t := s.list[i]
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "> "
			style = theme.Selected
		}
		label := style.Render(fmt.Sprintf("%s%-28s", prefix, truncate(t.Word, 28))) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %-14s ", truncate(t.Tag, 14)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, label+components.ProficiencyBar(t.Proficiency, 30)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
