package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/router"
	"github.com/abhisek/termdojo/internal/screen"
	"github.com/abhisek/termdojo/internal/ui/components"
	"github.com/abhisek/termdojo/internal/ui/layout"
	"github.com/abhisek/termdojo/internal/ui/theme"
)

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	summary dojo.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary dojo.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder
	b.WriteString("\n")

	if sum.Drawn == 0 {
		b.WriteString(layout.Centered("Session ended", width, theme.Title))
		b.WriteString("\n\n")
		b.WriteString(layout.Centered("No questions were answered.", width, theme.Hint))
		return b.String()
	}

	b.WriteString(layout.Centered("Session complete!", width, theme.Title))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Questions: %d        Correct: %d        Wrong: %d",
		sum.Drawn, sum.Correct, sum.Wrong)
	b.WriteString(layout.Centered(stats, width, lipgloss.NewStyle().Foreground(theme.Text)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accuracy", float64(sum.AccuracyPercent)/100, true, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(verdict(sum.AccuracyPercent), width, theme.Hint))
	return b.String()
}

func verdict(accuracy int) string {
	switch {
	case accuracy >= 90:
		return "Sharp. Raise the cap next time."
	case accuracy >= 60:
		return "Solid. The misses lost 10 points each; drill them again soon."
	}
	return "Rough round. These terms will keep coming back until they stick."
}
