package dojo

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/ui/layout"
	"github.com/abhisek/termdojo/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *SessionScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}

	var b strings.Builder
	b.WriteString("\n")

	switch s.state.Phase {
	case dojo.PhaseDrawing:
		frame := spinnerFrames[s.spinFrame%len(spinnerFrames)]
		b.WriteString(layout.Centered(frame+" Generating a question...", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	case dojo.PhasePresenting, dojo.PhaseAwaitingFeedback:
		b.WriteString(s.renderQuestion(width))
	case dojo.PhaseActive:
		if s.failure != "" {
			b.WriteString(layout.Centered("Could not generate a question", width, theme.Incorrect))
			b.WriteString("\n\n")
			b.WriteString(layout.Centered(s.failure, width, lipgloss.NewStyle().Foreground(theme.TextDim)))
			b.WriteString("\n\n")
			b.WriteString(layout.Centered("The term went back into the pool. Press R to draw again.", width, theme.Hint))
		} else {
			b.WriteString(layout.Centered("Press R to draw the next term.", width, theme.Hint))
		}
	default:
		b.WriteString(layout.Centered("No active session.", width, theme.Hint))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(s.errMsg, width, lipgloss.NewStyle().Foreground(theme.Error)))
	}
	return b.String()
}

func (s *SessionScreen) renderQuestion(width int) string {
	st := s.state
	cw := min(width-4, 76)

	var b strings.Builder
	b.WriteString(layout.Centered(fmt.Sprintf("#%d  %s", st.Drawn, st.Word), width,
		lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(st.Question)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	b.WriteString("\n\n")

	if len(st.Options) > 0 {
		var opts strings.Builder
		for i, opt := range st.Options {
			opts.WriteString(fmt.Sprintf("%d) %s\n", i+1, opt))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(opts.String())))
		b.WriteString("\n")
	}

	if st.Revealed {
		card := theme.Card.Width(cw).Render(st.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
		b.WriteString("\n\n")
		b.WriteString(layout.Centered("Did you get it?  Y / N", width, theme.Hint))
	} else {
		b.WriteString(layout.Centered("Think it through, then press Enter to reveal the explanation.", width, theme.Hint))
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("End this session?", width, theme.Title))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("Y to see your summary, N to keep going", width, theme.Hint))
	return b.String()
}
