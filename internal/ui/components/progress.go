package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0..1 fraction.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// ProficiencyBar renders a term proficiency (0-100) colored by band.
func ProficiencyBar(proficiency, width int) string {
	p := NewProgressBar("", float64(proficiency)/100, true, width)
	switch {
	case proficiency < 40:
		return p.view(theme.Error)
	case proficiency < 70:
		return p.view(theme.Accent)
	}
	return p.view(theme.Success)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	return p.view(theme.Secondary)
}

func (p ProgressBar) view(fill color.Color) string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}
	return result
}
