package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/termdojo/internal/ui/theme"
)

// MultiSelect is a checkbox list. Space toggles the item under the cursor,
// "a" toggles all.
type MultiSelect struct {
	Options []string
	Cursor  int
	checked map[int]bool
}

// NewMultiSelect creates a list with nothing checked.
func NewMultiSelect(options []string) MultiSelect {
	return MultiSelect{Options: options, checked: make(map[int]bool)}
}

// Update handles navigation and toggling.
func (m MultiSelect) Update(msg tea.Msg) (MultiSelect, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "space", " ":
		m.checked[m.Cursor] = !m.checked[m.Cursor]
	case "a":
		all := len(m.Selected()) < len(m.Options)
		for i := range m.Options {
			m.checked[i] = all
		}
	}
	return m, nil
}

// Selected returns the checked options in display order.
func (m MultiSelect) Selected() []string {
	var out []string
	for i, opt := range m.Options {
		if m.checked[i] {
			out = append(out, opt)
		}
	}
	return out
}

// View renders the list.
func (m MultiSelect) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		box := "[ ]"
		if m.checked[i] {
			box = "[x]"
		}
		prefix := "  "
		style := theme.Unselected
		if i == m.Cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		if m.checked[i] && i != m.Cursor {
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		b.WriteString(style.Render(prefix + box + " " + opt))
		b.WriteString("\n")
	}
	return b.String()
}
