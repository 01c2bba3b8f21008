package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiSelect(t *testing.T) {
	m := NewMultiSelect([]string{"api", "db", "net"})
	if got := m.Selected(); len(got) != 0 {
		t.Fatalf("initial selection = %v", got)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	m, _ = m.Update(key('j'))
	m, _ = m.Update(key('j'))
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if got := strings.Join(m.Selected(), ","); got != "api,net" {
		t.Errorf("selected = %q, want api,net", got)
	}

	m, _ = m.Update(key('a'))
	if len(m.Selected()) != 3 {
		t.Errorf("toggle all selected %v", m.Selected())
	}
	m, _ = m.Update(key('a'))
	if len(m.Selected()) != 0 {
		t.Errorf("toggle all twice selected %v", m.Selected())
	}

	if !strings.Contains(m.View(), "[ ] db") {
		t.Errorf("view missing unchecked row:\n%s", m.View())
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	var pressed string
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "One", Action: func() tea.Cmd { pressed = "one"; return nil }},
		{Label: "Off", Disabled: true},
		{Label: "Two", Action: func() tea.Cmd { pressed = "two"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}
	m, _ = m.Update(key('j'))
	if m.Selected != 3 {
		t.Fatalf("selection after down = %d, want 3", m.Selected)
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if pressed != "two" {
		t.Errorf("pressed = %q", pressed)
	}
}

func TestNumericTextInput(t *testing.T) {
	ti := NewTextInput("max", true, 4)
	ti, _ = ti.Update(key('x'))
	ti, _ = ti.Update(key('1'))
	ti, _ = ti.Update(key('2'))
	n, err := ti.NumericValue()
	if err != nil || n != 12 {
		t.Errorf("NumericValue = %d, %v", n, err)
	}
}

func TestProficiencyBar(t *testing.T) {
	if !strings.Contains(ProficiencyBar(55, 30), "55%") {
		t.Error("bar missing percentage")
	}
}
