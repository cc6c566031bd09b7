package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/nodecanvas/pkg/document"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m SlicePickerModel, keys ...string) (SlicePickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(SlicePickerModel)
	}
	return m, cmd
}

func TestSlicePicker(t *testing.T) {
	m := NewSlicePickerModel(document.Example())
	if got := len(m.Selected()); got != 4 {
		t.Fatalf("initially selected = %d, want 4", got)
	}

	m, _ = press(m, "down", " ", "down", "down", "x")
	if got := strings.Join(m.Selected(), ","); got != "sentence,constituency" {
		t.Errorf("Selected = %s", got)
	}

	m, cmd := press(m, "enter")
	if !m.Confirmed || cmd == nil {
		t.Error("enter should confirm and quit")
	}
}

func TestSlicePickerToggleAll(t *testing.T) {
	m := NewSlicePickerModel(document.Example())

	m, _ = press(m, "a")
	if len(m.Selected()) != 0 {
		t.Fatalf("a should clear all when everything is checked")
	}
	m, cmd := press(m, "enter")
	if m.Confirmed || cmd != nil {
		t.Error("enter with nothing selected should do nothing")
	}
	m, _ = press(m, "a")
	if len(m.Selected()) != 4 {
		t.Errorf("a should check all")
	}
}

func TestSlicePickerQuit(t *testing.T) {
	m, cmd := press(NewSlicePickerModel(document.Example()), "esc")
	if m.Confirmed || cmd == nil {
		t.Error("esc should quit without confirming")
	}
}

func TestSlicePickerView(t *testing.T) {
	view := NewSlicePickerModel(document.Example()).View()
	for _, want := range []string{"Select Slices", "sentence", "Semantic graph", "[4/4 selected]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
