package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/nodecanvas/pkg/document"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// SlicePickerModel - Interactive slice selection
// =============================================================================

// SlicePickerModel is the bubbletea model for choosing which slices of a
// document to render. Every slice starts checked.
type SlicePickerModel struct {
	Slices    []document.Slice
	Checked   []bool
	Cursor    int
	Confirmed bool
}

// NewSlicePickerModel creates a picker over the document's slices.
func NewSlicePickerModel(doc *document.Document) SlicePickerModel {
	checked := make([]bool, len(doc.Slices))
	for i := range checked {
		checked[i] = true
	}
	return SlicePickerModel{Slices: doc.Slices, Checked: checked}
}

func (m SlicePickerModel) Init() tea.Cmd {
	return nil
}

func (m SlicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Slices)-1 {
			m.Cursor++
		}
	case " ", "x":
		m.Checked[m.Cursor] = !m.Checked[m.Cursor]
	case "a":
		all := !m.allChecked()
		for i := range m.Checked {
			m.Checked[i] = all
		}
	case "enter":
		if len(m.Selected()) == 0 {
			return m, nil
		}
		m.Confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SlicePickerModel) allChecked() bool {
	for _, c := range m.Checked {
		if !c {
			return false
		}
	}
	return true
}

// Selected returns the names of the checked slices in document order.
func (m SlicePickerModel) Selected() []string {
	var names []string
	for i, s := range m.Slices {
		if m.Checked[i] {
			names = append(names, s.Name)
		}
	}
	return names
}

func (m SlicePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Slices"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ render  q quit"))
	b.WriteString("\n\n")

	for i, s := range m.Slices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := listDimStyle.Render("[ ]")
		if m.Checked[i] {
			box = listCheckedStyle.Render("[x]")
		}

		line := fmt.Sprintf("%-24s %s", s.Name, listDimStyle.Render(fmt.Sprintf("%-6s %s", s.Type, s.Heading())))
		if i == m.Cursor {
			line = listSelectedStyle.Render(line)
		} else {
			line = listNormalStyle.Render(line)
		}
		b.WriteString(cursor + box + " " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", len(m.Selected()), len(m.Slices))))
	return b.String()
}

// pickSlices runs the picker and returns the chosen slice names. A nil
// result with a nil error means the user quit.
func pickSlices(doc *document.Document) ([]string, error) {
	final, err := tea.NewProgram(NewSlicePickerModel(doc)).Run()
	if err != nil {
		return nil, fmt.Errorf("slice picker: %w", err)
	}
	m := final.(SlicePickerModel)
	if !m.Confirmed {
		return nil, nil
	}
	return m.Selected(), nil
}
