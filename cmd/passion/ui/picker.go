package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sebakara/early-passion-detection/internal/types"
)

// PickerModel lets the user choose which child to assess.
type PickerModel struct {
	children []types.Child
	cursor   int
	errMsg   string
	styles   Styles
}

// NewPickerModel creates an empty picker.
func NewPickerModel(styles Styles) PickerModel {
	return PickerModel{styles: styles}
}

// SetChildren replaces the list and clamps the cursor.
func (m PickerModel) SetChildren(children []types.Child) PickerModel {
	m.children = children
	if m.cursor >= len(children) {
		m.cursor = 0
	}
	m.errMsg = ""
	return m
}

// SetError shows a load failure instead of the list.
func (m PickerModel) SetError(msg string) PickerModel {
	m.errMsg = msg
	return m
}

// Update handles list navigation and selection.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.children)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.children) == 0 {
			return m, nil
		}
		child := m.children[m.cursor]
		return m, func() tea.Msg {
			return ChildChosenMsg{Child: child}
		}
	}
	return m, nil
}

// View renders the child list, or an empty-state hint.
func (m PickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Who are we assessing today?"))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("r: retry • ctrl+c: quit"))
		return b.String()
	}

	if len(m.children) == 0 {
		b.WriteString(m.styles.Subtle.Render("No children on this account yet."))
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("Add one with: passion children add"))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("ctrl+c: quit"))
		return b.String()
	}

	now := time.Now()
	for i, child := range m.children {
		line := fmt.Sprintf("%s (age %d)", child.DisplayName(), child.AgeYears(now))
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("up/down: move • enter: start • ctrl+c: quit"))
	return b.String()
}
