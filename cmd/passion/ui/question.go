package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sebakara/early-passion-detection/internal/assessment"
	"github.com/sebakara/early-passion-detection/internal/types"
)

// QuestionModel walks the user through the questionnaire one question
// at a time.
type QuestionModel struct {
	snap     assessment.Snapshot
	cursor   int
	progress progress.Model
	width    int
	styles   Styles
}

// NewQuestionModel creates the questionnaire page.
func NewQuestionModel(styles Styles) QuestionModel {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40
	return QuestionModel{progress: p, styles: styles}
}

// SetSnapshot records the latest assessment state and resets the option
// cursor when the question changed.
func (m QuestionModel) SetSnapshot(snap assessment.Snapshot) QuestionModel {
	if snap.Index != m.snap.Index {
		m.cursor = 0
	}
	m.snap = snap
	return m
}

// SetWidth adjusts the progress bar to the terminal width.
func (m QuestionModel) SetWidth(w int) QuestionModel {
	m.width = w
	bar := w - 10
	if bar > 60 {
		bar = 60
	}
	if bar > 0 {
		m.progress.Width = bar
	}
	return m
}

// Update handles answer selection. Input is ignored while a submission
// or the analysis is in flight.
func (m QuestionModel) Update(msg tea.Msg) (QuestionModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.snap.Phase == assessment.Failed {
		switch key.String() {
		case "r":
			return m, func() tea.Msg { return RetryMsg{} }
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, nil
	}
	if m.snap.Phase != assessment.InProgress {
		return m, nil
	}

	q, ok := m.snap.Current()
	if !ok {
		return m, nil
	}

	switch q.Type {
	case types.MultipleChoice:
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(q.Options)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(q.Options) {
				answer := q.Options[m.cursor]
				return m, func() tea.Msg { return AnswerChosenMsg{Answer: answer} }
			}
		}
	case types.Rating:
		s := key.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '0'+types.RatingScale {
			return m, func() tea.Msg { return AnswerChosenMsg{Answer: s} }
		}
	}
	return m, nil
}

// View renders the current question with its answer controls.
func (m QuestionModel) View() string {
	var b strings.Builder

	total := len(m.snap.Questions)
	if total > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.snap.Index) / float64(total)))
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render(fmt.Sprintf("Question %d of %d", m.snap.Index+1, total)))
		b.WriteString("\n\n")
	}

	switch m.snap.Phase {
	case assessment.FetchingQuestions:
		b.Reset()
		b.WriteString(m.styles.Subtle.Render("Preparing the questionnaire..."))
		return b.String()
	case assessment.Analyzing:
		b.WriteString(m.styles.Subtle.Render("All answers in. Looking for patterns..."))
		return b.String()
	case assessment.Failed:
		b.WriteString(m.styles.Error.Render(m.snap.FailReason))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("r: retry • esc: back • ctrl+c: quit"))
		return b.String()
	}

	q, ok := m.snap.Current()
	if !ok {
		return b.String()
	}

	b.WriteString(m.styles.Title.Render(q.Text))
	b.WriteString("\n\n")

	switch q.Type {
	case types.MultipleChoice:
		for i, opt := range q.Options {
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("> " + opt))
			} else {
				b.WriteString("  " + opt)
			}
			b.WriteString("\n")
		}
		hint := "up/down: move • enter: answer"
		if m.snap.Phase == assessment.Submitting {
			hint = "saving..."
		}
		b.WriteString(m.styles.Help.Render(hint))
	case types.Rating:
		scale := make([]string, 0, types.RatingScale)
		for i := 1; i <= types.RatingScale; i++ {
			scale = append(scale, strconv.Itoa(i))
		}
		b.WriteString("  " + strings.Join(scale, "   "))
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("  1 = not at all, " + strconv.Itoa(types.RatingScale) + " = very much"))
		b.WriteString("\n")
		hint := "press 1-" + strconv.Itoa(types.RatingScale) + " to answer"
		if m.snap.Phase == assessment.Submitting {
			hint = "saving..."
		}
		b.WriteString(m.styles.Help.Render(hint))
	}
	return b.String()
}
