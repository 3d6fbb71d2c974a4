package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/assessment"
	"github.com/sebakara/early-passion-detection/internal/session"
	"github.com/sebakara/early-passion-detection/internal/types"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGateBlocksUntilSessionResolves(t *testing.T) {
	gate := NewGateModel(DefaultStyles())
	if gate.Open() {
		t.Fatalf("gate must not open before the session resolves")
	}
	if !strings.Contains(gate.View(), "Checking your session") {
		t.Fatalf("expected pending placeholder, got %q", gate.View())
	}

	gate = gate.SetState(session.State{Status: session.Authenticated, User: &types.User{Email: "p@example.com"}})
	if !gate.Open() {
		t.Fatalf("gate should open once authenticated")
	}
	if gate.View() != "" {
		t.Fatalf("open gate should render nothing itself")
	}

	gate = gate.SetState(session.State{Status: session.Errored, Err: "Incorrect email or password"})
	if gate.Open() {
		t.Fatalf("errored session must not open the gate")
	}
	if !strings.Contains(gate.View(), "Incorrect email or password") {
		t.Fatalf("expected error banner, got %q", gate.View())
	}
}

func TestLoginEmitsCredentialsOnEnter(t *testing.T) {
	login := NewLoginModel(DefaultStyles())

	for _, r := range "p@example.com" {
		login, _ = login.Update(keyRunes(string(r)))
	}
	login, _ = login.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "secret123" {
		login, _ = login.Update(keyRunes(string(r)))
	}

	login, cmd := login.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a submit command")
	}
	msg, ok := cmd().(LoginSubmittedMsg)
	if !ok {
		t.Fatalf("expected LoginSubmittedMsg, got %T", cmd())
	}
	if msg.Email != "p@example.com" || msg.Password != "secret123" {
		t.Fatalf("unexpected credentials: %+v", msg)
	}
	if !strings.Contains(login.View(), "Signing in") {
		t.Fatalf("form should show busy state after submit")
	}
}

func TestLoginRejectsEmptyForm(t *testing.T) {
	login := NewLoginModel(DefaultStyles())
	login, cmd := login.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty form must not submit")
	}
	if !strings.Contains(login.View(), "Enter both email and password.") {
		t.Fatalf("expected local validation message")
	}
}

func TestPickerSelectsChild(t *testing.T) {
	picker := NewPickerModel(DefaultStyles())
	picker = picker.SetChildren([]types.Child{
		{ID: 1, FirstName: "Amina", Age: 6},
		{ID: 2, FirstName: "Ben", Age: 9},
	})

	picker, _ = picker.Update(tea.KeyMsg{Type: tea.KeyDown})
	picker, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a selection command")
	}
	msg, ok := cmd().(ChildChosenMsg)
	if !ok || msg.Child.ID != 2 {
		t.Fatalf("expected Ben to be chosen, got %#v", cmd())
	}
}

func TestPickerEmptyState(t *testing.T) {
	picker := NewPickerModel(DefaultStyles())
	view := picker.View()
	if !strings.Contains(view, "No children on this account yet.") {
		t.Fatalf("expected empty-state hint, got %q", view)
	}
	if _, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("enter on an empty list must do nothing")
	}
}

func TestQuestionMultipleChoiceAnswer(t *testing.T) {
	q := NewQuestionModel(DefaultStyles())
	q = q.SetSnapshot(assessment.Snapshot{
		Phase: assessment.InProgress,
		Questions: []types.Question{
			{ID: 10, Text: "What does your child reach for first?", Type: types.MultipleChoice,
				Options: []string{"Blocks", "Crayons", "A ball"}},
		},
	})

	view := q.View()
	if !strings.Contains(view, "What does your child reach for first?") {
		t.Fatalf("question text missing: %q", view)
	}
	if !strings.Contains(view, "Question 1 of 1") {
		t.Fatalf("position indicator missing: %q", view)
	}

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyDown})
	q, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected an answer command")
	}
	msg, ok := cmd().(AnswerChosenMsg)
	if !ok || msg.Answer != "Crayons" {
		t.Fatalf("expected the selected option text, got %#v", cmd())
	}
}

func TestQuestionRatingAnswer(t *testing.T) {
	q := NewQuestionModel(DefaultStyles())
	q = q.SetSnapshot(assessment.Snapshot{
		Phase: assessment.InProgress,
		Questions: []types.Question{
			{ID: 11, Text: "How focused are they when building?", Type: types.Rating},
		},
	})

	if _, cmd := q.Update(keyRunes("7")); cmd != nil {
		t.Fatalf("out-of-scale key must be ignored")
	}
	q, cmd := q.Update(keyRunes("4"))
	if cmd == nil {
		t.Fatalf("expected an answer command")
	}
	msg, ok := cmd().(AnswerChosenMsg)
	if !ok || msg.Answer != "4" {
		t.Fatalf("expected rating text, got %#v", cmd())
	}
}

func TestQuestionIgnoresInputWhileSubmitting(t *testing.T) {
	q := NewQuestionModel(DefaultStyles())
	q = q.SetSnapshot(assessment.Snapshot{
		Phase: assessment.Submitting,
		Questions: []types.Question{
			{ID: 12, Text: "Pick one", Type: types.MultipleChoice, Options: []string{"A", "B"}},
		},
	})
	if _, cmd := q.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("no answers may be sent while one is in flight")
	}
	if !strings.Contains(q.View(), "saving...") {
		t.Fatalf("expected in-flight hint, got %q", q.View())
	}
}

func TestQuestionFailedStateRetries(t *testing.T) {
	q := NewQuestionModel(DefaultStyles())
	q = q.SetSnapshot(assessment.Snapshot{Phase: assessment.Failed, FailReason: "network unreachable"})
	if !strings.Contains(q.View(), "network unreachable") {
		t.Fatalf("expected failure reason in view")
	}
	q, cmd := q.Update(keyRunes("r"))
	if cmd == nil {
		t.Fatalf("expected a retry command")
	}
	if _, ok := cmd().(RetryMsg); !ok {
		t.Fatalf("expected RetryMsg, got %T", cmd())
	}
}

func TestResultRendersDomains(t *testing.T) {
	res := NewResultModel(DefaultStyles())
	res = res.SetResult(types.Child{FirstName: "Amina"}, &api.AnalysisResult{
		TalentDomains:  map[string]float64{"music": 0.8, "sports": 0.4},
		PrimaryTalent:  "music",
		Recommended:    []string{"Try a small keyboard at home"},
		ConfidenceScore: 0.7,
	})
	view := res.View()
	for _, want := range []string{"Amina", "music"} {
		if !strings.Contains(view, want) {
			t.Fatalf("result view missing %q:\n%s", want, view)
		}
	}
}
