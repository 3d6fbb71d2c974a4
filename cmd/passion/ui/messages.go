package ui

import (
	"github.com/sebakara/early-passion-detection/internal/types"
)

// LoginSubmittedMsg is emitted by the login page when the user confirms
// their credentials.
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// ChildChosenMsg is emitted by the picker page when a child is selected.
type ChildChosenMsg struct {
	Child types.Child
}

// AnswerChosenMsg is emitted by the question page when an answer is
// confirmed for the current question.
type AnswerChosenMsg struct {
	Answer string
}

// RetryMsg asks the host to retry the last failed assessment step.
type RetryMsg struct{}

// BackMsg asks the host to return to the previous page.
type BackMsg struct{}
