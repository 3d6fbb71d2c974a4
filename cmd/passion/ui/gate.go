package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sebakara/early-passion-detection/internal/session"
)

// GateModel guards the protected pages. While the stored credential is
// still being verified it renders a spinner placeholder, so protected
// content is never shown before the session resolves one way or the
// other.
type GateModel struct {
	state   session.State
	spinner spinner.Model
	styles  Styles
}

// NewGateModel creates a gate in the Authenticating state.
func NewGateModel(styles Styles) GateModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Selected
	return GateModel{
		state:   session.State{Status: session.Authenticating},
		spinner: sp,
		styles:  styles,
	}
}

// Init starts the spinner tick.
func (m GateModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetState records the latest session state.
func (m GateModel) SetState(s session.State) GateModel {
	m.state = s
	return m
}

// State returns the last session state seen by the gate.
func (m GateModel) State() session.State {
	return m.state
}

// Pending reports whether the session is still being resolved.
func (m GateModel) Pending() bool {
	return m.state.Status == session.Authenticating
}

// Open reports whether protected pages may be shown.
func (m GateModel) Open() bool {
	return m.state.Status == session.Authenticated
}

// Update advances the spinner while the gate is pending.
func (m GateModel) Update(msg tea.Msg) (GateModel, tea.Cmd) {
	if !m.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the placeholder shown while the session resolves, or an
// error banner when sign-in failed. Callers render protected content
// themselves once Open reports true.
func (m GateModel) View() string {
	switch m.state.Status {
	case session.Authenticating:
		return m.spinner.View() + " " + m.styles.Subtle.Render("Checking your session...")
	case session.Errored:
		msg := m.state.Err
		if msg == "" {
			msg = "Something went wrong."
		}
		return m.styles.Error.Render(msg)
	default:
		return ""
	}
}
