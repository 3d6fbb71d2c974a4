package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginModel is the credential entry page.
type LoginModel struct {
	inputs  []textinput.Model
	focused int
	errMsg  string
	busy    bool
	styles  Styles
}

const (
	loginFieldEmail = iota
	loginFieldPassword
)

// NewLoginModel creates the login page with the email field focused.
func NewLoginModel(styles Styles) LoginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    > "
	email.CharLimit = 120
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password > "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 120
	password.Width = 40

	return LoginModel{
		inputs: []textinput.Model{email, password},
		styles: styles,
	}
}

// Init returns the blink command for the focused input.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetError shows a failure message under the form and re-enables it.
func (m LoginModel) SetError(msg string) LoginModel {
	m.errMsg = msg
	m.busy = false
	return m
}

// SetBusy disables the form while a sign-in attempt is in flight.
func (m LoginModel) SetBusy(busy bool) LoginModel {
	m.busy = busy
	return m
}

// Reset clears the form for a fresh sign-in.
func (m LoginModel) Reset() LoginModel {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focused = loginFieldEmail
	m.inputs[loginFieldEmail].Focus()
	m.inputs[loginFieldPassword].Blur()
	m.errMsg = ""
	m.busy = false
	return m
}

// Update handles key input for the form.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			m.inputs[m.focused].Blur()
			if key.String() == "shift+tab" || key.String() == "up" {
				m.focused = (m.focused + len(m.inputs) - 1) % len(m.inputs)
			} else {
				m.focused = (m.focused + 1) % len(m.inputs)
			}
			return m, m.inputs[m.focused].Focus()
		case "enter":
			email := strings.TrimSpace(m.inputs[loginFieldEmail].Value())
			password := m.inputs[loginFieldPassword].Value()
			if email == "" || password == "" {
				m.errMsg = "Enter both email and password."
				return m, nil
			}
			m.errMsg = ""
			m.busy = true
			return m, func() tea.Msg {
				return LoginSubmittedMsg{Email: email, Password: password}
			}
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// View renders the form.
func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Sign in"))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("Signing in..."))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.errMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("tab: next field • enter: sign in • ctrl+c: quit"))
	return b.String()
}
