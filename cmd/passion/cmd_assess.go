package main

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sebakara/early-passion-detection/cmd/passion/ui"
	"github.com/sebakara/early-passion-detection/internal/assessment"
	"github.com/sebakara/early-passion-detection/internal/session"
)

type page int

const (
	pageGate page = iota
	pageLogin
	pagePicker
	pageQuestion
	pageResult
)

// sessionChangedMsg carries a session state change into the TUI loop.
type sessionChangedMsg struct {
	state session.State
}

// childrenLoadedMsg carries the child list, or the load failure.
type childrenLoadedMsg struct {
	snap assessment.Snapshot
	err  error
}

// assessSnapshotMsg carries the outcome of a controller step.
type assessSnapshotMsg struct {
	snap assessment.Snapshot
	err  error
}

// assessModel is the root TUI model. It routes messages to the page
// models and drives the session store and assessment controller through
// commands.
type assessModel struct {
	app *app
	ctl *assessment.Controller

	page     page
	wasOpen  bool
	gate     ui.GateModel
	login    ui.LoginModel
	picker   ui.PickerModel
	question ui.QuestionModel
	result   ui.ResultModel

	styles ui.Styles
	width  int
	height int
}

func newAssessModel(a *app, ctl *assessment.Controller) assessModel {
	styles := ui.StylesFor(a.cfg.Theme)
	return assessModel{
		app:      a,
		ctl:      ctl,
		page:     pageGate,
		gate:     ui.NewGateModel(styles),
		login:    ui.NewLoginModel(styles),
		picker:   ui.NewPickerModel(styles),
		question: ui.NewQuestionModel(styles),
		result:   ui.NewResultModel(styles),
		styles:   styles,
	}
}

func (m assessModel) Init() tea.Cmd {
	return tea.Batch(m.gate.Init(), m.login.Init(), m.restoreCmd())
}

func (m assessModel) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (m assessModel) restoreCmd() tea.Cmd {
	sess := m.app.session
	return func() tea.Msg {
		sess.Restore(context.Background())
		return sessionChangedMsg{state: sess.State()}
	}
}

func (m assessModel) loginCmd(email, password string) tea.Cmd {
	sess := m.app.session
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		sess.Login(ctx, email, password)
		return sessionChangedMsg{state: sess.State()}
	}
}

func (m assessModel) loadChildrenCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		snap, err := ctl.LoadChildren(ctx)
		return childrenLoadedMsg{snap: snap, err: err}
	}
}

func (m assessModel) startCmd(childID int) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		snap, err := ctl.StartAssessment(ctx, childID)
		return assessSnapshotMsg{snap: snap, err: err}
	}
}

func (m assessModel) submitCmd(answer string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		snap, err := ctl.SubmitAnswer(ctx, answer)
		return assessSnapshotMsg{snap: snap, err: err}
	}
}

func (m assessModel) retryCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		snap, err := ctl.Retry(ctx)
		return assessSnapshotMsg{snap: snap, err: err}
	}
}

func (m assessModel) resetCmd() tea.Cmd {
	ctl := m.ctl
	loadChildren := m.loadChildrenCmd()
	return func() tea.Msg {
		ctx, cancel := m.opCtx()
		defer cancel()
		ctl.Reset(ctx)
		return loadChildren()
	}
}

// frozenRun reports whether an interrupted run is waiting to resume.
func (m assessModel) frozenRun() bool {
	snap := m.ctl.Snapshot()
	switch snap.Phase {
	case assessment.InProgress, assessment.Submitting, assessment.Failed:
		return len(snap.Questions) > 0
	}
	return false
}

func (m assessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.question = m.question.SetWidth(msg.Width)
		m.result = m.result.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.page == pagePicker && msg.String() == "r" {
			return m, m.loadChildrenCmd()
		}
		if m.page == pageLogin && m.gate.State().Status == session.Errored {
			// Editing the form after a failure dismisses the error state.
			model, cmd := m.routeToPage(msg)
			am := model.(assessModel)
			sess := am.app.session
			return am, tea.Batch(cmd, func() tea.Msg {
				sess.ClearError()
				return nil
			})
		}

	case sessionChangedMsg:
		return m.onSessionChanged(msg.state)

	case ui.LoginSubmittedMsg:
		return m, m.loginCmd(msg.Email, msg.Password)

	case childrenLoadedMsg:
		if msg.err != nil {
			m.picker = m.picker.SetError("Could not load children: " + msg.err.Error())
		} else {
			m.picker = m.picker.SetChildren(msg.snap.Children)
		}
		m.page = pagePicker
		return m, nil

	case ui.ChildChosenMsg:
		return m, m.startCmd(msg.Child.ID)

	case ui.AnswerChosenMsg:
		return m, m.submitCmd(msg.Answer)

	case ui.RetryMsg:
		return m, m.retryCmd()

	case ui.BackMsg:
		m.page = pagePicker
		return m, m.resetCmd()

	case assessSnapshotMsg:
		return m.onSnapshot(msg)
	}

	return m.routeToPage(msg)
}

func (m assessModel) onSessionChanged(state session.State) (tea.Model, tea.Cmd) {
	m.gate = m.gate.SetState(state)
	var cmd tea.Cmd

	switch state.Status {
	case session.Authenticating:
		// During a login attempt the form's own busy indicator is the
		// better view; the gate only covers the startup restore.
		if m.page != pageLogin {
			m.page = pageGate
			cmd = m.gate.Init()
		}
	case session.Authenticated:
		if m.frozenRun() {
			m.question = m.question.SetSnapshot(m.ctl.Snapshot())
			m.page = pageQuestion
		} else if m.page != pageQuestion && m.page != pageResult {
			m.page = pagePicker
			cmd = m.loadChildrenCmd()
		}
	case session.Unauthenticated:
		if m.page != pageLogin {
			m.login = m.login.Reset()
			if m.wasOpen {
				m.login = m.login.SetError("Your session ended. Sign in again to continue.")
			}
			cmd = m.login.Init()
		}
		m.page = pageLogin
	case session.Errored:
		m.login = m.login.SetError(state.Err)
		m.page = pageLogin
		cmd = m.login.Init()
	}

	m.wasOpen = state.Status == session.Authenticated
	return m, cmd
}

func (m assessModel) onSnapshot(msg assessSnapshotMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, assessment.ErrBusy) {
		return m, nil
	}
	if errors.Is(msg.err, assessment.ErrSessionGone) {
		// The session listener flips the page; keep the run frozen.
		m.question = m.question.SetSnapshot(msg.snap)
		return m, nil
	}

	if msg.snap.Phase == assessment.Complete {
		m.result = m.result.SetResult(msg.snap.Child, msg.snap.Result)
		m.result = m.result.SetSize(m.width, m.height)
		m.page = pageResult
		return m, nil
	}

	m.question = m.question.SetSnapshot(msg.snap)
	m.page = pageQuestion
	return m, nil
}

func (m assessModel) routeToPage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageGate:
		m.gate, cmd = m.gate.Update(msg)
	case pageLogin:
		m.login, cmd = m.login.Update(msg)
	case pagePicker:
		m.picker, cmd = m.picker.Update(msg)
	case pageQuestion:
		m.question, cmd = m.question.Update(msg)
	case pageResult:
		m.result, cmd = m.result.Update(msg)
	}
	return m, cmd
}

func (m assessModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Early Passion Detection"))
	b.WriteString("\n")

	switch m.page {
	case pageGate:
		b.WriteString(m.gate.View())
	case pageLogin:
		b.WriteString(m.login.View())
	case pagePicker:
		b.WriteString(m.picker.View())
	case pageQuestion:
		b.WriteString(m.question.View())
	case pageResult:
		b.WriteString(m.result.View())
	}
	return b.String()
}

// runInteractiveAssessment starts the TUI.
func runInteractiveAssessment() error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}

	ctlOpts := []assessment.Option{}
	jr, err := a.openJournal()
	if err == nil {
		ctlOpts = append(ctlOpts, assessment.WithJournal(jr))
		defer jr.Close()
	}

	ctl := assessment.New(a.client, ctlOpts...)
	ctl.BindSession(a.session)

	p := tea.NewProgram(
		newAssessModel(a, ctl),
		tea.WithAltScreen(),
	)

	// Session changes can originate outside the TUI loop, a 401 eviction
	// during a submit for example.
	a.session.Subscribe(func(st session.State) {
		go p.Send(sessionChangedMsg{state: st})
	})

	_, err = p.Run()
	return err
}
