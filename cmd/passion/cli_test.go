package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sebakara/early-passion-detection/cmd/passion/ui"
	"github.com/sebakara/early-passion-detection/internal/assessment"
	"github.com/sebakara/early-passion-detection/internal/session"
	"github.com/sebakara/early-passion-detection/internal/types"
)

func TestRootRegistersSubcommands(t *testing.T) {
	want := []string{"login", "register", "logout", "whoami", "children", "passions"}
	for _, name := range want {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q is not registered", name)
		}
	}
}

// testApp wires an app against an httptest backend with isolated state dirs.
func testApp(t *testing.T, handler http.Handler) *app {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("PASSION_CONFIG_DIR", t.TempDir())
	t.Setenv("PASSION_API_URL", srv.URL)

	a, err := newApp(zap.NewNop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return a
}

func TestLoginFailureSurfacesDetail(t *testing.T) {
	testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	}))

	loginCmd.SetContext(t.Context())
	loginEmail = "p@example.com"
	loginPassword = "wrongpass1"
	defer func() { loginEmail, loginPassword = "", "" }()

	err := runLogin(loginCmd, nil)
	if err == nil {
		t.Fatalf("expected sign-in failure")
	}
	if !strings.Contains(err.Error(), "Incorrect email or password") {
		t.Fatalf("error should carry the server detail, got %v", err)
	}
}

func TestInteractiveModelGatesUntilRestore(t *testing.T) {
	a := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	ctl := assessment.New(a.client)
	ctl.BindSession(a.session)
	m := newAssessModel(a, ctl)

	if !strings.Contains(m.View(), "Checking your session") {
		t.Fatalf("protected content must not render before the session resolves")
	}

	// No stored token: restore resolves to Unauthenticated and the login
	// page takes over.
	a.session.Restore(t.Context())
	next, _ := m.Update(sessionChangedMsg{state: a.session.State()})
	m = next.(assessModel)
	if !strings.Contains(m.View(), "Sign in") {
		t.Fatalf("expected login page after failed restore, got:\n%s", m.View())
	}
}

func TestInteractiveModelEvictionReturnsToLogin(t *testing.T) {
	a := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	ctl := assessment.New(a.client)
	ctl.BindSession(a.session)
	m := newAssessModel(a, ctl)

	next, _ := m.Update(sessionChangedMsg{state: session.State{
		Status: session.Authenticated,
		User:   &types.User{Email: "p@example.com"},
	}})
	m = next.(assessModel)

	next, _ = m.Update(sessionChangedMsg{state: session.State{Status: session.Unauthenticated}})
	m = next.(assessModel)
	if !strings.Contains(m.View(), "Your session ended") {
		t.Fatalf("eviction should explain why sign-in is needed again, got:\n%s", m.View())
	}
}

func TestInteractiveModelRoutesAnswers(t *testing.T) {
	a := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	ctl := assessment.New(a.client)
	m := newAssessModel(a, ctl)

	snap := assessment.Snapshot{
		Phase: assessment.InProgress,
		Questions: []types.Question{
			{ID: 1, Text: "Pick one", Type: types.MultipleChoice, Options: []string{"A", "B"}},
		},
	}
	next, _ := m.Update(assessSnapshotMsg{snap: snap})
	m = next.(assessModel)
	if !strings.Contains(m.View(), "Pick one") {
		t.Fatalf("question page should render after a snapshot, got:\n%s", m.View())
	}

	_, cmd := m.Update(ui.AnswerChosenMsg{Answer: "A"})
	if cmd == nil {
		t.Fatalf("an answer should trigger a submit command")
	}
}

func TestQuitKey(t *testing.T) {
	a := testApp(t, http.NotFoundHandler())
	m := newAssessModel(a, assessment.New(a.client))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c should quit")
	}
}
