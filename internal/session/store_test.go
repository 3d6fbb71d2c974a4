package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu  sync.Mutex
	tok string
}

func (m *memTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *memTokens) Exists() bool { return m.Token() != "" }

func (m *memTokens) Set(tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	return nil
}

// fakeBackend scripts the API client's behavior.
type fakeBackend struct {
	loginToken  string
	loginErr    error
	whoamiUser  *types.User
	whoamiErr   error
	regUser     *types.User
	regToken    string
	regErr      error
	logoutErr   error
	logoutCalls int
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeBackend) Whoami(ctx context.Context) (*types.User, error) {
	return f.whoamiUser, f.whoamiErr
}

func (f *fakeBackend) Register(ctx context.Context, in types.RegisterInput) (*types.User, string, error) {
	return f.regUser, f.regToken, f.regErr
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func TestInitialStateFollowsTokenPresence(t *testing.T) {
	withToken := New(&fakeBackend{}, &memTokens{tok: "stored"})
	if got := withToken.State().Status; got != Authenticating {
		t.Errorf("with stored token: status %v, want Authenticating", got)
	}

	without := New(&fakeBackend{}, &memTokens{})
	if got := without.State().Status; got != Unauthenticated {
		t.Errorf("without token: status %v, want Unauthenticated", got)
	}
}

func TestRestoreValidToken(t *testing.T) {
	user := &types.User{ID: 1, Email: "parent@example.com"}
	tokens := &memTokens{tok: "stored"}
	s := New(&fakeBackend{whoamiUser: user}, tokens)

	s.Restore(context.Background())

	st := s.State()
	if st.Status != Authenticated {
		t.Fatalf("status %v, want Authenticated", st.Status)
	}
	if st.User == nil || st.User.Email != "parent@example.com" {
		t.Errorf("user not populated: %+v", st.User)
	}
	if st.Token != "stored" {
		t.Errorf("token %q, want stored", st.Token)
	}
}

func TestRestoreInvalidTokenClearsStore(t *testing.T) {
	tokens := &memTokens{tok: "expired"}
	s := New(&fakeBackend{whoamiErr: &api.AuthError{Endpoint: "/auth/me"}}, tokens)

	s.Restore(context.Background())

	if got := s.State().Status; got != Unauthenticated {
		t.Errorf("status %v, want Unauthenticated", got)
	}
	if tokens.Exists() {
		t.Error("token store must be empty after failed restore")
	}
}

func TestRestoreRunsOnce(t *testing.T) {
	backend := &fakeBackend{whoamiUser: &types.User{ID: 1}}
	s := New(backend, &memTokens{tok: "stored"})

	s.Restore(context.Background())

	// Sabotage the backend; a second Restore must not touch it.
	backend.whoamiErr = errors.New("boom")
	backend.whoamiUser = nil
	s.Restore(context.Background())

	if got := s.State().Status; got != Authenticated {
		t.Errorf("second Restore changed state to %v", got)
	}
}

func TestLoginSuccessStoresToken(t *testing.T) {
	tokens := &memTokens{}
	s := New(&fakeBackend{loginToken: "fresh", whoamiUser: &types.User{ID: 2}}, tokens)

	res := s.Login(context.Background(), "p@example.com", "longenough")
	if !res.OK {
		t.Fatalf("login failed: %s", res.Message)
	}
	st := s.State()
	if st.Status != Authenticated || st.Token != "fresh" || st.User == nil {
		t.Errorf("state after login: %+v", st)
	}
	if tokens.Token() != "fresh" {
		t.Errorf("token store holds %q, want fresh", tokens.Token())
	}
}

func TestLoginFailureSurfacesDetail(t *testing.T) {
	s := New(&fakeBackend{loginErr: &api.AuthError{Endpoint: "/auth/login", Detail: "Incorrect email or password"}}, &memTokens{})

	res := s.Login(context.Background(), "p@example.com", "wrong")
	if res.OK {
		t.Fatal("login should have failed")
	}
	if res.Message != "Incorrect email or password" {
		t.Errorf("message %q, want backend detail", res.Message)
	}
	st := s.State()
	if st.Status != Errored || st.Err != "Incorrect email or password" {
		t.Errorf("state: %+v", st)
	}
}

func TestLoginThenLogoutAlwaysUnauthenticated(t *testing.T) {
	for _, remoteErr := range []error{nil, errors.New("connection refused")} {
		tokens := &memTokens{}
		backend := &fakeBackend{loginToken: "tok", whoamiUser: &types.User{ID: 3}, logoutErr: remoteErr}
		s := New(backend, tokens)

		if res := s.Login(context.Background(), "p@example.com", "longenough"); !res.OK {
			t.Fatalf("login: %s", res.Message)
		}
		s.Logout(context.Background())

		if got := s.State().Status; got != Unauthenticated {
			t.Errorf("remoteErr=%v: status %v, want Unauthenticated", remoteErr, got)
		}
		if tokens.Exists() {
			t.Errorf("remoteErr=%v: token survived logout", remoteErr)
		}
		if backend.logoutCalls != 1 {
			t.Errorf("remoteErr=%v: logout calls = %d", remoteErr, backend.logoutCalls)
		}
	}
}

func TestRegisterWithoutTokenIsAuthenticated(t *testing.T) {
	tokens := &memTokens{}
	s := New(&fakeBackend{regUser: &types.User{ID: 4, Email: "new@example.com"}}, tokens)

	res := s.Register(context.Background(), types.RegisterInput{
		Email: "new@example.com", Password: "longenough", IsParent: true,
	})
	if !res.OK {
		t.Fatalf("register: %s", res.Message)
	}

	st := s.State()
	if st.Status != Authenticated {
		t.Fatalf("status %v, want Authenticated", st.Status)
	}
	if st.Token != "" {
		t.Errorf("register without backend token must leave Token empty, got %q", st.Token)
	}
	if tokens.Exists() {
		t.Error("no token should be persisted when the backend returned none")
	}
}

func TestRegisterRejectsInvalidInputLocally(t *testing.T) {
	backend := &fakeBackend{regErr: errors.New("must not be called")}
	s := New(backend, &memTokens{})

	res := s.Register(context.Background(), types.RegisterInput{Email: "p@example.com", Password: "short"})
	if res.OK {
		t.Fatal("short password should fail validation")
	}
	if s.State().Status != Unauthenticated {
		t.Errorf("local validation failure must not change state, got %v", s.State().Status)
	}
}

func TestEvictClearsWithoutRemoteCall(t *testing.T) {
	tokens := &memTokens{}
	backend := &fakeBackend{loginToken: "tok", whoamiUser: &types.User{ID: 5}}
	s := New(backend, tokens)

	if res := s.Login(context.Background(), "p@example.com", "longenough"); !res.OK {
		t.Fatal(res.Message)
	}

	s.Evict()

	if got := s.State().Status; got != Unauthenticated {
		t.Errorf("status %v, want Unauthenticated", got)
	}
	if tokens.Exists() {
		t.Error("token survived eviction")
	}
	if backend.logoutCalls != 0 {
		t.Error("eviction must not call the remote logout endpoint")
	}
}

func TestEvictIdempotent(t *testing.T) {
	s := New(&fakeBackend{}, &memTokens{})

	var notifications int
	s.Subscribe(func(State) { notifications++ })

	s.Evict()
	s.Evict()

	if notifications != 0 {
		t.Errorf("evicting an unauthenticated session notified %d times", notifications)
	}
}

func TestClearError(t *testing.T) {
	s := New(&fakeBackend{loginErr: &api.ValidationError{Status: 400, Detail: "Inactive user"}}, &memTokens{})

	s.Login(context.Background(), "p@example.com", "longenough")
	if s.State().Status != Errored {
		t.Fatalf("expected Errored, got %v", s.State().Status)
	}

	s.ClearError()
	st := s.State()
	if st.Status != Unauthenticated || st.Err != "" {
		t.Errorf("after ClearError: %+v", st)
	}
}

func TestListenersObserveTransitions(t *testing.T) {
	s := New(&fakeBackend{loginToken: "tok", whoamiUser: &types.User{ID: 6}}, &memTokens{})

	var seen []Status
	s.Subscribe(func(st State) { seen = append(seen, st.Status) })

	s.Login(context.Background(), "p@example.com", "longenough")

	want := []Status{Authenticating, Authenticated}
	if len(seen) != len(want) {
		t.Fatalf("transitions %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions %v, want %v", seen, want)
		}
	}
}

func TestFailureMessagePriority(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"validation detail", &api.ValidationError{Status: 400, Detail: "Email already registered"}, "Email already registered"},
		{"auth detail", &api.AuthError{Endpoint: "/auth/login", Detail: "Incorrect email or password"}, "Incorrect email or password"},
		{"validation without detail", &api.ValidationError{Status: 422}, "Registration failed"},
		{"server error", &api.ServerError{Status: 503, Endpoint: "/auth/register"}, "Registration failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := failureMessage(tc.err, "Registration failed"); got != tc.want {
				t.Errorf("failureMessage = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("network error keeps transport text", func(t *testing.T) {
		err := &api.NetworkError{Endpoint: "/auth/register", Err: errors.New("dial tcp: connection refused")}
		got := failureMessage(err, "Registration failed")
		if got == "Registration failed" {
			t.Errorf("network failures should surface the transport text, got %q", got)
		}
	})
}
