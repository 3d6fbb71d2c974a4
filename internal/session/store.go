// Package session owns the client's authentication state machine.
//
// The store is the only writer of the token store. Pages never see raw
// transport errors from it: every operation resolves to an (ok, message)
// result, and state changes fan out to subscribed listeners: the session
// gate re-renders on them and the assessment controller discards
// in-progress state when the session goes away.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/types"
)

// Status enumerates the session states.
type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
	Errored
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Token is non-empty only while
// Authenticated, with one deliberate exception: registration against a
// backend that returns no token yields Authenticated with an empty Token,
// signaling the caller must still log in separately.
type State struct {
	Status Status
	User   *types.User
	Token  string
	Err    string
}

// Result is the outcome handed back to whatever drove the operation.
// Message is user-presentable.
type Result struct {
	OK      bool
	Message string
}

// Listener observes state changes. Listeners are invoked synchronously,
// outside the store's lock, in subscription order.
type Listener func(State)

// Backend is the slice of the API client the store uses.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Whoami(ctx context.Context) (*types.User, error)
	Register(ctx context.Context, in types.RegisterInput) (*types.User, string, error)
	Logout(ctx context.Context) error
}

// TokenStore is the durable token slot.
type TokenStore interface {
	Token() string
	Exists() bool
	Set(tok string) error
	Clear() error
}

// Store is the session state machine.
type Store struct {
	backend Backend
	tokens  TokenStore
	logger  *zap.Logger

	mu        sync.Mutex
	state     State
	busy      bool
	restored  bool
	listeners []Listener
}

// Option configures the store.
type Option func(*Store)

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates the store. The initial status is Authenticating when a
// stored token exists (the caller must then run Restore), otherwise
// Unauthenticated with nothing pending.
func New(backend Backend, tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if tokens.Exists() {
		s.state = State{Status: Authenticating}
	} else {
		s.state = State{Status: Unauthenticated}
		s.restored = true // nothing to restore
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener for subsequent state changes.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// setState swaps the state and notifies listeners outside the lock.
func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()

	s.logger.Debug("session state", zap.String("status", st.Status.String()))
	for _, l := range ls {
		l(st)
	}
}

// Restore resolves a stored token into a session. It runs at most once per
// process; any failure, expired token included, clears the token store
// and settles as Unauthenticated. Protected content must not render until
// Restore has returned.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return
	}
	s.restored = true
	tok := s.tokens.Token()
	s.mu.Unlock()

	if tok == "" {
		s.setState(State{Status: Unauthenticated})
		return
	}

	user, err := s.backend.Whoami(ctx)
	if err != nil {
		s.logger.Info("session restore failed", zap.Error(err))
		_ = s.tokens.Clear()
		s.setState(State{Status: Unauthenticated})
		return
	}

	s.setState(State{Status: Authenticated, User: user, Token: tok})
}

// Login authenticates with credentials. The store moves through
// Authenticating and settles Authenticated or Errored; the caller always
// gets a Result, never a raw error.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	if !s.begin() {
		return Result{Message: "another sign-in is already in progress"}
	}
	defer s.end()

	s.setState(State{Status: Authenticating})

	tok, err := s.backend.Login(ctx, email, password)
	if err != nil {
		msg := failureMessage(err, "Login failed")
		s.setState(State{Status: Errored, Err: msg})
		return Result{Message: msg}
	}

	if err := s.tokens.Set(tok); err != nil {
		s.logger.Warn("token not persisted; session will not survive restart", zap.Error(err))
	}

	user, err := s.backend.Whoami(ctx)
	if err != nil {
		msg := failureMessage(err, "Login failed")
		_ = s.tokens.Clear()
		s.setState(State{Status: Errored, Err: msg})
		return Result{Message: msg}
	}

	s.setState(State{Status: Authenticated, User: user, Token: tok})
	return Result{OK: true}
}

// Register creates an account. A backend that returns no token still
// settles the session as Authenticated with an empty Token: the account
// exists but credentials have not been exchanged yet, and the caller must
// log in separately. That asymmetry is intentional.
func (s *Store) Register(ctx context.Context, in types.RegisterInput) Result {
	if err := in.Validate(); err != nil {
		return Result{Message: err.Error()}
	}
	if !s.begin() {
		return Result{Message: "another sign-in is already in progress"}
	}
	defer s.end()

	s.setState(State{Status: Authenticating})

	user, tok, err := s.backend.Register(ctx, in)
	if err != nil {
		msg := failureMessage(err, "Registration failed")
		s.setState(State{Status: Errored, Err: msg})
		return Result{Message: msg}
	}

	if tok != "" {
		if err := s.tokens.Set(tok); err != nil {
			s.logger.Warn("token not persisted", zap.Error(err))
		}
	}

	s.setState(State{Status: Authenticated, User: user, Token: tok})
	return Result{OK: true}
}

// Logout invalidates the session. The remote call is best-effort, its
// errors are swallowed, and local state is cleared unconditionally.
func (s *Store) Logout(ctx context.Context) {
	if err := s.backend.Logout(ctx); err != nil {
		s.logger.Debug("remote logout failed, clearing locally anyway", zap.Error(err))
	}
	s.clearLocal()
}

// Evict is the 401 hook's path: local clear only, no remote call. Safe to
// call from any flow at any time, including mid-assessment.
func (s *Store) Evict() {
	s.mu.Lock()
	already := s.state.Status == Unauthenticated
	s.mu.Unlock()
	if already {
		return
	}
	s.logger.Info("session evicted on authorization failure")
	s.clearLocal()
}

// ClearError acknowledges a failed login or registration.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.state.Status != Errored {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.setState(State{Status: Unauthenticated})
}

func (s *Store) clearLocal() {
	_ = s.tokens.Clear()
	s.setState(State{Status: Unauthenticated})
}

// begin marks an auth operation in flight; a second concurrent operation
// is refused rather than interleaved.
func (s *Store) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	s.restored = true // an explicit login supersedes any pending restore
	return true
}

func (s *Store) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// failureMessage turns an API error into the message shown to the user:
// structured detail first, then the generic fallback, then the raw error
// text for plain transport failures.
func failureMessage(err error, fallback string) string {
	var vErr *api.ValidationError
	if errors.As(err, &vErr) && vErr.Detail != "" {
		return vErr.Detail
	}
	var aErr *api.AuthError
	if errors.As(err, &aErr) && aErr.Detail != "" {
		return aErr.Detail
	}
	var nErr *api.NetworkError
	if errors.As(err, &nErr) {
		return err.Error()
	}
	return fallback
}
