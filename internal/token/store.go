// Package token persists the single bearer token the client holds between
// runs. The store is a one-slot durable key: absence means unauthenticated,
// presence triggers the silent session restore at startup.
//
// Writer discipline: only the session store writes this slot. The API
// client only reads it.
package token

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "token.json"

// record is the disk format. Timestamps are unix milliseconds.
type record struct {
	AccessToken string `json:"access_token"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// Store is a durable single-token slot backed by a JSON file.
type Store struct {
	path string

	mu     sync.RWMutex
	cached string
	loaded bool
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// DefaultDir returns the per-user client state directory, honoring the
// PASSION_CONFIG_DIR override.
func DefaultDir() (string, error) {
	if dir := os.Getenv("PASSION_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".passion"), nil
}

// DefaultStore opens the store in the per-user state directory.
func DefaultStore() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir), nil
}

// Token returns the stored bearer token, or "" when none is stored.
// The file is read once and cached; Set and Clear keep the cache current.
func (s *Store) Token() string {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.cached
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached
	}
	s.cached = s.readFile()
	s.loaded = true
	return s.cached
}

// Exists reports whether a token is currently stored.
func (s *Store) Exists() bool {
	return s.Token() != ""
}

// Set writes the token to disk with owner-only permissions.
func (s *Store) Set(tok string) error {
	if tok == "" {
		return errors.New("refusing to store empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(record{
		AccessToken: tok,
		UpdatedAt:   time.Now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return err
	}

	s.cached = tok
	s.loaded = true
	return nil
}

// Clear removes the stored token. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = ""
	s.loaded = true

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) readFile() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Unreadable token file is treated as no token; restore will
		// then settle the session as unauthenticated.
		return ""
	}
	return rec.AccessToken
}
