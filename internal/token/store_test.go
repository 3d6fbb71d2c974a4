package token

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if s.Exists() {
		t.Fatal("fresh store should be empty")
	}

	if err := s.Set("abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Token(); got != "abc123" {
		t.Errorf("Token = %q, want abc123", got)
	}

	// A second store over the same directory must see the persisted token.
	reopened := NewStore(dir)
	if got := reopened.Token(); got != "abc123" {
		t.Errorf("reopened Token = %q, want abc123", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Exists() {
		t.Error("store should be empty after Clear")
	}
	if NewStore(dir).Exists() {
		t.Error("cleared token survived on disk")
	}
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Set(""); err == nil {
		t.Error("expected error storing empty token")
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if NewStore(dir).Exists() {
		t.Error("corrupt token file should read as empty")
	}
}

func TestStoreFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.Set("secret"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file perm = %o, want 0600", perm)
	}
}
