package bolt

import (
	"path/filepath"
	"testing"

	"github.com/haukened/dlguard/internal/guard/repos/history"
	"github.com/haukened/dlguard/internal/guard/repos/whitelist"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "guard.db"))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	v, found, err := s.Get("whitelist")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if found {
		t.Errorf("expected found=false for unwritten key, got value %q", v)
	}
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("whitelist", []byte(`["a.com","b.com"]`)); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}

	v, found, err := s.Get("whitelist")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if !found {
		t.Fatal("expected found=true after Set")
	}
	if string(v) != `["a.com","b.com"]` {
		t.Errorf("unexpected value: %q", v)
	}
}

func TestStore_SetReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("history", []byte(`[1]`)); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if err := s.Set("history", []byte(`[1,2]`)); err != nil {
		t.Fatalf("second Set() returned error: %v", err)
	}

	v, _, err := s.Get("history")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if string(v) != `[1,2]` {
		t.Errorf("expected replaced value [1,2], got %q", v)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guard.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := s.Set("whitelist", []byte(`["a.com"]`)); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer s2.Close()

	v, found, err := s2.Get("whitelist")
	if err != nil || !found {
		t.Fatalf("expected value to survive reopen, found=%v err=%v", found, err)
	}
	if string(v) != `["a.com"]` {
		t.Errorf("unexpected value after reopen: %q", v)
	}
}

// The repos define their store ports structurally; the bolt store must
// satisfy both.
var (
	_ whitelist.Store = (*Store)(nil)
	_ history.Store   = (*Store)(nil)
)
