package whitelist

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/haukened/dlguard/internal/guard/common/log"
)

// fakeStore is an in-memory Store with optional injected failures.
type fakeStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (s *fakeStore) Get(key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *fakeStore) persisted(t *testing.T) []string {
	t.Helper()
	var out []string
	if err := json.Unmarshal(s.data[StoreKey], &out); err != nil {
		t.Fatalf("persisted whitelist is not valid JSON: %v", err)
	}
	return out
}

func TestRepo_Initialize_MergesUnion(t *testing.T) {
	store := newFakeStore()
	prior, _ := json.Marshal([]string{"a.com"})
	store.data[StoreKey] = prior

	r := New(store, log.NewNoopLogger())
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	// All defaults plus the user-added domain, no overlap here.
	if r.Len() != len(Defaults)+1 {
		t.Errorf("expected %d domains, got %d", len(Defaults)+1, r.Len())
	}
	for _, d := range Defaults {
		if !r.IsTrusted(d) {
			t.Errorf("default domain %q should be trusted after initialize", d)
		}
	}
	if !r.IsTrusted("a.com") {
		t.Error("persisted domain a.com should survive the merge")
	}

	// Merged result is persisted.
	if got := len(store.persisted(t)); got != len(Defaults)+1 {
		t.Errorf("expected %d persisted domains, got %d", len(Defaults)+1, got)
	}
}

func TestRepo_Initialize_Idempotent(t *testing.T) {
	store := newFakeStore()
	r := New(store, log.NewNoopLogger())

	if err := r.Initialize(); err != nil {
		t.Fatalf("first Initialize() returned error: %v", err)
	}
	first := store.persisted(t)

	if err := r.Initialize(); err != nil {
		t.Fatalf("second Initialize() returned error: %v", err)
	}
	second := store.persisted(t)

	if len(first) != len(second) {
		t.Fatalf("initialize is not idempotent: %d vs %d domains", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("persisted sets differ at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestRepo_IsTrusted_ExactMatchOnly(t *testing.T) {
	store := newFakeStore()
	r := New(store, log.NewNoopLogger())
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tests := []struct {
		domain string
		want   bool
	}{
		{domain: "google.com", want: true},
		{domain: "GOOGLE.com", want: true}, // case-normalized
		// Exact membership only: subdomains of a trusted root are not trusted.
		{domain: "mail.google.com", want: false},
		{domain: "notgoogle.com", want: false},
		{domain: "", want: false},
	}

	for _, tt := range tests {
		if got := r.IsTrusted(tt.domain); got != tt.want {
			t.Errorf("IsTrusted(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestRepo_Replace(t *testing.T) {
	store := newFakeStore()
	r := New(store, log.NewNoopLogger())
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	next := []string{"example.org", "Example.ORG", "  tools.example.net  ", ""}
	if err := r.Replace(next); err != nil {
		t.Fatalf("Replace() returned error: %v", err)
	}

	// Wholesale replacement: defaults are gone until the next initialize.
	if r.IsTrusted("google.com") {
		t.Error("replace should not preserve prior members")
	}
	if !r.IsTrusted("example.org") || !r.IsTrusted("tools.example.net") {
		t.Error("replacement members should be trusted")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 domains after dedupe/normalize, got %d", r.Len())
	}

	got := store.persisted(t)
	want := []string{"example.org", "tools.example.net"}
	if len(got) != len(want) {
		t.Fatalf("expected persisted %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("persisted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRepo_Replace_Idempotent(t *testing.T) {
	store := newFakeStore()
	r := New(store, log.NewNoopLogger())

	set := []string{"example.org", "example.net"}
	if err := r.Replace(set); err != nil {
		t.Fatalf("Replace() returned error: %v", err)
	}
	first := store.persisted(t)

	if err := r.Replace(set); err != nil {
		t.Fatalf("second Replace() returned error: %v", err)
	}
	second := store.persisted(t)

	if len(first) != len(second) {
		t.Fatalf("replace is not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("persisted sets differ at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestRepo_Initialize_StoreErrors(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("storage offline")
	r := New(store, log.NewNoopLogger())
	if err := r.Initialize(); err == nil {
		t.Error("expected error when persisted whitelist cannot be read")
	}

	store = newFakeStore()
	store.data[StoreKey] = []byte("{not json")
	r = New(store, log.NewNoopLogger())
	if err := r.Initialize(); err == nil {
		t.Error("expected error when persisted whitelist is corrupt")
	}

	store = newFakeStore()
	store.setErr = errors.New("disk full")
	r = New(store, log.NewNoopLogger())
	if err := r.Initialize(); err == nil {
		t.Error("expected error when the merged set cannot be persisted")
	}
}

func TestRepo_Snapshot_Sorted(t *testing.T) {
	store := newFakeStore()
	r := New(store, log.NewNoopLogger())
	if err := r.Replace([]string{"zzz.com", "aaa.com", "mmm.com"}); err != nil {
		t.Fatalf("Replace() returned error: %v", err)
	}

	snap := r.Snapshot()
	want := []string{"aaa.com", "mmm.com", "zzz.com"}
	if len(snap) != len(want) {
		t.Fatalf("expected %v, got %v", want, snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("snapshot[%d] = %q, want %q", i, snap[i], want[i])
		}
	}

	// Mutating the snapshot must not touch the repo.
	snap[0] = "hacked.com"
	if r.IsTrusted("hacked.com") {
		t.Error("snapshot mutation leaked into the repo")
	}
}
