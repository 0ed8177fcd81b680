// Package whitelist owns the set of trusted download domains.
//
// Membership is an exact, case-normalized string match. A whitelisted root
// domain does not trust its subdomains: "mail.google.com" is untrusted even
// when "google.com" is in the set.
package whitelist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/haukened/dlguard/internal/guard/common/log"
)

// StoreKey is the persisted top-level key holding the trusted domain list.
const StoreKey = "whitelist"

// Defaults are the seed domains every initialized whitelist contains.
var Defaults = []string{
	"microsoft.com",
	"adobe.com",
	"mozilla.org",
	"google.com",
	"apple.com",
	"oracle.com",
	"python.org",
	"github.com",
}

// Store is the slice of the persistence collaborator the whitelist needs.
// The collaborator offers no transactions; serialization is this package's job.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}

// Repo is the mutex-guarded trusted-domain set. All mutation funnels through
// Initialize and Replace, each of which persists the result before returning.
type Repo struct {
	mu     sync.RWMutex
	set    map[string]struct{}
	store  Store
	logger log.Logger
}

// New creates an empty, uninitialized Repo.
func New(store Store, logger log.Logger) *Repo {
	return &Repo{
		set:    make(map[string]struct{}),
		store:  store,
		logger: logger,
	}
}

// Initialize merges the default seed domains with any previously persisted
// set (union, never intersection) and persists the result. Re-running with
// the same persisted input yields the same merged set.
func (r *Repo) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var persisted []string
	raw, found, err := r.store.Get(StoreKey)
	if err != nil {
		return fmt.Errorf("reading persisted whitelist: %w", err)
	}
	if found {
		if err := json.Unmarshal(raw, &persisted); err != nil {
			return fmt.Errorf("decoding persisted whitelist: %w", err)
		}
	}

	merged := make(map[string]struct{}, len(Defaults)+len(persisted))
	for _, d := range Defaults {
		merged[normalize(d)] = struct{}{}
	}
	for _, d := range persisted {
		if n := normalize(d); n != "" {
			merged[n] = struct{}{}
		}
	}

	if err := r.persist(merged); err != nil {
		return fmt.Errorf("persisting merged whitelist: %w", err)
	}
	r.set = merged

	r.logger.Info(map[string]any{"domains": len(merged)}, "whitelist initialized")
	return nil
}

// IsTrusted reports whether domain is an exact member of the current set.
func (r *Repo) IsTrusted(domain string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.set[normalize(domain)]
	return ok
}

// Replace swaps in a wholesale replacement set and persists it immediately.
// The settings UI computes add/remove client-side and submits the full set.
func (r *Repo) Replace(domains []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if n := normalize(d); n != "" {
			next[n] = struct{}{}
		}
	}

	if err := r.persist(next); err != nil {
		return fmt.Errorf("persisting whitelist: %w", err)
	}
	r.set = next

	r.logger.Info(map[string]any{"domains": len(next)}, "whitelist replaced")
	return nil
}

// Snapshot returns a sorted copy of the current set for display.
func (r *Repo) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedSlice(r.set)
}

// Len returns the number of trusted domains.
func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.set)
}

// persist writes the set to the store. Callers must hold the write lock, so
// there is exactly one in-flight read-then-write at a time.
func (r *Repo) persist(set map[string]struct{}) error {
	raw, err := json.Marshal(sortedSlice(set))
	if err != nil {
		return err
	}
	return r.store.Set(StoreKey, raw)
}

func sortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func normalize(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
