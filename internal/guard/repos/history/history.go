// Package history keeps the bounded record of past download attempts.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/haukened/dlguard/internal/guard/common/log"
	"github.com/haukened/dlguard/internal/guard/domain"
)

// Limit is the maximum number of entries retained; the oldest are dropped
// first when the log overflows.
const Limit = 100

// StoreKey is the persisted top-level key holding the history sequence.
const StoreKey = "history"

// Store is the slice of the persistence collaborator the history log needs.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}

// Log is the append-only, capacity-bounded download history. Appends are
// serialized by a mutex spanning the whole read-modify-write, so two
// concurrent download events can never overwrite each other's entry.
type Log struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	store   Store
	logger  log.Logger
}

// New creates an empty Log.
func New(store Store, logger log.Logger) *Log {
	return &Log{
		store:  store,
		logger: logger,
	}
}

// Load restores previously persisted entries, truncating to the bound.
func (l *Log) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, found, err := l.store.Get(StoreKey)
	if err != nil {
		return fmt.Errorf("reading persisted history: %w", err)
	}
	if !found {
		l.entries = nil
		return nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decoding persisted history: %w", err)
	}
	if len(entries) > Limit {
		entries = entries[len(entries)-Limit:]
	}
	l.entries = entries

	l.logger.Info(map[string]any{"entries": len(entries)}, "download history loaded")
	return nil
}

// Append adds entry to the end of the log and drops the oldest entries beyond
// the bound. Persistence failures are logged and not retried; the in-memory
// log still advances so scoring keeps working.
func (l *Log) Append(entry domain.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > Limit {
		l.entries = l.entries[len(l.entries)-Limit:]
	}

	raw, err := json.Marshal(l.entries)
	if err != nil {
		l.logger.Error(map[string]any{"error": err}, "failed to encode download history")
		return
	}
	if err := l.store.Set(StoreKey, raw); err != nil {
		l.logger.Error(map[string]any{"error": err}, "failed to persist download history")
	}
}

// CountSafeFromDomain counts entries whose URL contains domain as a substring
// and that were not flagged dangerous at observation time. Substring
// containment, not hostname equality: a domain that happens to be a substring
// of an unrelated longer hostname counts too.
func (l *Log) CountSafeFromDomain(domain string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, e := range l.entries {
		if !e.Dangerous && strings.Contains(e.URL, domain) {
			count++
		}
	}
	return count
}

// Snapshot returns a copy of the log in insertion order.
func (l *Log) Snapshot() []domain.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}
