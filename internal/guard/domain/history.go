package domain

import (
	"fmt"
	"time"
)

// HistoryEntry records one past download attempt. Entries are immutable once
// created and feed the domain-reputation signal in scoring.
//
// Dangerous is the dangerous-extension flag captured when the download was
// observed, not the final risk verdict.
type HistoryEntry struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Dangerous bool      `json:"dangerous"`
}

// NewHistoryEntry constructs a HistoryEntry and validates its fields.
func NewHistoryEntry(filename, url string, timestamp time.Time, dangerous bool) (HistoryEntry, error) {
	e := HistoryEntry{
		Filename:  filename,
		URL:       url,
		Timestamp: timestamp,
		Dangerous: dangerous,
	}
	if err := e.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	return e, nil
}

// Validate checks whether the HistoryEntry fields are structurally valid.
func (e HistoryEntry) Validate() error {
	if e.Filename == "" {
		return fmt.Errorf("history entry filename must not be empty")
	}
	if e.URL == "" {
		return fmt.Errorf("history entry url must not be empty")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("history entry timestamp must be set")
	}
	return nil
}
