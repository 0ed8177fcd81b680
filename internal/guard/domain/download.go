package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DownloadID identifies a single transfer within the event source.
type DownloadID int64

// Download describes one download-created event as reported by the event
// source. It is transient: nothing here is persisted directly.
//
// Size is the declared byte size and may be zero when the source does not
// know it yet.
type Download struct {
	ID       DownloadID
	Filename string
	URL      string
	Size     int64
}

// NewDownload constructs a Download and validates its fields.
func NewDownload(id DownloadID, filename, rawURL string, size int64) (Download, error) {
	d := Download{
		ID:       id,
		Filename: filename,
		URL:      rawURL,
		Size:     size,
	}
	if err := d.Validate(); err != nil {
		return Download{}, err
	}
	return d, nil
}

// Validate checks whether the Download fields are structurally valid.
// URL well-formedness is deliberately not checked here: a malformed URL is a
// scoring-time concern with its own abort semantics.
func (d Download) Validate() error {
	if d.Filename == "" {
		return fmt.Errorf("download filename must not be empty")
	}
	if d.URL == "" {
		return fmt.Errorf("download url must not be empty")
	}
	if d.Size < 0 {
		return fmt.Errorf("download size must not be negative: %d", d.Size)
	}
	return nil
}

// Domain extracts the lowercased hostname of the download's source URL.
// It fails when the URL does not parse or carries no host, which callers
// treat as an abort for the whole event.
func (d Download) Domain() (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", d.URL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("source url %q has no hostname", d.URL)
	}
	return strings.ToLower(host), nil
}
