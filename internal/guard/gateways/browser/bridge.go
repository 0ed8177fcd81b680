// Package browser adapts the coordinator's outbound ports to the browser
// extension bridge. The bridge executes download actions against the
// platform download manager and renders notifications; this package only
// speaks JSON over HTTP to it.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haukened/dlguard/internal/guard/domain"
	"github.com/haukened/dlguard/internal/guard/services/interceptor"
)

const defaultTimeout = 5 * time.Second

// Bridge implements interceptor.DownloadController and interceptor.Notifier
// against the extension bridge's HTTP endpoints. Every call is a single
// request with no retry; the caller decides what a failure means.
type Bridge struct {
	baseURL string
	client  *http.Client
}

// Options defines configuration for the bridge gateway.
type Options struct {
	// BaseURL is the bridge's root endpoint, e.g. "http://127.0.0.1:7878".
	BaseURL string
	// Timeout bounds each request; defaults to 5 seconds.
	Timeout time.Duration
	// Client can be injected for testing.
	Client *http.Client
}

// New creates a bridge gateway.
func New(opts Options) (*Bridge, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("bridge base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Bridge{
		baseURL: opts.BaseURL,
		client:  client,
	}, nil
}

// controlRequest is the wire form of a download action.
type controlRequest struct {
	Action string            `json:"action"`
	ID     domain.DownloadID `json:"id"`
}

// notifyRequest is the wire form of a raised alert.
type notifyRequest struct {
	AlertID string    `json:"alertId"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Buttons [2]string `json:"buttons"`
}

// dismissRequest clears a previously raised alert.
type dismissRequest struct {
	AlertID string `json:"alertId"`
}

// Pause asks the bridge to pause a transfer.
func (b *Bridge) Pause(ctx context.Context, id domain.DownloadID) error {
	return b.post(ctx, "/control", controlRequest{Action: "pause", ID: id})
}

// Resume asks the bridge to resume a paused transfer.
func (b *Bridge) Resume(ctx context.Context, id domain.DownloadID) error {
	return b.post(ctx, "/control", controlRequest{Action: "resume", ID: id})
}

// Cancel asks the bridge to cancel a transfer.
func (b *Bridge) Cancel(ctx context.Context, id domain.DownloadID) error {
	return b.post(ctx, "/control", controlRequest{Action: "cancel", ID: id})
}

// Raise asks the bridge to render an interception alert.
func (b *Bridge) Raise(ctx context.Context, alert interceptor.Alert) error {
	return b.post(ctx, "/notify", notifyRequest{
		AlertID: alert.ID,
		Title:   alert.Title,
		Message: alert.Body,
		Buttons: alert.Actions,
	})
}

// Dismiss asks the bridge to clear an alert.
func (b *Bridge) Dismiss(ctx context.Context, alertID string) error {
	return b.post(ctx, "/notify/clear", dismissRequest{AlertID: alertID})
}

func (b *Bridge) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bridge returned status %d for %s", resp.StatusCode, path)
	}
	return nil
}

// Compile-time port checks.
var (
	_ interceptor.DownloadController = (*Bridge)(nil)
	_ interceptor.Notifier           = (*Bridge)(nil)
)
