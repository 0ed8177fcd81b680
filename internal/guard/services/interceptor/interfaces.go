package interceptor

import (
	"context"

	"github.com/haukened/dlguard/internal/guard/domain"
)

// DownloadController drives transfer state in the external event source.
// Calls are fire-and-forget requests: the coordinator logs failures and never
// retries them.
type DownloadController interface {
	Pause(ctx context.Context, id domain.DownloadID) error
	Resume(ctx context.Context, id domain.DownloadID) error
	Cancel(ctx context.Context, id domain.DownloadID) error
}

// Alert is the notification raised for an intercepted download. Actions are
// the two button labels, in the index order the notifier reports back.
type Alert struct {
	ID      string
	Title   string
	Body    string
	Actions [2]string
}

// Notifier renders alerts and dismisses them once a decision is processed.
type Notifier interface {
	Raise(ctx context.Context, alert Alert) error
	Dismiss(ctx context.Context, alertID string) error
}

// TrustList is the whitelist membership check the scorer reads.
type TrustList interface {
	IsTrusted(domain string) bool
}

// HistoryLog is the slice of the history store the coordinator writes and
// the scorer reads.
type HistoryLog interface {
	Append(entry domain.HistoryEntry)
	CountSafeFromDomain(domain string) int
}
