// Package interceptor is the decision core: it scores download-created
// events, pauses risky transfers, and routes the user's allow/cancel
// decision back to the event source.
package interceptor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/dlguard/internal/guard/common/clock"
	"github.com/haukened/dlguard/internal/guard/common/log"
	"github.com/haukened/dlguard/internal/guard/domain"
	"github.com/haukened/dlguard/internal/guard/metrics"
)

const (
	alertIDPrefix = "download-"
	alertTitle    = "Potentially Dangerous Download"

	labelAllow  = "Allow Download"
	labelCancel = "Cancel Download"

	// pendingAlerts bounds the alert-to-download association table. A user
	// who never answers leaks one entry; the LRU evicts the stalest.
	pendingAlerts = 1024
)

// Interceptor consumes download-created and action-selected events and owns
// the pause/notify/resume/cancel state machine.
type Interceptor struct {
	trust      TrustList
	history    HistoryLog
	controller DownloadController
	notifier   Notifier
	clock      clock.Clock
	logger     log.Logger

	// pending maps a raised alert id to the paused download it concerns.
	// Entries live only while a decision is outstanding.
	pending *lru.Cache[string, domain.DownloadID]
}

// Options carries the Interceptor's dependencies.
type Options struct {
	Trust      TrustList
	History    HistoryLog
	Controller DownloadController
	Notifier   Notifier
	Clock      clock.Clock
	Logger     log.Logger
}

// New constructs an Interceptor.
func New(opts Options) (*Interceptor, error) {
	pending, err := lru.New[string, domain.DownloadID](pendingAlerts)
	if err != nil {
		return nil, fmt.Errorf("creating pending alert table: %w", err)
	}
	return &Interceptor{
		trust:      opts.Trust,
		history:    opts.History,
		controller: opts.Controller,
		notifier:   opts.Notifier,
		clock:      opts.Clock,
		logger:     opts.Logger,
		pending:    pending,
	}, nil
}

// AlertID returns the notifier key for a download. The download id is kept
// in the string for the bridge's benefit, but routing always goes through
// the association table, never by re-parsing.
func AlertID(id domain.DownloadID) string {
	return alertIDPrefix + strconv.FormatInt(int64(id), 10)
}

// HandleDownloadCreated runs one download event through the state machine:
// record, score, and release or pause-and-alert.
//
// A source URL that does not yield a hostname aborts the whole event before
// anything is recorded: the download proceeds unexamined. This fail-open
// path is part of the existing contract.
func (i *Interceptor) HandleDownloadCreated(ctx context.Context, d domain.Download) {
	host, err := d.Domain()
	if err != nil {
		i.logger.Error(map[string]any{
			"download_id": d.ID,
			"url":         d.URL,
			"error":       err,
		}, "invalid source URL, download proceeds unexamined")
		metrics.AssessmentErrors.WithLabelValues("invalid_url").Inc()
		return
	}

	// The dangerous-extension signal is captured at observation time and
	// recorded before scoring, so the new entry participates in its own
	// domain's reputation count.
	entry := domain.HistoryEntry{
		Filename:  d.Filename,
		URL:       d.URL,
		Timestamp: i.clock.Now(),
		Dangerous: HasDangerousExtension(d.Filename),
	}
	i.history.Append(entry)

	assessment := Score(d, host, i.trust, i.history)
	metrics.DownloadsAssessed.Inc()

	i.logger.Debug(map[string]any{
		"download_id": d.ID,
		"filename":    d.Filename,
		"domain":      host,
		"score":       assessment.Score,
		"reasons":     assessment.Reasons,
	}, "download scored")

	if !assessment.Intercept() {
		i.logger.Debug(map[string]any{"download_id": d.ID, "score": assessment.Score}, "download released")
		return
	}

	if err := i.controller.Pause(ctx, d.ID); err != nil {
		// No retry, no alert. The download stays in whatever state the
		// pause call left it.
		i.logger.Error(map[string]any{
			"download_id": d.ID,
			"error":       err,
		}, "failed to pause download")
		return
	}
	metrics.DownloadsIntercepted.Inc()

	alertID := AlertID(d.ID)
	i.pending.Add(alertID, d.ID)

	alert := Alert{
		ID:      alertID,
		Title:   alertTitle,
		Body:    alertBody(d.Filename, host, assessment),
		Actions: [2]string{labelAllow, labelCancel},
	}
	if err := i.notifier.Raise(ctx, alert); err != nil {
		i.logger.Error(map[string]any{
			"download_id": d.ID,
			"alert_id":    alertID,
			"error":       err,
		}, "failed to raise alert for paused download")
		return
	}

	i.logger.Info(map[string]any{
		"download_id": d.ID,
		"filename":    d.Filename,
		"domain":      host,
		"score":       assessment.Score,
	}, "download paused pending user decision")
}

// HandleActionSelected routes a notifier button press back to the paused
// download. Unknown alert ids and out-of-range indexes are logged and
// dropped. Action failures are logged, never escalated, and the alert is
// dismissed regardless of the action outcome.
func (i *Interceptor) HandleActionSelected(ctx context.Context, alertID string, buttonIndex int) {
	id, ok := i.pending.Get(alertID)
	if !ok {
		i.logger.Warn(map[string]any{"alert_id": alertID}, "action for unknown alert dropped")
		metrics.AssessmentErrors.WithLabelValues("unknown_alert").Inc()
		return
	}

	action, err := domain.ParseUserAction(buttonIndex)
	if err != nil {
		i.logger.Warn(map[string]any{
			"alert_id": alertID,
			"index":    buttonIndex,
		}, "action with invalid index dropped")
		metrics.AssessmentErrors.WithLabelValues("invalid_action").Inc()
		return
	}

	switch action {
	case domain.ActionAllow:
		if err := i.controller.Resume(ctx, id); err != nil {
			i.logger.Error(map[string]any{"download_id": id, "error": err}, "failed to resume download")
		}
	case domain.ActionCancel:
		if err := i.controller.Cancel(ctx, id); err != nil {
			i.logger.Error(map[string]any{"download_id": id, "error": err}, "failed to cancel download")
		}
	}

	if err := i.notifier.Dismiss(ctx, alertID); err != nil {
		i.logger.Error(map[string]any{"alert_id": alertID, "error": err}, "failed to dismiss alert")
	}

	i.pending.Remove(alertID)
	metrics.Decisions.WithLabelValues(action.String()).Inc()

	i.logger.Info(map[string]any{
		"download_id": id,
		"action":      action.String(),
	}, "user decision processed")
}

// PendingAlerts returns the number of interceptions awaiting a decision.
func (i *Interceptor) PendingAlerts() int {
	return i.pending.Len()
}

// alertBody renders the notification text shown to the user.
func alertBody(filename, host string, a domain.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The file %q from %s scored %d/100 for risk. Reasons:\n", filename, host, a.Score)
	for _, r := range a.Reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("Allow it?")
	return b.String()
}
