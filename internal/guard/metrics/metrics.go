// Package metrics provides Prometheus instrumentation for the guard daemon.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DownloadsAssessed counts download-created events that were scored.
	DownloadsAssessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dlguard",
			Name:      "downloads_assessed_total",
			Help:      "Total download events scored by the risk engine.",
		},
	)

	// DownloadsIntercepted counts downloads paused pending a user decision.
	DownloadsIntercepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dlguard",
			Name:      "downloads_intercepted_total",
			Help:      "Total downloads paused for crossing the risk threshold.",
		},
	)

	// Decisions counts processed user decisions by action.
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlguard",
			Name:      "decisions_total",
			Help:      "Total user decisions processed, by action.",
		},
		[]string{"action"},
	)

	// AssessmentErrors counts events that could not be assessed, by reason.
	AssessmentErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlguard",
			Name:      "assessment_errors_total",
			Help:      "Total events dropped before or during assessment, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		DownloadsAssessed,
		DownloadsIntercepted,
		Decisions,
		AssessmentErrors,
	)
}

// Handler returns a gin handler serving the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
