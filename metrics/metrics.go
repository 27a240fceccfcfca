package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nftcreator",
			Subsystem: "submitter",
			Name:      "submissions_total",
			Help:      "Contract writes by final status",
		},
		[]string{"contract", "method", "status"},
	)

	SubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nftcreator",
			Subsystem: "submitter",
			Name:      "submission_duration_seconds",
			Help:      "Time from broadcast request to settled receipt",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		},
		[]string{"contract", "method"},
	)

	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nftcreator",
			Subsystem: "reconciler",
			Name:      "reconciliations_total",
			Help:      "Collection reconciliations by result",
		},
		[]string{"result"},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "nftcreator",
			Subsystem: "reconciler",
			Name:      "reconcile_duration_seconds",
			Help:      "Time to query and decode creation events",
			Buckets:   prometheus.DefBuckets,
		},
	)

	LogsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nftcreator",
			Subsystem: "reconciler",
			Name:      "logs_scanned_total",
			Help:      "Creation logs returned by the node",
		},
	)

	StaleRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nftcreator",
			Subsystem: "reconciler",
			Name:      "stale_refreshes_total",
			Help:      "Refresh results dropped because a newer refresh had already published",
		},
	)

	BusyRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nftcreator",
			Subsystem: "flow",
			Name:      "busy_rejections_total",
			Help:      "Submits refused because the form already had one in flight",
		},
		[]string{"form"},
	)
)

func init() {
	prometheus.MustRegister(
		Submissions,
		SubmissionDuration,
		Reconciliations,
		ReconcileDuration,
		LogsScanned,
		StaleRefreshes,
		BusyRejections,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
