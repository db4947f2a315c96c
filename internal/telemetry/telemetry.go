package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skinvalue",
		Name:      "venue_fetch_total",
		Help:      "Venue fetch attempts by venue and outcome (ok, null, error).",
	}, []string{"venue", "outcome"})

	fetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skinvalue",
		Name:      "venue_fetch_seconds",
		Help:      "Venue fetch latency in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"venue"})

	batchItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skinvalue",
		Name:      "batch_items_total",
		Help:      "Items valued by the batch orchestrator.",
	})
)

// ObserveFetch records one venue fetch. Outcome is "ok" when the fetch
// produced usable data, "null" when it produced a null-quote without a
// transport error, and "error" otherwise.
func ObserveFetch(venue, outcome string, elapsed time.Duration) {
	fetchTotal.WithLabelValues(venue, outcome).Inc()
	fetchSeconds.WithLabelValues(venue).Observe(elapsed.Seconds())
}

// ObserveBatchItem counts one completed item in a batch run.
func ObserveBatchItem() { batchItems.Inc() }
