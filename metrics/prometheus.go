package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusSink exports recall telemetry to a dedicated Prometheus
// registry. Safe for concurrent use.
type PrometheusSink struct {
	registry *prometheus.Registry

	recallTotal    *prometheus.CounterVec
	recallDuration *prometheus.HistogramVec
	itemsReturned  prometheus.Histogram
}

// NewPrometheusSink builds a sink with its own registry so tests and
// multiple engines never collide on metric names.
func NewPrometheusSink() *PrometheusSink {
	registry := prometheus.NewRegistry()

	recallTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Subsystem: "engine",
			Name:      "queries_total",
			Help:      "Total recall queries by strategy and cache outcome.",
		},
		[]string{"strategy", "cache_hit"},
	)
	recallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Subsystem: "engine",
			Name:      "query_duration_seconds",
			Help:      "Recall wall time in seconds by strategy.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .2, .4, .8, 1.6, 3.2},
		},
		[]string{"strategy"},
	)
	itemsReturned := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Subsystem: "engine",
			Name:      "items_returned",
			Help:      "Number of items returned per recall.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	registry.MustRegister(recallTotal, recallDuration, itemsReturned)

	return &PrometheusSink{
		registry:       registry,
		recallTotal:    recallTotal,
		recallDuration: recallDuration,
		itemsReturned:  itemsReturned,
	}
}

// Record implements Sink.
func (s *PrometheusSink) Record(entry Entry) error {
	strategy := string(entry.Strategy)
	s.recallTotal.WithLabelValues(strategy, strconv.FormatBool(entry.CacheHit)).Inc()
	s.recallDuration.WithLabelValues(strategy).Observe(entry.TookMs / 1000)
	s.itemsReturned.Observe(float64(entry.ItemCount))
	return nil
}

// Handler serves the sink's registry for scraping.
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
