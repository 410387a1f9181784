package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zjrosen/sidediff/internal/fold"
)

const metricsNamespace = "sidediff"

// metrics holds the Prometheus collectors for the diff API.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	computeDuration prometheus.Histogram
	linesTotal      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of diff requests by response status",
		}, []string{"status"}),

		computeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "compute_duration_seconds",
			Help:      "Diff computation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		linesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lines_total",
			Help:      "Total number of input lines diffed, by side",
		}, []string{"side"}),
	}
}

// observeLines counts the real lines on each side of a result.
func (m *metrics) observeLines(s fold.Summary) {
	m.linesTotal.WithLabelValues("old").Add(float64(s.Unchanged + s.Changed + s.Removed))
	m.linesTotal.WithLabelValues("new").Add(float64(s.Unchanged + s.Changed + s.Added))
}
