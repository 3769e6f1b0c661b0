package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the search service.
type Metrics struct {
	SearchesStarted   prometheus.Counter
	SearchesCompleted *prometheus.CounterVec
	SearchesRunning   prometheus.Gauge
	Replacements      prometheus.Counter
}

// NewMetrics registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nidus",
			Name:      "searches_started_total",
			Help:      "Number of search jobs accepted.",
		}),
		SearchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nidus",
			Name:      "searches_completed_total",
			Help:      "Number of search jobs finished, by terminal status.",
		}, []string{"status"}),
		SearchesRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nidus",
			Name:      "searches_running",
			Help:      "Number of search jobs currently running.",
		}),
		Replacements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nidus",
			Name:      "replacements_total",
			Help:      "Number of successful candidate replacements across all searches.",
		}),
	}
}
