package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide collectors. One instance is built at
// startup and shared; all collectors are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	CompareDuration prometheus.Histogram
	ShiftsDetected  *prometheus.CounterVec
	FetchFailures   prometheus.Counter
	PunchesParsed   prometheus.Counter
}

// New builds a fresh registry with the service collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skud_compare_requests_total",
			Help: "HTTP requests by endpoint and status class.",
		}, []string{"endpoint", "status"}),
		CompareDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "skud_compare_pipeline_seconds",
			Help:    "Wall time of one comparison pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		ShiftsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skud_compare_shifts_detected_total",
			Help: "Detected shifts by type.",
		}, []string{"type"}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "skud_compare_tabell_fetch_failures_total",
			Help: "Failed tabell CSV fetches.",
		}),
		PunchesParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "skud_compare_punches_parsed_total",
			Help: "Punch rows decoded from uploaded workbooks.",
		}),
	}
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
