package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry of the service.
	Registry = prometheus.NewRegistry()

	// PipelineRuns counts pipeline invocations by pipeline and outcome.
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_runs_total", Help: "Pipeline invocations by outcome."},
		[]string{"pipeline", "outcome"},
	)
	// LetterItems counts processed letters by outcome.
	LetterItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "letter_items_total", Help: "Letters processed by outcome."},
		[]string{"outcome"},
	)
	// ExternalCallDuration records outbound call latency per external service.
	ExternalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "external_call_duration_seconds", Help: "Outbound call duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"service", "outcome"},
	)
	// GeocodeCacheLookups counts geocode cache hits and misses.
	GeocodeCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geocode_cache_lookups_total", Help: "Geocode cache lookups by result."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PipelineRuns)
		Registry.MustRegister(LetterItems)
		Registry.MustRegister(ExternalCallDuration)
		Registry.MustRegister(GeocodeCacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Outcome maps an error to a metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
