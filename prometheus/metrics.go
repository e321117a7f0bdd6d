// Package prometheus exposes scraping run statistics as Prometheus metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrtoronto/patscan"
)

const namespace = "patscan"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors of a run on a private registry, so several
// runs in one process never share state.
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	references  *prometheus.CounterVec
	attempts    prometheus.Counter
	misses      *prometheus.CounterVec
	dumps       prometheus.Counter
	added       prometheus.Counter
	datasetSize prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// NewMetrics creates Metrics registered on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of scraping runs, labeled by status.",
		}, []string{"status"}),
		references: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "references_total",
			Help:      "Total number of selected references, labeled by outcome.",
		}, []string{"outcome"}),
		attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_attempts_total",
			Help:      "Total number of page render attempts.",
		}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_misses_total",
			Help:      "Total number of fields not found on retrieved pages, labeled by field.",
		}, []string{"field"}),
		dumps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claim_dumps_total",
			Help:      "Total number of diagnostic dumps written for pages without claims.",
		}),
		added: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_added_total",
			Help:      "Total number of records merged into the dataset.",
		}),
		datasetSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of records in the dataset after the last run.",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records a successful run. size is the dataset size after the
// merge; it is ignored when negative.
func (m *Metrics) ObserveRun(stats *patscan.Stats, added, size int, elapsed time.Duration) {
	m.runs.WithLabelValues(StatusSuccess).Inc()
	m.duration.Set(elapsed.Seconds())
	m.lastSuccess.SetToCurrentTime()
	m.added.Add(float64(added))
	if size >= 0 {
		m.datasetSize.Set(float64(size))
	}

	if stats == nil {
		return
	}
	m.references.WithLabelValues("fetched").Add(float64(stats.Fetched))
	m.references.WithLabelValues("failed").Add(float64(stats.Failed))
	m.references.WithLabelValues("skipped").Add(float64(stats.Skipped))
	m.references.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	m.attempts.Add(float64(stats.Attempts))
	m.dumps.Add(float64(stats.Dumps))
	for field, n := range stats.Misses {
		m.misses.WithLabelValues(field).Add(float64(n))
	}
}

// ObserveFailure records an aborted run.
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	m.runs.WithLabelValues(StatusFailure).Inc()
	m.duration.Set(elapsed.Seconds())
}

// WriteTextfile writes the metrics in the text exposition format to path,
// for collection by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
