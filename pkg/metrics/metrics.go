// Package metrics provides Prometheus instrumentation for the validation
// engine. The engine runs offline; the registry is still maintained so runs
// embedded in a larger process can scrape it, and the CLI can dump it at the
// end of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default metric name parts.
const (
	defaultNamespace = "trs"
	defaultSubsystem = "validation"
)

// Manager owns all Prometheus instruments for the engine.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Bootstrap metrics
	iterationsCompleted prometheus.Counter
	iterationsSkipped   prometheus.Counter
	iterationDuration   prometheus.Histogram
	runDuration         prometheus.Histogram

	// Cohort metrics
	cohortSize       prometheus.Gauge
	subjectsExcluded prometheus.Counter

	// Worker metrics
	workersActive prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithHistogramBuckets sets the buckets for duration histograms (seconds).
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// Engine-local registry so default Go collectors stay out of the output.
var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var manager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global instrument setup
	manager = NewManager(WithRegistry(registry))
}

// NewManager creates and registers all instruments.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		subsystem: defaultSubsystem,
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		}
	}

	m.iterationsCompleted = prometheus.NewCounter(factory(
		"bootstrap_iterations_completed_total", "Bootstrap iterations evaluated successfully."))
	m.iterationsSkipped = prometheus.NewCounter(factory(
		"bootstrap_iterations_skipped_total", "Bootstrap iterations skipped as non-evaluable."))
	m.subjectsExcluded = prometheus.NewCounter(factory(
		"cohort_subjects_excluded_total", "Subjects excluded during cohort construction."))

	m.iterationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bootstrap_iteration_duration_seconds", Help: "Duration of one bootstrap iteration.",
		Buckets: m.buckets,
	})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "run_duration_seconds", Help: "Duration of a full validation run.",
		Buckets: m.buckets,
	})

	m.cohortSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "cohort_size", Help: "Subjects in the active cohort.",
	})
	m.workersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "workers_active", Help: "Bootstrap workers currently running.",
	})

	m.registry.MustRegister(
		m.iterationsCompleted,
		m.iterationsSkipped,
		m.subjectsExcluded,
		m.iterationDuration,
		m.runDuration,
		m.cohortSize,
		m.workersActive,
	)
	return m
}

// Registry returns the engine-local gatherer for scraping or dumping.
func Registry() *prometheus.Registry { return registry }

// Package-level helpers against the singleton manager.

// RecordIterationCompleted counts one evaluated bootstrap iteration.
func RecordIterationCompleted() { manager.iterationsCompleted.Inc() }

// RecordIterationSkipped counts one skipped bootstrap iteration.
func RecordIterationSkipped() { manager.iterationsSkipped.Inc() }

// RecordSubjectExcluded counts one subject dropped at load time.
func RecordSubjectExcluded() { manager.subjectsExcluded.Inc() }

// RecordIterationDuration observes the duration of one iteration in seconds.
func RecordIterationDuration(seconds float64) { manager.iterationDuration.Observe(seconds) }

// RecordRunDuration observes the duration of a full run in seconds.
func RecordRunDuration(seconds float64) { manager.runDuration.Observe(seconds) }

// UpdateCohortSize sets the active cohort size gauge.
func UpdateCohortSize(n int) { manager.cohortSize.Set(float64(n)) }

// UpdateWorkersActive sets the running worker gauge.
func UpdateWorkersActive(n int) { manager.workersActive.Set(float64(n)) }
