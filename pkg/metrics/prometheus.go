package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the picker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Picker metrics
	recommendations prometheus.Counter
	dataGaps        prometheus.Counter
	exclusions      *prometheus.CounterVec
	rankingLatency  prometheus.Histogram
	eligiblePlayers prometheus.Gauge
	lockedPlayers   prometheus.Gauge

	// Planner metrics
	plans          prometheus.Counter
	planDays       prometheus.Counter
	simulatedPicks prometheus.Counter
	planLatency    prometheus.Histogram

	// Pick history
	picksRecorded  prometheus.Counter
	picksDuplicate prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errors *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPause        prometheus.Gauge

	// Dataset
	scheduledDates prometheus.Gauge
	knownPlayers   prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it before GetRegistry is handed to an HTTP handler.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ttfl",
		subsystem:        "picker",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recommendations = m.counter("recommendations_total", "Total number of ranked dates served")
	m.dataGaps = m.counter("data_gaps_total", "Total number of dates without any eligible player")
	m.exclusions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "exclusions_total",
		Help: "Total number of rostered players left out of a ranking, by reason",
	}, []string{"reason"})
	m.rankingLatency = m.histogram("ranking_duration_milliseconds", "Time spent ranking one date in milliseconds")
	m.eligiblePlayers = m.gauge("eligible_players", "Number of ranked players in the latest recommendation")
	m.lockedPlayers = m.gauge("locked_players", "Number of players locked on the latest ranked date")

	m.plans = m.counter("plans_total", "Total number of multi-day plans built")
	m.planDays = m.counter("plan_days_total", "Total number of days planned")
	m.simulatedPicks = m.counter("simulated_picks_total", "Total number of picks applied to working ledgers")
	m.planLatency = m.histogram("plan_duration_milliseconds", "Time spent building a plan in milliseconds")

	m.picksRecorded = m.counter("picks_recorded_total", "Total number of picks written to history")
	m.picksDuplicate = m.counter("picks_duplicate_total", "Total number of picks already present in history")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_total",
		Help: "Total number of errors by component and type",
	}, []string{"component", "type"})

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPause = m.gauge("system_gc_pause_milliseconds", "Average GC pause in milliseconds")

	m.scheduledDates = m.gauge("dataset_scheduled_dates", "Number of dates with at least one game")
	m.knownPlayers = m.gauge("dataset_players", "Number of players with at least one game log")
}

// RecordRecommendation counts one ranked date and the time it took.
func RecordRecommendation(latencyMs float64, eligible, locked int) {
	globalManager.recommendations.Inc()
	globalManager.rankingLatency.Observe(latencyMs)
	globalManager.eligiblePlayers.Set(float64(eligible))
	globalManager.lockedPlayers.Set(float64(locked))
}

// RecordDataGap counts a date without eligible players.
func RecordDataGap() {
	globalManager.dataGaps.Inc()
}

// RecordExclusions adds n exclusions for reason.
func RecordExclusions(reason string, n int) {
	if n > 0 {
		globalManager.exclusions.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordPlan counts a built plan.
func RecordPlan(days, picks int, latencyMs float64) {
	globalManager.plans.Inc()
	globalManager.planDays.Add(float64(days))
	globalManager.simulatedPicks.Add(float64(picks))
	globalManager.planLatency.Observe(latencyMs)
}

// RecordPick counts a pick written to history, or an already known one.
func RecordPick(duplicate bool) {
	if duplicate {
		globalManager.picksDuplicate.Inc()
		return
	}
	globalManager.picksRecorded.Inc()
}

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError counts an error raised by component.
func RecordError(component, errorType string) {
	globalManager.errors.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime updates the average GC pause gauge.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Set(ms)
}

// UpdateDatasetSize updates the dataset gauges.
func UpdateDatasetSize(dates, players int) {
	globalManager.scheduledDates.Set(float64(dates))
	globalManager.knownPlayers.Set(float64(players))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
