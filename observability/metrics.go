package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	SignalsTotal          *prometheus.CounterVec
	CompositeScores       *prometheus.HistogramVec
	SubScores             *prometheus.HistogramVec

	// Analyzer metrics
	AnalyzerDuration    *prometheus.HistogramVec
	AnalyzerErrorsTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// compositeScoreBuckets are histogram buckets for composite scores (0 to 30)
var compositeScoreBuckets = []float64{0, 3, 6, 9, 12, 15, 18, 21, 24, 27, 30}

// subScoreBuckets are histogram buckets for individual scorer results (0 to 10)
var subScoreBuckets = []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Analysis metrics
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of ticker analysis requests",
			},
			[]string{"ticker"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Duration of ticker analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"ticker", "status"},
		),
		AnalysisErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Total number of analysis errors",
			},
			[]string{"ticker", "error_type"},
		),
		SignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "signal",
				Name:      "emitted_total",
				Help:      "Total number of signals emitted by band",
			},
			[]string{"signal"},
		),
		CompositeScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "signal",
				Name:      "composite_score",
				Help:      "Distribution of composite scores",
				Buckets:   compositeScoreBuckets,
			},
			[]string{"signal"},
		),
		SubScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "signal",
				Name:      "sub_score",
				Help:      "Distribution of per-scorer results",
				Buckets:   subScoreBuckets,
			},
			[]string{"scorer"},
		),

		// Analyzer metrics
		AnalyzerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "analyzer",
				Name:      "duration_seconds",
				Help:      "Duration of analyzer runs in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"analyzer"},
		),
		AnalyzerErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "analyzer",
				Name:      "errors_total",
				Help:      "Total number of analyzer errors",
			},
			[]string{"analyzer", "error_type"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "research_machine",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "research_machine",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "research_machine",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordAnalysisRequest records a ticker analysis request
func (m *Metrics) RecordAnalysisRequest(ticker string) {
	m.AnalysisRequestsTotal.WithLabelValues(ticker).Inc()
}

// RecordAnalysisDuration records the duration of a ticker analysis
func (m *Metrics) RecordAnalysisDuration(ticker, status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(ticker, status).Observe(duration.Seconds())
}

// RecordAnalysisError records an analysis error
func (m *Metrics) RecordAnalysisError(ticker, errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(ticker, errorType).Inc()
}

// RecordSignal records an emitted signal and its composite score
func (m *Metrics) RecordSignal(signal string, score float64) {
	m.SignalsTotal.WithLabelValues(signal).Inc()
	m.CompositeScores.WithLabelValues(signal).Observe(score)
}

// RecordSubScore records one scorer's result
func (m *Metrics) RecordSubScore(scorer string, score float64) {
	m.SubScores.WithLabelValues(scorer).Observe(score)
}

// RecordAnalyzerDuration records the duration of an analyzer run
func (m *Metrics) RecordAnalyzerDuration(analyzer string, duration time.Duration) {
	m.AnalyzerDuration.WithLabelValues(analyzer).Observe(duration.Seconds())
}

// RecordAnalyzerError records an analyzer error
func (m *Metrics) RecordAnalyzerError(analyzer, errorType string) {
	m.AnalyzerErrorsTotal.WithLabelValues(analyzer, errorType).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveAnalysis records the analysis duration and status
func (t *Timer) ObserveAnalysis(ticker, status string) {
	t.metrics.RecordAnalysisDuration(ticker, status, time.Since(t.start))
}

// ObserveAnalyzer records the analyzer duration
func (t *Timer) ObserveAnalyzer(analyzer string) {
	t.metrics.RecordAnalyzerDuration(analyzer, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
