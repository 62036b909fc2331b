package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"goaltrack-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goaltrack_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goaltrack_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Company operation counter
	CompanyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_company_operations_total",
			Help: "Total number of company operations",
		},
		[]string{"operation"}, // operation can be "create", "select", "rename", etc.
	)

	// Record operation counter for the domain collections
	RecordOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_record_operations_total",
			Help: "Total number of domain record operations",
		},
		[]string{"collection", "operation"}, // collection: sales, goals, holidays, working_days, members
	)

	// Access denial counter
	AccessDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_access_denied_total",
			Help: "Total number of refused operations by reason",
		},
		[]string{"reason"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_errors_total",
			Help: "Total number of authentication and request errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// Assistant request counter
	AssistantRequestCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goaltrack_assistant_requests_total",
			Help: "Total number of assistant questions asked",
		},
	)

	// Assistant failure counter
	AssistantErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goaltrack_assistant_errors_total",
			Help: "Total number of assistant failures by type",
		},
		[]string{"type"}, // "overloaded", "model_error", "interpretation_error"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goaltrack_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goaltrack_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)

	// Assistant round-trip duration, dominated by model latency and backoff
	AssistantDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goaltrack_assistant_duration_seconds",
			Help:    "Duration of assistant answers in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 90},
		},
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goaltrack_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goaltrack_info",
			Help: "Information about the goal tracking service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(CompanyOperationCounter)
	prometheus.MustRegister(RecordOperationCounter)
	prometheus.MustRegister(AccessDeniedCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AssistantRequestCounter)
	prometheus.MustRegister(AssistantErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(AssistantDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
}

// InitMetrics sets the initial service info
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication or request error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAccessDenied records a refused operation by reason
func RecordAccessDenied(reason string) {
	AccessDeniedCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordAssistantError records an assistant failure by type
func RecordAssistantError(errorType string) {
	AssistantErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordCompanyOperation records a company operation by type
func RecordCompanyOperation(operation string) {
	CompanyOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordOperation records a domain record operation
func RecordOperation(collection, operation string) {
	RecordOperationCounter.With(prometheus.Labels{
		"collection": collection,
		"operation":  operation,
	}).Inc()
}
