package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder backed by Prometheus collectors.
type PrometheusRecorder struct {
	gatewayRequests *prometheus.CounterVec
	backendErrors   *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors
// with the given registry.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Inbound requests handled, by route and response status.",
		}, []string{"route", "status"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_backend_errors_total",
			Help: "Failed backend calls, by route and failure kind.",
		}, []string{"route", "kind"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_backend_duration_seconds",
			Help:    "Backend call latency in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "Requests rejected by the public rate limiter, by route.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.gatewayRequests,
		r.backendErrors,
		r.backendDuration,
		r.rateLimited,
	)

	return r
}

// IncGatewayRequest records one handled inbound request.
func (r *PrometheusRecorder) IncGatewayRequest(route string, status int) {
	r.gatewayRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// IncBackendError records one failed backend call.
func (r *PrometheusRecorder) IncBackendError(route, kind string) {
	r.backendErrors.WithLabelValues(route, kind).Inc()
}

// ObserveBackendDuration records one backend call duration.
func (r *PrometheusRecorder) ObserveBackendDuration(route string, duration time.Duration) {
	r.backendDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncRateLimited records one rate-limited request.
func (r *PrometheusRecorder) IncRateLimited(route string) {
	r.rateLimited.WithLabelValues(route).Inc()
}
