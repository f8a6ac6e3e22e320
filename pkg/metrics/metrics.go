package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	// AuthEvents counts token lifecycle outcomes, e.g. {"login","success"}.
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication flow outcomes by operation and result.",
		},
		[]string{"operation", "result"},
	)
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Outgoing mails and events by kind and result.",
		},
		[]string{"kind", "result"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
	TokensSwept = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expired_tokens_swept_total",
			Help: "Expired tokens removed by the sweeper.",
		},
		[]string{"kind"},
	)
)

func Register(registry *prometheus.Registry) {
	registry.MustRegister(RequestCount, RequestDuration, AuthEvents, NotificationsSent, RateLimited, TokensSwept)
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Auth records one outcome of a token lifecycle operation.
func Auth(operation, result string) {
	AuthEvents.WithLabelValues(operation, result).Inc()
}

func Notification(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	NotificationsSent.WithLabelValues(kind, result).Inc()
}
