package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roicrop_backend_requests_total",
		Help: "Total number of backend requests, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roicrop_backend_request_duration_seconds",
		Help:    "Duration of backend requests",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"endpoint"})

	PreviewCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roicrop_preview_cache_total",
		Help: "Preview lookups served from the session cache or the backend",
	}, []string{"result"})

	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roicrop_session_transitions_total",
		Help: "Capture session status transitions, by target status",
	}, []string{"status"})
)

// Request outcomes
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)
