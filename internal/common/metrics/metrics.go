// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_actions_processed_total",
			Help: "Total number of card actions processed",
		},
		[]string{"action_code"},
	)

	ActionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_actions_failed_total",
			Help: "Total number of card actions that returned an error envelope",
		},
		[]string{"action_code", "error_code"},
	)

	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "insight_action_duration_seconds",
			Help: "Duration of action handling in seconds",
		},
		[]string{"action_code"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_http_requests_total",
			Help: "Total number of HTTP requests by path and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "insight_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"path", "method"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_backend_requests_total",
			Help: "Total number of listing-backend calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)
