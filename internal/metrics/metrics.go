// Package metrics defines the custom Prometheus metrics for the clinic API.
// It is the single source of truth for metric names, labels, and help
// strings. All metrics register themselves with the default registry at
// init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// RequestsTotal counts handled HTTP requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern (e.g. "/api/patients/{id}")
//   - status: numeric status code
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// RequestDuration measures request latency per route.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// PermissionDeniedTotal counts requests rejected by the permission layer.
// Label:
//   - permission: the permission that was missing (e.g. "patients.view")
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests denied for a missing permission.",
	},
	[]string{"permission"},
)

// AIRequestsTotal counts calls to upstream AI providers.
// Labels:
//   - provider: provider name (e.g. "deepgram", "openai")
//   - operation: "transcribe", "complete", or "speak"
//   - outcome: "ok", "retry", or "error"
var AIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_requests_total",
		Help:      "Total number of upstream AI provider calls, by outcome.",
	},
	[]string{"provider", "operation", "outcome"},
)

// AIRequestDuration measures upstream AI call latency.
var AIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_request_duration_seconds",
		Help:      "Duration of upstream AI provider calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"provider", "operation"},
)

// NotificationsTotal counts push notification deliveries.
// Label:
//   - status: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of push notifications dispatched, by status.",
	},
	[]string{"status"},
)

// NotifyQueueDepth tracks pending notifications per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// CacheOpsTotal counts cache lookups by result.
// Label:
//   - result: "hit" or "miss"
var CacheOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_ops_total",
		Help:      "Total number of cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
