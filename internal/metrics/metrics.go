package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "campus_share"

const (
	LabelKind    = "kind"
	LabelOp      = "op"
	LabelOutcome = "outcome"
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelStatus  = "status"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

var PoolOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "pool_operations_total",
		Help:      "Pool operations by kind, operation and outcome",
		Namespace: Namespace,
	},
	[]string{LabelKind, LabelOp, LabelOutcome},
)

var PoolRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "pool_rejections_total",
		Help:      "Guard rejections by kind and reason",
		Namespace: Namespace,
	},
	[]string{LabelKind, "reason"},
)

var PoolsExpired = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "pools_expired_total",
		Help:      "Pools flipped to expired by the sweeper",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var SweepRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "sweep_runs_total",
		Help:      "Expiry sweep runs by kind and status",
		Namespace: Namespace,
	},
	[]string{LabelKind, LabelStatus},
)

var SweepDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      "sweep_duration_seconds",
		Help:      "Expiry sweep duration",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelKind},
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
		Namespace: Namespace,
	},
	[]string{LabelMethod, LabelRoute, LabelStatus},
)

var HTTPDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelMethod, LabelRoute},
)

func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func ObservePoolOperation(kind, op, outcome string) {
	PoolOperations.WithLabelValues(kind, op, outcome).Inc()
}

func ObserveRejection(kind, reason string) {
	PoolRejections.WithLabelValues(kind, reason).Inc()
}

func ObserveSweep(kind string, expired int64, d time.Duration, err error) {
	status := OutcomeOK
	if err != nil {
		status = OutcomeError
	}
	SweepRuns.WithLabelValues(kind, status).Inc()
	if expired > 0 {
		PoolsExpired.WithLabelValues(kind).Add(float64(expired))
	}
	SweepDuration.WithLabelValues(kind).Observe(d.Seconds())
}
