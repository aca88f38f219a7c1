// Package metrics registers the Prometheus instruments for the Kontrib server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContributionsSubmitted counts contributions entering the pending state.
	ContributionsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kontrib_contributions_submitted_total",
		Help: "Number of contributions submitted.",
	})

	// ContributionsDecided counts terminal lifecycle transitions by outcome.
	ContributionsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kontrib_contributions_decided_total",
		Help: "Number of contributions decided, labeled by outcome.",
	}, []string{"outcome"})

	// InvalidTransitions counts confirm/reject attempts that lost the
	// state-machine race or targeted an already-decided contribution.
	InvalidTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kontrib_contribution_invalid_transitions_total",
		Help: "Number of rejected lifecycle transitions on non-pending contributions.",
	})

	// NotificationsCreated counts persisted notification records.
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kontrib_notifications_created_total",
		Help: "Number of notifications persisted.",
	})

	// PushDelivered counts live push messages written to open connections.
	PushDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kontrib_push_delivered_total",
		Help: "Number of live push messages delivered.",
	})

	// PushFailures counts failed writes to live connections. Failures are
	// non-fatal; the persisted notification remains.
	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kontrib_push_failures_total",
		Help: "Number of failed live push writes.",
	})

	// RequestDuration observes HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kontrib_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
