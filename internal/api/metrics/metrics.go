// Package metrics defines the custom Prometheus metrics of the identity
// service. Metrics are registered with the default registry on import;
// HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// Outcome label values shared by the registration and login counters.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: success, duplicate, invalid or error
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: success, rejected or error. Rejections are not split by cause.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokensIssuedTotal counts bearer tokens handed out.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued.",
	},
)

// ── Login event pipeline ──────────────────────────────────────────────────────

// LoginEventsQueueDepth tracks pending events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var LoginEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_events_queue_depth",
		Help:      "Current number of login events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// LoginEventsDroppedTotal counts events discarded because a worker queue was full or closed.
var LoginEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_events_dropped_total",
		Help:      "Total number of login events dropped before persistence.",
	},
)

// LoginEventsErrorsTotal counts events the repository failed to persist.
var LoginEventsErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_events_errors_total",
		Help:      "Total number of login events that failed to persist.",
	},
)
