// Package metrics defines and registers all custom Prometheus metrics for the
// calling API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register with the default Prometheus registry at init time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "calling"

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDraftedTotal counts notification drafts created.
// Label:
//   - type: "call-invite" or "message"
var NotificationsDraftedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_drafted_total",
		Help:      "Total number of notification drafts created, by type.",
	},
	[]string{"type"},
)

// NotificationsSentTotal counts drafts that reached the device.
// Label:
//   - type: "call-invite" or "message"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered successfully, by type.",
	},
	[]string{"type"},
)

// NotificationsFailedTotal counts drafts whose delivery failed.
// Label:
//   - type: "call-invite" or "message"
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of notifications that failed delivery, by type.",
	},
	[]string{"type"},
)

// PushDeliveryDuration measures how long a single push send takes, dequeue to
// provider response.
// Label:
//   - outcome: "sent" or "failed"
var PushDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "push_delivery_duration_seconds",
		Help:      "Duration of push delivery from dequeue to provider response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"outcome"},
)

// NotificationsQueueDepth tracks the current number of drafts waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of drafts pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "not_activated", or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successfully registered accounts.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)
