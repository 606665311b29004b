// Package metrics holds the Prometheus collectors shared by the engine, the
// scheduler and the row stores. Collectors register on the default registry
// and are served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cafebook"

var (
	// ReservationsCreated counts confirmed reservations.
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reservation",
		Name:      "created_total",
		Help:      "Reservations appended to the store",
	})

	// ReservationConflicts counts Reserve calls rejected with slot_taken.
	ReservationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reservation",
		Name:      "conflicts_total",
		Help:      "Reserve calls rejected because the slot overlapped",
	})

	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reservation",
		Name:      "cancelled_total",
		Help:      "Reservations deleted by their owner",
	})

	// StoreErrors counts row store failures.
	// Labels: op (fetch, append, update, delete), kind (store_unavailable, store_rejected, index_unknown)
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Row store failures by operation and kind",
	}, []string{"op", "kind"})

	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "ticks_total",
		Help:      "Scheduler ticks that ran",
	})

	SchedulerTicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "ticks_skipped_total",
		Help:      "Scheduler ticks skipped because another tick held the guard",
	})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "sent_total",
		Help:      "Reminder messages delivered",
	})

	ReminderSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "send_failures_total",
		Help:      "Reminder messages the gateway refused",
	})

	ReminderMarkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "mark_failures_total",
		Help:      "Reminders sent but not marked in the store",
	})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "tick_duration_seconds",
		Help:      "Wall time of one scheduler tick",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)
