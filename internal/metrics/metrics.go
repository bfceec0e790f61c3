package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "bookings_created_total",
			Help:      "Created bookings by outcome (confirmed or waitlist).",
		},
		[]string{"outcome"},
	)

	capacityConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "capacity_conflicts_total",
			Help:      "Reservations rejected by the slot guard.",
		},
	)

	ledgerDrift = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "ledger_drift_total",
			Help:      "Slot releases rejected by the capacity guard; should stay at zero.",
		},
	)

	exports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "exports_total",
			Help:      "Excel exports served to the organizer.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, capacityConflicts, ledgerDrift, exports)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBookingCreated counts a created booking by outcome.
func IncBookingCreated(outcome string) {
	bookingsCreated.WithLabelValues(outcome).Inc()
}

// IncCapacityConflict counts a reserve guard rejection.
func IncCapacityConflict() {
	capacityConflicts.Inc()
}

// IncLedgerDrift counts a release guard rejection.
func IncLedgerDrift() {
	ledgerDrift.Inc()
}

// IncExport counts a served Excel export.
func IncExport() {
	exports.Inc()
}
