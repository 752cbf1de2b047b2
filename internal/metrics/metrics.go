package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabinbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	snapshotRebuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabinbook",
			Name:      "snapshot_rebuilds_total",
			Help:      "Month snapshot rebuilds by trigger (initial, month_change, live_change, manual).",
		},
		[]string{"trigger"},
	)

	bookingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabinbook",
			Name:      "booking_operations_total",
			Help:      "Booking operations by type and result.",
		},
		[]string{"operation", "result"},
	)

	bulkTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabinbook",
			Name:      "bulk_day_transitions_total",
			Help:      "Days transitioned by admin bulk actions.",
		},
		[]string{"action"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, snapshotRebuilds, bookingOps, bulkTransitions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSnapshotRebuild increments the rebuild counter for a trigger label.
func IncSnapshotRebuild(trigger string) {
	snapshotRebuilds.WithLabelValues(trigger).Inc()
}

// IncBookingOp increments the booking operation counter.
func IncBookingOp(operation, result string) {
	bookingOps.WithLabelValues(operation, result).Inc()
}

// AddBulkTransitions adds the number of days changed by a bulk action.
func AddBulkTransitions(action string, days int) {
	bulkTransitions.WithLabelValues(action).Add(float64(days))
}
