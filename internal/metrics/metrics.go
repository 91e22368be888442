// Package metrics exposes booking counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings committed",
		},
	)

	bookingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_failures_total",
			Help: "Rejected booking attempts by reason",
		},
		[]string{"reason"},
	)

	bookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Bookings cancelled",
		},
	)

	slotRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_rejections_total",
			Help: "Rejected slot writes by reason",
		},
		[]string{"reason"},
	)

	seatsPerBooking = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_seats_per_request",
			Help:    "Number of seats in committed bookings",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
)

func BookingCreated(seats int) {
	bookingsCreated.Inc()
	seatsPerBooking.Observe(float64(seats))
}

func BookingFailed(reason string) {
	bookingFailures.WithLabelValues(reason).Inc()
}

func BookingCancelled() {
	bookingsCancelled.Inc()
}

func SlotRejected(reason string) {
	slotRejections.WithLabelValues(reason).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
