package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booking_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slot_booking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Reservations by outcome: created, already_booked, invalid, unavailable
	Reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booking_reservations_total",
			Help: "Reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	SlotListings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slot_booking_slot_listings_total",
			Help: "Slot grid listings served",
		},
	)

	FreeSlots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slot_booking_free_slots",
			Help: "Free slots in the most recently listed window",
		},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_booking_errors_total",
			Help: "Errors by component",
		},
		[]string{"component", "error_type"},
	)
)

const (
	OutcomeCreated       = "created"
	OutcomeAlreadyBooked = "already_booked"
	OutcomeInvalid       = "invalid"
	OutcomeUnavailable   = "unavailable"
)

func RecordReservation(outcome string) {
	Reservations.WithLabelValues(outcome).Inc()
}

func RecordListing(free int) {
	SlotListings.Inc()
	FreeSlots.Set(float64(free))
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
