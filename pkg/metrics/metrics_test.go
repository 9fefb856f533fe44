package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordReservation(t *testing.T) {
	before := testutil.ToFloat64(Reservations.WithLabelValues(OutcomeAlreadyBooked))

	RecordReservation(OutcomeAlreadyBooked)
	RecordReservation(OutcomeAlreadyBooked)

	if got := testutil.ToFloat64(Reservations.WithLabelValues(OutcomeAlreadyBooked)) - before; got != 2 {
		t.Errorf("expected 2 more already_booked outcomes, got %v", got)
	}
}

func TestRecordListing(t *testing.T) {
	before := testutil.ToFloat64(SlotListings)

	RecordListing(17)

	if got := testutil.ToFloat64(SlotListings) - before; got != 1 {
		t.Errorf("expected one more listing, got %v", got)
	}
	if got := testutil.ToFloat64(FreeSlots); got != 17 {
		t.Errorf("expected 17 free slots, got %v", got)
	}
}
