package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/grid"
	"slot-booking/internal/repository"
	"slot-booking/internal/testutil"
)

// lookupStore answers FindByDateTime from a map and has no range query, so
// the resolver falls back to per-slot lookups.
type lookupStore struct {
	bookings map[entity.SlotKey]*entity.Booking
	failOn   entity.SlotKey
	calls    atomic.Int32
}

func (s *lookupStore) FindByDateTime(_ context.Context, date, tm string) (*entity.Booking, error) {
	s.calls.Add(1)
	key := entity.SlotKey{Date: date, Time: tm}
	if key == s.failOn {
		return nil, errors.New("read timeout")
	}
	return s.bookings[key], nil
}

func (s *lookupStore) Create(context.Context, *entity.Booking) error {
	return errors.New("read only")
}

func testWindow(weeks int) grid.Window {
	return grid.Window{
		ReferenceDate: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		WeekCount:     weeks,
		Template:      testTemplate,
	}
}

func statusOf(result []entity.SlotAvailability, date, tm string) entity.SlotStatus {
	for _, a := range result {
		if a.Date == date && a.Time == tm {
			return a.Status
		}
	}
	return ""
}

func TestListSlots_RangeQuery(t *testing.T) {
	ctx := context.Background()
	store := repository.NewBookingRepository(testutil.SetupTestDB(t))

	seed := []*entity.Booking{
		{Date: "2024-06-03", Time: "09:00", Status: entity.BookingStatusBooked, CustomerName: "A"},
		{Date: "2024-06-04", Time: "10:30", Status: entity.BookingStatusCompleted, CustomerName: "B"},
		{Date: "2024-06-05", Time: "11:00", Status: entity.BookingStatusAvailable},
		// outside the window
		{Date: "2024-06-17", Time: "09:00", Status: entity.BookingStatusBooked, CustomerName: "C"},
	}
	for _, b := range seed {
		if err := store.Create(ctx, b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	uc := NewAvailabilityUsecase(testutil.Logger(), store)
	result, err := uc.ListSlots(ctx, testWindow(1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result) != 40 {
		t.Fatalf("expected 40 slots, got %d", len(result))
	}
	if got := statusOf(result, "2024-06-03", "09:00"); got != entity.SlotStatusTaken {
		t.Errorf("expected booked slot taken, got %s", got)
	}
	if got := statusOf(result, "2024-06-04", "10:30"); got != entity.SlotStatusTaken {
		t.Errorf("expected completed slot taken, got %s", got)
	}
	if got := statusOf(result, "2024-06-05", "11:00"); got != entity.SlotStatusFree {
		t.Errorf("expected placeholder slot free, got %s", got)
	}

	taken := 0
	for _, a := range result {
		if !a.IsFree() {
			taken++
		}
	}
	if taken != 2 {
		t.Errorf("expected 2 taken slots, got %d", taken)
	}
}

func TestResolve_PerSlotLookups(t *testing.T) {
	ctx := context.Background()
	store := &lookupStore{bookings: map[entity.SlotKey]*entity.Booking{
		{Date: "2024-06-03", Time: "09:30"}: {Status: entity.BookingStatusBooked},
		{Date: "2024-06-03", Time: "10:00"}: {Status: entity.BookingStatusAvailable},
	}}

	slots, err := grid.Generate(testWindow(1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	uc := NewAvailabilityUsecase(testutil.Logger(), store)
	first, err := uc.Resolve(ctx, slots)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if int(store.calls.Load()) != len(slots) {
		t.Errorf("expected one lookup per slot, got %d for %d slots", store.calls.Load(), len(slots))
	}

	for i := range slots {
		if first[i].Slot != slots[i] {
			t.Fatalf("expected input order to be kept at %d: %v vs %v", i, first[i].Slot, slots[i])
		}
	}
	if got := statusOf(first, "2024-06-03", "09:30"); got != entity.SlotStatusTaken {
		t.Errorf("expected booked slot taken, got %s", got)
	}
	if got := statusOf(first, "2024-06-03", "10:00"); got != entity.SlotStatusFree {
		t.Errorf("expected placeholder slot free, got %s", got)
	}

	second, err := uc.Resolve(ctx, slots)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical results without writes, differ at %d", i)
		}
	}
}

func TestResolve_LookupFailureFailsListing(t *testing.T) {
	store := &lookupStore{failOn: entity.SlotKey{Date: "2024-06-05", Time: "12:00"}}

	slots, err := grid.Generate(testWindow(1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	uc := NewAvailabilityUsecase(testutil.Logger(), store)
	result, err := uc.Resolve(context.Background(), slots)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no partial result, got %d slots", len(result))
	}
}

func TestResolve_Empty(t *testing.T) {
	uc := NewAvailabilityUsecase(testutil.Logger(), &lookupStore{})

	result, err := uc.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Errorf("expected an empty, non-nil result, got %v", result)
	}
}

func TestListSlots_InvalidWindow(t *testing.T) {
	uc := NewAvailabilityUsecase(testutil.Logger(), &lookupStore{})

	w := testWindow(0)
	if _, err := uc.ListSlots(context.Background(), w); !errors.Is(err, grid.ErrInvalidWeekCount) {
		t.Errorf("expected ErrInvalidWeekCount, got %v", err)
	}
}
