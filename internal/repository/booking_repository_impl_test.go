package repository

import (
	"context"
	"errors"
	"testing"

	"slot-booking/internal/domain/entity"
	domainRepo "slot-booking/internal/domain/repository"
	"slot-booking/internal/testutil"

	"github.com/google/uuid"
)

func newBooking(date, tm string, status entity.BookingStatus) *entity.Booking {
	return &entity.Booking{
		Date:          date,
		Time:          tm,
		Status:        status,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+39 333 1234567",
	}
}

func TestBookingRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	b := newBooking("2024-06-03", "09:00", entity.BookingStatusBooked)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if b.ID == uuid.Nil {
		t.Fatal("expected an id to be assigned")
	}

	found, err := repo.FindByDateTime(ctx, "2024-06-03", "09:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found == nil || found.ID != b.ID {
		t.Fatalf("expected booking %s, got %+v", b.ID, found)
	}
	if found.CustomerEmail != "ada@example.com" {
		t.Errorf("expected email to round trip, got %q", found.CustomerEmail)
	}

	byID, err := repo.FindByID(ctx, b.ID)
	if err != nil || byID == nil {
		t.Fatalf("expected booking by id, got %+v, %v", byID, err)
	}
}

func TestBookingRepository_FindByDateTime_Empty(t *testing.T) {
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	found, err := repo.FindByDateTime(context.Background(), "2024-06-03", "09:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for an empty slot, got %+v", found)
	}
}

func TestBookingRepository_Create_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	if err := repo.Create(ctx, newBooking("2024-06-03", "09:00", entity.BookingStatusBooked)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := repo.Create(ctx, newBooking("2024-06-03", "09:00", entity.BookingStatusBooked))
	if !errors.Is(err, domainRepo.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// completed also blocks
	err = repo.Create(ctx, newBooking("2024-06-03", "09:00", entity.BookingStatusCompleted))
	if !errors.Is(err, domainRepo.ErrConflict) {
		t.Fatalf("expected ErrConflict for a completed duplicate, got %v", err)
	}

	if err := repo.Create(ctx, newBooking("2024-06-03", "09:30", entity.BookingStatusBooked)); err != nil {
		t.Errorf("expected the next slot to be free, got %v", err)
	}
}

func TestBookingRepository_PlaceholderCoexistsWithBooking(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	placeholder := newBooking("2024-06-04", "10:00", entity.BookingStatusAvailable)
	if err := repo.Create(ctx, placeholder); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.Create(ctx, newBooking("2024-06-04", "10:00", entity.BookingStatusAvailable)); !errors.Is(err, domainRepo.ErrConflict) {
		t.Fatalf("expected a second placeholder to conflict, got %v", err)
	}

	booked := newBooking("2024-06-04", "10:00", entity.BookingStatusBooked)
	if err := repo.Create(ctx, booked); err != nil {
		t.Fatalf("expected a booking over a placeholder to succeed, got %v", err)
	}

	found, err := repo.FindByDateTime(ctx, "2024-06-04", "10:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found == nil || found.ID != booked.ID {
		t.Errorf("expected the blocking booking to be preferred, got %+v", found)
	}
}

func TestBookingRepository_FindTakenBetween(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	seed := []*entity.Booking{
		newBooking("2024-06-02", "09:00", entity.BookingStatusBooked),    // before range
		newBooking("2024-06-03", "09:00", entity.BookingStatusBooked),    // taken
		newBooking("2024-06-05", "11:30", entity.BookingStatusCompleted), // taken
		newBooking("2024-06-06", "10:00", entity.BookingStatusAvailable), // placeholder
		newBooking("2024-06-08", "09:00", entity.BookingStatusBooked),    // after range
	}
	for _, b := range seed {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("seed %s %s: %v", b.Date, b.Time, err)
		}
	}

	taken, err := repo.FindTakenBetween(ctx, "2024-06-03", "2024-06-07")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(taken) != 2 {
		t.Fatalf("expected 2 taken bookings, got %d", len(taken))
	}
	if taken[0].Date != "2024-06-03" || taken[1].Date != "2024-06-05" {
		t.Errorf("unexpected bookings: %+v", taken)
	}
}

func TestBookingRepository_FindAll_Filter(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	for _, b := range []*entity.Booking{
		newBooking("2024-06-03", "09:00", entity.BookingStatusBooked),
		newBooking("2024-06-04", "09:00", entity.BookingStatusAvailable),
		newBooking("2024-06-05", "09:00", entity.BookingStatusCompleted),
	} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := repo.FindAll(ctx, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d (%v)", len(all), err)
	}

	filtered, err := repo.FindAll(ctx, &entity.BookingFilter{FromDate: "2024-06-04", Status: entity.BookingStatusAvailable})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(filtered) != 1 || filtered[0].Date != "2024-06-04" {
		t.Errorf("expected only the placeholder, got %+v", filtered)
	}

	blocking, err := repo.FindBlockingFrom(ctx, "2024-06-01", 10, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(blocking) != 2 {
		t.Errorf("expected 2 blocking bookings, got %d", len(blocking))
	}
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	b := newBooking("2024-06-03", "09:00", entity.BookingStatusBooked)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := repo.UpdateStatus(ctx, b.ID, entity.BookingStatusBooked, entity.BookingStatusCompleted)
	if err != nil || rows != 1 {
		t.Fatalf("expected 1 affected row, got %d (%v)", rows, err)
	}

	// second attempt finds it no longer booked
	rows, err = repo.UpdateStatus(ctx, b.ID, entity.BookingStatusBooked, entity.BookingStatusCompleted)
	if err != nil || rows != 0 {
		t.Fatalf("expected 0 affected rows, got %d (%v)", rows, err)
	}

	found, _ := repo.FindByID(ctx, b.ID)
	if found.Status != entity.BookingStatusCompleted {
		t.Errorf("expected completed, got %s", found.Status)
	}
}

func TestBookingRepository_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(testutil.SetupTestDB(t))

	booked := newBooking("2024-06-04", "09:00", entity.BookingStatusBooked)
	placeholder := newBooking("2024-06-04", "09:30", entity.BookingStatusAvailable)
	for _, b := range []*entity.Booking{booked, placeholder} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	customer := entity.Customer{Name: "Grace Hopper", Email: "grace@example.com", Phone: "555 0100"}
	rows, err := repo.UpdateCustomer(ctx, booked.ID, customer)
	if err != nil || rows != 1 {
		t.Fatalf("expected 1 row, got %d, %v", rows, err)
	}

	got, _ := repo.FindByID(ctx, booked.ID)
	if got.CustomerName != customer.Name || got.CustomerEmail != customer.Email || got.CustomerPhone != customer.Phone {
		t.Errorf("expected customer to be updated, got %+v", got)
	}

	rows, err = repo.UpdateCustomer(ctx, placeholder.ID, customer)
	if err != nil || rows != 0 {
		t.Errorf("expected placeholders to be left alone, got %d, %v", rows, err)
	}
}
