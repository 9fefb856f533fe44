package repository

import (
	"context"
	"errors"

	"slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrConflict is returned by Create when the slot already holds a record
// of the same kind (blocking or placeholder).
var ErrConflict = errors.New("booking conflict")

// BookingStore is the persistence contract the booking core depends on.
type BookingStore interface {
	// FindByDateTime returns the record at the slot, preferring a blocking
	// one over a placeholder. It returns nil, nil when the slot is empty.
	FindByDateTime(ctx context.Context, date, time string) (*entity.Booking, error)
	// Create persists the booking or fails with ErrConflict.
	Create(ctx context.Context, booking *entity.Booking) error
}

// TakenSlotFinder is implemented by stores that can answer a whole window
// in one query.
type TakenSlotFinder interface {
	FindTakenBetween(ctx context.Context, fromDate, toDate string) ([]entity.Booking, error)
}

type BookingRepository interface {
	BookingStore
	TakenSlotFinder
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context, filter *entity.BookingFilter) ([]entity.Booking, error)
	FindBlockingFrom(ctx context.Context, fromDate string, limit, offset int) ([]entity.Booking, error)
	// UpdateStatus moves the booking from one status to another only if it is
	// still in the expected one. Returns affected rows.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error)
	// UpdateCustomer rewrites the customer details of a blocking booking.
	// Returns affected rows.
	UpdateCustomer(ctx context.Context, id uuid.UUID, customer entity.Customer) (int64, error)
}
