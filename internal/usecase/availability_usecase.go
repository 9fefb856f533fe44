package usecase

import (
	"context"
	"fmt"

	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/grid"
	"slot-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
)

// Upper bound of concurrent per-slot lookups when the store has no range query.
const defaultLookupParallelism = 8

type AvailabilityUsecase interface {
	Resolve(ctx context.Context, slots []entity.Slot) ([]entity.SlotAvailability, error)
	ListSlots(ctx context.Context, window grid.Window) ([]entity.SlotAvailability, error)
}

type availabilityUsecase struct {
	log         *logrus.Logger
	store       repository.BookingStore
	parallelism int
}

func NewAvailabilityUsecase(log *logrus.Logger, store repository.BookingStore) AvailabilityUsecase {
	return &availabilityUsecase{
		log:         log,
		store:       store,
		parallelism: defaultLookupParallelism,
	}
}

// ListSlots generates the window and tags every slot free or taken.
func (u *availabilityUsecase) ListSlots(ctx context.Context, window grid.Window) ([]entity.SlotAvailability, error) {
	slots, err := grid.Generate(window)
	if err != nil {
		return nil, err
	}
	return u.Resolve(ctx, slots)
}

// Resolve keeps the input order. A placeholder never makes a slot taken, and
// any failed lookup fails the whole call rather than guessing a status.
func (u *availabilityUsecase) Resolve(ctx context.Context, slots []entity.Slot) ([]entity.SlotAvailability, error) {
	if len(slots) == 0 {
		return []entity.SlotAvailability{}, nil
	}

	if finder, ok := u.store.(repository.TakenSlotFinder); ok {
		return u.resolveRange(ctx, finder, slots)
	}
	return u.resolveEach(ctx, slots)
}

func (u *availabilityUsecase) resolveRange(ctx context.Context, finder repository.TakenSlotFinder, slots []entity.Slot) ([]entity.SlotAvailability, error) {
	from, to := slots[0].Date, slots[0].Date
	for _, s := range slots[1:] {
		if s.Date < from {
			from = s.Date
		}
		if s.Date > to {
			to = s.Date
		}
	}

	bookings, err := finder.FindTakenBetween(ctx, from, to)
	if err != nil {
		u.log.Warnf("Failed to find taken slots between %s and %s: %+v", from, to, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	taken := make(map[entity.SlotKey]bool, len(bookings))
	for i := range bookings {
		if bookings[i].IsBlocking() {
			taken[bookings[i].Slot()] = true
		}
	}

	result := make([]entity.SlotAvailability, len(slots))
	for i, s := range slots {
		result[i] = tag(s, taken[s.Key()])
	}
	return result, nil
}

func (u *availabilityUsecase) resolveEach(ctx context.Context, slots []entity.Slot) ([]entity.SlotAvailability, error) {
	mapper := iter.Mapper[entity.Slot, entity.SlotAvailability]{MaxGoroutines: u.parallelism}

	result, err := mapper.MapErr(slots, func(s *entity.Slot) (entity.SlotAvailability, error) {
		booking, err := u.store.FindByDateTime(ctx, s.Date, s.Time)
		if err != nil {
			return entity.SlotAvailability{}, fmt.Errorf("slot %s: %w", s.Key(), err)
		}
		return tag(*s, booking != nil && booking.IsBlocking()), nil
	})
	if err != nil {
		u.log.Warnf("Failed to resolve slot availability: %+v", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return result, nil
}

func tag(s entity.Slot, taken bool) entity.SlotAvailability {
	status := entity.SlotStatusFree
	if taken {
		status = entity.SlotStatusTaken
	}
	return entity.SlotAvailability{Slot: s, Status: status}
}
