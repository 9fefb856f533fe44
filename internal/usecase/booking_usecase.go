package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slot-booking/internal/converter"
	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/grid"
	"slot-booking/internal/domain/repository"
	"slot-booking/internal/infrastructure/messaging"
	"slot-booking/internal/service"
	"slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Accepted shapes of the submitted date_time, interpreted in the service location.
var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// SlotClaimer is a fast, non-authoritative guard in front of the store.
type SlotClaimer interface {
	Claim(ctx context.Context, slot entity.SlotKey, bookingID string) (bool, error)
	Confirm(ctx context.Context, slot entity.SlotKey, bookingID string) error
	Release(ctx context.Context, slot entity.SlotKey, bookingID string) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type BookingUsecase interface {
	Reserve(ctx context.Context, dateTime string, customer entity.Customer) (*entity.Booking, error)
}

type bookingUsecase struct {
	log          *logrus.Logger
	store        repository.BookingStore
	validator    *validator.CustomValidator
	template     grid.Template
	loc          *time.Location
	now          func() time.Time
	claimer      SlotClaimer
	publisher    EventPublisher
	auditService service.AuditService
}

// NewBookingUsecase wires the booking service. claimer, publisher and
// auditService may be nil.
func NewBookingUsecase(
	log *logrus.Logger,
	store repository.BookingStore,
	validator *validator.CustomValidator,
	template grid.Template,
	loc *time.Location,
	claimer SlotClaimer,
	publisher EventPublisher,
	auditService service.AuditService,
) BookingUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &bookingUsecase{
		log:          log,
		store:        store,
		validator:    validator,
		template:     template,
		loc:          loc,
		now:          time.Now,
		claimer:      claimer,
		publisher:    publisher,
		auditService: auditService,
	}
}

// Reserve books the slot at dateTime for the customer.
//
// Flow:
// 1. Sanitize and validate customer and date-time, nothing is stored on failure
// 2. Pre-check the store, a blocking record means the slot is gone
// 3. Claim the slot in Redis (when configured)
// 4. Insert the booking; the store's unique index decides concurrent races
// 5. If the insert fails -> compensate: release the claim
func (u *bookingUsecase) Reserve(ctx context.Context, dateTime string, customer entity.Customer) (*entity.Booking, error) {
	customer = sanitizeCustomer(customer)

	fields := map[string]string{}
	if err := u.validator.Validate(&customer); err != nil {
		for field, msg := range u.validator.FormatValidationErrors(err) {
			fields[field] = msg
		}
	}
	slot, err := u.parseSlot(dateTime)
	if err != nil {
		fields["date_time"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	// Step 2: pre-check. Only an optimisation, step 4 is what counts.
	existing, err := u.store.FindByDateTime(ctx, slot.Date, slot.Time)
	if err != nil {
		u.log.Warnf("Failed to look up slot %s: %+v", slot, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if existing != nil && existing.IsBlocking() {
		return nil, ErrSlotAlreadyBooked
	}

	booking := &entity.Booking{
		ID:            uuid.New(),
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        entity.BookingStatusBooked,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
	}

	// Step 3: Redis claim. Redis trouble is not a reason to turn visitors away.
	claimed := false
	if u.claimer != nil {
		ok, err := u.claimer.Claim(ctx, slot, booking.ID.String())
		switch {
		case err != nil:
			u.log.Warnf("Slot claim unavailable for %s, continuing with the store only: %+v", slot, err)
		case !ok:
			return nil, ErrSlotAlreadyBooked
		default:
			claimed = true
		}
	}

	// Step 4: authoritative insert
	if err := u.store.Create(ctx, booking); err != nil {
		if claimed {
			u.releaseClaim(slot, booking.ID.String())
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlotAlreadyBooked
		}
		u.log.Errorf("Failed to insert booking for slot %s: %+v", slot, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if claimed {
		if err := u.claimer.Confirm(ctx, slot, booking.ID.String()); err != nil {
			u.log.Warnf("Failed to confirm claim for slot %s: %+v", slot, err)
		}
	}

	u.afterCommit(ctx, booking)

	u.log.Infof("Booking created: id=%s, slot=%s", booking.ID, slot)
	return booking, nil
}

// parseSlot turns the submitted date-time into a slot key that lies on the
// grid and has not started yet.
func (u *bookingUsecase) parseSlot(raw string) (entity.SlotKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.SlotKey{}, errors.New("date_time is required")
	}

	var at time.Time
	var err error
	for _, layout := range dateTimeLayouts {
		if at, err = time.ParseInLocation(layout, raw, u.loc); err == nil {
			break
		}
	}
	if err != nil {
		return entity.SlotKey{}, errors.New("date_time must look like YYYY-MM-DD HH:MM")
	}

	if !u.template.Contains(at) {
		return entity.SlotKey{}, errors.New("date_time is not a bookable slot")
	}
	if !at.After(u.now().In(u.loc)) {
		return entity.SlotKey{}, errors.New("date_time is in the past")
	}

	return entity.SlotKey{
		Date: at.Format(entity.DateLayout),
		Time: at.Format(entity.TimeLayout),
	}, nil
}

// afterCommit runs the side effects of a committed booking. None of them can
// undo the booking, so failures are only logged.
func (u *bookingUsecase) afterCommit(ctx context.Context, booking *entity.Booking) {
	if u.auditService != nil {
		if err := u.auditService.LogCreate(ctx, entity.AuditActorVisitor, entity.AuditActionBookingCreate,
			"booking", booking.ID.String(), converter.BookingToReservation(booking)); err != nil {
			u.log.Warnf("Failed to audit booking %s: %+v", booking.ID, err)
		}
	}
	if u.publisher != nil {
		event := converter.BookingToEvent(booking, "", u.now())
		if err := u.publisher.PublishJSON(ctx, messaging.RoutingKeyBookingCreated, event); err != nil {
			u.log.Warnf("Failed to publish %s for booking %s: %+v", messaging.RoutingKeyBookingCreated, booking.ID, err)
		}
	}
}

func (u *bookingUsecase) releaseClaim(slot entity.SlotKey, bookingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.claimer.Release(ctx, slot, bookingID); err != nil {
		u.log.Errorf("CRITICAL: Failed to release claim for slot %s after insert failure: %+v", slot, err)
	}
}

// sanitizeCustomer trims the fields and collapses runs of whitespace in
// free text.
func sanitizeCustomer(c entity.Customer) entity.Customer {
	return entity.Customer{
		Name:  strings.Join(strings.Fields(c.Name), " "),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.Join(strings.Fields(c.Phone), " "),
	}
}
