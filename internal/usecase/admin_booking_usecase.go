package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"slot-booking/internal/converter"
	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/domain/entity"
	"slot-booking/internal/domain/grid"
	"slot-booking/internal/domain/repository"
	"slot-booking/internal/infrastructure/messaging"
	"slot-booking/internal/service"
	"slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrPlaceholderExists = errors.New("slot already has an availability placeholder")

// AdminBookingUsecase is the operator side of the booking records.
type AdminBookingUsecase interface {
	GetAll(ctx context.Context, req *dto.BookingFilterRequest) (*dto.BookingListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	CreatePlaceholder(ctx context.Context, actor string, req *dto.CreatePlaceholderRequest) (*dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, actor string, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	UpdateCustomer(ctx context.Context, actor string, id uuid.UUID, req *dto.UpdateBookingCustomerRequest) (*dto.BookingResponse, error)
}

type adminBookingUsecase struct {
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	validator    *validator.CustomValidator
	template     grid.Template
	publisher    EventPublisher
	auditService service.AuditService
}

func NewAdminBookingUsecase(
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	validator *validator.CustomValidator,
	template grid.Template,
	publisher EventPublisher,
	auditService service.AuditService,
) AdminBookingUsecase {
	return &adminBookingUsecase{
		log:          log,
		bookingRepo:  bookingRepo,
		validator:    validator,
		template:     template,
		publisher:    publisher,
		auditService: auditService,
	}
}

func (u *adminBookingUsecase) GetAll(ctx context.Context, req *dto.BookingFilterRequest) (*dto.BookingListResponse, error) {
	filter := &entity.BookingFilter{}
	if req != nil {
		if req.From != "" && req.To != "" && req.To < req.From {
			return nil, newFieldError("to", "to must not be before from")
		}
		filter.FromDate = req.From
		filter.ToDate = req.To
		filter.Status = entity.BookingStatus(req.Status)
	}

	bookings, err := u.bookingRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *adminBookingUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.bookingRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	return converter.BookingToResponse(booking), nil
}

// CreatePlaceholder records an "available" entry for a slot. It never makes
// the slot taken.
func (u *adminBookingUsecase) CreatePlaceholder(ctx context.Context, actor string, req *dto.CreatePlaceholderRequest) (*dto.BookingResponse, error) {
	slot, err := u.placeholderSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	existing, err := u.bookingRepo.FindByDateTime(ctx, slot.Date, slot.Time)
	if err != nil {
		u.log.Warnf("Failed to look up slot %s: %+v", slot, err)
		return nil, err
	}
	if existing != nil {
		if existing.IsBlocking() {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, ErrPlaceholderExists
	}

	booking := &entity.Booking{
		Date:   slot.Date,
		Time:   slot.Time,
		Status: entity.BookingStatusAvailable,
	}
	if err := u.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPlaceholderExists
		}
		u.log.Warnf("Failed to create placeholder for %s: %+v", slot, err)
		return nil, err
	}

	resp := converter.BookingToResponse(booking)
	if u.auditService != nil {
		if err := u.auditService.LogCreate(ctx, actor, entity.AuditActionBookingPlaceholder, "booking", booking.ID.String(), resp); err != nil {
			u.log.Warnf("Failed to audit placeholder %s: %+v", booking.ID, err)
		}
	}

	return resp, nil
}

// placeholderSlot canonicalises the submitted date and time ("9:30" becomes
// "09:30") so they match the keys reservations are stored under.
func (u *adminBookingUsecase) placeholderSlot(date, clock string) (entity.SlotKey, error) {
	at, err := time.Parse(entity.DateLayout+" "+entity.TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock))
	if err != nil {
		return entity.SlotKey{}, newFieldError("time", "date and time must look like YYYY-MM-DD HH:MM")
	}
	if !u.template.Contains(at) {
		return entity.SlotKey{}, newFieldError("time", "time is not a slot of the weekly grid")
	}
	return entity.SlotKey{
		Date: at.Format(entity.DateLayout),
		Time: at.Format(entity.TimeLayout),
	}, nil
}

// UpdateStatus advances a booking. The only manual move is booked -> completed.
func (u *adminBookingUsecase) UpdateStatus(ctx context.Context, actor string, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	booking, err := u.bookingRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	next := entity.BookingStatus(req.Status)
	if !booking.Status.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	// conditional update: 0 rows means another operator changed it meanwhile
	rows, err := u.bookingRepo.UpdateStatus(ctx, id, booking.Status, next)
	if err != nil {
		u.log.Warnf("Failed to update booking %s status: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidStatusTransition
	}

	prev := booking.Status
	booking.Status = next
	booking.UpdatedAt = time.Now()

	if u.auditService != nil {
		if err := u.auditService.LogUpdate(ctx, actor, entity.AuditActionBookingStatusUpdate, "booking", id.String(),
			map[string]string{"status": string(prev)}, map[string]string{"status": string(next)}); err != nil {
			u.log.Warnf("Failed to audit status change of booking %s: %+v", id, err)
		}
	}
	if u.publisher != nil {
		event := converter.BookingToEvent(booking, prev, booking.UpdatedAt)
		if err := u.publisher.PublishJSON(ctx, messaging.RoutingKeyBookingStatusChanged, event); err != nil {
			u.log.Warnf("Failed to publish %s for booking %s: %+v", messaging.RoutingKeyBookingStatusChanged, id, err)
		}
	}

	u.log.Infof("Booking %s moved from %s to %s by %s", id, prev, next, actor)
	return converter.BookingToResponse(booking), nil
}

// UpdateCustomer corrects the name, email and phone of a booking. The slot and
// status stay as they are.
func (u *adminBookingUsecase) UpdateCustomer(ctx context.Context, actor string, id uuid.UUID, req *dto.UpdateBookingCustomerRequest) (*dto.BookingResponse, error) {
	customer := sanitizeCustomer(entity.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err := u.validator.Validate(&customer); err != nil {
		return nil, &ValidationError{Fields: u.validator.FormatValidationErrors(err)}
	}

	booking, err := u.bookingRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.IsPlaceholder() {
		return nil, ErrNoCustomerOnPlaceholder
	}

	rows, err := u.bookingRepo.UpdateCustomer(ctx, id, customer)
	if err != nil {
		u.log.Warnf("Failed to update customer of booking %s: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrBookingNotFound
	}

	prev := entity.Customer{Name: booking.CustomerName, Email: booking.CustomerEmail, Phone: booking.CustomerPhone}
	booking.CustomerName = customer.Name
	booking.CustomerEmail = customer.Email
	booking.CustomerPhone = customer.Phone
	booking.UpdatedAt = time.Now()

	if u.auditService != nil {
		if err := u.auditService.LogUpdate(ctx, actor, entity.AuditActionBookingCustomerUpdate, "booking", id.String(), prev, customer); err != nil {
			u.log.Warnf("Failed to audit customer change of booking %s: %+v", id, err)
		}
	}

	u.log.Infof("Booking %s customer updated by %s", id, actor)
	return converter.BookingToResponse(booking), nil
}
