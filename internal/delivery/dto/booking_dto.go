package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// ReserveRequest is what the booking form posts. The anti-forgery token
// travels alongside as _token and is checked before the handler runs.
type ReserveRequest struct {
	DateTime string `json:"date_time" form:"date_time"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
}

type CreatePlaceholderRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available booked completed"`
}

// UpdateBookingCustomerRequest corrects the details a visitor submitted.
// Values are sanitized and validated like a reservation.
type UpdateBookingCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BookingFilterRequest struct {
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Status string `json:"status" validate:"omitempty,oneof=available booked completed"`
}

// Response DTOs

type BookingResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReservationResponse is the visitor-facing view of a fresh booking.
type ReservationResponse struct {
	ID       uuid.UUID `json:"id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	DateTime string    `json:"date_time"`
	Status   string    `json:"status"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// BookingEvent is published on the message bus.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
