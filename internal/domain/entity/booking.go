package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusAvailable BookingStatus = "available"
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCompleted BookingStatus = "completed"
)

// BlockingStatuses are the statuses that make a slot taken.
var BlockingStatuses = []BookingStatus{BookingStatusBooked, BookingStatusCompleted}

// Booking is the persisted fact that a slot was claimed (or, with status
// available, an administrator placeholder for it).
type Booking struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Date          string        `gorm:"column:booking_date;type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	Time          string        `gorm:"column:booking_time;type:varchar(5);not null" json:"time"`         // HH:MM
	Status        BookingStatus `gorm:"type:varchar(16);not null;default:'booked';index" json:"status"`
	CustomerName  string        `gorm:"type:varchar(100);not null;default:''" json:"customer_name"`
	CustomerEmail string        `gorm:"type:varchar(254);not null;default:''" json:"customer_email"`
	CustomerPhone string        `gorm:"type:varchar(32);not null;default:''" json:"customer_phone"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsBlocking reports whether the booking makes its slot taken.
func (b *Booking) IsBlocking() bool {
	return b.Status.IsBlocking()
}

// IsPlaceholder checks if booking is an administrator placeholder
func (b *Booking) IsPlaceholder() bool {
	return b.Status == BookingStatusAvailable
}

// Slot returns the slot the booking refers to.
func (b *Booking) Slot() SlotKey {
	return SlotKey{Date: b.Date, Time: b.Time}
}

// Title mirrors the label administrators see in the booking list.
func (b *Booking) Title() string {
	if b.IsPlaceholder() {
		return "Available slot - " + b.Date + " " + b.Time
	}
	return "Booking for " + b.CustomerName + " - " + b.Date + " " + b.Time
}

func (s BookingStatus) IsBlocking() bool {
	return s == BookingStatusBooked || s == BookingStatusCompleted
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusAvailable, BookingStatusBooked, BookingStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether an administrator may move a booking from s to next.
// available -> booked only happens through a reservation, never by hand.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingStatusBooked && next == BookingStatusCompleted
}

// Customer holds the visitor details submitted with a reservation.
type Customer struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"required,max=32"`
}
