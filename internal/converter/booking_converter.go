package converter

import (
	"time"

	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:            booking.ID,
		Title:         booking.Title(),
		Date:          booking.Date,
		Time:          booking.Time,
		Status:        string(booking.Status),
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		CustomerPhone: booking.CustomerPhone,
		CreatedAt:     booking.CreatedAt,
		UpdatedAt:     booking.UpdatedAt,
	}
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}

// BookingToReservation keeps customer details out of the public response.
func BookingToReservation(booking *entity.Booking) *dto.ReservationResponse {
	if booking == nil {
		return nil
	}

	return &dto.ReservationResponse{
		ID:       booking.ID,
		Date:     booking.Date,
		Time:     booking.Time,
		DateTime: booking.Slot().String(),
		Status:   string(booking.Status),
	}
}

func BookingToEvent(booking *entity.Booking, prev entity.BookingStatus, at time.Time) dto.BookingEvent {
	return dto.BookingEvent{
		BookingID:  booking.ID,
		Date:       booking.Date,
		Time:       booking.Time,
		Status:     string(booking.Status),
		PrevStatus: string(prev),
		OccurredAt: at.UTC(),
	}
}
