package entity

// BookingFilter is a domain-level filter for querying bookings.
// Used by repository layer to avoid coupling with delivery DTOs.
type BookingFilter struct {
	FromDate string // Format: YYYY-MM-DD
	ToDate   string // Format: YYYY-MM-DD
	Status   BookingStatus
}
