package entity

// Date and time layouts shared by the grid, the store and the HTTP adapter.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SlotKey identifies a slot: a calendar date and a time of day.
type SlotKey struct {
	Date string // YYYY-MM-DD
	Time string // HH:MM
}

func (k SlotKey) String() string {
	return k.Date + " " + k.Time
}

// Slot is a bookable unit derived from the weekly grid. It is never persisted.
type Slot struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time}
}

// SlotStatus tells whether a slot can still be reserved.
type SlotStatus string

const (
	SlotStatusFree  SlotStatus = "free"
	SlotStatusTaken SlotStatus = "taken"
)

// SlotAvailability pairs a slot with its resolved status.
type SlotAvailability struct {
	Slot
	Status SlotStatus `json:"status"`
}

func (a SlotAvailability) IsFree() bool {
	return a.Status == SlotStatusFree
}
