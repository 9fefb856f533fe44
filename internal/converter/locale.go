package converter

import (
	"strings"
	"time"
)

// Locale holds the words the visitor sees: day and month names and the
// outcome messages of a reservation.
type Locale struct {
	Days   [7]string  // indexed by time.Weekday
	Months [12]string // January first

	BookingConfirmed  string
	BookingFailed     string
	SlotAlreadyBooked string
	InvalidBooking    string
	ServiceBusy       string
}

var locales = map[string]Locale{
	"en": {
		Days:   [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		Months: [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},

		BookingConfirmed:  "Booking confirmed successfully!",
		BookingFailed:     "Error while booking",
		SlotAlreadyBooked: "This slot has already been booked",
		InvalidBooking:    "Please check the booking details",
		ServiceBusy:       "Bookings are temporarily unavailable, please try again",
	},
	"it": {
		Days:   [7]string{"Domenica", "Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato"},
		Months: [12]string{"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno", "Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre"},

		BookingConfirmed:  "Prenotazione confermata con successo!",
		BookingFailed:     "Errore durante la prenotazione",
		SlotAlreadyBooked: "Questo orario è già stato prenotato",
		InvalidBooking:    "Controlla i dati della prenotazione",
		ServiceBusy:       "Prenotazioni temporaneamente non disponibili, riprova",
	},
}

// LocaleFor returns the table for code ("it", "it_IT", "en-GB", ...),
// falling back to English.
func LocaleFor(code string) Locale {
	code = strings.ToLower(code)
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	if l, ok := locales[code]; ok {
		return l
	}
	return locales["en"]
}

func (l Locale) DayName(wd time.Weekday) string {
	return l.Days[wd]
}

// MonthTitle renders "June 2024" style headers.
func (l Locale) MonthTitle(t time.Time) string {
	return l.Months[t.Month()-1] + " " + t.Format("2006")
}
