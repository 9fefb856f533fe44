package converter

import (
	"time"

	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/domain/entity"
)

// SlotsToGridResponse groups a date-major slot list by day. today only
// drives the month title.
func SlotsToGridResponse(slots []entity.SlotAvailability, today time.Time, locale Locale) *dto.SlotGridResponse {
	resp := &dto.SlotGridResponse{
		Title: locale.MonthTitle(today),
		Days:  []dto.DaySlotsResponse{},
	}
	if len(slots) == 0 {
		return resp
	}

	resp.From = slots[0].Date
	resp.To = slots[0].Date
	resp.SlotMinutes = slots[0].DurationMinutes

	for _, s := range slots {
		if s.Date < resp.From {
			resp.From = s.Date
		}
		if s.Date > resp.To {
			resp.To = s.Date
		}

		n := len(resp.Days)
		if n == 0 || resp.Days[n-1].Date != s.Date {
			resp.Days = append(resp.Days, newDay(s.Date, locale))
			n++
		}
		resp.Days[n-1].Slots = append(resp.Days[n-1].Slots, dto.SlotResponse{
			Time:      s.Time,
			DateTime:  s.Key().String(),
			Status:    string(s.Status),
			Available: s.IsFree(),
		})
	}

	return resp
}

func newDay(date string, locale Locale) dto.DaySlotsResponse {
	day := dto.DaySlotsResponse{Date: date, Slots: []dto.SlotResponse{}}
	if t, err := time.Parse(entity.DateLayout, date); err == nil {
		day.DayName = locale.DayName(t.Weekday())
		day.Label = t.Format("02/01")
	}
	return day
}
