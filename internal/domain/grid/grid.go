// Package grid enumerates the bookable slots of a weekly template.
//
// Everything here is pure: the same Window always produces the same slots in
// the same order, and nothing touches storage or the clock.
package grid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"slot-booking/internal/domain/entity"
)

var (
	ErrInvalidWeekday     = errors.New("invalid weekday name")
	ErrDuplicateWeekday   = errors.New("duplicate weekday")
	ErrNoWeekdays         = errors.New("at least one weekday is required")
	ErrInvalidWeekCount   = errors.New("week count must be at least 1")
	ErrInvalidHours       = errors.New("start hour must be before end hour, both within 0-24")
	ErrInvalidSlotMinutes = errors.New("slot minutes must be positive and divide the opening hours")
)

// Template is the weekly pattern of bookable slots.
type Template struct {
	Weekdays    []time.Weekday
	StartHour   int
	EndHour     int
	SlotMinutes int
}

// Window is a Template applied to WeekCount weeks starting at ReferenceDate.
type Window struct {
	ReferenceDate time.Time
	WeekCount     int
	Template
}

func (t Template) Validate() error {
	if len(t.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	seen := make(map[time.Weekday]bool, len(t.Weekdays))
	for _, wd := range t.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return ErrInvalidWeekday
		}
		if seen[wd] {
			return fmt.Errorf("%w: %s", ErrDuplicateWeekday, wd)
		}
		seen[wd] = true
	}
	if t.StartHour < 0 || t.EndHour > 24 || t.StartHour >= t.EndHour {
		return ErrInvalidHours
	}
	span := (t.EndHour - t.StartHour) * 60
	if t.SlotMinutes <= 0 || span%t.SlotMinutes != 0 {
		return ErrInvalidSlotMinutes
	}
	return nil
}

func (w Window) Validate() error {
	if w.WeekCount < 1 {
		return ErrInvalidWeekCount
	}
	return w.Template.Validate()
}

// SlotsPerDay is the number of slots between StartHour and EndHour.
func (t Template) SlotsPerDay() int {
	if t.SlotMinutes <= 0 {
		return 0
	}
	return (t.EndHour - t.StartHour) * 60 / t.SlotMinutes
}

// Times lists the slot start times of a day as HH:MM.
func (t Template) Times() []string {
	times := make([]string, 0, t.SlotsPerDay())
	for m := t.StartHour * 60; m < t.EndHour*60; m += t.SlotMinutes {
		times = append(times, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return times
}

// Contains reports whether the given date and time fall on the template.
// It does not look at any window; callers check the date range separately.
func (t Template) Contains(date time.Time) bool {
	if !t.hasWeekday(date.Weekday()) {
		return false
	}
	if date.Second() != 0 || date.Nanosecond() != 0 {
		return false
	}
	minutes := date.Hour()*60 + date.Minute()
	if minutes < t.StartHour*60 || minutes >= t.EndHour*60 {
		return false
	}
	return t.SlotMinutes > 0 && (minutes-t.StartHour*60)%t.SlotMinutes == 0
}

func (t Template) hasWeekday(wd time.Weekday) bool {
	for _, d := range t.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// Dates returns the candidate dates of the window in ascending order.
// Each weekday starts at its first occurrence on or after ReferenceDate, which
// is the same as taking the occurrence in the reference week and moving it one
// week ahead when it already lies in the past.
func (w Window) Dates() []time.Time {
	ref := startOfDay(w.ReferenceDate)
	dates := make([]time.Time, 0, len(w.Weekdays)*w.WeekCount)
	for _, wd := range w.Weekdays {
		first := ref.AddDate(0, 0, (int(wd)-int(ref.Weekday())+7)%7)
		for week := 0; week < w.WeekCount; week++ {
			dates = append(dates, first.AddDate(0, 0, 7*week))
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Generate produces every slot of the window, date-major, times ascending.
func Generate(w Window) ([]entity.Slot, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	dates := w.Dates()
	times := w.Times()
	slots := make([]entity.Slot, 0, len(dates)*len(times))
	for _, d := range dates {
		day := d.Format(entity.DateLayout)
		for _, tm := range times {
			slots = append(slots, entity.Slot{
				Date:            day,
				Time:            tm,
				DurationMinutes: w.SlotMinutes,
			})
		}
	}
	return slots, nil
}

// ParseWeekdays maps English weekday names (full or three letter, any case)
// to time.Weekday, keeping the given order.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		wd, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}
		if seen[wd] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWeekday, wd)
		}
		seen[wd] = true
		out = append(out, wd)
	}
	if len(out) == 0 {
		return nil, ErrNoWeekdays
	}
	return out, nil
}

var weekdayByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 14)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		m[full] = wd
		m[full[:3]] = wd
	}
	return m
}()

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
