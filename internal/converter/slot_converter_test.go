package converter

import (
	"testing"
	"time"

	"slot-booking/internal/domain/entity"
)

func availability(date, tm string, status entity.SlotStatus) entity.SlotAvailability {
	return entity.SlotAvailability{
		Slot:   entity.Slot{Date: date, Time: tm, DurationMinutes: 30},
		Status: status,
	}
}

func TestSlotsToGridResponse_GroupsByDay(t *testing.T) {
	slots := []entity.SlotAvailability{
		availability("2024-06-03", "09:00", entity.SlotStatusFree),
		availability("2024-06-03", "09:30", entity.SlotStatusTaken),
		availability("2024-06-04", "09:00", entity.SlotStatusFree),
	}
	today := time.Date(2024, time.June, 3, 7, 0, 0, 0, time.UTC)

	resp := SlotsToGridResponse(slots, today, LocaleFor("it"))

	if resp.Title != "Giugno 2024" {
		t.Errorf("expected title Giugno 2024, got %q", resp.Title)
	}
	if resp.From != "2024-06-03" || resp.To != "2024-06-04" || resp.SlotMinutes != 30 {
		t.Errorf("unexpected range %s..%s (%d min)", resp.From, resp.To, resp.SlotMinutes)
	}
	if len(resp.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(resp.Days))
	}

	monday := resp.Days[0]
	if monday.DayName != "Lunedì" || monday.Label != "03/06" {
		t.Errorf("expected Lunedì 03/06, got %s %s", monday.DayName, monday.Label)
	}
	if len(monday.Slots) != 2 {
		t.Fatalf("expected 2 slots on Monday, got %d", len(monday.Slots))
	}
	if !monday.Slots[0].Available || monday.Slots[1].Available {
		t.Errorf("expected free then taken, got %+v", monday.Slots)
	}
	if monday.Slots[1].DateTime != "2024-06-03 09:30" || monday.Slots[1].Status != "taken" {
		t.Errorf("unexpected slot %+v", monday.Slots[1])
	}

	if resp.Days[1].DayName != "Martedì" {
		t.Errorf("expected Martedì, got %s", resp.Days[1].DayName)
	}
}

func TestSlotsToGridResponse_Empty(t *testing.T) {
	resp := SlotsToGridResponse(nil, time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), LocaleFor("en"))

	if resp.Title != "December 2024" {
		t.Errorf("expected December 2024, got %q", resp.Title)
	}
	if resp.Days == nil || len(resp.Days) != 0 {
		t.Errorf("expected an empty day list, got %v", resp.Days)
	}
}

func TestLocaleFor(t *testing.T) {
	cases := []struct {
		code string
		want string // Monday
	}{
		{"it", "Lunedì"},
		{"it_IT", "Lunedì"},
		{"IT-ch", "Lunedì"},
		{"en", "Monday"},
		{"en-GB", "Monday"},
		{"fr", "Monday"},
		{"", "Monday"},
	}

	for _, tc := range cases {
		if got := LocaleFor(tc.code).DayName(time.Monday); got != tc.want {
			t.Errorf("LocaleFor(%q).DayName(Monday) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
