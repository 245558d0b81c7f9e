package scheduling

import (
	"errors"
	"testing"
	"time"
)

var lima = time.FixedZone("PET", -5*3600)

// 2025-03-09 is a Sunday.
func day(d, h int) time.Time {
	return time.Date(2025, 3, d, h, 0, 0, 0, lima)
}

func TestGenerateSlots_ExpandsRanges(t *testing.T) {
	avail := Availability{
		"Lunes":     {{StartTime: "09:00", EndTime: "12:00"}},
		"Miercoles": {{StartTime: "14:00", EndTime: "16:00"}},
	}
	now := day(9, 8)

	slots := GenerateSlots(avail, day(9, 0), nil, now)
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}

	want := []time.Time{day(10, 9), day(10, 10), day(10, 11), day(12, 14), day(12, 15)}
	for i, w := range want {
		if !slots[i].Start.Equal(w) {
			t.Errorf("slot %d: expected %v, got %v", i, w, slots[i].Start)
		}
		if slots[i].End.Sub(slots[i].Start) != time.Hour {
			t.Errorf("slot %d is not one hour long", i)
		}
	}
	if slots[0].Time != "09:00" {
		t.Errorf("expected label 09:00, got %s", slots[0].Time)
	}
}

func TestGenerateSlots_ExcludesBooked(t *testing.T) {
	avail := Availability{"Lunes": {{StartTime: "09:00", EndTime: "12:00"}}}
	booked := []time.Time{day(10, 10).UTC()}

	slots := GenerateSlots(avail, day(9, 0), booked, day(9, 8))
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Start.Equal(day(10, 10)) {
			t.Error("booked slot must not be offered")
		}
	}
}

func TestGenerateSlots_SkipsPastDays(t *testing.T) {
	avail := Availability{
		"Lunes":   {{StartTime: "09:00", EndTime: "10:00"}},
		"Jueves":  {{StartTime: "09:00", EndTime: "10:00"}},
		"Viernes": {{StartTime: "09:00", EndTime: "10:00"}},
	}
	// Thursday afternoon: Monday is gone, Thursday is still the current day.
	now := day(13, 15)

	slots := GenerateSlots(avail, day(11, 0), nil, now)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(day(13, 9)) || !slots[1].Start.Equal(day(14, 9)) {
		t.Errorf("unexpected slots: %v", slots)
	}
}

func TestGenerateSlots_WeekContainingStart(t *testing.T) {
	avail := Availability{"Domingo": {{StartTime: "08:00", EndTime: "09:00"}}}
	// Starting mid-week still resolves to that week's Sunday.
	slots := GenerateSlots(avail, day(12, 0), nil, day(1, 0))
	if len(slots) != 1 || !slots[0].Start.Equal(day(9, 8)) {
		t.Fatalf("expected the Sunday of the same week, got %v", slots)
	}
}

func TestGenerateSlots_OverlappingRangesAreDisjoint(t *testing.T) {
	avail := Availability{
		"lunes":  {{StartTime: "09:00", EndTime: "11:00"}, {StartTime: "10:00", EndTime: "12:00"}},
		"Monday": {{StartTime: "11:00", EndTime: "12:00"}},
	}
	slots := GenerateSlots(avail, day(9, 0), nil, day(9, 0))
	if len(slots) != 3 {
		t.Fatalf("expected 3 distinct slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].End.Equal(slots[i].Start) && slots[i-1].End.After(slots[i].Start) {
			t.Errorf("slots %d and %d overlap", i-1, i)
		}
	}
}

func TestGenerateSlots_IgnoresUnknownAndMalformed(t *testing.T) {
	avail := Availability{
		"Funday": {{StartTime: "09:00", EndTime: "12:00"}},
		"Martes": {{StartTime: "nine", EndTime: "12:00"}, {StartTime: "15:30", EndTime: "17:00"}},
	}
	slots := GenerateSlots(avail, day(9, 0), nil, day(9, 0))
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Time != "15:00" {
		t.Errorf("minutes are truncated to the hour, got %s", slots[0].Time)
	}
}

func TestAvailability_Validate(t *testing.T) {
	tests := []struct {
		name  string
		avail Availability
		want  error
	}{
		{"ok", Availability{"Sábado": {{StartTime: "08:00:00", EndTime: "13:00:00"}}}, nil},
		{"unknown day", Availability{"Someday": {{StartTime: "08:00", EndTime: "09:00"}}}, ErrUnknownDay},
		{"bad clock", Availability{"Lunes": {{StartTime: "8", EndTime: "09:00"}}}, ErrInvalidClock},
		{"inverted", Availability{"Lunes": {{StartTime: "10:00", EndTime: "09:00"}}}, ErrEmptyRange},
		{"sub hour", Availability{"Lunes": {{StartTime: "10:00", EndTime: "10:45"}}}, ErrEmptyRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.avail.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAvailability_Covers(t *testing.T) {
	avail := Availability{"Lunes": {{StartTime: "09:00", EndTime: "12:00"}}}

	if !avail.Covers(day(10, 11), lima) {
		t.Error("11:00 Monday should be covered")
	}
	if avail.Covers(day(10, 12), lima) {
		t.Error("range end is exclusive")
	}
	if avail.Covers(day(10, 9).Add(30*time.Minute), lima) {
		t.Error("slots start on the hour")
	}
	if avail.Covers(day(11, 9), lima) {
		t.Error("Tuesday is not available")
	}
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(day(13, 17))
	if !start.Equal(day(9, 0)) {
		t.Errorf("expected Sunday midnight, got %v", start)
	}
	if !end.Equal(day(16, 0)) {
		t.Errorf("expected next Sunday midnight, got %v", end)
	}
}

func TestParseAvailability(t *testing.T) {
	avail, err := ParseAvailability([]byte(`{"Lunes":[{"start_time":"09:00","end_time":"13:00"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(avail["Lunes"]) != 1 || avail["Lunes"][0].EndTime != "13:00" {
		t.Errorf("unexpected availability: %v", avail)
	}

	if _, err := ParseAvailability([]byte(`{"Lunes":[{"start_time":"13:00","end_time":"09:00"}]}`)); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("expected empty range error, got %v", err)
	}
	if _, err := ParseAvailability([]byte(`[1,2]`)); err == nil {
		t.Error("expected decode error")
	}
	if avail, err := ParseAvailability(nil); err != nil || len(avail) != 0 {
		t.Errorf("empty input should give empty availability, got %v %v", avail, err)
	}
}
