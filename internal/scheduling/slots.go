// Package scheduling turns a doctor's weekly availability into bookable
// one-hour slots.
package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SlotDuration is the length of every generated appointment slot.
const SlotDuration = time.Hour

var (
	ErrUnknownDay   = errors.New("unknown day name")
	ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")
	ErrEmptyRange   = errors.New("range end must be at least one hour after its start")
)

// TimeRange is one block of availability within a day.
type TimeRange struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Availability maps a day name to the ranges a doctor works that day.
// Keys are stored as entered, e.g. "Lunes" or "monday".
type Availability map[string][]TimeRange

// Slot is a bookable start time.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Time  string    `json:"time"`
}

var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a Spanish or English day name, ignoring case.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// parseHour reads the hour of an "HH:MM" or "HH:MM:SS" clock value.
// Minutes are validated but otherwise dropped: slots always start on the hour.
func parseHour(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	for _, p := range parts[1:] {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
		}
	}
	return hour, nil
}

func (r TimeRange) hours() (start, end int, err error) {
	if start, err = parseHour(r.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = parseHour(r.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate rejects unknown day names, malformed clocks and ranges that
// cannot hold a single slot.
func (a Availability) Validate() error {
	for day, ranges := range a {
		if _, ok := ParseWeekday(day); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDay, day)
		}
		for _, r := range ranges {
			start, end, err := r.hours()
			if err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			if start > 23 || end <= start {
				return fmt.Errorf("%s %s-%s: %w", day, r.StartTime, r.EndTime, ErrEmptyRange)
			}
		}
	}
	return nil
}

// ParseAvailability decodes the stored JSON form and validates it.
func ParseAvailability(raw []byte) (Availability, error) {
	avail := Availability{}
	if len(raw) == 0 {
		return avail, nil
	}
	if err := json.Unmarshal(raw, &avail); err != nil {
		return nil, fmt.Errorf("decoding availability: %w", err)
	}
	if err := avail.Validate(); err != nil {
		return nil, err
	}
	return avail, nil
}

// Covers reports whether t, read in loc, is the start of a slot the
// availability produces.
func (a Availability) Covers(t time.Time, loc *time.Location) bool {
	t = t.In(loc)
	if t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	for day, ranges := range a {
		wd, ok := ParseWeekday(day)
		if !ok || wd != t.Weekday() {
			continue
		}
		for _, r := range ranges {
			start, end, err := r.hours()
			if err != nil {
				continue
			}
			if t.Hour() >= start && t.Hour() < end {
				return true
			}
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Sunday starting t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	return midnight(t).AddDate(0, 0, -int(t.Weekday()))
}

// WeekBounds returns the half-open interval [sunday, next sunday) around t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	start := WeekStart(t)
	return start, start.AddDate(0, 0, 7)
}

// GenerateSlots expands avail over the Sunday-Saturday week containing
// weekStart. Booked instants are removed, days before now's calendar day are
// skipped, and the result is sorted and free of duplicates.
func GenerateSlots(avail Availability, weekStart time.Time, booked []time.Time, now time.Time) []Slot {
	loc := weekStart.Location()
	sunday := WeekStart(weekStart)
	today := midnight(now.In(loc))

	busy := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		busy[b.Unix()] = struct{}{}
	}

	seen := make(map[int64]struct{})
	slots := make([]Slot, 0)
	for day, ranges := range avail {
		wd, ok := ParseWeekday(day)
		if !ok {
			continue
		}
		date := sunday.AddDate(0, 0, int(wd))
		if date.Before(today) {
			continue
		}
		y, m, d := date.Date()
		for _, r := range ranges {
			startHour, endHour, err := r.hours()
			if err != nil {
				continue
			}
			for h := startHour; h < endHour && h < 24; h++ {
				start := time.Date(y, m, d, h, 0, 0, 0, loc)
				key := start.Unix()
				if _, taken := busy[key]; taken {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				slots = append(slots, Slot{
					Start: start,
					End:   start.Add(SlotDuration),
					Time:  fmt.Sprintf("%02d:00", h),
				})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}
