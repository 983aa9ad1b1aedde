// Package schedule resolves when a parking space is bookable: it answers
// whether a calendar date is available, which time window applies on that
// date, and where the nearest available date lies in either direction.
package schedule

import (
	"fmt"
	"time"
)

// DateKeyFormat is the key format for date-keyed schedules.
const DateKeyFormat = "2006-01-02"

// Scan bounds for the directional date searches. A weekly schedule repeats
// within seven days, so a month is more than enough; explicit dates may sit
// up to a year out.
const (
	weeklyScanDays = 30
	datedScanDays  = 365
)

// Window is a bookable time range within a single day.
type Window struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// MaxWindow spans the whole day. ResolveWindow falls back to it when no
// entry matches, so a misconfigured space does not block every booking
// attempt; callers must gate on IsAvailable before trusting the window.
var MaxWindow = Window{Start: TimeOfDay{0, 0}, End: TimeOfDay{23, 59}}

// Schedule is either weekly-repeating (entries keyed by weekday) or
// date-keyed (entries keyed by YYYY-MM-DD). Older space records carry a
// single default window plus a set of weekdays instead of per-day entries;
// those survive as an explicit secondary resolution path for weekly
// schedules.
type Schedule struct {
	repeating bool
	weekly    map[time.Weekday]Window
	dated     map[string]Window

	legacyWindow *Window
	legacyDays   map[time.Weekday]bool
}

// NewWeekly builds a weekly-repeating schedule. Weekdays follow time.Weekday
// (Sunday = 0).
func NewWeekly(entries map[time.Weekday]Window) Schedule {
	return Schedule{repeating: true, weekly: entries}
}

// NewDated builds a date-keyed schedule. Keys must be in DateKeyFormat.
func NewDated(entries map[string]Window) (Schedule, error) {
	for key := range entries {
		if _, err := time.Parse(DateKeyFormat, key); err != nil {
			return Schedule{}, fmt.Errorf("invalid date key %q: %w", key, err)
		}
	}
	return Schedule{repeating: false, dated: entries}, nil
}

// WithLegacyFallback attaches the deprecated default-window representation.
// It only participates in resolution for weekly schedules.
func (s Schedule) WithLegacyFallback(window Window, days []time.Weekday) Schedule {
	s.legacyWindow = &window
	s.legacyDays = make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		s.legacyDays[d] = true
	}
	return s
}

// Repeating reports whether the schedule is keyed by weekday.
func (s Schedule) Repeating() bool { return s.repeating }

// IsAvailable reports whether the space is bookable on the given date.
// Weekly schedules depend only on the date's weekday; dated schedules only
// on the exact YYYY-MM-DD key.
func (s Schedule) IsAvailable(date time.Time) bool {
	if s.repeating {
		if _, ok := s.weekly[date.Weekday()]; ok {
			return true
		}
		return s.legacyDays[date.Weekday()]
	}
	_, ok := s.dated[date.Format(DateKeyFormat)]
	return ok
}

// ResolveWindow returns the bookable window on the given date. When nothing
// resolves it returns MaxWindow rather than failing; see MaxWindow.
func (s Schedule) ResolveWindow(date time.Time) Window {
	if s.repeating {
		if w, ok := s.weekly[date.Weekday()]; ok {
			return w
		}
		if s.legacyWindow != nil && s.legacyDays[date.Weekday()] {
			return *s.legacyWindow
		}
		return MaxWindow
	}
	if w, ok := s.dated[date.Format(DateKeyFormat)]; ok {
		return w
	}
	return MaxWindow
}

// NextAvailable scans forward day by day from the given date (inclusive) and
// returns the first available date. The scan is brute force on purpose: the
// date-keyed case has no closed form, and one algorithm for both kinds keeps
// the two consistent. The bound guarantees termination for never-bookable
// schedules.
func (s Schedule) NextAvailable(from time.Time) (time.Time, bool) {
	for i := 0; i < s.scanBound(); i++ {
		d := from.AddDate(0, 0, i)
		if s.IsAvailable(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// PreviousAvailable scans backward from the given date (exclusive). It never
// returns a date before today: past dates are not bookable regardless of the
// schedule.
func (s Schedule) PreviousAvailable(before, today time.Time) (time.Time, bool) {
	floor := today.Format(DateKeyFormat)
	for i := 1; i <= s.scanBound(); i++ {
		d := before.AddDate(0, 0, -i)
		if d.Format(DateKeyFormat) < floor {
			return time.Time{}, false
		}
		if s.IsAvailable(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

func (s Schedule) scanBound() int {
	if s.repeating {
		return weeklyScanDays
	}
	return datedScanDays
}
