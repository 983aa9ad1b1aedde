package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/Indeera01/parkly-backend/internal/schedule"
)

// Booking statuses. The service writes confirmed on create and the three
// cancellation variants on their transitions; completed is written by the
// sweep job. pending exists for records created by older clients.
const (
	BookingStatusPending       = "pending"
	BookingStatusConfirmed     = "confirmed"
	BookingStatusCancelled     = "cancelled"
	BookingStatusHostCancelled = "host_cancelled"
	BookingStatusSpaceDeleted  = "space_deleted"
	BookingStatusCompleted     = "completed"
)

// TerminalStatus reports whether a booking in the given status can no longer
// transition.
func TerminalStatus(status string) bool {
	switch status {
	case BookingStatusCancelled, BookingStatusHostCancelled, BookingStatusSpaceDeleted, BookingStatusCompleted:
		return true
	}
	return false
}

// ParkingSpace mirrors the parking_spaces table.
type ParkingSpace struct {
	ID              string
	HostID          string
	Title           string
	Description     *string
	Address         string
	Latitude        float64
	Longitude       float64
	PricePerHour    *float64
	PricePerDay     *float64
	MaxVehicles     int
	RepeatingWeekly bool
	// ScheduleEntries is the raw day_availability_schedule JSONB column:
	// window entries keyed by weekday digit ("0"–"6", Sunday first) for
	// weekly schedules, or by YYYY-MM-DD for date-keyed ones.
	ScheduleEntries []byte
	// Legacy single-window representation kept for records that predate
	// per-day schedules.
	AvailabilityStart *string
	AvailabilityEnd   *string
	AvailableDays     pq.Int64Array
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Booking mirrors the bookings table.
type Booking struct {
	ID           string
	UserID       string
	SpaceID      string
	StartTime    time.Time
	EndTime      time.Time
	VehicleCount int
	TotalPrice   float64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BookingWithSpace is a booking joined with the listing fields shown on the
// bookings list. The space columns are nullable because the space row may be
// gone.
type BookingWithSpace struct {
	Booking
	SpaceTitle   *string
	SpaceAddress *string
}

type scheduleEntry struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Schedule decodes the space's availability configuration into the resolver
// representation, attaching the legacy fallback when the old columns are
// populated.
func (p *ParkingSpace) Schedule() (schedule.Schedule, error) {
	var raw map[string]scheduleEntry
	if len(p.ScheduleEntries) > 0 {
		if err := json.Unmarshal(p.ScheduleEntries, &raw); err != nil {
			return schedule.Schedule{}, fmt.Errorf("space %s: decode schedule: %w", p.ID, err)
		}
	}

	var sched schedule.Schedule
	if p.RepeatingWeekly {
		weekly := make(map[time.Weekday]schedule.Window, len(raw))
		for key, entry := range raw {
			day, err := strconv.Atoi(key)
			if err != nil || day < 0 || day > 6 {
				return schedule.Schedule{}, fmt.Errorf("space %s: invalid weekday key %q", p.ID, key)
			}
			w, err := parseWindow(entry)
			if err != nil {
				return schedule.Schedule{}, fmt.Errorf("space %s: weekday %d: %w", p.ID, day, err)
			}
			weekly[time.Weekday(day)] = w
		}
		sched = schedule.NewWeekly(weekly)
	} else {
		dated := make(map[string]schedule.Window, len(raw))
		for key, entry := range raw {
			w, err := parseWindow(entry)
			if err != nil {
				return schedule.Schedule{}, fmt.Errorf("space %s: date %s: %w", p.ID, key, err)
			}
			dated[key] = w
		}
		var err error
		sched, err = schedule.NewDated(dated)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("space %s: %w", p.ID, err)
		}
	}

	if p.AvailabilityStart != nil && p.AvailabilityEnd != nil && len(p.AvailableDays) > 0 {
		start, err := schedule.ParseTimeOfDay(*p.AvailabilityStart)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("space %s: legacy start: %w", p.ID, err)
		}
		end, err := schedule.ParseTimeOfDay(*p.AvailabilityEnd)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("space %s: legacy end: %w", p.ID, err)
		}
		days := make([]time.Weekday, 0, len(p.AvailableDays))
		for _, d := range p.AvailableDays {
			days = append(days, time.Weekday(d))
		}
		sched = sched.WithLegacyFallback(schedule.Window{Start: start, End: end}, days)
	}

	return sched, nil
}

func parseWindow(entry scheduleEntry) (schedule.Window, error) {
	start, err := schedule.ParseTimeOfDay(entry.StartTime)
	if err != nil {
		return schedule.Window{}, err
	}
	end, err := schedule.ParseTimeOfDay(entry.EndTime)
	if err != nil {
		return schedule.Window{}, err
	}
	return schedule.Window{Start: start, End: end}, nil
}
