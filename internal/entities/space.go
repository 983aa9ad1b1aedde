package entities

import "time"

// ScheduleEntry is one bookable window, wire-shaped the way the mobile
// client stores it.
type ScheduleEntry struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type CreateSpaceRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	Address         string  `json:"address"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	PricePerHour    *float64 `json:"price_per_hour"`
	PricePerDay     *float64 `json:"price_per_day"`
	MaxVehicles     int      `json:"max_vehicles"`
	RepeatingWeekly *bool    `json:"repeating_weekly"`
	// Schedule is keyed by weekday digit ("0"–"6", Sunday first) when
	// repeating, or by YYYY-MM-DD otherwise.
	Schedule map[string]ScheduleEntry `json:"day_availability_schedule"`
	// Legacy single-window fields, accepted for older clients.
	AvailabilityStart *string `json:"availability_start"`
	AvailabilityEnd   *string `json:"availability_end"`
	AvailableDays     []int64 `json:"available_days"`
}

type UpdateSpaceRequest struct {
	CreateSpaceRequest
	IsActive *bool `json:"is_active"`
}

type SpaceResponse struct {
	ID                string                   `json:"id"`
	HostID            string                   `json:"host_id"`
	Title             string                   `json:"title"`
	Description       *string                  `json:"description,omitempty"`
	Address           string                   `json:"address"`
	Latitude          float64                  `json:"latitude"`
	Longitude         float64                  `json:"longitude"`
	PricePerHour      *float64                 `json:"price_per_hour,omitempty"`
	PricePerDay       *float64                 `json:"price_per_day,omitempty"`
	MaxVehicles       int                      `json:"max_vehicles"`
	RepeatingWeekly   bool                     `json:"repeating_weekly"`
	Schedule          map[string]ScheduleEntry `json:"day_availability_schedule,omitempty"`
	AvailabilityStart *string                  `json:"availability_start,omitempty"`
	AvailabilityEnd   *string                  `json:"availability_end,omitempty"`
	AvailableDays     []int64                  `json:"available_days,omitempty"`
	IsActive          bool                     `json:"is_active"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// SpaceFilter narrows space listings: map viewport queries set the bounding
// box, the host dashboard sets HostID and IncludeInactive.
type SpaceFilter struct {
	HostID          string
	IncludeInactive bool
	MinLat, MaxLat  *float64
	MinLng, MaxLng  *float64
}
