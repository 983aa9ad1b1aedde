package entities

import "time"

// BookingRequest is the pre-submission booking form: a calendar date, a
// wall-clock time range and a vehicle count. An end time at or before the
// start rolls to the next calendar day exactly once.
type BookingRequest struct {
	SpaceID      string `json:"space_id"`
	Date         string `json:"date"`       // YYYY-MM-DD
	StartTime    string `json:"start_time"` // HH:MM
	EndTime      string `json:"end_time"`   // HH:MM
	VehicleCount int    `json:"vehicle_count"`
}

type BookingResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SpaceID      string    `json:"space_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	VehicleCount int       `json:"vehicle_count"`
	TotalPrice   float64   `json:"total_price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	SpaceTitle   *string   `json:"space_title,omitempty"`
	SpaceAddress *string   `json:"space_address,omitempty"`
}
