package entities

// AvailabilityRequest is the compose-time capacity check for a space.
type AvailabilityRequest struct {
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// AvailabilityResponse is what the booking form renders while the user is
// composing a request. Sequence orders responses: a client holding a
// response with a higher sequence must discard this one.
type AvailabilityResponse struct {
	DateBookable   bool   `json:"date_bookable"`
	WindowStart    string `json:"window_start,omitempty"`
	WindowEnd      string `json:"window_end,omitempty"`
	AvailableSlots int    `json:"available_slots"`
	MaxVehicles    int    `json:"max_vehicles"`
	// Degraded is set when the capacity oracle was unreachable and
	// AvailableSlots fell back to the space's configured maximum.
	Degraded bool   `json:"degraded,omitempty"`
	Sequence uint64 `json:"sequence"`
	// NextAvailableDate is filled when the requested date is not bookable.
	NextAvailableDate string `json:"next_available_date,omitempty"`
}
