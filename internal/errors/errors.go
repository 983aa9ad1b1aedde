// Package errors defines the booking rejection taxonomy and the service
// errors shared between handlers and services. Every rejection reason maps
// to its own user-facing message; clients assert on the reason code, so no
// two reasons may share one.
package errors

import (
	"errors"
	"fmt"
)

// Reason identifies why a booking request was rejected.
type Reason string

const (
	ReasonDateNotBookable       Reason = "date_not_bookable"
	ReasonInvalidTimeRange      Reason = "invalid_time_range"
	ReasonOutsideAvailableHours Reason = "outside_available_hours"
	ReasonInvalidVehicleCount   Reason = "invalid_vehicle_count"
	ReasonInsufficientCapacity  Reason = "insufficient_capacity"
	ReasonNoPricingConfigured   Reason = "no_pricing_configured"
)

var reasonMessages = map[Reason]string{
	ReasonDateNotBookable:       "space is not bookable on the requested date",
	ReasonInvalidTimeRange:      "end time must be after start time",
	ReasonOutsideAvailableHours: "requested time is outside the space's available hours",
	ReasonInvalidVehicleCount:   "number of vehicles must be at least 1",
	ReasonInsufficientCapacity:  "only %d vehicle slot(s) available for this time period",
	ReasonNoPricingConfigured:   "no pricing configured for this space",
}

// RejectionError is a terminal business-rule rejection of a booking request.
// It is always resolved locally before any write is attempted.
type RejectionError struct {
	Reason Reason
	// Available carries the remaining slot count for
	// ReasonInsufficientCapacity.
	Available int
}

func (e *RejectionError) Error() string {
	msg := reasonMessages[e.Reason]
	if e.Reason == ReasonInsufficientCapacity {
		return fmt.Sprintf(msg, e.Available)
	}
	return msg
}

// Reject builds a rejection for the given reason.
func Reject(reason Reason) *RejectionError {
	return &RejectionError{Reason: reason}
}

// RejectCapacity builds an insufficient-capacity rejection carrying the
// remaining slot count.
func RejectCapacity(available int) *RejectionError {
	return &RejectionError{Reason: ReasonInsufficientCapacity, Available: available}
}

// AsRejection unwraps a RejectionError if err carries one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

var (
	// ErrOracleUnavailable marks a transient capacity-oracle failure; the
	// caller degrades to the space's configured maximum instead of failing.
	ErrOracleUnavailable = errors.New("capacity oracle unavailable")

	ErrNotFound         = errors.New("not found")
	ErrInvalidSpace     = errors.New("invalid space")
	ErrForbidden        = errors.New("forbidden")
	ErrCancelNotAllowed = errors.New("booking can only be cancelled while confirmed")
	ErrDeleteNotAllowed = errors.New("booking can only be deleted once it has ended or reached a terminal status")
)

// PersistenceError wraps a failure from the data store, surfaced verbatim
// rather than interpreted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError, preserving nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
