package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/errors"
	"github.com/Indeera01/parkly-backend/internal/schedule"
)

// SpaceStore is the read side of the space repository the booking flow needs.
type SpaceStore interface {
	GetByID(ctx context.Context, id string) (*db.ParkingSpace, error)
}

// BookingStore is the booking repository surface.
type BookingStore interface {
	Create(ctx context.Context, booking *db.Booking) error
	GetByID(ctx context.Context, id string) (*db.Booking, error)
	ListByUser(ctx context.Context, userID, status string) ([]db.BookingWithSpace, error)
	ListBySpace(ctx context.Context, spaceID string) ([]db.BookingWithSpace, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// CapacityOracle reports remaining vehicle slots for a space and interval.
// Its answer is ground truth; a failure triggers the conservative fallback
// to the space's configured maximum rather than blocking the user.
type CapacityOracle interface {
	QueryAvailableCapacity(ctx context.Context, spaceID string, start, end time.Time) (int, error)
}

// Notifier delivers booking lifecycle notifications, best effort.
type Notifier interface {
	BookingConfirmed(booking *db.Booking, space *db.ParkingSpace)
	BookingCancelled(booking *db.Booking, space *db.ParkingSpace)
}

type BookingService struct {
	spaces   SpaceStore
	bookings BookingStore
	oracle   CapacityOracle
	notifier Notifier
	tracker  *CapacityTracker
	now      func() time.Time
}

func NewBookingService(spaces SpaceStore, bookings BookingStore, oracle CapacityOracle, notifier Notifier) *BookingService {
	return &BookingService{
		spaces:   spaces,
		bookings: bookings,
		oracle:   oracle,
		notifier: notifier,
		tracker:  NewCapacityTracker(),
		now:      time.Now,
	}
}

// CheckAvailability is the compose-time check: it resolves the bookable
// window for the requested date, fetches a fresh sequence-tagged capacity
// snapshot, and points at the next bookable date when the requested one is
// not available.
func (s *BookingService) CheckAvailability(ctx context.Context, spaceID string, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	sched, err := space.Schedule()
	if err != nil {
		return nil, err
	}

	date, start, end, err := parseRequestTimes(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		DateBookable: sched.IsAvailable(date),
		MaxVehicles:  maxVehicles(space),
	}
	if !resp.DateBookable {
		if next, ok := sched.NextAvailable(date); ok {
			resp.NextAvailableDate = next.Format(schedule.DateKeyFormat)
		}
		return resp, nil
	}

	window := sched.ResolveWindow(date)
	resp.WindowStart = window.Start.String()
	resp.WindowEnd = window.End.String()

	startAt, endAt := combineInstants(date, start, end)

	snap := s.fetchSnapshot(ctx, space, startAt, endAt)
	if !s.tracker.Record(snap) {
		// A newer query was issued while this one was in flight; answer
		// with the fresher snapshot instead.
		if latest, ok := s.tracker.Latest(spaceID); ok {
			snap = latest
		}
	}
	resp.AvailableSlots = snap.AvailableSlots
	resp.Degraded = snap.Degraded
	resp.Sequence = snap.Sequence
	return resp, nil
}

// CreateBooking runs the full validation against a fresh capacity snapshot
// and writes the booking only when every check passes. This is the second
// phase of the two-phase capacity confirmation: even if the compose-time
// check succeeded, a failure here aborts the submission.
func (s *BookingService) CreateBooking(ctx context.Context, actorID string, req entities.BookingRequest) (*entities.BookingResponse, error) {
	space, err := s.spaces.GetByID(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	if !space.IsActive {
		return nil, fmt.Errorf("space %s is not active: %w", space.ID, errors.ErrNotFound)
	}
	sched, err := space.Schedule()
	if err != nil {
		return nil, err
	}

	date, start, end, err := parseRequestTimes(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	snap := s.fetchSnapshot(ctx, space, combineStart(date, start), combineEnd(date, start, end))
	startAt, endAt, err := validate(req.VehicleCount, date, start, end, sched, snap.AvailableSlots)
	if err != nil {
		return nil, err
	}

	price, err := ComputePrice(space, startAt, endAt)
	if err != nil {
		return nil, err
	}

	booking := &db.Booking{
		ID:           uuid.New().String(),
		UserID:       actorID,
		SpaceID:      space.ID,
		StartTime:    startAt,
		EndTime:      endAt,
		VehicleCount: req.VehicleCount,
		TotalPrice:   price,
		Status:       db.BookingStatusConfirmed,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notifier.BookingConfirmed(booking, space)
	return bookingResponse(booking, space), nil
}

// validate applies the admission checks in their fixed order; the order is
// what keeps user-facing rejection messages deterministic.
func validate(vehicleCount int, date time.Time, start, end schedule.TimeOfDay, sched schedule.Schedule, availableSlots int) (time.Time, time.Time, error) {
	if !sched.IsAvailable(date) {
		return time.Time{}, time.Time{}, errors.Reject(errors.ReasonDateNotBookable)
	}

	startAt, endAt := combineInstants(date, start, end)
	if !endAt.After(startAt) {
		// Unreachable after the one-day roll, kept as a guard.
		return time.Time{}, time.Time{}, errors.Reject(errors.ReasonInvalidTimeRange)
	}

	// Containment is checked on instants, not wall-clock times, so an end
	// that rolled to the next day falls outside any single-day window.
	window := sched.ResolveWindow(date)
	if startAt.Before(window.Start.On(date)) || endAt.After(window.End.On(date)) {
		return time.Time{}, time.Time{}, errors.Reject(errors.ReasonOutsideAvailableHours)
	}

	if vehicleCount < 1 {
		return time.Time{}, time.Time{}, errors.Reject(errors.ReasonInvalidVehicleCount)
	}
	if vehicleCount > availableSlots {
		return time.Time{}, time.Time{}, errors.RejectCapacity(availableSlots)
	}
	return startAt, endAt, nil
}

// fetchSnapshot queries the oracle, degrading to the space's configured
// maximum when it is unreachable. The degraded answer is permissive on
// purpose: an oracle outage must not block request composition.
func (s *BookingService) fetchSnapshot(ctx context.Context, space *db.ParkingSpace, start, end time.Time) CapacitySnapshot {
	seq := s.tracker.Issue(space.ID)
	snap := CapacitySnapshot{
		SpaceID:  space.ID,
		Start:    start,
		End:      end,
		Sequence: seq,
	}
	slots, err := s.oracle.QueryAvailableCapacity(ctx, space.ID, start, end)
	if err != nil {
		log.Printf("capacity oracle unavailable for space %s, falling back to max_vehicles: %v", space.ID, err)
		snap.AvailableSlots = maxVehicles(space)
		snap.Degraded = true
		return snap
	}
	snap.AvailableSlots = slots
	return snap
}

func (s *BookingService) ListBookings(ctx context.Context, actorID, status string) ([]entities.BookingResponse, error) {
	rows, err := s.bookings.ListByUser(ctx, actorID, status)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BookingResponse, 0, len(rows))
	for _, row := range rows {
		resp := bookingResponse(&row.Booking, nil)
		resp.SpaceTitle = row.SpaceTitle
		resp.SpaceAddress = row.SpaceAddress
		out = append(out, *resp)
	}
	return out, nil
}

// ListSpaceBookings returns all bookings against one of the actor's own
// listings.
func (s *BookingService) ListSpaceBookings(ctx context.Context, actorID, spaceID string) ([]entities.BookingResponse, error) {
	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.HostID != actorID {
		return nil, fmt.Errorf("space %s does not belong to actor: %w", spaceID, errors.ErrForbidden)
	}
	rows, err := s.bookings.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BookingResponse, 0, len(rows))
	for _, row := range rows {
		resp := bookingResponse(&row.Booking, nil)
		resp.SpaceTitle = row.SpaceTitle
		resp.SpaceAddress = row.SpaceAddress
		out = append(out, *resp)
	}
	return out, nil
}

// CancelBooking is the driver-initiated confirmed → cancelled transition.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != actorID {
		return fmt.Errorf("booking %s does not belong to actor: %w", bookingID, errors.ErrForbidden)
	}
	if booking.Status != db.BookingStatusConfirmed {
		return errors.ErrCancelNotAllowed
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, db.BookingStatusCancelled); err != nil {
		return err
	}

	booking.Status = db.BookingStatusCancelled
	if space, err := s.spaces.GetByID(ctx, booking.SpaceID); err == nil {
		s.notifier.BookingCancelled(booking, space)
	}
	return nil
}

// HostCancelBooking lets the listing's host cancel an open booking on it.
func (s *BookingService) HostCancelBooking(ctx context.Context, actorID, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	space, err := s.spaces.GetByID(ctx, booking.SpaceID)
	if err != nil {
		return err
	}
	if space.HostID != actorID {
		return fmt.Errorf("space %s does not belong to actor: %w", space.ID, errors.ErrForbidden)
	}
	if booking.Status != db.BookingStatusConfirmed && booking.Status != db.BookingStatusPending {
		return errors.ErrCancelNotAllowed
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, db.BookingStatusHostCancelled); err != nil {
		return err
	}

	booking.Status = db.BookingStatusHostCancelled
	s.notifier.BookingCancelled(booking, space)
	return nil
}

// DeleteBooking removes a booking record once it is terminal or in the past.
func (s *BookingService) DeleteBooking(ctx context.Context, actorID, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != actorID {
		return fmt.Errorf("booking %s does not belong to actor: %w", bookingID, errors.ErrForbidden)
	}
	if !db.TerminalStatus(booking.Status) && !booking.EndTime.Before(s.now()) {
		return errors.ErrDeleteNotAllowed
	}
	return s.bookings.Delete(ctx, bookingID)
}

func parseRequestTimes(dateStr, startStr, endStr string) (time.Time, schedule.TimeOfDay, schedule.TimeOfDay, error) {
	date, err := time.ParseInLocation(schedule.DateKeyFormat, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, schedule.TimeOfDay{}, schedule.TimeOfDay{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	start, err := schedule.ParseTimeOfDay(startStr)
	if err != nil {
		return time.Time{}, schedule.TimeOfDay{}, schedule.TimeOfDay{}, err
	}
	end, err := schedule.ParseTimeOfDay(endStr)
	if err != nil {
		return time.Time{}, schedule.TimeOfDay{}, schedule.TimeOfDay{}, err
	}
	return date, start, end, nil
}

// combineInstants merges the date with the two wall-clock times. An end at
// or before the start rolls to the next calendar day, exactly once.
func combineInstants(date time.Time, start, end schedule.TimeOfDay) (time.Time, time.Time) {
	return combineStart(date, start), combineEnd(date, start, end)
}

func combineStart(date time.Time, start schedule.TimeOfDay) time.Time {
	return start.On(date)
}

func combineEnd(date time.Time, start, end schedule.TimeOfDay) time.Time {
	endAt := end.On(date)
	if !endAt.After(start.On(date)) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return endAt
}

func maxVehicles(space *db.ParkingSpace) int {
	if space.MaxVehicles < 1 {
		return 1
	}
	return space.MaxVehicles
}

func bookingResponse(b *db.Booking, space *db.ParkingSpace) *entities.BookingResponse {
	resp := &entities.BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		SpaceID:      b.SpaceID,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		VehicleCount: b.VehicleCount,
		TotalPrice:   b.TotalPrice,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if space != nil {
		resp.SpaceTitle = &space.Title
		resp.SpaceAddress = &space.Address
	}
	return resp
}
