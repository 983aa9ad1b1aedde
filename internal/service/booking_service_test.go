package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/errors"
)

type stubSpaces struct {
	spaces map[string]*db.ParkingSpace
}

func (s *stubSpaces) GetByID(_ context.Context, id string) (*db.ParkingSpace, error) {
	space, ok := s.spaces[id]
	if !ok {
		return nil, fmt.Errorf("space %s: %w", id, errors.ErrNotFound)
	}
	return space, nil
}

type stubBookings struct {
	byID      map[string]*db.Booking
	created   []*db.Booking
	statuses  map[string]string
	deleted   []string
	createErr error
}

func newStubBookings() *stubBookings {
	return &stubBookings{byID: make(map[string]*db.Booking), statuses: make(map[string]string)}
}

func (s *stubBookings) Create(_ context.Context, b *db.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, b)
	s.byID[b.ID] = b
	return nil
}

func (s *stubBookings) GetByID(_ context.Context, id string) (*db.Booking, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (s *stubBookings) ListByUser(_ context.Context, userID, status string) ([]db.BookingWithSpace, error) {
	var out []db.BookingWithSpace
	for _, b := range s.byID {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, db.BookingWithSpace{Booking: *b})
	}
	return out, nil
}

func (s *stubBookings) ListBySpace(_ context.Context, spaceID string) ([]db.BookingWithSpace, error) {
	var out []db.BookingWithSpace
	for _, b := range s.byID {
		if b.SpaceID == spaceID {
			out = append(out, db.BookingWithSpace{Booking: *b})
		}
	}
	return out, nil
}

func (s *stubBookings) UpdateStatus(_ context.Context, id, status string) error {
	b, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
	}
	b.Status = status
	s.statuses[id] = status
	return nil
}

func (s *stubBookings) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubOracle struct {
	slots int
	err   error
	calls int
}

func (o *stubOracle) QueryAvailableCapacity(context.Context, string, time.Time, time.Time) (int, error) {
	o.calls++
	if o.err != nil {
		return 0, o.err
	}
	return o.slots, nil
}

type stubNotifier struct {
	confirmed []string
	cancelled []string
}

func (n *stubNotifier) BookingConfirmed(b *db.Booking, _ *db.ParkingSpace) {
	n.confirmed = append(n.confirmed, b.ID)
}

func (n *stubNotifier) BookingCancelled(b *db.Booking, _ *db.ParkingSpace) {
	n.cancelled = append(n.cancelled, b.ID)
}

// mondaySpace is bookable Mondays 09:00–18:00, 3 vehicle slots, 100/hour and
// 1000/day.
func mondaySpace() *db.ParkingSpace {
	return &db.ParkingSpace{
		ID:              "space-1",
		HostID:          "host-1",
		Title:           "Downtown spot",
		Address:         "1 Main St",
		PricePerHour:    fp(100),
		PricePerDay:     fp(1000),
		MaxVehicles:     3,
		RepeatingWeekly: true,
		ScheduleEntries: []byte(`{"1":{"startTime":"09:00","endTime":"18:00"}}`),
		IsActive:        true,
	}
}

type testEnv struct {
	svc      *BookingService
	spaces   *stubSpaces
	bookings *stubBookings
	oracle   *stubOracle
	notifier *stubNotifier
}

func newTestEnv(space *db.ParkingSpace, slots int) *testEnv {
	env := &testEnv{
		spaces:   &stubSpaces{spaces: map[string]*db.ParkingSpace{}},
		bookings: newStubBookings(),
		oracle:   &stubOracle{slots: slots},
		notifier: &stubNotifier{},
	}
	if space != nil {
		env.spaces.spaces[space.ID] = space
	}
	env.svc = NewBookingService(env.spaces, env.bookings, env.oracle, env.notifier)
	return env
}

func bookingReq(count int) entities.BookingRequest {
	return entities.BookingRequest{
		SpaceID:      "space-1",
		Date:         "2025-03-10", // a Monday
		StartTime:    "10:00",
		EndTime:      "12:00",
		VehicleCount: count,
	}
}

func requireRejection(t *testing.T, err error, reason errors.Reason) *errors.RejectionError {
	t.Helper()
	rej, ok := errors.AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	require.Equal(t, reason, rej.Reason)
	return rej
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(2))
	require.NoError(t, err)

	assert.Equal(t, db.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, 2, resp.VehicleCount)
	assert.InDelta(t, 200, resp.TotalPrice, 1e-9) // 2 hours at 100/hour
	assert.Equal(t, time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC), resp.StartTime)
	assert.Equal(t, time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC), resp.EndTime)

	require.Len(t, env.bookings.created, 1)
	assert.Equal(t, "driver-1", env.bookings.created[0].UserID)
	assert.Equal(t, []string{resp.ID}, env.notifier.confirmed)
	assert.Equal(t, 1, env.oracle.calls)
}

func TestCreateBookingCapacityBoundary(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	// Exactly the remaining capacity is admissible.
	_, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(3))
	require.NoError(t, err)

	// One more than the remaining capacity is not.
	_, err = env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(4))
	rej := requireRejection(t, err, errors.ReasonInsufficientCapacity)
	assert.Equal(t, 3, rej.Available)
	assert.Len(t, env.bookings.created, 1)
}

func TestCreateBookingDateNotBookable(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	req := bookingReq(0) // invalid count too: the date check must win
	req.Date = "2025-03-11"
	_, err := env.svc.CreateBooking(context.Background(), "driver-1", req)
	requireRejection(t, err, errors.ReasonDateNotBookable)
}

func TestCreateBookingOutsideAvailableHours(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	req := bookingReq(0) // the window check precedes the count check
	req.StartTime = "08:00"
	_, err := env.svc.CreateBooking(context.Background(), "driver-1", req)
	requireRejection(t, err, errors.ReasonOutsideAvailableHours)
}

func TestCreateBookingInvalidVehicleCount(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	_, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(0))
	requireRejection(t, err, errors.ReasonInvalidVehicleCount)
}

func TestCreateBookingEndEqualStartRollsAndIsRejected(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	// End equal to start rolls to the next day; the rolled instant falls
	// outside the single-day window.
	req := bookingReq(1)
	req.EndTime = "10:00"
	_, err := env.svc.CreateBooking(context.Background(), "driver-1", req)
	requireRejection(t, err, errors.ReasonOutsideAvailableHours)
}

func TestCreateBookingOracleFallback(t *testing.T) {
	env := newTestEnv(mondaySpace(), 0)
	env.oracle.err = errors.ErrOracleUnavailable

	// The oracle being down degrades to max_vehicles rather than blocking.
	_, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(3))
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(4))
	rej := requireRejection(t, err, errors.ReasonInsufficientCapacity)
	assert.Equal(t, 3, rej.Available)
}

func TestCreateBookingDayRatePricing(t *testing.T) {
	space := mondaySpace()
	space.PricePerHour = nil
	env := newTestEnv(space, 3)

	// 2 hours on a day-rate-only space costs a full day.
	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)
	assert.InDelta(t, 1000, resp.TotalPrice, 1e-9)
}

func TestCreateBookingNoPricingConfigured(t *testing.T) {
	space := mondaySpace()
	space.PricePerHour = nil
	space.PricePerDay = nil
	env := newTestEnv(space, 3)

	_, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	requireRejection(t, err, errors.ReasonNoPricingConfigured)
	assert.Empty(t, env.bookings.created)
}

func TestCreateBookingInactiveSpace(t *testing.T) {
	space := mondaySpace()
	space.IsActive = false
	env := newTestEnv(space, 3)

	_, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(mondaySpace(), 2)

	resp, err := env.svc.CheckAvailability(context.Background(), "space-1", entities.AvailabilityRequest{
		Date: "2025-03-10", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	assert.True(t, resp.DateBookable)
	assert.Equal(t, "09:00", resp.WindowStart)
	assert.Equal(t, "18:00", resp.WindowEnd)
	assert.Equal(t, 2, resp.AvailableSlots)
	assert.Equal(t, 3, resp.MaxVehicles)
	assert.False(t, resp.Degraded)
	assert.Equal(t, uint64(1), resp.Sequence)

	// Snapshots are never reused: a second check issues a fresh query.
	resp, err = env.svc.CheckAvailability(context.Background(), "space-1", entities.AvailabilityRequest{
		Date: "2025-03-10", StartTime: "10:00", EndTime: "13:00",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.Sequence)
	assert.Equal(t, 2, env.oracle.calls)
}

func TestCheckAvailabilityDateNotBookable(t *testing.T) {
	env := newTestEnv(mondaySpace(), 2)

	resp, err := env.svc.CheckAvailability(context.Background(), "space-1", entities.AvailabilityRequest{
		Date: "2025-03-04", StartTime: "10:00", EndTime: "12:00", // a Tuesday
	})
	require.NoError(t, err)

	assert.False(t, resp.DateBookable)
	assert.Equal(t, "2025-03-10", resp.NextAvailableDate)
	assert.Zero(t, env.oracle.calls)
}

func TestCheckAvailabilityDegraded(t *testing.T) {
	env := newTestEnv(mondaySpace(), 0)
	env.oracle.err = errors.ErrOracleUnavailable

	resp, err := env.svc.CheckAvailability(context.Background(), "space-1", entities.AvailabilityRequest{
		Date: "2025-03-10", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	assert.Equal(t, 3, resp.AvailableSlots)
}

func TestCancelBooking(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBooking(context.Background(), "driver-1", resp.ID))
	assert.Equal(t, db.BookingStatusCancelled, env.bookings.statuses[resp.ID])
	assert.Equal(t, []string{resp.ID}, env.notifier.cancelled)

	// Already cancelled: the transition is no longer permitted.
	err = env.svc.CancelBooking(context.Background(), "driver-1", resp.ID)
	assert.ErrorIs(t, err, errors.ErrCancelNotAllowed)
}

func TestCancelBookingWrongActor(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	err = env.svc.CancelBooking(context.Background(), "driver-2", resp.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestHostCancelBooking(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	err = env.svc.HostCancelBooking(context.Background(), "driver-1", resp.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	require.NoError(t, env.svc.HostCancelBooking(context.Background(), "host-1", resp.ID))
	assert.Equal(t, db.BookingStatusHostCancelled, env.bookings.statuses[resp.ID])
}

func TestDeleteBooking(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)
	env.svc.now = func() time.Time {
		return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	}

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	// Still confirmed and in the future: not deletable.
	err = env.svc.DeleteBooking(context.Background(), "driver-1", resp.ID)
	assert.ErrorIs(t, err, errors.ErrDeleteNotAllowed)

	// Terminal status: deletable.
	require.NoError(t, env.svc.CancelBooking(context.Background(), "driver-1", resp.ID))
	require.NoError(t, env.svc.DeleteBooking(context.Background(), "driver-1", resp.ID))
	assert.Equal(t, []string{resp.ID}, env.bookings.deleted)
}

func TestDeleteBookingPastEndTime(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	// Confirmed but already ended: deletable.
	env.svc.now = func() time.Time {
		return time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, env.svc.DeleteBooking(context.Background(), "driver-1", resp.ID))
}

func TestListBookingsFiltersByStatus(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	first, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)
	require.NoError(t, env.svc.CancelBooking(context.Background(), "driver-1", first.ID))

	all, err := env.svc.ListBookings(context.Background(), "driver-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := env.svc.ListBookings(context.Background(), "driver-1", db.BookingStatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)
}

func TestListSpaceBookingsRequiresOwnership(t *testing.T) {
	env := newTestEnv(mondaySpace(), 3)

	resp, err := env.svc.CreateBooking(context.Background(), "driver-1", bookingReq(1))
	require.NoError(t, err)

	_, err = env.svc.ListSpaceBookings(context.Background(), "driver-1", "space-1")
	assert.ErrorIs(t, err, errors.ErrForbidden)

	bookings, err := env.svc.ListSpaceBookings(context.Background(), "host-1", "space-1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, resp.ID, bookings[0].ID)
}
