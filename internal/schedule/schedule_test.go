package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window(start, end string) Window {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return Window{Start: s, End: e}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{9, 0}},
		{in: "18:30", want: TimeOfDay{18, 30}},
		{in: "00:00", want: TimeOfDay{0, 0}},
		{in: "23:59", want: TimeOfDay{23, 59}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.in, got.String())
	}
}

func TestWeeklyAvailabilityDependsOnlyOnWeekday(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})

	mondays := []time.Time{
		date(2025, time.March, 10),
		date(2025, time.March, 17),
		date(2026, time.January, 5),
	}
	for _, d := range mondays {
		require.Equal(t, time.Monday, d.Weekday())
		assert.True(t, s.IsAvailable(d), d)
	}

	tuesday := date(2025, time.March, 11)
	require.Equal(t, time.Tuesday, tuesday.Weekday())
	assert.False(t, s.IsAvailable(tuesday))
}

func TestDatedAvailabilityDependsOnExactDate(t *testing.T) {
	s, err := NewDated(map[string]Window{
		"2025-03-10": window("09:00", "18:00"),
	})
	require.NoError(t, err)

	assert.True(t, s.IsAvailable(date(2025, time.March, 10)))
	// Same weekday one week later must not match.
	assert.False(t, s.IsAvailable(date(2025, time.March, 17)))
	assert.False(t, s.IsAvailable(date(2025, time.March, 11)))
}

func TestNewDatedRejectsBadKeys(t *testing.T) {
	_, err := NewDated(map[string]Window{"not-a-date": window("09:00", "18:00")})
	assert.Error(t, err)
}

func TestResolveWindowRoundTrip(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})
	w := s.ResolveWindow(date(2025, time.March, 10))
	assert.Equal(t, TimeOfDay{9, 0}, w.Start)
	assert.Equal(t, TimeOfDay{18, 0}, w.End)
}

func TestResolveWindowFallsBackToMaxWindow(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})
	// No Tuesday entry: permissive whole-day window, callers gate on
	// IsAvailable first.
	w := s.ResolveWindow(date(2025, time.March, 11))
	assert.Equal(t, MaxWindow, w)
}

func TestLegacyFallback(t *testing.T) {
	s := NewWeekly(nil).WithLegacyFallback(
		window("08:00", "20:00"),
		[]time.Weekday{time.Saturday, time.Sunday},
	)

	saturday := date(2025, time.March, 8)
	require.Equal(t, time.Saturday, saturday.Weekday())
	assert.True(t, s.IsAvailable(saturday))
	assert.Equal(t, window("08:00", "20:00"), s.ResolveWindow(saturday))

	monday := date(2025, time.March, 10)
	assert.False(t, s.IsAvailable(monday))
}

func TestLegacyFallbackIgnoredForDatedSchedules(t *testing.T) {
	s, err := NewDated(map[string]Window{"2025-03-10": window("09:00", "18:00")})
	require.NoError(t, err)
	s = s.WithLegacyFallback(window("08:00", "20:00"), []time.Weekday{time.Tuesday})

	tuesday := date(2025, time.March, 11)
	assert.False(t, s.IsAvailable(tuesday))
}

func TestEmptyScheduleNeverBookable(t *testing.T) {
	s := NewWeekly(nil)
	assert.False(t, s.IsAvailable(date(2025, time.March, 10)))
	_, ok := s.NextAvailable(date(2025, time.March, 10))
	assert.False(t, ok)
	_, ok = s.PreviousAvailable(date(2025, time.March, 10), date(2025, time.January, 1))
	assert.False(t, ok)
}

func TestNextAvailableMondayOnly(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})

	tuesday := date(2025, time.March, 4)
	require.Equal(t, time.Tuesday, tuesday.Weekday())

	next, ok := s.NextAvailable(tuesday)
	require.True(t, ok)
	assert.Equal(t, date(2025, time.March, 10), next)

	// Inclusive: scanning from a Monday returns that Monday.
	same, ok := s.NextAvailable(next)
	require.True(t, ok)
	assert.Equal(t, next, same)
}

func TestNextAvailableDatedFarFuture(t *testing.T) {
	s, err := NewDated(map[string]Window{"2025-09-20": window("10:00", "16:00")})
	require.NoError(t, err)

	next, ok := s.NextAvailable(date(2025, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, date(2025, time.September, 20), next)
}

func TestPreviousAvailableBoundedByToday(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})

	// Most recent Monday before 2025-03-12 is 2025-03-10.
	prev, ok := s.PreviousAvailable(date(2025, time.March, 12), date(2025, time.March, 1))
	require.True(t, ok)
	assert.Equal(t, date(2025, time.March, 10), prev)

	// Same query with today past that Monday: nothing bookable remains.
	_, ok = s.PreviousAvailable(date(2025, time.March, 12), date(2025, time.March, 11))
	assert.False(t, ok)
}

func TestNextPreviousScansAreConsistent(t *testing.T) {
	s := NewWeekly(map[time.Weekday]Window{
		time.Monday: window("09:00", "18:00"),
	})

	d := date(2025, time.March, 4) // Tuesday, not itself available
	require.False(t, s.IsAvailable(d))

	next, ok := s.NextAvailable(d)
	require.True(t, ok)

	prev, ok := s.PreviousAvailable(next, date(2025, time.February, 1))
	require.True(t, ok)
	// Walking forward then back across the available-date sequence lands
	// strictly before d's successor.
	assert.True(t, prev.Before(d.AddDate(0, 0, 1)))
}
