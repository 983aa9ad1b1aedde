package service

import (
	"sync"
	"time"
)

// CapacitySnapshot is the oracle's answer for one (space, interval) query.
// It is never cached across parameter changes: any change to the space,
// date or time range invalidates it and forces a fresh query.
type CapacitySnapshot struct {
	SpaceID        string
	Start          time.Time
	End            time.Time
	AvailableSlots int
	// Degraded marks a snapshot built from the space's configured maximum
	// because the oracle was unreachable.
	Degraded bool
	Sequence uint64
}

// CapacityTracker orders compose-time capacity queries per space. Rapid
// input changes can leave several queries in flight, and the oracle does not
// resolve them in issuance order; only the response carrying the most
// recently issued sequence number may land, so a slow stale answer never
// overwrites a fresher display.
type CapacityTracker struct {
	mu     sync.Mutex
	issued map[string]uint64
	latest map[string]CapacitySnapshot
}

func NewCapacityTracker() *CapacityTracker {
	return &CapacityTracker{
		issued: make(map[string]uint64),
		latest: make(map[string]CapacitySnapshot),
	}
}

// Issue hands out the next sequence number for a space's capacity query.
func (t *CapacityTracker) Issue(spaceID string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[spaceID]++
	return t.issued[spaceID]
}

// Record stores the snapshot if its sequence is the latest issued for the
// space, and reports whether it was accepted.
func (t *CapacityTracker) Record(snap CapacitySnapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if snap.Sequence != t.issued[snap.SpaceID] {
		return false
	}
	t.latest[snap.SpaceID] = snap
	return true
}

// Latest returns the most recent accepted snapshot for a space.
func (t *CapacityTracker) Latest(spaceID string) (CapacitySnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap, ok := t.latest[spaceID]
	return snap, ok
}
