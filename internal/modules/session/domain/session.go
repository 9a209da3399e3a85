package domain

import "time"

const SchemaVersion = 2

type Status string

const (
	StatusIdle     Status = "idle"
	StatusTracking Status = "tracking"
)

// ActiveSession accumulates segments while tracking. Segments are strictly ordered by start,
// never overlap, and only the trailing one may be open.
type ActiveSession struct {
	ID                      string
	StartedAt               time.Time
	CurrentState            State
	CurrentSegmentStartedAt time.Time
	Segments                []Segment
}

// NewActiveSession starts in the resting baseline with no segments.
func NewActiveSession(id string, at time.Time) ActiveSession {
	return ActiveSession{
		ID:                      id,
		StartedAt:               at,
		CurrentState:            StateBreak,
		CurrentSegmentStartedAt: at,
		Segments:                []Segment{},
	}
}

// Record applies a phase change at the given instant and reports whether the segments changed.
// Instants that precede the trailing segment are pulled forward to keep segments ordered.
func (a *ActiveSession) Record(state State, at time.Time, newID func() string) bool {
	n := len(a.Segments)
	if n == 0 {
		a.open(state, at, newID)
		return true
	}
	last := &a.Segments[n-1]
	if last.Open() && last.State == state {
		return false
	}
	if !last.Open() {
		if at.Before(last.EndedAt) {
			at = last.EndedAt
		}
		a.open(state, at, newID)
		return true
	}
	if at.After(last.StartedAt) {
		last.close(at)
		a.open(state, at, newID)
		return true
	}

	// The trailing segment would close with zero length: drop it instead of keeping an empty interval.
	at = last.StartedAt
	a.Segments = a.Segments[:n-1]
	if n >= 2 {
		prev := &a.Segments[n-2]
		if prev.State == state && prev.EndedAt.Equal(at) {
			prev.EndedAt = time.Time{}
			prev.Duration = 0
			a.CurrentState = state
			a.CurrentSegmentStartedAt = prev.StartedAt
			return true
		}
	}
	a.open(state, at, newID)
	return true
}

func (a *ActiveSession) open(state State, at time.Time, newID func() string) {
	a.Segments = append(a.Segments, Segment{ID: newID(), State: state, StartedAt: at})
	a.CurrentState = state
	a.CurrentSegmentStartedAt = at
}

// Finalize returns a copy of the segments with the trailing open segment closed at now.
func (a ActiveSession) Finalize(now time.Time) []Segment {
	out := make([]Segment, len(a.Segments))
	copy(out, a.Segments)
	if n := len(out); n > 0 && out[n-1].Open() {
		out[n-1].close(now)
	}
	return out
}

func (a ActiveSession) Clone() ActiveSession {
	c := a
	c.Segments = make([]Segment, len(a.Segments))
	copy(c.Segments, a.Segments)
	return c
}

// Live is the running view of a session with the open segment counted up to now.
type Live struct {
	Elapsed     time.Duration
	Plank       time.Duration
	Break       time.Duration
	CurrentHold time.Duration
}

func (a ActiveSession) Live(now time.Time) Live {
	live := Live{}
	if d := now.Sub(a.StartedAt); d > 0 {
		live.Elapsed = d
	}
	for _, seg := range a.Segments {
		switch seg.State {
		case StatePlank:
			live.Plank += seg.Elapsed(now)
		default:
			live.Break += seg.Elapsed(now)
		}
	}
	if n := len(a.Segments); n > 0 {
		last := a.Segments[n-1]
		if last.Open() && last.State == StatePlank {
			live.CurrentHold = last.Elapsed(now)
		}
	}
	return live
}
