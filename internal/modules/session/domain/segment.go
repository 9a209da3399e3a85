package domain

import "time"

// State is the recordable projection of a tracker phase.
type State string

const (
	StatePlank State = "plank"
	StateBreak State = "break"
)

// Normalize maps any phase name onto a recordable state. Only "plank" records as plank.
func Normalize(phase string) State {
	if State(phase) == StatePlank {
		return StatePlank
	}
	return StateBreak
}

// Segment is a maximal interval with a constant state. A zero EndedAt marks it open.
type Segment struct {
	ID        string
	State     State
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}

// Instant truncates t to the millisecond precision sessions are recorded and stored at.
func Instant(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

func (s Segment) Open() bool {
	return s.EndedAt.IsZero()
}

func (s *Segment) close(at time.Time) {
	if at.Before(s.StartedAt) {
		at = s.StartedAt
	}
	s.EndedAt = at
	s.Duration = at.Sub(s.StartedAt)
}

// Elapsed is the closed duration, or the time since start for an open segment.
func (s Segment) Elapsed(now time.Time) time.Duration {
	if !s.Open() {
		return s.Duration
	}
	if d := now.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}
