package domain

import "time"

// Reading is one tick's detector outcome. Score is ignored when nothing was detected.
type Reading struct {
	Detected bool
	Score    float64
}

// Change is an externally visible phase transition.
type Change struct {
	Phase      Phase
	Confidence float64
	At         time.Time
}

// Classifier is the phase state machine. Transitions return a new value and leave the receiver untouched.
type Classifier struct {
	Thresholds          Thresholds
	Phase               Phase
	Confidence          float64
	CalibrationDeadline time.Time
}

func NewClassifier(thresholds Thresholds) Classifier {
	return Classifier{Thresholds: thresholds, Phase: PhaseIdle}
}

// Start enters calibrating until now+window. Calibrating is announced on every start.
func (c Classifier) Start(now time.Time, window time.Duration) (Classifier, Change, bool) {
	c.Phase = PhaseCalibrating
	c.Confidence = 0
	c.CalibrationDeadline = now.Add(window)
	return c, Change{Phase: PhaseCalibrating, At: now}, true
}

// Observe classifies one reading. While calibrating the confidence updates but the phase holds.
// A dead-zone reading straight after calibration leaves the classifier undecided.
func (c Classifier) Observe(now time.Time, r Reading) (Classifier, Change, bool) {
	if c.Phase == PhaseIdle {
		return c, Change{}, false
	}
	score := 0.0
	if r.Detected {
		score = clamp01(r.Score)
	}
	c.Confidence = score
	if c.Phase == PhaseCalibrating && now.Before(c.CalibrationDeadline) {
		return c, Change{}, false
	}

	next := c.Phase
	switch {
	case !r.Detected:
		next = PhaseBreak
	case score >= c.Thresholds.Enter:
		next = PhasePlank
	case score <= c.Thresholds.Exit:
		next = PhaseBreak
	}
	if next == c.Phase {
		return c, Change{}, false
	}
	c.Phase = next
	return c, Change{Phase: next, Confidence: score, At: now}, true
}

// Stop returns to idle from any phase.
func (c Classifier) Stop(now time.Time) (Classifier, Change, bool) {
	if c.Phase == PhaseIdle {
		return c, Change{}, false
	}
	c.Phase = PhaseIdle
	c.Confidence = 0
	c.CalibrationDeadline = time.Time{}
	return c, Change{Phase: PhaseIdle, At: now}, true
}

// CalibrationRemaining reports the time left in the calibration window.
func (c Classifier) CalibrationRemaining(now time.Time) time.Duration {
	if c.Phase != PhaseCalibrating {
		return 0
	}
	if d := c.CalibrationDeadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
