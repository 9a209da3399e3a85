package domain

import (
	"errors"
	"fmt"
	"time"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseCalibrating Phase = "calibrating"
	PhasePlank       Phase = "plank"
	PhaseBreak       Phase = "break"
)

// Recordable reports whether the phase is persisted as a segment state.
func (p Phase) Recordable() bool {
	return p == PhasePlank || p == PhaseBreak
}

const (
	DefaultEnter             = 0.62
	DefaultExit              = 0.48
	DefaultCalibrationWindow = 1500 * time.Millisecond
)

var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds bound the hysteresis dead zone (Exit, Enter).
type Thresholds struct {
	Enter float64
	Exit  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Enter: DefaultEnter, Exit: DefaultExit}
}

func (t Thresholds) Validate() error {
	if t.Enter < 0 || t.Enter > 1 || t.Exit < 0 || t.Exit > 1 {
		return fmt.Errorf("%w: thresholds must be within [0,1]", ErrInvalidThresholds)
	}
	if t.Exit >= t.Enter {
		return fmt.Errorf("%w: exit %.2f must be below enter %.2f", ErrInvalidThresholds, t.Exit, t.Enter)
	}
	return nil
}
