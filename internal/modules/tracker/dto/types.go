package dto

import (
	"time"

	sessiondto "plank/internal/modules/session/dto"
)

type PhaseChange struct {
	Phase      string
	Confidence float64
	At         time.Time
}

type StartOutput struct {
	SessionID     string
	StartedAt     time.Time
	AlreadyActive bool
}

type SnapshotOutput struct {
	Status               string
	Phase                string
	Confidence           float64
	CalibrationRemaining time.Duration
	HasActive            bool
	Active               sessiondto.ActiveSessionOutput
	HasLatest            bool
	Latest               sessiondto.RecordOutput
}
