package dto

import "time"

type StartOutput struct {
	SessionID     string
	StartedAt     time.Time
	AlreadyActive bool
}

type RecordPhaseInput struct {
	Phase string
	At    time.Time
}

type SegmentOutput struct {
	ID        string
	State     string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Open      bool
}

type ActiveSessionOutput struct {
	SessionID               string
	StartedAt               time.Time
	CurrentState            string
	CurrentSegmentStartedAt time.Time
	Segments                []SegmentOutput
	Elapsed                 time.Duration
	Plank                   time.Duration
	Break                   time.Duration
	CurrentHold             time.Duration
}

type RecordOutput struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Segments    []SegmentOutput
	TotalPlank  time.Duration
	TotalBreak  time.Duration
	LongestHold time.Duration
}

type StopOutput struct {
	Recorded bool
	Record   RecordOutput
}

type DayTotalOutput struct {
	Day      time.Time
	Plank    time.Duration
	Sessions int
}

type TrendOutput struct {
	Days              []DayTotalOutput
	Total             time.Duration
	ActiveDays        int
	MeanPerActiveDay  time.Duration
	LongestHoldMean   time.Duration
	LongestHoldStdDev time.Duration
}

type ExportOutput struct {
	Paths []string
}
