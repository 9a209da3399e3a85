package in

import (
	"context"

	"plank/internal/modules/session/dto"
)

// Usecase records phase changes into the active session and keeps the finished-session history.
// Callers must funnel all mutating calls through a single goroutine.
type Usecase interface {
	Hydrate(ctx context.Context) error
	Start(ctx context.Context) (dto.StartOutput, error)
	RecordPhase(ctx context.Context, input dto.RecordPhaseInput) error
	Stop(ctx context.Context) (dto.StopOutput, error)
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
	History(ctx context.Context, limit int) ([]dto.RecordOutput, error)
	ResetHistory(ctx context.Context) error
	Trend(ctx context.Context, days int) (dto.TrendOutput, error)
	Export(ctx context.Context, dir string) (dto.ExportOutput, error)
}
