package in

import (
	"context"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/modules/tracker/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	Subscribe(buffer int) (<-chan dto.PhaseChange, func())
	History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error)
	ResetHistory(ctx context.Context) error
	Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error)
}
