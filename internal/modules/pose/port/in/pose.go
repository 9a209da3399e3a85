package in

import (
	"context"

	"plank/internal/modules/pose/dto"
)

type Usecase interface {
	Attach(ctx context.Context, input dto.SourceInput) (dto.SourceOutput, error)
	Detach(ctx context.Context) error
	Evaluate(ctx context.Context) (dto.EvaluateOutput, error)
	ScoreReplay(ctx context.Context, path string) ([]dto.FrameScoreOutput, error)
	ListDetectors(ctx context.Context) ([]dto.DetectorInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
}
