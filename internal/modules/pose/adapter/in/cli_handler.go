package in

import (
	"context"

	posedto "plank/internal/modules/pose/dto"
	posein "plank/internal/modules/pose/port/in"
)

type CLIHandler struct {
	usecase posein.Usecase
}

func NewCLIHandler(usecase posein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Attach(ctx context.Context, replayPath, detector string, loop bool) (posedto.SourceOutput, error) {
	return h.usecase.Attach(ctx, posedto.SourceInput{ReplayPath: replayPath, Detector: detector, Loop: loop})
}

func (h CLIHandler) Detach(ctx context.Context) error {
	return h.usecase.Detach(ctx)
}

func (h CLIHandler) ScoreReplay(ctx context.Context, path string) ([]posedto.FrameScoreOutput, error) {
	return h.usecase.ScoreReplay(ctx, path)
}

func (h CLIHandler) ListDetectors(ctx context.Context) ([]posedto.DetectorInfo, error) {
	return h.usecase.ListDetectors(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]posedto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
