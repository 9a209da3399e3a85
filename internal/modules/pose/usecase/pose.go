package usecase

import (
	"context"
	"fmt"
	"strings"

	"plank/internal/modules/pose/dto"
	posein "plank/internal/modules/pose/port/in"
	"plank/internal/modules/pose/service"
	apperrors "plank/internal/platform/errors"
)

type Interactor struct {
	pose      *service.PoseService
	detectors *service.DetectorService
}

func NewInteractor(pose *service.PoseService, detectors *service.DetectorService) posein.Usecase {
	return &Interactor{pose: pose, detectors: detectors}
}

func (i *Interactor) Attach(ctx context.Context, input dto.SourceInput) (dto.SourceOutput, error) {
	input.ReplayPath = strings.TrimSpace(input.ReplayPath)
	input.Detector = strings.TrimSpace(input.Detector)
	return i.pose.Attach(ctx, input)
}

func (i *Interactor) Detach(ctx context.Context) error {
	return i.pose.Detach(ctx)
}

func (i *Interactor) Evaluate(ctx context.Context) (dto.EvaluateOutput, error) {
	return i.pose.Evaluate(ctx)
}

func (i *Interactor) ScoreReplay(ctx context.Context, path string) ([]dto.FrameScoreOutput, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: replay path is required", apperrors.ErrInvalidInput)
	}
	return i.pose.ScoreReplay(ctx, path)
}

func (i *Interactor) ListDetectors(ctx context.Context) ([]dto.DetectorInfo, error) {
	return i.detectors.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.detectors.Doctor(ctx)
}
