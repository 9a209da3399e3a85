package usecase

import (
	"context"
	"fmt"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/modules/tracker/dto"
	trackerin "plank/internal/modules/tracker/port/in"
	"plank/internal/modules/tracker/service"
	apperrors "plank/internal/platform/errors"
)

const defaultSubscriberBuffer = 32

type Interactor struct {
	runner *service.Runner
}

func NewInteractor(runner *service.Runner) trackerin.Usecase {
	return &Interactor{runner: runner}
}

func (i *Interactor) Start(ctx context.Context) (dto.StartOutput, error) {
	return i.runner.Start(ctx)
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	return i.runner.Stop(ctx)
}

func (i *Interactor) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return i.runner.Snapshot(ctx)
}

func (i *Interactor) Subscribe(buffer int) (<-chan dto.PhaseChange, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return i.runner.Subscribe(buffer)
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be non-negative", apperrors.ErrInvalidInput)
	}
	return i.runner.History(ctx, limit)
}

func (i *Interactor) ResetHistory(ctx context.Context) error {
	return i.runner.ResetHistory(ctx)
}

func (i *Interactor) Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error) {
	if days < 0 {
		return sessiondto.TrendOutput{}, fmt.Errorf("%w: days must be non-negative", apperrors.ErrInvalidInput)
	}
	return i.runner.Trend(ctx, days)
}
