package in

import (
	"context"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/modules/tracker/dto"
	trackerin "plank/internal/modules/tracker/port/in"
)

type TUIHandler struct {
	usecase trackerin.Usecase
}

func NewTUIHandler(usecase trackerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context) (dto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h TUIHandler) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h TUIHandler) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h TUIHandler) Subscribe() (<-chan dto.PhaseChange, func()) {
	return h.usecase.Subscribe(0)
}

func (h TUIHandler) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h TUIHandler) ResetHistory(ctx context.Context) error {
	return h.usecase.ResetHistory(ctx)
}

func (h TUIHandler) Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error) {
	return h.usecase.Trend(ctx, days)
}
