package in

import (
	"context"

	sessiondto "plank/internal/modules/session/dto"
	sessionin "plank/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	if err := h.usecase.Hydrate(ctx); err != nil {
		return nil, err
	}
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) ResetHistory(ctx context.Context) error {
	return h.usecase.ResetHistory(ctx)
}

func (h CLIHandler) Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error) {
	if err := h.usecase.Hydrate(ctx); err != nil {
		return sessiondto.TrendOutput{}, err
	}
	return h.usecase.Trend(ctx, days)
}

func (h CLIHandler) Export(ctx context.Context, dir string) (sessiondto.ExportOutput, error) {
	if err := h.usecase.Hydrate(ctx); err != nil {
		return sessiondto.ExportOutput{}, err
	}
	return h.usecase.Export(ctx, dir)
}
