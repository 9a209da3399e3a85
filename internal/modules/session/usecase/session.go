package usecase

import (
	"context"
	"fmt"
	"strings"

	"plank/internal/modules/session/domain"
	sessiondto "plank/internal/modules/session/dto"
	sessionin "plank/internal/modules/session/port/in"
	"plank/internal/modules/session/service"
	apperrors "plank/internal/platform/errors"
)

const defaultTrendDays = 7

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Hydrate(ctx context.Context) error {
	return i.svc.Hydrate(ctx)
}

func (i *Interactor) Start(ctx context.Context) (sessiondto.StartOutput, error) {
	active, started := i.svc.Start(ctx)
	return sessiondto.StartOutput{SessionID: active.ID, StartedAt: active.StartedAt, AlreadyActive: !started}, nil
}

func (i *Interactor) RecordPhase(_ context.Context, input sessiondto.RecordPhaseInput) error {
	if input.At.IsZero() {
		return fmt.Errorf("%w: phase change timestamp is required", apperrors.ErrInvalidInput)
	}
	i.svc.RecordPhase(strings.TrimSpace(input.Phase), input.At)
	return nil
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	record, ok, err := i.svc.Stop(ctx)
	if !ok {
		return sessiondto.StopOutput{}, err
	}
	return sessiondto.StopOutput{Recorded: true, Record: toRecordOutput(record)}, err
}

func (i *Interactor) GetActive(_ context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, ok := i.svc.Active()
	if !ok {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	live, _ := i.svc.Live()
	return sessiondto.ActiveSessionOutput{
		SessionID:               active.ID,
		StartedAt:               active.StartedAt,
		CurrentState:            string(active.CurrentState),
		CurrentSegmentStartedAt: active.CurrentSegmentStartedAt,
		Segments:                toSegmentOutputs(active.Segments),
		Elapsed:                 live.Elapsed,
		Plank:                   live.Plank,
		Break:                   live.Break,
		CurrentHold:             live.CurrentHold,
	}, nil
}

func (i *Interactor) History(_ context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be non-negative", apperrors.ErrInvalidInput)
	}
	records := i.svc.History(limit)
	out := make([]sessiondto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordOutput(record))
	}
	return out, nil
}

func (i *Interactor) ResetHistory(ctx context.Context) error {
	return i.svc.Reset(ctx)
}

func (i *Interactor) Trend(_ context.Context, days int) (sessiondto.TrendOutput, error) {
	if days < 0 {
		return sessiondto.TrendOutput{}, fmt.Errorf("%w: days must be non-negative", apperrors.ErrInvalidInput)
	}
	if days == 0 {
		days = defaultTrendDays
	}
	trend := i.svc.Trend(days)
	out := sessiondto.TrendOutput{
		Days:              make([]sessiondto.DayTotalOutput, 0, len(trend.Days)),
		Total:             trend.Total,
		ActiveDays:        trend.ActiveDays,
		MeanPerActiveDay:  trend.MeanPerActiveDay,
		LongestHoldMean:   trend.LongestHoldMean,
		LongestHoldStdDev: trend.LongestHoldStdDev,
	}
	for _, day := range trend.Days {
		out.Days = append(out.Days, sessiondto.DayTotalOutput{Day: day.Day, Plank: day.Plank, Sessions: day.Sessions})
	}
	return out, nil
}

func (i *Interactor) Export(ctx context.Context, dir string) (sessiondto.ExportOutput, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return sessiondto.ExportOutput{}, fmt.Errorf("%w: export directory is required", apperrors.ErrInvalidInput)
	}
	paths, err := i.svc.Export(ctx, dir)
	return sessiondto.ExportOutput{Paths: paths}, err
}

func toSegmentOutputs(segments []domain.Segment) []sessiondto.SegmentOutput {
	out := make([]sessiondto.SegmentOutput, 0, len(segments))
	for _, seg := range segments {
		out = append(out, sessiondto.SegmentOutput{
			ID:        seg.ID,
			State:     string(seg.State),
			StartedAt: seg.StartedAt,
			EndedAt:   seg.EndedAt,
			Duration:  seg.Duration,
			Open:      seg.Open(),
		})
	}
	return out
}

func toRecordOutput(record domain.Record) sessiondto.RecordOutput {
	return sessiondto.RecordOutput{
		ID:          record.ID,
		StartedAt:   record.StartedAt,
		EndedAt:     record.EndedAt,
		Segments:    toSegmentOutputs(record.Segments),
		TotalPlank:  record.TotalPlank,
		TotalBreak:  record.TotalBreak,
		LongestHold: record.LongestHold,
	}
}
