package in

import (
	"context"
	"time"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/modules/tracker/dto"
	trackerin "plank/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Track runs one session until ctx is done or duration elapses (zero means no limit),
// reporting each phase change, and then stops it.
func (h CLIHandler) Track(ctx context.Context, duration time.Duration, onChange func(dto.PhaseChange)) (sessiondto.StopOutput, error) {
	changes, cancel := h.usecase.Subscribe(0)
	defer cancel()

	if _, err := h.usecase.Start(ctx); err != nil {
		return sessiondto.StopOutput{}, err
	}

	var limit <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		limit = timer.C
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-limit:
			break loop
		case change, ok := <-changes:
			if !ok {
				break loop
			}
			if onChange != nil {
				onChange(change)
			}
		}
	}

	return h.usecase.Stop(context.WithoutCancel(ctx))
}

func (h CLIHandler) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}
