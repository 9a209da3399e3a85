package out

import (
	"context"

	"plank/internal/modules/tracker/domain"
)

// LandmarkEvaluator scores the latest landmarks once per tick.
type LandmarkEvaluator interface {
	Evaluate(ctx context.Context) (domain.Reading, error)
}
