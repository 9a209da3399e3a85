package out

import (
	"context"

	posein "plank/internal/modules/pose/port/in"
	"plank/internal/modules/tracker/domain"
	trackerout "plank/internal/modules/tracker/port/out"
)

type PoseEvaluatorAdapter struct {
	pose posein.Usecase
}

func NewPoseEvaluatorAdapter(pose posein.Usecase) trackerout.LandmarkEvaluator {
	return &PoseEvaluatorAdapter{pose: pose}
}

func (a *PoseEvaluatorAdapter) Evaluate(ctx context.Context) (domain.Reading, error) {
	out, err := a.pose.Evaluate(ctx)
	if err != nil {
		return domain.Reading{}, err
	}
	return domain.Reading{Detected: out.Detected, Score: out.Score}, nil
}
