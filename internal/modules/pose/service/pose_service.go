package service

import (
	"context"
	"fmt"
	"sync"

	"plank/internal/modules/pose/domain"
	"plank/internal/modules/pose/dto"
	poseout "plank/internal/modules/pose/port/out"
	apperrors "plank/internal/platform/errors"
	"plank/internal/platform/log"
)

// PoseService scores landmark sets and owns the currently attached landmark source.
type PoseService struct {
	tol       domain.Tolerances
	replay    poseout.ReplayLoader
	detectors *DetectorService

	mu     sync.Mutex
	source poseout.LandmarkSource
}

func NewPoseService(tol domain.Tolerances, replay poseout.ReplayLoader, detectors *DetectorService) *PoseService {
	return &PoseService{tol: tol, replay: replay, detectors: detectors}
}

func (s *PoseService) Attach(ctx context.Context, input dto.SourceInput) (dto.SourceOutput, error) {
	if (input.ReplayPath == "") == (input.Detector == "") {
		return dto.SourceOutput{}, fmt.Errorf("%w: exactly one of replay path or detector is required", apperrors.ErrInvalidInput)
	}
	var (
		source poseout.LandmarkSource
		out    dto.SourceOutput
	)
	if input.ReplayPath != "" {
		frames, err := s.replay.Load(ctx, input.ReplayPath)
		if err != nil {
			return dto.SourceOutput{}, err
		}
		source = NewFrameSource(frames, input.Loop)
		out = dto.SourceOutput{Kind: "replay", Name: input.ReplayPath, Frames: len(frames)}
	} else {
		if s.detectors == nil {
			return dto.SourceOutput{}, fmt.Errorf("detectors are not configured")
		}
		opened, meta, err := s.detectors.Open(ctx, input.Detector)
		if err != nil {
			return dto.SourceOutput{}, err
		}
		source = opened
		out = dto.SourceOutput{Kind: "detector", Name: meta.Name}
	}

	s.mu.Lock()
	previous := s.source
	s.source = source
	s.mu.Unlock()
	if previous != nil {
		if err := previous.Close(); err != nil {
			log.Warnw("close previous landmark source", "error", err)
		}
	}
	log.Infow("landmark source attached", "kind", out.Kind, "name", out.Name)
	return out, nil
}

func (s *PoseService) Detach(_ context.Context) error {
	s.mu.Lock()
	source := s.source
	s.source = nil
	s.mu.Unlock()
	if source == nil {
		return nil
	}
	if err := source.Close(); err != nil {
		return fmt.Errorf("close landmark source: %w", err)
	}
	return nil
}

// Evaluate pulls the latest detection and scores it. A missing body is not an error.
func (s *PoseService) Evaluate(ctx context.Context) (dto.EvaluateOutput, error) {
	s.mu.Lock()
	source := s.source
	s.mu.Unlock()
	if source == nil {
		return dto.EvaluateOutput{}, apperrors.ErrNoLandmarkSource
	}
	set, found, err := source.Latest(ctx)
	if err != nil {
		return dto.EvaluateOutput{}, fmt.Errorf("read landmarks: %w", err)
	}
	if !found {
		return dto.EvaluateOutput{}, nil
	}
	b, _ := domain.Evaluate(set, s.tol)
	return dto.EvaluateOutput{
		Detected:     true,
		Score:        b.Score,
		Horizontal:   b.Horizontal,
		Straightness: b.Straightness,
		HipSag:       b.HipSag,
	}, nil
}

func (s *PoseService) ScoreReplay(ctx context.Context, path string) ([]dto.FrameScoreOutput, error) {
	frames, err := s.replay.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FrameScoreOutput, 0, len(frames))
	for i, frame := range frames {
		row := dto.FrameScoreOutput{Index: i, Detected: frame.Detected}
		if frame.Detected {
			b, ok := domain.Evaluate(frame.Set, s.tol)
			row.Complete = ok
			row.Score = b.Score
			row.Horizontal = b.Horizontal
			row.Straightness = b.Straightness
			row.HipSag = b.HipSag
		}
		out = append(out, row)
	}
	return out, nil
}
