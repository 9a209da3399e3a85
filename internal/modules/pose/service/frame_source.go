package service

import (
	"context"
	"sync"

	"plank/internal/modules/pose/domain"
)

// FrameSource replays recorded frames one per call. Without loop it keeps yielding the last frame.
type FrameSource struct {
	mu     sync.Mutex
	frames []domain.Frame
	next   int
	loop   bool
}

func NewFrameSource(frames []domain.Frame, loop bool) *FrameSource {
	return &FrameSource{frames: frames, loop: loop}
}

func (s *FrameSource) Latest(ctx context.Context) (domain.LandmarkSet, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.LandmarkSet{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return domain.LandmarkSet{}, false, nil
	}
	idx := s.next
	if idx >= len(s.frames) {
		if s.loop {
			idx = 0
		} else {
			idx = len(s.frames) - 1
		}
	}
	s.next = idx + 1
	frame := s.frames[idx]
	return frame.Set, frame.Detected, nil
}

func (s *FrameSource) Close() error { return nil }
