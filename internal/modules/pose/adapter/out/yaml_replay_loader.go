package out

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plank/internal/modules/pose/domain"
	poseout "plank/internal/modules/pose/port/out"
)

// replayFile is the on-disk layout of a recorded landmark stream:
//
//	frames:
//	  - landmarks: {11: [x, y, z], 12: [x, y, z], ...}
//	    repeat: 30
//	  - absent: true
type replayFile struct {
	Frames []replayFrame `yaml:"frames"`
}

type replayFrame struct {
	Absent    bool              `yaml:"absent"`
	Repeat    int               `yaml:"repeat"`
	Landmarks map[int][]float64 `yaml:"landmarks"`
}

type YAMLReplayLoader struct{}

func NewYAMLReplayLoader() poseout.ReplayLoader {
	return YAMLReplayLoader{}
}

func (YAMLReplayLoader) Load(_ context.Context, path string) ([]domain.Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	file := replayFile{}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	frames := make([]domain.Frame, 0, len(file.Frames))
	for i, rf := range file.Frames {
		frame, err := rf.toDomain()
		if err != nil {
			return nil, fmt.Errorf("replay frame %d: %w", i, err)
		}
		repeat := rf.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for n := 0; n < repeat; n++ {
			frames = append(frames, frame)
		}
	}
	return frames, nil
}

func (rf replayFrame) toDomain() (domain.Frame, error) {
	if rf.Absent {
		if len(rf.Landmarks) > 0 {
			return domain.Frame{}, fmt.Errorf("absent frame must not carry landmarks")
		}
		return domain.Frame{}, nil
	}
	set := domain.LandmarkSet{}
	for idx, coords := range rf.Landmarks {
		if len(coords) < 2 || len(coords) > 4 {
			return domain.Frame{}, fmt.Errorf("landmark %d needs [x, y, z?, visibility?]", idx)
		}
		l := domain.Landmark{X: coords[0], Y: coords[1], Visibility: 1}
		if len(coords) > 2 {
			l.Z = coords[2]
		}
		if len(coords) > 3 {
			l.Visibility = coords[3]
		}
		if err := set.Set(idx, l); err != nil {
			return domain.Frame{}, err
		}
	}
	return domain.Frame{Detected: true, Set: set}, nil
}
