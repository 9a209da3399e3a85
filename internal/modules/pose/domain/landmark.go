package domain

import "fmt"

// LandmarkCount is the size of the fixed body layout produced by the detector.
const LandmarkCount = 33

const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftHip       = 23
	RightHip      = 24
	LeftAnkle     = 27
	RightAnkle    = 28
)

// RequiredIndices are the only slots the plank score reads.
var RequiredIndices = [...]int{LeftShoulder, RightShoulder, LeftHip, RightHip, LeftAnkle, RightAnkle}

// Landmark is a normalized body point. X and Y are fractions of the frame, Z is relative depth.
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Visibility float64
}

// LandmarkSet is one detection. Slots the detector did not report stay absent.
type LandmarkSet struct {
	points  [LandmarkCount]Landmark
	present [LandmarkCount]bool
}

func (s *LandmarkSet) Set(index int, l Landmark) error {
	if index < 0 || index >= LandmarkCount {
		return fmt.Errorf("landmark index %d out of range", index)
	}
	s.points[index] = l
	s.present[index] = true
	return nil
}

func (s LandmarkSet) At(index int) (Landmark, bool) {
	if index < 0 || index >= LandmarkCount || !s.present[index] {
		return Landmark{}, false
	}
	return s.points[index], true
}

// Complete reports whether every required slot is present.
func (s LandmarkSet) Complete() bool {
	for _, idx := range RequiredIndices {
		if !s.present[idx] {
			return false
		}
	}
	return true
}

func (s LandmarkSet) Len() int {
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Frame is what a landmark source yields per tick: either no body or one set.
type Frame struct {
	Detected bool
	Set      LandmarkSet
}
