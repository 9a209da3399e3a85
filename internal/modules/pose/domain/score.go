package domain

import "math"

// Tolerances bound each sub-score; a deviation at or beyond the tolerance scores zero.
type Tolerances struct {
	Horizontal   float64
	Straightness float64
	HipSag       float64
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		Horizontal:   math.Pi / 4,
		Straightness: math.Pi / 8,
		HipSag:       0.15,
	}
}

// Breakdown carries the three sub-scores next to their mean.
type Breakdown struct {
	Horizontal   float64
	Straightness float64
	HipSag       float64
	Score        float64
}

type point struct{ x, y, z float64 }

func midpoint(a, b Landmark) point {
	return point{x: (a.X + b.X) / 2, y: (a.Y + b.Y) / 2, z: (a.Z + b.Z) / 2}
}

func vector(from, to point) point {
	return point{x: to.x - from.x, y: to.y - from.y, z: to.z - from.z}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// angleFromHorizontal folds the body axis into [0, π/2] so that facing left or right scores the same.
func angleFromHorizontal(v point) float64 {
	return math.Atan2(math.Abs(v.y), math.Abs(v.x))
}

func signedAngle(a, b point) float64 {
	dot := a.x*b.x + a.y*b.y
	det := a.x*b.y - a.y*b.x
	return math.Atan2(det, dot)
}

// Evaluate scores how closely set matches a held plank. ok is false when a required landmark is missing.
func Evaluate(set LandmarkSet, tol Tolerances) (Breakdown, bool) {
	if !set.Complete() {
		return Breakdown{}, false
	}
	ls, _ := set.At(LeftShoulder)
	rs, _ := set.At(RightShoulder)
	lh, _ := set.At(LeftHip)
	rh, _ := set.At(RightHip)
	la, _ := set.At(LeftAnkle)
	ra, _ := set.At(RightAnkle)

	shoulders := midpoint(ls, rs)
	hips := midpoint(lh, rh)
	ankles := midpoint(la, ra)

	body := vector(shoulders, ankles)
	torso := vector(shoulders, hips)
	legs := vector(hips, ankles)

	b := Breakdown{
		Horizontal:   1 - clamp01(angleFromHorizontal(body)/tol.Horizontal),
		Straightness: 1 - clamp01(math.Abs(signedAngle(torso, legs))/tol.Straightness),
		HipSag:       1 - clamp01(math.Abs(hips.y-(shoulders.y+ankles.y)/2)/tol.HipSag),
	}
	b.Score = clamp01((b.Horizontal + b.Straightness + b.HipSag) / 3)
	return b, true
}

// Score returns the plank confidence in [0,1]; an incomplete set scores 0.
func Score(set LandmarkSet, tol Tolerances) float64 {
	b, ok := Evaluate(set, tol)
	if !ok {
		return 0
	}
	return b.Score
}
