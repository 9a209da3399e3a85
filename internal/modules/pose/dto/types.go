package dto

type SourceInput struct {
	ReplayPath string
	Detector   string
	Loop       bool
}

type SourceOutput struct {
	Kind   string
	Name   string
	Frames int
}

type EvaluateOutput struct {
	Detected     bool
	Score        float64
	Horizontal   float64
	Straightness float64
	HipSag       float64
}

type FrameScoreOutput struct {
	Index        int
	Detected     bool
	Complete     bool
	Score        float64
	Horizontal   float64
	Straightness float64
	HipSag       float64
}

type DetectorInfo struct {
	Name    string
	Version string
	Binary  string
	Enabled bool
}

type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Model           string
	Error           string
}
