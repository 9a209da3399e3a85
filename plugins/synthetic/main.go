package main

import (
	"context"
	"os"
	"time"

	"github.com/hashicorp/go-plugin"

	pluginrpc "plank/internal/modules/pose/adapter/out/rpc"
	"plank/internal/modules/pose/domain"
)

// server scripts a repeating routine: hold a plank, drop out of frame briefly, then rest in a pike.
type server struct {
	started time.Time
	period  time.Duration
}

type joint struct {
	index int
	x, y  float64
}

var (
	plankPose = []joint{
		{domain.LeftShoulder, 0.22, 0.52}, {domain.RightShoulder, 0.22, 0.54},
		{domain.LeftHip, 0.50, 0.53}, {domain.RightHip, 0.50, 0.55},
		{domain.LeftAnkle, 0.80, 0.54}, {domain.RightAnkle, 0.80, 0.56},
	}
	pikePose = []joint{
		{domain.LeftShoulder, 0.22, 0.62}, {domain.RightShoulder, 0.22, 0.63},
		{domain.LeftHip, 0.50, 0.30}, {domain.RightHip, 0.50, 0.31},
		{domain.LeftAnkle, 0.80, 0.62}, {domain.RightAnkle, 0.80, 0.63},
	}
)

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{Name: "synthetic", Version: "1.0.0", Model: "scripted-" + s.period.String()}, nil
}

func (s *server) Detect(_ context.Context, in *pluginrpc.DetectRequest) (*pluginrpc.DetectResponse, error) {
	phase := time.Since(s.started) % s.period
	resp := &pluginrpc.DetectResponse{Seq: in.Seq}
	switch {
	case phase < s.period*6/10:
		resp.Found = true
		resp.Landmarks = render(plankPose, in.Seq)
	case phase < s.period*7/10:
		resp.Found = false
	default:
		resp.Found = true
		resp.Landmarks = render(pikePose, in.Seq)
	}
	return resp, nil
}

// render adds a small deterministic wobble so scores are not perfectly flat.
func render(pose []joint, seq int64) []pluginrpc.Landmark {
	wobble := float64(seq%7-3) * 0.002
	out := make([]pluginrpc.Landmark, 0, len(pose))
	for _, j := range pose {
		out = append(out, pluginrpc.Landmark{Index: j.index, X: j.x, Y: j.y + wobble, Visibility: 0.9})
	}
	return out
}

func main() {
	period := 20 * time.Second
	if raw := os.Getenv("PLANK_SYNTHETIC_PERIOD"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			period = d
		}
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{started: time.Now(), period: period}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
