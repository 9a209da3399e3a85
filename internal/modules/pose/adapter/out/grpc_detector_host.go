package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	pluginrpc "plank/internal/modules/pose/adapter/out/rpc"
	"plank/internal/modules/pose/domain"
	poseout "plank/internal/modules/pose/port/out"
	"plank/internal/platform/log"
)

const (
	defaultStartTimeout  = 3 * time.Second
	defaultCallTimeout   = 5 * time.Second
	defaultDetectTimeout = 250 * time.Millisecond
)

type GRPCDetectorHost struct {
	verbose bool
}

// NewGRPCDetectorHost launches detector binaries through go-plugin. verbose forwards plugin logs to the app log.
func NewGRPCDetectorHost(verbose bool) poseout.DetectorHost {
	return &GRPCDetectorHost{verbose: verbose}
}

func (h *GRPCDetectorHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, rpcClient, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer client.Kill()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := rpcClient.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Model: meta.Model}, nil
}

func (h *GRPCDetectorHost) Open(ctx context.Context, manifest domain.Manifest) (poseout.LandmarkSource, domain.Metadata, error) {
	client, rpcClient, err := h.connect(manifest)
	if err != nil {
		return nil, domain.Metadata{}, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := rpcClient.GetMetadata(callCtx)
	if err != nil {
		client.Kill()
		return nil, domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	log.Infow("detector started", "name", manifest.Name, "model", meta.Model)
	source := &grpcLandmarkSource{name: manifest.Name, client: client, rpc: rpcClient}
	return source, domain.Metadata{Name: meta.Name, Version: meta.Version, Model: meta.Model}, nil
}

func (h *GRPCDetectorHost) connect(manifest domain.Manifest) (*plugin.Client, pluginrpc.DetectorClient, error) {
	var output io.Writer = io.Discard
	level := hclog.NoLevel
	if h.verbose {
		output = log.Writer()
		level = hclog.Debug
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Name: "detector." + manifest.Name, Output: output, Level: level}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("start detector client: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("dispense detector: %w", err)
	}
	typed, ok := raw.(pluginrpc.DetectorClient)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("detector rpc client type mismatch")
	}
	return client, typed, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// grpcLandmarkSource keeps one detector process alive for the lifetime of a tracking run.
type grpcLandmarkSource struct {
	name   string
	client *plugin.Client
	rpc    pluginrpc.DetectorClient

	mu     sync.Mutex
	seq    int64
	closed bool
}

func (s *grpcLandmarkSource) Latest(ctx context.Context) (domain.LandmarkSet, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.LandmarkSet{}, false, fmt.Errorf("detector %s is closed", s.name)
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	callCtx, cancel := callContext(ctx, defaultDetectTimeout)
	defer cancel()
	resp, err := s.rpc.Detect(callCtx, &pluginrpc.DetectRequest{Seq: seq, RequestedAt: time.Now().UnixMilli()})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.LandmarkSet{}, false, fmt.Errorf("%w: detect %s", domain.ErrDetectorTimeout, s.name)
		}
		return domain.LandmarkSet{}, false, fmt.Errorf("detect: %w", err)
	}
	if !resp.Found {
		return domain.LandmarkSet{}, false, nil
	}
	set := domain.LandmarkSet{}
	for _, l := range resp.Landmarks {
		if err := set.Set(l.Index, domain.Landmark{X: l.X, Y: l.Y, Z: l.Z, Visibility: l.Visibility}); err != nil {
			return domain.LandmarkSet{}, false, fmt.Errorf("decode detection: %w", err)
		}
	}
	return set, true, nil
}

func (s *grpcLandmarkSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Kill()
	log.Infow("detector stopped", "name", s.name)
	return nil
}
