package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "detector"
	serviceName       = "plank.detector.v1.Detector"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodDetect      = "/" + serviceName + "/Detect"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PLANK_DETECTOR",
	MagicCookieValue: "plank",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

type DetectRequest struct {
	Seq         int64 `json:"seq"`
	RequestedAt int64 `json:"requested_at_ms"`
}

type Landmark struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// DetectResponse carries zero or one body. Found is false when the model saw nobody.
type DetectResponse struct {
	Seq       int64      `json:"seq"`
	Found     bool       `json:"found"`
	Landmarks []Landmark `json:"landmarks"`
}

type DetectorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error)
}

type DetectorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error)
}

type detectorClient struct {
	conn *grpc.ClientConn
}

func NewDetectorClient(conn *grpc.ClientConn) DetectorClient {
	return &detectorClient{conn: conn}
}

func (c *detectorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectorClient) Detect(ctx context.Context, in *DetectRequest) (*DetectResponse, error) {
	out := &DetectResponse{}
	if err := c.conn.Invoke(ctx, methodDetect, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterDetectorServer(server grpc.ServiceRegistrar, impl DetectorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*DetectorServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("GetMetadata", methodGetMetadata, impl.GetMetadata),
			unary("Detect", methodDetect, impl.Detect),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "detector-rpc-v1",
	}, impl)
}

// unary adapts a typed method to the untyped handler grpc dispatches to.
func unary[Req, Resp any](name, fullMethod string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("%s: unexpected request type %T", fullMethod, req)
				}
				return call(ctx, typed)
			})
		},
	}
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl DetectorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterDetectorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewDetectorClient(conn), nil
}

func PluginMap(impl DetectorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
