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
	PluginMapKey  = "dinod"
	serviceName   = "dinod.activity.v1.ActivityProvider"
	jsonCodecName = "json"
	methodSample  = "/" + serviceName + "/Sample"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DINOD_PLUGIN",
	MagicCookieValue: "dinod",
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

type Sample struct {
	AppName   string `json:"app_name"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
}

type ActivityProviderServer interface {
	Sample(ctx context.Context, in *Empty) (*Sample, error)
}

type ActivityProviderClient interface {
	Sample(ctx context.Context) (*Sample, error)
}

type activityProviderClient struct {
	conn *grpc.ClientConn
}

func NewActivityProviderClient(conn *grpc.ClientConn) ActivityProviderClient {
	return &activityProviderClient{conn: conn}
}

func (c *activityProviderClient) Sample(ctx context.Context) (*Sample, error) {
	out := &Sample{}
	if err := c.conn.Invoke(ctx, methodSample, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterActivityProviderServer(server grpc.ServiceRegistrar, impl ActivityProviderServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ActivityProviderServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Sample",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Sample(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSample}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Sample(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/activity-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ActivityProviderServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterActivityProviderServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewActivityProviderClient(conn), nil
}

func PluginMap(impl ActivityProviderServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
