package client

import (
	"context"
	"fmt"

	skillgraphv1 "github.com/fractionaljobsuk/skillgraph/gen/skillgraph/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// GRPCClient implements Layouter against a server's LayoutService.
type GRPCClient struct {
	conn   *grpc.ClientConn
	client skillgraphv1.LayoutServiceClient
	health healthpb.HealthClient
}

// NewGRPCClient connects to the given gRPC address. When token is non-empty
// it is sent as a Bearer token on every call. Extra dial options are appended.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if token != "" {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(BearerTokenInterceptor(token)))
	}
	conn, err := grpc.NewClient(addr, append(dialOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{
		conn:   conn,
		client: skillgraphv1.NewLayoutServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Layout(ctx context.Context, req *skillgraphv1.LayoutRequest) (*skillgraphv1.LayoutResponse, error) {
	in, err := skillgraphv1.ToStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encoding layout request: %w", err)
	}
	out, err := c.client.Layout(ctx, in)
	if err != nil {
		return nil, err
	}
	var resp skillgraphv1.LayoutResponse
	if err := skillgraphv1.FromStruct(out, &resp); err != nil {
		return nil, fmt.Errorf("decoding layout response: %w", err)
	}
	return &resp, nil
}

// Health reports the serving status of the LayoutService, e.g. "SERVING".
func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: skillgraphv1.ServiceName})
	if err != nil {
		return "", err
	}
	return resp.GetStatus().String(), nil
}

// BearerTokenInterceptor returns a gRPC unary interceptor that attaches a
// Bearer token to every outgoing call.
func BearerTokenInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
