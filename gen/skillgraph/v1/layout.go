// Package skillgraphv1 describes the LayoutService gRPC API. Messages travel
// as google.protobuf.Struct, so the service needs no generated code.
package skillgraphv1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName      = "skillgraph.v1.LayoutService"
	LayoutFullMethod = "/" + ServiceName + "/Layout"
	layoutMethodName = "Layout"
)

// LayoutRequest asks for the settled positions of a graph.
type LayoutRequest struct {
	Graph    *model.GraphData `json:"graph"`
	Width    float64          `json:"width,omitempty"`
	Height   float64          `json:"height,omitempty"`
	MaxTicks int              `json:"max_ticks,omitempty"`
}

// Position is one node's coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutResponse carries the positions after the run.
type LayoutResponse struct {
	Positions map[string]Position `json:"positions"`
	Ticks     int                 `json:"ticks"`
	Empty     bool                `json:"empty,omitempty"`
}

// ToStruct encodes v, a request or response, as a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes s into v.
func FromStruct(s *structpb.Struct, v any) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// LayoutServiceServer is the server API for LayoutService.
type LayoutServiceServer interface {
	Layout(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterLayoutServiceServer registers srv on s.
func RegisterLayoutServiceServer(s grpc.ServiceRegistrar, srv LayoutServiceServer) {
	s.RegisterService(&LayoutService_ServiceDesc, srv)
}

func layoutHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LayoutServiceServer).Layout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LayoutFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LayoutServiceServer).Layout(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// LayoutService_ServiceDesc is the grpc.ServiceDesc for LayoutService.
var LayoutService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LayoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: layoutMethodName, Handler: layoutHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// LayoutServiceClient is the client API for LayoutService.
type LayoutServiceClient interface {
	Layout(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type layoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLayoutServiceClient(cc grpc.ClientConnInterface) LayoutServiceClient {
	return &layoutServiceClient{cc}
}

func (c *layoutServiceClient) Layout(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LayoutFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
