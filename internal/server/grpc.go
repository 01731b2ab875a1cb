package server

import (
	"context"
	"errors"

	skillgraphv1 "github.com/fractionaljobsuk/skillgraph/gen/skillgraph/v1"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxRPCTicks bounds the tick budget a caller may ask for.
const maxRPCTicks = 5000

// NewGRPCServer creates a gRPC server with standard interceptors, registers
// the LayoutService, health and reflection, and returns it ready to serve.
func NewGRPCServer(s *Server, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(s.logger),
			LoggingInterceptor(s.logger),
			AuthInterceptor(authToken),
		),
	)

	skillgraphv1.RegisterLayoutServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(skillgraphv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv
}

// Layout settles the posted graph headlessly and returns node positions.
func (s *Server) Layout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req skillgraphv1.LayoutRequest
	if err := skillgraphv1.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if req.Graph == nil {
		return nil, status.Error(codes.InvalidArgument, "graph is required")
	}
	if req.Width < 0 || req.Height < 0 || req.MaxTicks < 0 || req.MaxTicks > maxRPCTicks {
		return nil, status.Error(codes.InvalidArgument, "width, height and max_ticks must be in range")
	}

	c := s.canvas
	if req.Width > 0 {
		c.Width = req.Width
	}
	if req.Height > 0 {
		c.Height = req.Height
	}
	p := s.params
	if req.MaxTicks > 0 {
		p.MaxTicks = req.MaxTicks
	}

	g, issues := model.Normalize(req.Graph)
	model.LogIssues(s.logger, issues)

	resp := skillgraphv1.LayoutResponse{Positions: map[string]skillgraphv1.Position{}}
	res, err := layout.Settle(ctx, g, c, p)
	switch {
	case errors.Is(err, layout.ErrEmptyGraph):
		resp.Empty = true
	case err != nil:
		return nil, status.FromContextError(err).Err()
	default:
		for id, pt := range res.State.Positions(g) {
			resp.Positions[id] = skillgraphv1.Position{X: pt.X, Y: pt.Y}
		}
		resp.Ticks = res.Ticks
	}

	out, err := skillgraphv1.ToStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
