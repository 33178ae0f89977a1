// Package grpcserver exposes the portal's gRPC surface: the standard
// grpc.health.v1 service, reporting SERVING while the Job Store answers.
//
// It holds only transport concerns. The readiness decision comes from a
// Pinger, normally the jobstore client.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health entry for the portal itself. The empty name
// reports the same status for clients that check the whole server.
const ServiceName = "careerpage.Portal"

const probeTimeout = 5 * time.Second

// Pinger reports whether the upstream the portal depends on is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server carrying the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	pinger Pinger
}

// NewServer constructs a Server. Both health entries start NOT_SERVING until
// the first Probe.
func NewServer(p Pinger) *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	healthpb.RegisterHealthServer(gs, hs)
	return &Server{grpc: gs, health: hs, pinger: p}
}

// Probe pings the upstream and publishes the result.
func (s *Server) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	err := s.pinger.Ping(ctx)
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		slog.Warn("job store probe failed", "err", err)
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return err
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop flips every entry to NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if code := status.Code(err); code != codes.OK {
		slog.Warn("grpc call failed", "method", info.FullMethod, "code", code.String(), "took", time.Since(start))
	} else {
		slog.Debug("grpc call", "method", info.FullMethod, "took", time.Since(start))
	}
	return resp, err
}
