package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer exposes grpc.health.v1.Health for orchestrators. It reports
// SERVING only while the database answers a ping.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	db     Pinger
	log    *slog.Logger
}

func NewGRPCServer(db Pinger, log *slog.Logger) *GRPCServer {
	g := &GRPCServer{
		health: health.NewServer(),
		db:     db,
		log:    log,
	}
	g.srv = grpc.NewServer(grpc.UnaryInterceptor(g.loggingUnaryInterceptor))
	healthpb.RegisterHealthServer(g.srv, g.health)
	reflection.Register(g.srv)
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return g
}

// CheckDatabase pings the database and updates the reported status.
func (g *GRPCServer) CheckDatabase(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := g.db.PingContext(ctx); err != nil {
		g.log.Warn("database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	return status
}

// Watch re-checks the database every interval until ctx is done.
func (g *GRPCServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.CheckDatabase(ctx)
		}
	}
}

func (g *GRPCServer) Serve(lis net.Listener) error {
	g.CheckDatabase(context.Background())
	return g.srv.Serve(lis)
}

func (g *GRPCServer) GracefulStop() {
	g.health.Shutdown()
	g.srv.GracefulStop()
}

func (g *GRPCServer) loggingUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		g.log.Warn("grpc call failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
	} else {
		g.log.Debug("grpc call", "method", info.FullMethod, "duration", time.Since(start))
	}
	return resp, err
}
