package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/sttable/internal/core/config"
)

// shutdownTimeout bounds GracefulStop before a forced stop.
const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config *config.ServerConfig
	log    zerolog.Logger
}

// NewGRPCServer creates gRPC server with logging, auth and deadline
// interceptors and registers TableService plus the health service.
func NewGRPCServer(cfg *config.ServerConfig, service TableServer, log zerolog.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	log = log.With().Str("component", "grpc").Logger()

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(log),
			TokenInterceptor(cfg.Token),
			TimeoutInterceptor(cfg.RequestTimeout),
		),
	}

	server := grpc.NewServer(opts...)
	server.RegisterService(&TableServiceDesc, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		log:    log,
	}, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.log.Info().Str("addr", listener.Addr().String()).Msg("serving")
	return s.server.Serve(listener)
}

// Shutdown marks the server not serving and stops it gracefully within
// shutdownTimeout.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
