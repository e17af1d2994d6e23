package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

// ServiceName is the name reported by the health service.
const ServiceName = "photocard.PhotocardService"

type Server struct {
	grpcServer      *grpc.Server
	health          *health.Server
	log             logger.Logger
	port            string
	timeoutGraceful time.Duration
}

func NewServer(
	log logger.Logger,
	port string,
	timeoutGraceful time.Duration,
	maxConnectionIdle time.Duration,
) *Server {
	serverOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log.Desugar())),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     maxConnectionIdle,
			Timeout:               20 * time.Second,
			MaxConnectionAge:      maxConnectionIdle,
			Time:                  maxConnectionIdle,
			MaxConnectionAgeGrace: 5 * time.Second,
		}),
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	return &Server{
		grpcServer:      grpcServer,
		health:          healthServer,
		log:             log,
		port:            port,
		timeoutGraceful: timeoutGraceful,
	}
}

func (s *Server) Start() error {
	s.log.Infof("gRPC server is starting on port %s", s.port)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.port, err)
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server failed to serve: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING, then drains connections until the graceful
// timeout runs out.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("gRPC server is stopping gracefully")
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, s.timeoutGraceful)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("graceful shutdown timed out, forcing stop")
		s.grpcServer.Stop()
		return ctx.Err()
	case <-stopped:
		s.log.Info("gRPC server stopped gracefully")
		return nil
	}
}
