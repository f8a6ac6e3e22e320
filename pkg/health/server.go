package health

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ErrDisabled is returned by checks for dependencies switched off in config.
var ErrDisabled = errors.New("dependency disabled")

// Server exposes the standard grpc.health.v1 service so orchestrators can
// probe the process without speaking HTTP.
type Server struct {
	grpc    *grpc.Server
	health  *grpchealth.Server
	service string
	logger  *zap.Logger
}

func NewServer(service string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, health: hs, service: service, logger: logger}
}

// SetServing flips both the overall and the named service status.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)
}

// Listener adapts SetServing for Monitor.OnChange.
func (s *Server) Listener() StatusListener {
	return s.SetServing
}

// Serve blocks until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", zap.String("address", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}

func (s *Server) ListenAndServe(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("listen grpc health: %w", err)
	}
	return s.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
