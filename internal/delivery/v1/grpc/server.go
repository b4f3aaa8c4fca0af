package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/circley-tech/storefront/internal/cfg"
	"github.com/circley-tech/storefront/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const healthCheckInterval = 15 * time.Second

// Dependency — внешняя зависимость, от которой зависит готовность сервиса.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
	deps   []Dependency
	stop   chan struct{}
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger, deps ...Dependency) *GRPCServer {
	s := &GRPCServer{
		health: health.NewServer(),
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		stop:   make(chan struct{}),
	}

	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.unaryInterceptor))
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

// Serve обслуживает уже открытый listener; статус здоровья обновляется в фоне.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Infof("gRPC server listening on %s", lis.Addr())

	s.checkHealth(context.Background())
	go s.healthLoop()

	return s.server.Serve(lis)
}

func (s *GRPCServer) healthLoop() {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkHealth(context.Background())
		}
	}
}

// checkHealth опрашивает зависимости; сервис SERVING, только если все ответили.
func (s *GRPCServer) checkHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckInterval/3)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	for _, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			s.logger.Warnf("dependency %s is unhealthy: %v", dep.Name, err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", status)
}

func (s *GRPCServer) unaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warnf("%s: %v", info.FullMethod, err)
		return nil, GRPCErrorResponse(err)
	}
	return resp, nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	close(s.stop)
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
