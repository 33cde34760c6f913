// Package grpc serves the standard gRPC health protocol for the storefront
// so orchestrators can probe it alongside the HTTP API.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/example/storefront/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	checkInterval = 10 * time.Second
	checkTimeout  = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer reports SERVING for the overall service and for each named
// dependency while its Ping succeeds.
type HealthServer struct {
	config  *config.GRPCConfig
	service string
	checks  map[string]Pinger
	logger  *zap.Logger

	server *grpc.Server
	health *health.Server

	stopOnce sync.Once
	done     chan struct{}
}

func NewHealthServer(cfg *config.GRPCConfig, service string, checks map[string]Pinger, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &HealthServer{
		config:  cfg,
		service: service,
		checks:  checks,
		logger:  logger.Named("grpc-health"),
		server:  srv,
		health:  hs,
		done:    make(chan struct{}),
	}
}

// Refresh pings every dependency once and updates the reported statuses.
func (h *HealthServer) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, p := range h.checks {
		status := healthpb.HealthCheckResponse_SERVING

		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			h.logger.Warn("Dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		}
		h.health.SetServingStatus(name, status)
	}

	h.health.SetServingStatus("", overall)
	if h.service != "" {
		h.health.SetServingStatus(h.service, overall)
	}
}

func (h *HealthServer) Start() error {
	addr := h.config.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.logger.Info("gRPC health server started", zap.String("address", addr))
	return h.Serve(lis)
}

// Serve runs a first check, then serves on lis while re-checking in the
// background.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.Refresh(context.Background())
	go h.watch()
	return h.server.Serve(lis)
}

func (h *HealthServer) watch() {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Refresh(context.Background())
		case <-h.done:
			return
		}
	}
}

func (h *HealthServer) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.health.Shutdown()
		h.server.GracefulStop()
	})
}
