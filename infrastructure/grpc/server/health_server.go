package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"muc-bot/contract"
	"muc-bot/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "muc-bot"

var (
	_ contract.StateListener = (*HealthServer)(nil)
	_ contract.Worker        = (*HealthServer)(nil)
)

// HealthServer exposes the standard gRPC health service. The bot is SERVING
// only while its session is online.
type HealthServer struct {
	log     *slog.Logger
	address string
	health  *health.Server
	server  *grpc.Server
}

func NewHealthServer(log *slog.Logger, address string) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(log)))
	healthpb.RegisterHealthServer(s, h)

	return &HealthServer{log: log, address: address, health: h, server: s}
}

func (h *HealthServer) OnStateChange(state domain.ConnectionState) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state.Status == domain.Online {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(ServiceName, status)
}

func (h *HealthServer) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Run serves until ctx is done, then stops gracefully.
func (h *HealthServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", h.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.address, err)
	}
	return h.serve(ctx, listener)
}

func (h *HealthServer) serve(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		h.log.Info("Starting health server", "address", listener.Addr().String())
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("health server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		h.health.Shutdown()
		h.server.GracefulStop()
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}
