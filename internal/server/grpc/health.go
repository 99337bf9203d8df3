// Package grpcserver runs the gRPC health listener.
package grpcserver

import (
	"context"
	"net"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger is a dependency whose reachability is reported as its own health
// service name.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health serves grpc.health.v1.Health. The overall service ("") is SERVING
// only while every dependency answers.
type Health struct {
	srv  *grpc.Server
	hs   *health.Server
	deps map[string]Pinger
	log  *zap.Logger
}

// NewHealth builds the listener with logging and panic recovery.
func NewHealth(log *zap.Logger, deps map[string]Pinger) *Health {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(RecoverUnary(log), LoggingUnary(log)),
		grpc.ChainStreamInterceptor(RecoverStream(log), LoggingStream(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &Health{srv: srv, hs: hs, deps: deps, log: log}
}

// Check pings every dependency once and publishes the statuses.
func (h *Health) Check(ctx context.Context) {
	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		st := healthpb.HealthCheckResponse_SERVING
		if err := h.deps[name].Ping(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
		}
		h.hs.SetServingStatus(name, st)
	}
	h.hs.SetServingStatus("", overall)
}

// Run checks immediately and then every interval until ctx is done.
func (h *Health) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, interval)
		h.Check(pctx)
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// EnableReflection registers server reflection. Meant for development.
func (h *Health) EnableReflection() {
	reflection.Register(h.srv)
}

// Serve blocks serving on lis until Shutdown.
func (h *Health) Serve(lis net.Listener) error {
	return h.srv.Serve(lis)
}

// Shutdown flips every service to NOT_SERVING and stops the listener,
// forcing it after timeout.
func (h *Health) Shutdown(timeout time.Duration) {
	h.hs.Shutdown()
	done := make(chan struct{})
	go func() {
		h.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		h.srv.Stop()
	}
}
