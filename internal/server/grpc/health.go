package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
	"github.com/rzbill/flake/internal/runtime"
)

// healthCheckInterval is how often runtime health is mirrored into the
// standard health service.
const healthCheckInterval = 5 * time.Second

// updateHealth sets the overall and IDService status from the runtime.
func updateHealth(ctx context.Context, hs *health.Server, rt *runtime.Runtime) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := rt.CheckHealth(ctx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", st)
	hs.SetServingStatus(flakev1.ServiceName, st)
	return st
}

// watchHealth refreshes the health status until ctx is done.
func watchHealth(ctx context.Context, hs *health.Server, rt *runtime.Runtime, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			updateHealth(ctx, hs, rt)
		}
	}
}
