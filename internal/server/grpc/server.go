package grpcserver

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
	"github.com/rzbill/flake/internal/runtime"
	idsvc "github.com/rzbill/flake/internal/services/ids"
	"github.com/rzbill/flake/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	health *health.Server
	logger log.Logger

	mu  sync.Mutex
	lis net.Listener
}

// New constructs a gRPC server and registers the id and health services.
func New(rt *runtime.Runtime, logger log.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = log.NewLogger(log.WithOutput(log.NullOutput{}))
	}
	logger = logger.WithComponent("grpc")
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unaryRecovery(logger), unaryLogging(logger)),
	}, opts...)

	s := &Server{rt: rt, grpc: grpc.NewServer(opts...), health: health.NewServer(), logger: logger}
	flakev1.RegisterIDServiceServer(s.grpc, &idsSvc{svc: idsvc.New(rt)})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	updateHealth(context.Background(), s.health, rt)
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("grpc listening", log.Str("addr", l.Addr().String()))

	// The health watcher reads the runtime, so it must be gone before Serve
	// returns and the caller closes the runtime.
	hctx, stopHealth := context.WithCancel(ctx)
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		watchHealth(hctx, s.health, s.rt, healthCheckInterval)
	}()
	defer func() {
		stopHealth()
		<-healthDone
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}
	s.mu.Lock()
	l := s.lis
	s.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
}
