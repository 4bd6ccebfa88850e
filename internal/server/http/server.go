package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzbill/flake/internal/runtime"
	"github.com/rzbill/flake/internal/server/http/controllers"
	idsvc "github.com/rzbill/flake/internal/services/ids"
	"github.com/rzbill/flake/pkg/log"
)

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	engine *gin.Engine
	logger log.Logger

	mu  sync.Mutex
	lis net.Listener
}

func init() { gin.SetMode(gin.ReleaseMode) }

func New(rt *runtime.Runtime, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewLogger(log.WithOutput(log.NullOutput{}))
	}
	logger = logger.WithComponent("http")

	engine := gin.New()
	// base64 ids may contain an escaped '/'.
	engine.UseRawPath = true
	engine.Use(cors(), requestID(), accessLog(logger), recovery(logger))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	registry := controllers.NewControllerRegistry(rt, idsvc.New(rt))
	registry.RegisterAllRoutes(engine.Group("/v1"))

	return &Server{
		rt:     rt,
		engine: engine,
		logger: logger,
		srv: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the bound address once ListenAndServe is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
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
	s.logger.Info("http listening", log.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Close() {
	s.mu.Lock()
	l := s.lis
	s.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
}
