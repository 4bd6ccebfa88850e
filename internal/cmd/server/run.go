package serverrun

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/flake/internal/config"
	"github.com/rzbill/flake/internal/runtime"
	grpcserver "github.com/rzbill/flake/internal/server/grpc"
	httpserver "github.com/rzbill/flake/internal/server/http"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	logpkg "github.com/rzbill/flake/pkg/log"
)

type Options struct {
	DataDir       string
	GRPCAddr      string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Logger overrides the process logger built from Config.Log.
	Logger logpkg.Logger
}

// Run opens the runtime, starts the gRPC and HTTP servers and the watermark
// checkpointer, and blocks until ctx is cancelled or a server fails. An
// empty address disables that listener.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.GRPCAddr == "" && opts.HTTPAddr == "" {
		return errors.New("at least one of the grpc or http addresses is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}

	procLogger := opts.Logger
	if procLogger == nil {
		procLogger = processLogger(opts.Config.Log)
	}
	restore := logpkg.RedirectStdLog(procLogger)
	defer restore()

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			procLogger.Error("runtime close failed", logpkg.Err(err))
		}
	}()

	procLogger.Info("Starting flake server",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("fsync", opts.Fsync.String()),
		logpkg.Dur("checkpoint_interval", opts.Config.CheckpointInterval()),
		logpkg.Str("level", opts.Config.Log.Level),
		logpkg.Str("format", opts.Config.Log.Format),
	)

	sctx, cancel := context.WithCancelCause(sctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	serve := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(sctx); err != nil && sctx.Err() == nil {
				procLogger.Error(name+" server failed", logpkg.Err(err))
				cancel(err)
			}
		}()
	}

	serve("checkpoint", rt.RunCheckpoints)

	var gsrv *grpcserver.Server
	if opts.GRPCAddr != "" {
		gsrv = grpcserver.New(rt, procLogger)
		serve("grpc", func(ctx context.Context) error { return gsrv.ListenAndServe(ctx, opts.GRPCAddr) })
	}
	var hsrv *httpserver.Server
	if opts.HTTPAddr != "" {
		hsrv = httpserver.New(rt, procLogger)
		serve("http", func(ctx context.Context) error { return hsrv.ListenAndServe(ctx, opts.HTTPAddr) })
	}

	<-sctx.Done()
	// Servers stop before the runtime closes so no request races the final
	// watermark flush.
	if gsrv != nil {
		gsrv.Close()
	}
	if hsrv != nil {
		hsrv.Close()
	}
	wg.Wait()
	procLogger.Info("flake server stopped")

	if cause := context.Cause(sctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// processLogger builds the process-wide logger, falling back to a text
// logger at the parsed level when the config is rejected.
func processLogger(cfg logpkg.Config) logpkg.Logger {
	l, err := logpkg.ApplyConfig(cfg)
	if err == nil {
		return l
	}
	lvl := logpkg.InfoLevel
	if parsed, e := logpkg.ParseLevel(cfg.Level); e == nil {
		lvl = parsed
	}
	l = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	l.Warn("invalid log config, using text output", logpkg.Err(err))
	return l
}
