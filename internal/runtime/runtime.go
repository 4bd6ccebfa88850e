package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cfgpkg "github.com/rzbill/flake/internal/config"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/internal/watermark"
	"github.com/rzbill/flake/pkg/id"
	"github.com/rzbill/flake/pkg/log"
)

var errRuntimeClosed = errors.New("runtime closed")

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        log.Logger
	// GeneratorOptions are passed to id.NewGenerator, e.g. id.WithClock.
	GeneratorOptions []id.Option
}

// Runtime wires storage, config, the watermark and the generator for a
// single node.
type Runtime struct {
	db           *pebblestore.DB
	config       cfgpkg.Config
	logger       log.Logger
	gen          *id.Generator
	store        *watermark.Store
	checkpointer *watermark.Checkpointer

	// mu is held shared by readers of db and exclusively by Close.
	mu       sync.RWMutex
	closed   bool
	closeErr error
}

// Open initializes storage, seeds the generator from the persisted
// high-water mark and returns a Runtime. Configuration errors fail Open.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger(log.WithOutput(log.NullOutput{}))
	}
	logger = logger.WithComponent("runtime")

	gcfg, err := opts.Config.GeneratorConfig()
	if err != nil {
		return nil, err
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       &storageMetrics{logger: logger},
	})
	if err != nil {
		return nil, err
	}

	store := watermark.NewStore(db, gcfg.DataCenterID, gcfg.MachineID)
	floor, err := store.Load()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	gcfg.Floor = floor

	gen, err := id.NewGenerator(gcfg, opts.GeneratorOptions...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if now := time.Now().UnixMilli(); floor > now {
		behind := time.Duration(floor-now) * time.Millisecond
		msg := "clock is behind the persisted watermark; ids fail with clock moved backwards until it catches up"
		if behind <= gcfg.MaxBackwardDrift {
			msg = "clock is behind the persisted watermark; ids wait until it catches up"
		}
		logger.Warn(msg,
			log.Int64("watermark_ms", floor),
			log.Dur("behind", behind),
			log.Dur("max_backward_drift", gcfg.MaxBackwardDrift))
	}
	logger.Info("generator ready",
		log.Int64("data_center_id", gen.DataCenterID()),
		log.Int64("machine_id", gen.MachineID()),
		log.Str("epoch", gen.Epoch().Format(time.RFC3339)),
		log.Int64("floor_ms", floor))

	return &Runtime{
		db:           db,
		config:       opts.Config,
		logger:       logger,
		gen:          gen,
		store:        store,
		checkpointer: watermark.NewCheckpointer(store, gen.LastTimestamp, opts.Config.CheckpointInterval(), logger),
	}, nil
}

// Close saves the watermark one last time and closes the store. Subsequent
// calls return the first result.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.closeErr
	}
	r.closed = true
	flushErr := r.checkpointer.Flush()
	r.closeErr = errors.Join(flushErr, r.db.Close())
	return r.closeErr
}

// CheckHealth verifies the store is open and readable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errRuntimeClosed
	}
	if _, err := r.store.Load(); err != nil {
		return fmt.Errorf("watermark unreadable: %w", err)
	}
	return nil
}

// RunCheckpoints persists the generator's last timestamp on the configured
// interval until ctx is done.
func (r *Runtime) RunCheckpoints(ctx context.Context) error {
	return r.checkpointer.Run(ctx)
}

// Watermarks lists every persisted mark in the store.
func (r *Runtime) Watermarks() ([]watermark.Mark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errRuntimeClosed
	}
	return watermark.List(r.db)
}

// Generator returns the node's generator.
func (r *Runtime) Generator() *id.Generator { return r.gen }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// slowCommit is the commit latency above which storage logs a warning.
const slowCommit = 50 * time.Millisecond

type storageMetrics struct {
	pebblestore.NoopMetrics
	logger log.Logger
}

func (m *storageMetrics) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int) {
	if elapsed > slowCommit {
		m.logger.Warn("slow storage commit", log.Dur("elapsed", elapsed), log.Int("ops", numOps), log.Int("bytes", bytes))
	}
}
