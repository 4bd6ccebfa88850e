package runtime

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/flake/internal/config"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/pkg/id"
	"github.com/rzbill/flake/pkg/log"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, err := rt.Generator().NextID(); err != nil {
		t.Fatalf("next id: %v", err)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Generator.DataCenterID = 32
	_, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	if !errors.Is(err, id.ErrInvalidConfig) {
		t.Fatalf("want ErrInvalidConfig, got %v", err)
	}
}

func TestRestartResumesAboveWatermark(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Generator.MachineID = 3

	// First run: clock at t0, issue a few ids, close (final save).
	t0 := id.DefaultEpoch.UnixMilli() + 1_000_000
	rt, err := Open(Options{DataDir: dir, Config: cfg, GeneratorOptions: []id.Option{id.WithClock(func() int64 { return t0 })}})
	require.NoError(t, err)
	var last id.ID
	for i := 0; i < 10; i++ {
		last, err = rt.Generator().NextID()
		require.NoError(t, err)
	}
	require.NoError(t, rt.Close())
	require.NoError(t, rt.Close())

	// Second run: clock went back by 1s while the process was down.
	cfg.Generator.MaxBackwardDriftMs = 0
	rt, err = Open(Options{DataDir: dir, Config: cfg, GeneratorOptions: []id.Option{id.WithClock(func() int64 { return t0 - 1000 })}})
	require.NoError(t, err)
	defer rt.Close()
	_, err = rt.Generator().NextID()
	assert.ErrorIs(t, err, id.ErrClockMovedBackwards)

	// Clock recovered: next id is strictly above every id from the first run.
	rt2Clock := t0
	rt.Close()
	rt, err = Open(Options{DataDir: dir, Config: cfg, GeneratorOptions: []id.Option{id.WithClock(func() int64 { return rt2Clock })}})
	require.NoError(t, err)
	defer rt.Close()
	rt2Clock = t0 + 1
	next, err := rt.Generator().NextID()
	require.NoError(t, err)
	assert.Greater(t, next, last)

	marks, err := rt.Watermarks()
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.EqualValues(t, 3, marks[0].MachineID)
	assert.EqualValues(t, t0, marks[0].UnixMs)
}

func TestRunCheckpoints(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Checkpoint.IntervalMs = 5
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Generator().NextID()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.RunCheckpoints(ctx) }()

	require.Eventually(t, func() bool {
		marks, err := rt.Watermarks()
		return err == nil && len(marks) == 1 && marks[0].UnixMs == rt.Generator().LastTimestamp()
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestHealthAfterClose(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	require.NoError(t, err)
	require.NoError(t, rt.Close())
	assert.Error(t, rt.CheckHealth(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rt.CheckHealth(ctx))
}

func TestReadersRacingClose(t *testing.T) {
	for i := 0; i < 20; i++ {
		rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
		require.NoError(t, err)
		_, err = rt.Generator().NextID()
		require.NoError(t, err)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for k := 0; k < 50; k++ {
					_ = rt.CheckHealth(context.Background())
					_, _ = rt.Watermarks()
				}
			}()
		}
		close(start)
		require.NoError(t, rt.Close())
		wg.Wait()

		assert.ErrorIs(t, rt.CheckHealth(context.Background()), errRuntimeClosed)
		_, err = rt.Watermarks()
		assert.ErrorIs(t, err, errRuntimeClosed)
		assert.NoError(t, rt.Close())
	}
}

func TestCheckpointsRacingClose(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Checkpoint.IntervalMs = 1
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.RunCheckpoints(ctx) }()
	for i := 0; i < 100; i++ {
		_, err := rt.Generator().NextID()
		require.NoError(t, err)
	}
	require.NoError(t, rt.Close())
	cancel()
	// The final flush after Close reports the closed store instead of panicking.
	if err := <-done; err != nil {
		assert.ErrorIs(t, err, pebblestore.ErrClosed)
	}
}

func TestClockBehindWatermarkWarning(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	ahead := time.Now().Add(time.Hour).UnixMilli()
	rt, err := Open(Options{DataDir: dir, Config: cfg, GeneratorOptions: []id.Option{id.WithClock(func() int64 { return ahead })}})
	require.NoError(t, err)
	_, err = rt.Generator().NextID()
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	open := func(driftMs int64) string {
		var buf bytes.Buffer
		logger := log.NewLogger(log.WithOutput(log.NewWriterOutput(&buf)), log.WithFormatter(&log.TextFormatter{}))
		c := cfg
		c.Generator.MaxBackwardDriftMs = driftMs
		rt, err := Open(Options{DataDir: dir, Config: c, Logger: logger})
		require.NoError(t, err)
		require.NoError(t, rt.Close())
		return buf.String()
	}

	out := open(0)
	assert.Contains(t, out, "ids fail with clock moved backwards")
	assert.NotContains(t, out, "ids wait")

	out = open((2 * time.Hour).Milliseconds())
	assert.Contains(t, out, "ids wait until it catches up")
}
