package id

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultMaxSpins bounds the wait for the next millisecond when the sequence
// is exhausted. Each spin sleeps an eighth of a millisecond.
const DefaultMaxSpins = 1024

var (
	// ErrInvalidConfig wraps every construction failure.
	ErrInvalidConfig     = errors.New("invalid generator configuration")
	ErrDataCenterIDRange = errors.New("data center id out of range")
	ErrMachineIDRange    = errors.New("machine id out of range")

	// ErrClockMovedBackwards is returned when the clock reads earlier than the
	// last issued id by more than the configured tolerance.
	ErrClockMovedBackwards = errors.New("clock moved backwards")
	ErrClockBeforeEpoch    = errors.New("clock reads earlier than the epoch")
	ErrTimestampOverflow   = errors.New("timestamp does not fit the layout")

	// ErrOverloaded is returned when the sequence is exhausted and the clock
	// did not advance within the allowed spins.
	ErrOverloaded = errors.New("id generator is overloaded for its configuration")
)

// Config configures a Generator. Zero Epoch and Layout select DefaultEpoch and
// DefaultLayout.
type Config struct {
	DataCenterID int64
	MachineID    int64
	Epoch        time.Time
	Layout       Layout
	// MaxSpins caps the wait on sequence exhaustion; <= 0 means DefaultMaxSpins.
	MaxSpins int
	// MaxBackwardDrift is how far the clock may regress before NextID fails.
	// Within it, NextID sleeps until the clock catches up. Zero fails on any
	// regression.
	MaxBackwardDrift time.Duration
	// Floor is a unix millisecond the generator must never issue at or below,
	// typically the persisted high-water mark of a previous process.
	Floor int64
}

// Option tweaks a Generator after validation.
type Option func(*Generator)

// WithClock replaces the unix millisecond clock.
func WithClock(now func() int64) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator produces strictly increasing IDs for one (data center, machine)
// pair. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	sequence int64

	layout       Layout
	epoch        time.Time
	epochMs      int64
	dataCenterID int64
	machineID    int64
	node         int64
	maxSpins     int
	maxDrift     time.Duration
	now          func() int64
}

func systemMillis() int64 { return time.Now().UnixMilli() }

// NewGenerator validates cfg and returns a Generator. All failures wrap
// ErrInvalidConfig.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	layout := cfg.Layout
	if layout.IsZero() {
		layout = DefaultLayout
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.DataCenterID < 0 || cfg.DataCenterID > layout.MaxDataCenterID() {
		return nil, fmt.Errorf("%w: %w: %d not in [0, %d]",
			ErrInvalidConfig, ErrDataCenterIDRange, cfg.DataCenterID, layout.MaxDataCenterID())
	}
	if cfg.MachineID < 0 || cfg.MachineID > layout.MaxMachineID() {
		return nil, fmt.Errorf("%w: %w: %d not in [0, %d]",
			ErrInvalidConfig, ErrMachineIDRange, cfg.MachineID, layout.MaxMachineID())
	}
	if cfg.MaxBackwardDrift < 0 {
		return nil, fmt.Errorf("%w: negative max backward drift %s", ErrInvalidConfig, cfg.MaxBackwardDrift)
	}

	epoch := cfg.Epoch
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	g := &Generator{
		layout:       layout,
		epoch:        epoch.UTC(),
		epochMs:      epoch.UnixMilli(),
		dataCenterID: cfg.DataCenterID,
		machineID:    cfg.MachineID,
		node:         layout.node(cfg.DataCenterID, cfg.MachineID),
		maxSpins:     cfg.MaxSpins,
		maxDrift:     cfg.MaxBackwardDrift,
		now:          systemMillis,
	}
	if g.maxSpins <= 0 {
		g.maxSpins = DefaultMaxSpins
	}
	if cfg.Floor > 0 {
		// An exhausted sequence forces the first id past the floor millisecond.
		g.lastMs = cfg.Floor
		g.sequence = layout.MaxSequence()
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NextID returns the next identifier. On ErrOverloaded the caller may retry
// after a short, jittered sleep; on ErrClockMovedBackwards it should back off
// or abort, as retrying immediately will fail the same way.
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now()
	if ms < g.lastMs {
		behind := time.Duration(g.lastMs-ms) * time.Millisecond
		if behind > g.maxDrift {
			return 0, fmt.Errorf("%s behind the last issued id: %w", behind, ErrClockMovedBackwards)
		}
		time.Sleep(behind)
		if ms = g.now(); ms < g.lastMs {
			return 0, fmt.Errorf("still %dms behind after waiting %s: %w", g.lastMs-ms, behind, ErrClockMovedBackwards)
		}
	}

	seq := int64(0)
	if ms == g.lastMs {
		if g.sequence < g.layout.MaxSequence() {
			seq = g.sequence + 1
		} else {
			next, err := g.waitNextMilli(g.lastMs)
			if err != nil {
				return 0, err
			}
			ms = next
		}
	}

	delta := ms - g.epochMs
	if delta < 0 {
		return 0, fmt.Errorf("%d < %d: %w", ms, g.epochMs, ErrClockBeforeEpoch)
	}
	if delta > g.layout.MaxTimestamp() {
		return 0, fmt.Errorf("%dms since %s: %w", delta, g.epoch.Format(time.RFC3339), ErrTimestampOverflow)
	}

	g.lastMs = ms
	g.sequence = seq
	return g.layout.pack(delta, g.node, seq), nil
}

func (g *Generator) waitNextMilli(last int64) (int64, error) {
	for i := 0; i < g.maxSpins; i++ {
		if ms := g.now(); ms > last {
			return ms, nil
		}
		time.Sleep(time.Millisecond / 8)
	}
	return 0, fmt.Errorf("sequence exhausted at %d after %d spins: %w", last, g.maxSpins, ErrOverloaded)
}

// LastTimestamp returns the unix millisecond of the last issued id, or the
// floor if nothing has been issued yet.
func (g *Generator) LastTimestamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastMs
}

// Decode splits id using the generator's layout.
func (g *Generator) Decode(id ID) Parts { return g.layout.Decode(id) }

// Time returns the wall clock millisecond encoded in id.
func (g *Generator) Time(id ID) time.Time {
	return g.epoch.Add(time.Duration(g.layout.Decode(id).Timestamp) * time.Millisecond)
}

func (g *Generator) Layout() Layout      { return g.layout }
func (g *Generator) Epoch() time.Time    { return g.epoch }
func (g *Generator) DataCenterID() int64 { return g.dataCenterID }
func (g *Generator) MachineID() int64    { return g.machineID }
