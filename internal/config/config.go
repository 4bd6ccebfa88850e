package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rzbill/flake/pkg/id"
	"github.com/rzbill/flake/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Generator  Generator  `json:"generator" yaml:"generator"`
	Worker     Worker     `json:"worker" yaml:"worker"`
	Checkpoint Checkpoint `json:"checkpoint" yaml:"checkpoint"`
	Service    Service    `json:"service" yaml:"service"`
	Log        log.Config `json:"log" yaml:"log"`
}

// Generator mirrors id.Config in a file friendly shape. Zero layout widths
// select id.DefaultLayout and a zero EpochMs selects id.DefaultEpoch.
type Generator struct {
	DataCenterID       int64 `json:"dataCenterId" yaml:"dataCenterId"`
	MachineID          int64 `json:"machineId" yaml:"machineId"`
	EpochMs            int64 `json:"epochMs" yaml:"epochMs"`
	TimestampBits      int   `json:"timestampBits" yaml:"timestampBits"`
	DataCenterBits     int   `json:"dataCenterBits" yaml:"dataCenterBits"`
	MachineBits        int   `json:"machineBits" yaml:"machineBits"`
	SequenceBits       int   `json:"sequenceBits" yaml:"sequenceBits"`
	MaxSpins           int   `json:"maxSpins" yaml:"maxSpins"`
	MaxBackwardDriftMs int64 `json:"maxBackwardDriftMs" yaml:"maxBackwardDriftMs"`
}

// Worker derives the node ids from the pod address when both fields are set.
type Worker struct {
	CIDR  string `json:"cidr,omitempty" yaml:"cidr,omitempty"`
	PodIP string `json:"podIp,omitempty" yaml:"podIp,omitempty"`
}

// Checkpoint controls how often the high-water mark is persisted.
// IntervalMs 0 disables periodic saves; the mark is still saved on shutdown.
type Checkpoint struct {
	IntervalMs int64 `json:"intervalMs" yaml:"intervalMs"`
}

// Service holds request limits shared by the transports.
type Service struct {
	MaxBatch int `json:"maxBatch" yaml:"maxBatch"`
}

// Default returns built-in defaults.
func Default() Config {
	l := id.DefaultLayout
	return Config{
		Generator: Generator{
			EpochMs:        id.DefaultEpoch.UnixMilli(),
			TimestampBits:  l.TimestampBits,
			DataCenterBits: l.DataCenterBits,
			MachineBits:    l.MachineBits,
			SequenceBits:   l.SequenceBits,
			MaxSpins:       id.DefaultMaxSpins,
		},
		Checkpoint: Checkpoint{IntervalMs: 1000},
		Service:    Service{MaxBatch: 1000},
		Log:        log.Config{Level: "info", Format: "json", Output: "console"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Layout returns the configured bit layout.
func (c Config) Layout() id.Layout {
	return id.Layout{
		TimestampBits:  c.Generator.TimestampBits,
		DataCenterBits: c.Generator.DataCenterBits,
		MachineBits:    c.Generator.MachineBits,
		SequenceBits:   c.Generator.SequenceBits,
	}
}

// GeneratorConfig resolves the generator settings, deriving the node ids
// from Worker when it is configured.
func (c Config) GeneratorConfig() (id.Config, error) {
	layout := c.Layout()
	if layout.IsZero() {
		layout = id.DefaultLayout
	}
	g := id.Config{
		DataCenterID:     c.Generator.DataCenterID,
		MachineID:        c.Generator.MachineID,
		Layout:           layout,
		MaxSpins:         c.Generator.MaxSpins,
		MaxBackwardDrift: time.Duration(c.Generator.MaxBackwardDriftMs) * time.Millisecond,
	}
	if c.Generator.EpochMs != 0 {
		g.Epoch = time.UnixMilli(c.Generator.EpochMs).UTC()
	}
	if c.Worker.CIDR != "" || c.Worker.PodIP != "" {
		dc, machine, err := WorkerIDs(c.Worker.CIDR, c.Worker.PodIP, layout)
		if err != nil {
			return id.Config{}, err
		}
		g.DataCenterID, g.MachineID = dc, machine
	}
	return g, nil
}

// Validate checks the configuration by building a throwaway generator.
func (c Config) Validate() error {
	g, err := c.GeneratorConfig()
	if err != nil {
		return err
	}
	if _, err := id.NewGenerator(g); err != nil {
		return err
	}
	if c.Checkpoint.IntervalMs < 0 {
		return fmt.Errorf("checkpoint interval %dms is negative", c.Checkpoint.IntervalMs)
	}
	if c.Service.MaxBatch < 1 {
		return fmt.Errorf("max batch %d must be at least 1", c.Service.MaxBatch)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CheckpointInterval returns the checkpoint period as a duration.
func (c Config) CheckpointInterval() time.Duration {
	return time.Duration(c.Checkpoint.IntervalMs) * time.Millisecond
}
