package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLAKE_* environment variables onto cfg. Unparsable numbers
// are ignored.
func FromEnv(cfg *Config) {
	envInt64("FLAKE_DATA_CENTER_ID", &cfg.Generator.DataCenterID)
	envInt64("FLAKE_MACHINE_ID", &cfg.Generator.MachineID)
	envInt64("FLAKE_EPOCH_MS", &cfg.Generator.EpochMs)
	envInt("FLAKE_TIMESTAMP_BITS", &cfg.Generator.TimestampBits)
	envInt("FLAKE_DATA_CENTER_BITS", &cfg.Generator.DataCenterBits)
	envInt("FLAKE_MACHINE_BITS", &cfg.Generator.MachineBits)
	envInt("FLAKE_SEQUENCE_BITS", &cfg.Generator.SequenceBits)
	envInt("FLAKE_MAX_SPINS", &cfg.Generator.MaxSpins)
	envInt64("FLAKE_MAX_BACKWARD_DRIFT_MS", &cfg.Generator.MaxBackwardDriftMs)

	if v := os.Getenv("FLAKE_WORKER_CIDR"); v != "" {
		cfg.Worker.CIDR = v
	}
	if v := os.Getenv("FLAKE_POD_IP"); v != "" {
		cfg.Worker.PodIP = v
	}

	envInt64("FLAKE_CHECKPOINT_INTERVAL_MS", &cfg.Checkpoint.IntervalMs)
	envInt("FLAKE_MAX_BATCH", &cfg.Service.MaxBatch)

	if v := os.Getenv("FLAKE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FLAKE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(name string, dst *int64) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
