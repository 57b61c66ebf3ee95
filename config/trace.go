package config

import (
	"fmt"
	"time"
)

type TraceCfg struct {
	// Format names the trace file layout.
	// Supported values: "dns", "latency", "address-penalties".
	Format string `yaml:"format"`

	// Path points at the trace file.
	Path string `yaml:"path"`

	// EventsPerSec paces the replay to a bounded rate when positive.
	// Zero replays as fast as possible (the normal research mode).
	EventsPerSec int `yaml:"events_per_sec"`
}

func (cfg *TraceCfg) validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("config: trace path is required")
	}
	switch cfg.Format {
	case "dns", "latency", "address-penalties":
		return nil
	default:
		return fmt.Errorf("config: unknown trace format %q", cfg.Format)
	}
}

type TelemetryCfg struct {
	// ProgressLogsInterval is how often replay progress is logged.
	ProgressLogsInterval time.Duration `yaml:"progress_logs_interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil && cfg.ProgressLogsInterval > 0
}
