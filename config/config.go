package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Simulation groups the configuration of one simulator invocation: the trace
// to replay and the policies to replay it against. A config is immutable once
// a run starts.
type Simulation struct {
	Trace TraceCfg `yaml:"trace"`

	// Telemetry configures periodic progress logging during replay.
	// If nil, progress logging is disabled.
	Telemetry *TelemetryCfg `yaml:"telemetry"`

	// Policies lists the policy instances to simulate; each gets its own
	// replay of the trace.
	Policies []PolicyCfg `yaml:"policies"`
}

func (cfg *Simulation) AdjustConfig() {
	for i := range cfg.Policies {
		cfg.Policies[i].adjust()
	}
}

func (cfg *Simulation) Validate() error {
	if err := cfg.Trace.validate(); err != nil {
		return err
	}
	if len(cfg.Policies) == 0 {
		return fmt.Errorf("config: no policies configured")
	}
	for i := range cfg.Policies {
		if err := cfg.Policies[i].validate(); err != nil {
			return fmt.Errorf("policy %d: %w", i, err)
		}
	}
	return nil
}

func LoadConfig(path string) (*Simulation, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Simulation
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
