package config

import "fmt"

// PolicyType selects the replacement policy under simulation.
type PolicyType string

const (
	// PolicyCRA runs a single benefit-bucketed block with admit-all.
	PolicyCRA PolicyType = "cra"

	// PolicyWindowCA is the three-segment cache with latency-aware
	// TinyLFU admission.
	PolicyWindowCA PolicyType = "window-ca"

	// PolicyAdaptiveCA is WindowCA with hill-climbed window sizing.
	PolicyAdaptiveCA PolicyType = "adaptive-ca"
)

type PolicyCfg struct {
	Type PolicyType `yaml:"type"`

	// MaximumSize is the total capacity in entries (or weight units).
	MaximumSize int `yaml:"maximum_size"`

	// PercentMain is the fraction of capacity given to the main region;
	// the remainder forms the admission window.
	PercentMain float64 `yaml:"percent_main"`

	// PercentMainProtected is the fraction of main reserved for the
	// protected segment.
	PercentMainProtected float64 `yaml:"percent_main_protected"`

	// K is the CRA exponent trading benefit against recency in victim
	// ranking.
	K float64 `yaml:"k"`

	// MaxLists is the number of non-negative benefit buckets per block.
	MaxLists int `yaml:"max_lists"`

	// Admission configures the frequency sketch behind the TinyLFU filter.
	// If nil, every candidate is admitted.
	Admission *AdmissionCfg `yaml:"admission"`

	// Climber configures the adaptive controller; only read for
	// the adaptive-ca policy type.
	Climber *ClimberCfg `yaml:"climber"`
}

type AdmissionCfg struct {
	// Sketch names the frequency estimator.
	// Supported values: "count-min" (default), "perfect".
	Sketch string `yaml:"sketch"`
}

func (cfg *AdmissionCfg) Enabled() bool {
	return cfg != nil
}

func (cfg *PolicyCfg) adjust() {
	if cfg.PercentMain == 0 {
		cfg.PercentMain = 0.99
	}
	if cfg.PercentMainProtected == 0 {
		cfg.PercentMainProtected = 0.80
	}
	if cfg.MaxLists == 0 {
		cfg.MaxLists = 10
	}
	if cfg.K == 0 {
		cfg.K = 1
	}
	if cfg.Type == PolicyAdaptiveCA && cfg.Climber == nil {
		cfg.Climber = &ClimberCfg{}
	}
	if cfg.Climber != nil {
		cfg.Climber.adjust()
	}
}

func (cfg *PolicyCfg) validate() error {
	switch cfg.Type {
	case PolicyCRA, PolicyWindowCA, PolicyAdaptiveCA:
	default:
		return fmt.Errorf("unknown policy type %q", cfg.Type)
	}
	if cfg.MaximumSize <= 0 {
		return fmt.Errorf("maximum_size must be positive, got %d", cfg.MaximumSize)
	}
	if cfg.PercentMain < 0 || cfg.PercentMain > 1 {
		return fmt.Errorf("percent_main must be in [0,1], got %g", cfg.PercentMain)
	}
	if cfg.PercentMainProtected < 0 || cfg.PercentMainProtected > 1 {
		return fmt.Errorf("percent_main_protected must be in [0,1], got %g", cfg.PercentMainProtected)
	}
	if cfg.MaxLists < 1 {
		return fmt.Errorf("max_lists must be at least 1, got %d", cfg.MaxLists)
	}
	if cfg.Type == PolicyAdaptiveCA {
		return cfg.Climber.validate()
	}
	return nil
}
