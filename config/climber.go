package config

import "fmt"

type ClimberCfg struct {
	// Strategy selects the hill climber.
	// Supported values: "simple" (default), "adam", "nadam".
	Strategy string `yaml:"strategy"`

	// PercentPivot is the initial resize step as a fraction of capacity.
	PercentPivot float64 `yaml:"percent_pivot"`

	// PercentSample is the sample period length as a fraction of capacity.
	PercentSample float64 `yaml:"percent_sample"`

	// Tolerance is the relative penalty degradation the simple climber
	// accepts before reversing direction.
	Tolerance float64 `yaml:"tolerance"`

	// StepDecayRate and SampleDecayRate shrink the simple climber's step
	// and sample sizes each period.
	StepDecayRate   float64 `yaml:"step_decay_rate"`
	SampleDecayRate float64 `yaml:"sample_decay_rate"`

	// RestartThreshold is the relative penalty change that resets the
	// simple climber's decayed step and sample sizes.
	RestartThreshold float64 `yaml:"restart_threshold"`

	// Beta1, Beta2 and Epsilon are the Adam/Nadam moment hyperparameters.
	Beta1   float64 `yaml:"beta1"`
	Beta2   float64 `yaml:"beta2"`
	Epsilon float64 `yaml:"epsilon"`
}

func (cfg *ClimberCfg) adjust() {
	if cfg.Strategy == "" {
		cfg.Strategy = "simple"
	}
	if cfg.PercentPivot == 0 {
		cfg.PercentPivot = 0.0625
	}
	if cfg.PercentSample == 0 {
		cfg.PercentSample = 10
	}
	if cfg.StepDecayRate == 0 {
		cfg.StepDecayRate = 0.98
	}
	if cfg.SampleDecayRate == 0 {
		cfg.SampleDecayRate = 1
	}
	if cfg.RestartThreshold == 0 {
		cfg.RestartThreshold = 0.05
	}
	if cfg.Beta1 == 0 {
		cfg.Beta1 = 0.9
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = 0.999
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-8
	}
}

func (cfg *ClimberCfg) validate() error {
	switch cfg.Strategy {
	case "simple", "adam", "nadam":
	default:
		return fmt.Errorf("unknown climber strategy %q", cfg.Strategy)
	}
	if cfg.PercentPivot <= 0 {
		return fmt.Errorf("percent_pivot must be positive, got %g", cfg.PercentPivot)
	}
	if cfg.PercentSample <= 0 {
		return fmt.Errorf("percent_sample must be positive, got %g", cfg.PercentSample)
	}
	return nil
}
