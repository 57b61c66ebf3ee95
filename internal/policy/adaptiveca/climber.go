package adaptiveca

import (
	"fmt"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
)

// Strategy selects the hill-climbing flavor used to resize the window.
type Strategy string

const (
	StrategySimple Strategy = "simple"
	StrategyAdam   Strategy = "adam"
	StrategyNadam  Strategy = "nadam"
)

// ClimberConfig carries the shared and per-strategy hyperparameters. Pivot
// and sample sizes are expressed as fractions of the cache capacity.
type ClimberConfig struct {
	MaximumSize   int
	PercentPivot  float64
	PercentSample float64

	// simple climber
	Tolerance        float64
	StepDecayRate    float64
	SampleDecayRate  float64
	RestartThreshold float64

	// adam / nadam
	Beta1   float64
	Beta2   float64
	Epsilon float64
}

type adaptationType uint8

const (
	hold adaptationType = iota
	increaseWindow
	decreaseWindow
)

// adaptation is a climber's verdict for one sample period.
type adaptation struct {
	typ    adaptationType
	amount float64
}

// adaptBy maps a signed step onto an adaptation.
func adaptBy(amount float64) adaptation {
	switch {
	case amount < 0:
		return adaptation{typ: decreaseWindow, amount: -amount}
	case amount > 0:
		return adaptation{typ: increaseWindow, amount: amount}
	default:
		return adaptation{typ: hold}
	}
}

// climber accumulates observed penalties while the cache is full and, once
// per sample period, turns the average penalty into a window resize step.
type climber interface {
	onHit(ev *event.AccessEvent, segment cra.Segment, full bool)
	onMiss(ev *event.AccessEvent, full bool)
	adapt(windowSize, probationSize, protectedSize float64, full bool) adaptation
}

func newClimber(strategy Strategy, cfg ClimberConfig) (climber, error) {
	switch strategy {
	case StrategySimple:
		return newSimpleClimber(cfg), nil
	case StrategyAdam:
		return newAdamClimber(cfg), nil
	case StrategyNadam:
		return newNadamClimber(cfg), nil
	default:
		return nil, fmt.Errorf("adaptiveca: unknown climber strategy %q", strategy)
	}
}

// sampler is the shared sampling state of all climbers: penalties only count
// toward the running sample while the cache is full, with window and main
// hits tracked separately.
type sampler struct {
	sampleSize         int
	sampleCount        int
	penaltiesInSample  float64
	penaltiesInWindow  float64
	penaltiesInMain    float64
	previousAvgPenalty float64
}

func (s *sampler) onMiss(ev *event.AccessEvent, full bool) {
	if full {
		s.sampleCount++
		s.penaltiesInSample += ev.MissPenalty()
	}
}

func (s *sampler) onHit(ev *event.AccessEvent, segment cra.Segment, full bool) {
	if full {
		s.sampleCount++
		s.penaltiesInSample += ev.HitPenalty()
		if segment == cra.SegmentWindow {
			s.penaltiesInWindow += ev.HitPenalty()
		} else {
			s.penaltiesInMain += ev.HitPenalty()
		}
	}
}

// sampleReady reports the average penalty once a full sample has been
// gathered.
func (s *sampler) sampleReady(full bool) (float64, bool) {
	if !full {
		return 0, false
	}
	if s.sampleSize <= 0 {
		panic("adaptiveca: sample size may not be zero")
	}
	if s.sampleCount < s.sampleSize {
		return 0, false
	}
	return s.penaltiesInSample / float64(s.sampleCount), true
}

// reset starts the next sample period.
func (s *sampler) reset(avgPenalty float64) {
	s.previousAvgPenalty = avgPenalty
	s.sampleCount = 0
	s.penaltiesInSample = 0
	s.penaltiesInWindow = 0
	s.penaltiesInMain = 0
}
