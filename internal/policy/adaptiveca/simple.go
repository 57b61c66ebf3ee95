package adaptiveca

import (
	"math"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
)

// frozenSampleSize stops further adaptation once the simple climber's decay
// has bottomed out.
const frozenSampleSize = math.MaxInt32

// simpleClimber walks the window size in a fixed direction and flips it when
// the average penalty degrades beyond the tolerance. Step and sample sizes
// decay every period until adaptation freezes; a large relative change in
// penalty restarts both at their initial values.
type simpleClimber struct {
	sampler

	initialSampleSize int
	initialStepSize   float64
	restartThreshold  float64
	stepDecayRate     float64
	sampleDecayRate   float64
	tolerance         float64

	growWindow bool
	stepSize   float64
}

func newSimpleClimber(cfg ClimberConfig) *simpleClimber {
	c := &simpleClimber{
		initialSampleSize: int(cfg.PercentSample * float64(cfg.MaximumSize)),
		initialStepSize:   cfg.PercentPivot * float64(cfg.MaximumSize),
		restartThreshold:  cfg.RestartThreshold,
		stepDecayRate:     cfg.StepDecayRate,
		sampleDecayRate:   cfg.SampleDecayRate,
		tolerance:         cfg.Tolerance,
	}
	c.sampleSize = c.initialSampleSize
	c.stepSize = c.initialStepSize
	return c
}

func (c *simpleClimber) onHit(ev *event.AccessEvent, segment cra.Segment, full bool) {
	c.sampler.onHit(ev, segment, full)
}

func (c *simpleClimber) onMiss(ev *event.AccessEvent, full bool) {
	c.sampler.onMiss(ev, full)
}

func (c *simpleClimber) adapt(windowSize, probationSize, protectedSize float64, full bool) adaptation {
	avgPenalty, ok := c.sampleReady(full)
	if !ok {
		return adaptation{typ: hold}
	}
	step := c.adjust(avgPenalty)
	c.reset(avgPenalty)
	c.decay()
	return adaptBy(step)
}

func (c *simpleClimber) adjust(avgPenalty float64) float64 {
	if avgPenalty/c.previousAvgPenalty > 1+c.tolerance {
		c.growWindow = !c.growWindow
	}
	lo := math.Min(avgPenalty, c.previousAvgPenalty)
	hi := math.Max(avgPenalty, c.previousAvgPenalty)
	if 1-math.Abs(lo/hi) >= c.restartThreshold {
		c.sampleSize = c.initialSampleSize
		c.stepSize = c.initialStepSize
	}
	if c.growWindow {
		return c.stepSize
	}
	return -c.stepSize
}

func (c *simpleClimber) decay() {
	c.stepSize *= c.stepDecayRate
	c.sampleSize = int(float64(c.sampleSize) * c.sampleDecayRate)
	if c.stepSize <= 0.01 || c.sampleSize <= 1 {
		c.sampleSize = frozenSampleSize
	}
}
