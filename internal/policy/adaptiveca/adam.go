package adaptiveca

import (
	"math"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
)

// adamClimber is the Adam optimizer driven by the gradient of the average
// penalty between consecutive sample periods.
type adamClimber struct {
	sampler

	stepSize float64
	beta1    float64
	beta2    float64
	epsilon  float64

	t        int
	moment   float64
	velocity float64
}

func newAdamClimber(cfg ClimberConfig) *adamClimber {
	c := &adamClimber{
		stepSize: float64(int(cfg.PercentPivot * float64(cfg.MaximumSize))),
		beta1:    cfg.Beta1,
		beta2:    cfg.Beta2,
		epsilon:  cfg.Epsilon,
		t:        1,
	}
	c.sampleSize = int(cfg.PercentSample * float64(cfg.MaximumSize))
	return c
}

func (c *adamClimber) onHit(ev *event.AccessEvent, segment cra.Segment, full bool) {
	c.sampler.onHit(ev, segment, full)
}

func (c *adamClimber) onMiss(ev *event.AccessEvent, full bool) {
	c.sampler.onMiss(ev, full)
}

func (c *adamClimber) adapt(windowSize, probationSize, protectedSize float64, full bool) adaptation {
	avgPenalty, ok := c.sampleReady(full)
	if !ok {
		return adaptation{typ: hold}
	}
	step := c.adjust(avgPenalty)
	c.reset(avgPenalty)
	c.t++
	return adaptBy(step)
}

func (c *adamClimber) adjust(avgPenalty float64) float64 {
	gradient := avgPenalty - c.previousAvgPenalty
	c.moment = c.beta1*c.moment + (1-c.beta1)*gradient
	c.velocity = c.beta2*c.velocity + (1-c.beta2)*gradient*gradient

	momentBias := c.moment / (1 - math.Pow(c.beta1, float64(c.t)))
	velocityBias := c.velocity / (1 - math.Pow(c.beta2, float64(c.t)))
	return c.stepSize / (math.Sqrt(velocityBias) + c.epsilon) * momentBias
}
