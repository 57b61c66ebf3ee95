package adaptiveca

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

// feedSample pushes n full-cache misses with the given penalty into the
// climber's running sample.
func feedSample(c climber, n int, penalty float64) {
	ev := event.ForPenalties(1, 1, penalty)
	for i := 0; i < n; i++ {
		c.onMiss(ev, true)
	}
}

func simpleCfg() ClimberConfig {
	return ClimberConfig{
		MaximumSize:      100,
		PercentPivot:     0.1,  // step 10
		PercentSample:    0.05, // sample 5
		StepDecayRate:    0.9,
		SampleDecayRate:  1,
		RestartThreshold: 0.95,
	}
}

// TestSimpleClimber_FirstSampleStartsGrowing verifies the first completed
// sample flips the initial direction toward growing the window.
func TestSimpleClimber_FirstSampleStartsGrowing(t *testing.T) {
	c := newSimpleClimber(simpleCfg())

	feedSample(c, 4, 10)
	require.Equal(t, hold, c.adapt(0, 0, 0, true).typ, "sample not complete yet")

	feedSample(c, 1, 10)
	a := c.adapt(0, 0, 0, true)
	require.Equal(t, increaseWindow, a.typ)
	require.InDelta(t, 10, a.amount, 1e-9)
}

// TestSimpleClimber_FlipsOnWorsePenalty verifies the direction reverses when
// the average penalty degrades beyond the tolerance.
func TestSimpleClimber_FlipsOnWorsePenalty(t *testing.T) {
	c := newSimpleClimber(simpleCfg())

	feedSample(c, 5, 10)
	require.Equal(t, increaseWindow, c.adapt(0, 0, 0, true).typ)

	feedSample(c, 5, 30)
	a := c.adapt(0, 0, 0, true)
	require.Equal(t, decreaseWindow, a.typ)
}

// TestSimpleClimber_StepDecays verifies the step shrinks between stable
// sample periods.
func TestSimpleClimber_StepDecays(t *testing.T) {
	cfg := simpleCfg()
	cfg.RestartThreshold = 2 // out of reach: |change| is always below it
	c := newSimpleClimber(cfg)

	feedSample(c, 5, 10)
	first := c.adapt(0, 0, 0, true)
	feedSample(c, 5, 10)
	second := c.adapt(0, 0, 0, true)

	require.InDelta(t, 10, first.amount, 1e-9)
	require.InDelta(t, 9, second.amount, 1e-9, "step decayed by the configured rate")
}

// TestSimpleClimber_FreezesWhenDecayBottomsOut verifies adaptation stops via
// the sentinel sample size once the step has decayed away.
func TestSimpleClimber_FreezesWhenDecayBottomsOut(t *testing.T) {
	cfg := simpleCfg()
	cfg.RestartThreshold = 2
	cfg.StepDecayRate = 0.0001 // one decay pushes the step below the floor
	c := newSimpleClimber(cfg)

	feedSample(c, 5, 10)
	c.adapt(0, 0, 0, true)
	require.Equal(t, frozenSampleSize, c.sampleSize)

	feedSample(c, 1000, 10)
	require.Equal(t, hold, c.adapt(0, 0, 0, true).typ, "frozen climber never adapts again")
}

// TestSimpleClimber_RestartOnLargeChange verifies a large relative penalty
// change resets the decayed step to its initial size.
func TestSimpleClimber_RestartOnLargeChange(t *testing.T) {
	cfg := simpleCfg()
	cfg.RestartThreshold = 0.9
	c := newSimpleClimber(cfg)

	feedSample(c, 5, 10)
	c.adapt(0, 0, 0, true) // first sample restarts (previous average is zero)
	feedSample(c, 5, 10)
	c.adapt(0, 0, 0, true) // stable: steps by 9, then decays to 8.1
	require.InDelta(t, 8.1, c.stepSize, 1e-9)

	// 10 -> 1000 is a >90% relative change: restart, then decay once.
	feedSample(c, 5, 1000)
	a := c.adapt(0, 0, 0, true)
	require.InDelta(t, 10, a.amount, 1e-9)
	require.InDelta(t, 9, c.stepSize, 1e-9)
}

func gradientCfg() ClimberConfig {
	return ClimberConfig{
		MaximumSize:   100,
		PercentPivot:  0.1,  // step 10
		PercentSample: 0.05, // sample 5
		Beta1:         0.9,
		Beta2:         0.999,
		Epsilon:       1e-8,
	}
}

// TestAdamClimber_FirstStep verifies the bias-corrected first step equals
// stepSize·gradient/|gradient|.
func TestAdamClimber_FirstStep(t *testing.T) {
	c := newAdamClimber(gradientCfg())

	feedSample(c, 5, 10)
	a := c.adapt(0, 0, 0, true)

	// gradient 10: moment-hat 10, velocity-hat 100 -> 10/sqrt(100)*10 = 10.
	require.Equal(t, increaseWindow, a.typ)
	require.InDelta(t, 10, a.amount, 1e-6)
	require.Equal(t, 2, c.t)
}

// TestAdamClimber_NegativeGradientShrinks verifies an improving penalty
// produces a decrease once the momentum follows the gradient.
func TestAdamClimber_NegativeGradientShrinks(t *testing.T) {
	c := newAdamClimber(gradientCfg())

	feedSample(c, 5, 100)
	c.adapt(0, 0, 0, true)

	feedSample(c, 5, 5)
	a := c.adapt(0, 0, 0, true)
	require.Equal(t, decreaseWindow, a.typ)
}

// TestNadamClimber_FirstStep verifies Nadam's Nesterov correction on the
// first sample.
func TestNadamClimber_FirstStep(t *testing.T) {
	c := newNadamClimber(gradientCfg())

	feedSample(c, 5, 10)
	a := c.adapt(0, 0, 0, true)

	// gradient 10: 10/sqrt(100) * (0.9*10 + (0.1/0.1)*10) = 1*19.
	require.Equal(t, increaseWindow, a.typ)
	require.InDelta(t, 19, a.amount, 1e-6)
}

// TestSampler_IgnoresEventsWhileNotFull verifies penalties only count toward
// the sample when the cache is full.
func TestSampler_IgnoresEventsWhileNotFull(t *testing.T) {
	c := newSimpleClimber(simpleCfg())

	feedSample(c, 3, 10)
	ev := event.ForPenalties(1, 1, 10)
	for i := 0; i < 50; i++ {
		c.onMiss(ev, false)
	}
	require.Equal(t, 3, c.sampleCount)
	require.Equal(t, hold, c.adapt(0, 0, 0, true).typ)
}

// TestNewClimber_UnknownStrategy verifies the constructor error.
func TestNewClimber_UnknownStrategy(t *testing.T) {
	_, err := newClimber(Strategy("bogus"), simpleCfg())
	require.Error(t, err)
}
