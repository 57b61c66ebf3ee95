package cra

import "math"

// factorSampleWindow is how many above-factor deltas are averaged before the
// factor is re-published.
const factorSampleWindow = 1000

// Normalizer tracks the running (bias, factor) mapping that bucketizes deltas
// across every block of one policy. The bias is the smallest non-negative
// delta observed; the factor is a windowed mean of deltas exceeding the
// current factor, published every factorSampleWindow samples or as soon as
// the first sample arrives. All attached blocks always see the same pair.
type Normalizer struct {
	blocks []*Block

	bias   float64
	factor float64

	mean      float64
	meanCount int
	samples   int
}

func NewNormalizer(blocks ...*Block) *Normalizer {
	n := &Normalizer{blocks: blocks}
	n.publish()
	return n
}

// Attach subscribes another block to normalization updates.
func (n *Normalizer) Attach(b *Block) {
	n.blocks = append(n.blocks, b)
	b.SetNormalization(n.bias, n.factor)
}

// ObserveMiss feeds the delta of a missed access into the running estimators
// and pushes the resulting (bias, factor) into every attached block.
func (n *Normalizer) ObserveMiss(delta float64) {
	if delta > n.factor {
		n.mean = (n.mean*float64(n.meanCount) + delta) / float64(n.meanCount+1)
		n.meanCount++
		n.samples++
	}

	nonNegative := math.Max(0, delta)
	if n.bias > 0 {
		n.bias = math.Min(n.bias, nonNegative)
	} else {
		n.bias = nonNegative
	}

	if n.samples >= factorSampleWindow || n.factor == 0 {
		n.factor = n.mean
		n.meanCount = 1
		n.samples = 0
	}
	n.publish()
}

func (n *Normalizer) Bias() float64 {
	return n.bias
}

func (n *Normalizer) Factor() float64 {
	return n.factor
}

func (n *Normalizer) publish() {
	for _, b := range n.blocks {
		b.SetNormalization(n.bias, n.factor)
	}
}
