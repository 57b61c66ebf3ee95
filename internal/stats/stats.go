// Package stats collects the per-policy signals a simulation run emits:
// hits, misses, evictions, admission decisions and observed penalties.
package stats

// Sink receives the signals a policy emits while replaying a trace. A policy
// treats the sink as opaque; implementations range from the in-memory
// Collector to a Prometheus adapter.
type Sink interface {
	RecordOperation()
	RecordHit(weight int)
	RecordMiss(weight int)
	RecordEviction()
	RecordAdmission()
	RecordRejection()
	RecordHitPenalty(penalty float64)
	RecordMissPenalty(penalty float64)
	// RecordApproxAccuracy receives the real miss penalty of an access next
	// to the resident entry's current estimate.
	RecordApproxAccuracy(real, estimated float64)
	// RecordPercentAdaption reports how far an adaptive policy moved its
	// window from the configured split, as a fraction of total capacity.
	RecordPercentAdaption(p float64)
}

// Collector is the in-memory Sink used for reporting simulation results.
type Collector struct {
	operations int64
	hits       int64
	misses     int64
	evictions  int64
	admissions int64
	rejections int64

	weightedHits   int64
	weightedMisses int64

	hitPenaltySum  float64
	missPenaltySum float64

	accuracyError float64
	accuracyCount int64

	percentAdaption float64
}

var _ Sink = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) RecordOperation() { c.operations++ }

func (c *Collector) RecordHit(weight int) {
	c.hits++
	c.weightedHits += int64(weight)
}

func (c *Collector) RecordMiss(weight int) {
	c.misses++
	c.weightedMisses += int64(weight)
}

func (c *Collector) RecordEviction()  { c.evictions++ }
func (c *Collector) RecordAdmission() { c.admissions++ }
func (c *Collector) RecordRejection() { c.rejections++ }

func (c *Collector) RecordHitPenalty(penalty float64)  { c.hitPenaltySum += penalty }
func (c *Collector) RecordMissPenalty(penalty float64) { c.missPenaltySum += penalty }

func (c *Collector) RecordApproxAccuracy(real, estimated float64) {
	diff := real - estimated
	if diff < 0 {
		diff = -diff
	}
	c.accuracyError += diff
	c.accuracyCount++
}

func (c *Collector) RecordPercentAdaption(p float64) { c.percentAdaption = p }

func (c *Collector) Operations() int64 { return c.operations }
func (c *Collector) Hits() int64       { return c.hits }
func (c *Collector) Misses() int64     { return c.misses }
func (c *Collector) Evictions() int64  { return c.evictions }
func (c *Collector) Admissions() int64 { return c.admissions }
func (c *Collector) Rejections() int64 { return c.rejections }

// HitRate is the fraction of requests served from cache.
func (c *Collector) HitRate() float64 {
	requests := c.hits + c.misses
	if requests == 0 {
		return 0
	}
	return float64(c.hits) / float64(requests)
}

// WeightedHitRate weighs each request by its byte cost.
func (c *Collector) WeightedHitRate() float64 {
	total := c.weightedHits + c.weightedMisses
	if total == 0 {
		return 0
	}
	return float64(c.weightedHits) / float64(total)
}

// AveragePenalty is the mean observed service latency per request.
func (c *Collector) AveragePenalty() float64 {
	requests := c.hits + c.misses
	if requests == 0 {
		return 0
	}
	return (c.hitPenaltySum + c.missPenaltySum) / float64(requests)
}

// AverageAccuracyError is the mean absolute gap between real and estimated
// miss penalties over all hits.
func (c *Collector) AverageAccuracyError() float64 {
	if c.accuracyCount == 0 {
		return 0
	}
	return c.accuracyError / float64(c.accuracyCount)
}

func (c *Collector) PercentAdaption() float64 { return c.percentAdaption }

// Snapshot is an immutable copy of the derived results, used for reporting.
type Snapshot struct {
	Operations      int64
	Hits            int64
	Misses          int64
	Evictions       int64
	Admissions      int64
	Rejections      int64
	HitRate         float64
	WeightedHitRate float64
	AveragePenalty  float64
	AccuracyError   float64
	PercentAdaption float64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Operations:      c.operations,
		Hits:            c.hits,
		Misses:          c.misses,
		Evictions:       c.evictions,
		Admissions:      c.admissions,
		Rejections:      c.rejections,
		HitRate:         c.HitRate(),
		WeightedHitRate: c.WeightedHitRate(),
		AveragePenalty:  c.AveragePenalty(),
		AccuracyError:   c.AverageAccuracyError(),
		PercentAdaption: c.percentAdaption,
	}
}

// Tee fans every signal out to several sinks, e.g. a Collector plus a
// Prometheus adapter.
type Tee []Sink

var _ Sink = Tee(nil)

func (t Tee) RecordOperation() {
	for _, s := range t {
		s.RecordOperation()
	}
}

func (t Tee) RecordHit(weight int) {
	for _, s := range t {
		s.RecordHit(weight)
	}
}

func (t Tee) RecordMiss(weight int) {
	for _, s := range t {
		s.RecordMiss(weight)
	}
}

func (t Tee) RecordEviction() {
	for _, s := range t {
		s.RecordEviction()
	}
}

func (t Tee) RecordAdmission() {
	for _, s := range t {
		s.RecordAdmission()
	}
}

func (t Tee) RecordRejection() {
	for _, s := range t {
		s.RecordRejection()
	}
}

func (t Tee) RecordHitPenalty(penalty float64) {
	for _, s := range t {
		s.RecordHitPenalty(penalty)
	}
}

func (t Tee) RecordMissPenalty(penalty float64) {
	for _, s := range t {
		s.RecordMissPenalty(penalty)
	}
}

func (t Tee) RecordApproxAccuracy(real, estimated float64) {
	for _, s := range t {
		s.RecordApproxAccuracy(real, estimated)
	}
}

func (t Tee) RecordPercentAdaption(p float64) {
	for _, s := range t {
		s.RecordPercentAdaption(p)
	}
}
