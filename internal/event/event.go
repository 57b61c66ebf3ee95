package event

import "math"

// AccessEvent is one record of a penalty trace: a key plus the time it took
// to serve the request on a cache hit and on a cache miss. The difference
// between the two penalties is the latency saved per hit and drives every
// eviction decision downstream.
type AccessEvent struct {
	key         uint64
	weight      int
	hitPenalty  float64
	missPenalty float64
}

// New returns an event with unit weight and no penalties.
func New(key uint64) *AccessEvent {
	return &AccessEvent{key: key, weight: 1}
}

// ForPenalties returns a unit-weight event carrying the given service latencies.
func ForPenalties(key uint64, hitPenalty, missPenalty float64) *AccessEvent {
	return &AccessEvent{key: key, weight: 1, hitPenalty: hitPenalty, missPenalty: missPenalty}
}

// ForWeightedPenalties returns an event with an explicit byte-cost weight.
func ForWeightedPenalties(key uint64, weight int, hitPenalty, missPenalty float64) *AccessEvent {
	return &AccessEvent{key: key, weight: weight, hitPenalty: hitPenalty, missPenalty: missPenalty}
}

func (e *AccessEvent) Key() uint64 {
	return e.key
}

func (e *AccessEvent) Weight() int {
	return e.weight
}

func (e *AccessEvent) HitPenalty() float64 {
	return e.hitPenalty
}

func (e *AccessEvent) MissPenalty() float64 {
	return e.missPenalty
}

// Delta is the per-access latency saved by a hit. A negative delta means the
// item is cheaper to recompute than to serve from cache.
func (e *AccessEvent) Delta() float64 {
	return e.missPenalty - e.hitPenalty
}

// UpdateHitPenalty replaces the hit latency estimate with a freshly observed
// one. Resident entries learn better estimates over time this way.
func (e *AccessEvent) UpdateHitPenalty(p float64) {
	e.hitPenalty = p
}

// UpdateMissPenalty replaces the miss latency estimate.
func (e *AccessEvent) UpdateMissPenalty(p float64) {
	e.missPenalty = p
}

// Valid reports whether the event is representable: positive weight and
// non-NaN penalties. Negative penalties are accepted. Invalid events are
// dropped by the replay.
func (e *AccessEvent) Valid() bool {
	if e.weight <= 0 {
		return false
	}
	return !math.IsNaN(e.hitPenalty) && !math.IsNaN(e.missPenalty)
}
