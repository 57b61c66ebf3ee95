package cra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

type step struct {
	key  uint64
	hit  float64
	miss float64
}

func replay(t *testing.T, trace []step) (*Policy, *stats.Collector) {
	t.Helper()
	col := stats.NewCollector()
	p := NewPolicy(1, 4, 4, col)
	for _, s := range trace {
		p.Record(event.ForPenalties(s.key, s.hit, s.miss))
	}
	require.NoError(t, p.Finished())
	checkBlockInvariants(t, p.block)
	return p, col
}

func residents(p *Policy) map[uint64]bool {
	out := make(map[uint64]bool, len(p.block.data))
	for key := range p.block.data {
		out[key] = true
	}
	return out
}

// TestPolicy_WarmupFillsToCapacity replays four distinct keys into a
// four-entry cache: everything stays resident, nothing hits.
func TestPolicy_WarmupFillsToCapacity(t *testing.T) {
	p, col := replay(t, []step{
		{1, 1, 10}, {2, 1, 5}, {3, 1, 1}, {4, 1, 0.1},
	})
	require.Equal(t, map[uint64]bool{1: true, 2: true, 3: true, 4: true}, residents(p))
	require.Zero(t, col.Hits())
	require.Equal(t, int64(4), col.Misses())
}

// TestPolicy_EvictsSmallestDelta verifies the entry with the smallest delta
// (here negative) falls out when a fifth key arrives.
func TestPolicy_EvictsSmallestDelta(t *testing.T) {
	p, col := replay(t, []step{
		{1, 1, 10}, {2, 1, 5}, {3, 1, 1}, {4, 1, 0.1}, {5, 1, 20},
	})
	require.Equal(t, map[uint64]bool{1: true, 2: true, 3: true, 5: true}, residents(p))
	require.Zero(t, col.Hits())
	require.Equal(t, int64(1), col.Evictions())
}

// TestPolicy_RepeatedKeyHits verifies repeated touches of one key count as
// hits and leave residency unchanged.
func TestPolicy_RepeatedKeyHits(t *testing.T) {
	p, col := replay(t, []step{
		{1, 1, 10}, {1, 1, 10}, {1, 1, 10},
	})
	require.Equal(t, map[uint64]bool{1: true}, residents(p))
	require.Equal(t, int64(2), col.Hits())
}

// TestPolicy_NegativeDeltaHitRemoves verifies a touch whose observed
// penalties turn the delta negative removes the entry instead of retaining
// it: caching it is worse than recomputing.
func TestPolicy_NegativeDeltaHitRemoves(t *testing.T) {
	p, col := replay(t, []step{
		{1, 1, 10}, {1, 1, 10}, {1, 1, -5},
	})
	require.Empty(t, residents(p))
	require.Equal(t, int64(1), col.Hits())
	require.Equal(t, int64(1), col.Evictions())
}

// TestPolicy_EqualDeltasEvictLRU verifies that with all deltas equal the
// rank degenerates to last-op ordering and exactly one of the first four
// keys is evicted.
func TestPolicy_EqualDeltasEvictLRU(t *testing.T) {
	p, col := replay(t, []step{
		{1, 1, 1}, {2, 1, 1}, {3, 1, 1}, {4, 1, 1}, {5, 1, 1},
	})
	res := residents(p)
	require.Len(t, res, 4)
	require.True(t, res[5])
	evicted := 0
	for key := uint64(1); key <= 4; key++ {
		if !res[key] {
			evicted++
		}
	}
	require.Equal(t, 1, evicted)
	require.False(t, res[1], "oldest equal-delta entry is the LRU victim")
	require.Zero(t, col.Hits())
}

// TestPolicy_DropsUnrepresentableEvents verifies NaN penalties and
// overweight entries bump the operation counter only.
func TestPolicy_DropsUnrepresentableEvents(t *testing.T) {
	col := stats.NewCollector()
	p := NewPolicy(1, 4, 4, col)

	nan := event.ForPenalties(1, 1, 10)
	nan.UpdateMissPenalty(math.NaN())
	p.Record(nan)
	p.Record(event.ForWeightedPenalties(2, 100, 1, 10))

	require.Zero(t, p.block.Len())
	require.Zero(t, col.Hits())
	require.Zero(t, col.Misses())
	require.Equal(t, int64(2), col.Operations())
}
