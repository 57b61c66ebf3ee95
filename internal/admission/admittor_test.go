package admission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/sketch"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

func latinylfu(t *testing.T) (*LATinyLFU, *sketch.Perfect, *stats.Collector) {
	t.Helper()
	freq := sketch.NewPerfect()
	col := stats.NewCollector()
	return NewLATinyLFU(freq, col), freq, col
}

// TestLATinyLFU_AdmitsHigherFreqDeltaProduct verifies the freq·delta
// comparison in both directions.
func TestLATinyLFU_AdmitsHigherFreqDeltaProduct(t *testing.T) {
	a, freq, col := latinylfu(t)

	candidate := event.ForPenalties(1, 1, 11) // delta 10
	victim := event.ForPenalties(2, 1, 6)     // delta 5

	// freq: candidate 2, victim 3 -> 20 vs 15.
	freq.Increment(1)
	freq.Increment(1)
	for i := 0; i < 3; i++ {
		freq.Increment(2)
	}

	require.True(t, a.Admit(candidate, victim))
	require.Equal(t, int64(1), col.Admissions())

	// freq: victim pulls ahead -> 20 vs 25.
	for i := 0; i < 2; i++ {
		freq.Increment(2)
	}
	require.False(t, a.Admit(candidate, victim))
	require.Equal(t, int64(1), col.Rejections())
}

// TestLATinyLFU_TiesReject verifies an exact score tie keeps the victim.
func TestLATinyLFU_TiesReject(t *testing.T) {
	a, freq, col := latinylfu(t)

	candidate := event.ForPenalties(1, 1, 6) // delta 5
	victim := event.ForPenalties(2, 1, 6)    // delta 5
	freq.Increment(1)
	freq.Increment(2)

	require.False(t, a.Admit(candidate, victim))
	require.Equal(t, int64(1), col.Rejections())
}

// TestLATinyLFU_RecordFeedsSketch verifies Record increments the estimator.
func TestLATinyLFU_RecordFeedsSketch(t *testing.T) {
	a, freq, _ := latinylfu(t)

	a.Record(event.ForPenalties(9, 1, 2))
	a.Record(event.ForPenalties(9, 1, 2))
	require.Equal(t, uint32(2), freq.Frequency(9))
}

// TestAdmitAll verifies the pass-through admittor.
func TestAdmitAll(t *testing.T) {
	var a AdmitAll
	require.True(t, a.Admit(event.ForPenalties(1, 1, 2), event.ForPenalties(2, 1, 2)))
}
