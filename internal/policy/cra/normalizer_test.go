package cra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNormalizer_FirstSampleEstablishesFactor verifies the factor is
// published as soon as the first above-zero delta is observed.
func TestNormalizer_FirstSampleEstablishesFactor(t *testing.T) {
	b := NewBlock(1, 4, 8)
	n := NewNormalizer(b)

	n.ObserveMiss(9)
	require.Equal(t, 9.0, n.Bias())
	require.Equal(t, 9.0, n.Factor())
	require.Equal(t, 9.0, b.normalizationBias, "published into the block")
	require.Equal(t, 9.0, b.normalizationFactor)
}

// TestNormalizer_BiasTracksSmallestNonNegativeDelta verifies the bias only
// shrinks while positive, collapses to zero on a negative delta and is
// re-established by the next observation.
func TestNormalizer_BiasTracksSmallestNonNegativeDelta(t *testing.T) {
	n := NewNormalizer()

	n.ObserveMiss(9)
	require.Equal(t, 9.0, n.Bias())
	n.ObserveMiss(4)
	require.Equal(t, 4.0, n.Bias())
	n.ObserveMiss(6)
	require.Equal(t, 4.0, n.Bias())
	n.ObserveMiss(-1)
	require.Zero(t, n.Bias())
	n.ObserveMiss(7)
	require.Equal(t, 7.0, n.Bias())
}

// TestNormalizer_FactorRepublishesAfterSampleWindow verifies the factor is
// refreshed from the running mean once enough above-factor deltas arrive.
func TestNormalizer_FactorRepublishesAfterSampleWindow(t *testing.T) {
	b := NewBlock(1, 4, 8)
	n := NewNormalizer(b)

	n.ObserveMiss(9)
	require.Equal(t, 9.0, n.Factor())

	for i := 0; i < factorSampleWindow; i++ {
		n.ObserveMiss(19)
	}
	want := (9.0 + 19.0*float64(factorSampleWindow)) / float64(factorSampleWindow+1)
	require.InDelta(t, want, n.Factor(), 1e-9)
	require.InDelta(t, want, b.normalizationFactor, 1e-9)
}

// TestNormalizer_AttachPublishesCurrentState verifies a late-attached block
// receives the running pair immediately.
func TestNormalizer_AttachPublishesCurrentState(t *testing.T) {
	n := NewNormalizer()
	n.ObserveMiss(5)

	b := NewBlock(1, 4, 8)
	n.Attach(b)
	require.Equal(t, 5.0, b.normalizationBias)
	require.Equal(t, 5.0, b.normalizationFactor)
}
