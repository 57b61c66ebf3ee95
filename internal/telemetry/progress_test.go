package telemetry

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

// TestProgress_ThrottlesByInterval verifies at most one log line per
// interval, driven by a mock clock.
func TestProgress_ThrottlesByInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mock := clock.NewMock()

	p := NewProgress(logger, mock, time.Second, "test-policy")

	p.Observe(1, 0)
	p.Observe(2, 0)
	require.Zero(t, buf.Len(), "nothing logged inside the first interval")

	mock.Add(time.Second)
	p.Observe(3, 1)
	require.Contains(t, buf.String(), "replay progress")
	require.Contains(t, buf.String(), "test-policy")

	lenAfterFirst := buf.Len()
	p.Observe(4, 1)
	require.Equal(t, lenAfterFirst, buf.Len(), "still inside the next interval")

	mock.Add(2 * time.Second)
	p.Observe(5, 2)
	require.Greater(t, buf.Len(), lenAfterFirst)
}

// TestProgress_DisabledInterval verifies a non-positive interval never logs.
func TestProgress_DisabledInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewProgress(logger, clock.NewMock(), 0, "test-policy")
	for i := int64(0); i < 100; i++ {
		p.Observe(i, 0)
	}
	require.Zero(t, buf.Len())
}
