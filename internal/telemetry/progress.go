// Package telemetry emits periodic progress logs during long trace replays.
package telemetry

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// Progress logs replay progress at most once per interval. It is driven from
// the replay loop itself (the engine is single-threaded), so checks must stay
// cheap; time comes from an injectable clock so tests can drive it.
type Progress struct {
	logger   *slog.Logger
	clk      clock.Clock
	interval time.Duration
	policy   string
	next     time.Time
}

func NewProgress(logger *slog.Logger, clk clock.Clock, interval time.Duration, policy string) *Progress {
	p := &Progress{
		logger:   logger,
		clk:      clk,
		interval: interval,
		policy:   policy,
	}
	if interval > 0 {
		p.next = clk.Now().Add(interval)
	}
	return p
}

// Observe reports the replay position; a log line is emitted once per
// interval, the rest of the calls return immediately.
func (p *Progress) Observe(events, hits int64) {
	if p.interval <= 0 {
		return
	}
	now := p.clk.Now()
	if now.Before(p.next) {
		return
	}
	p.next = now.Add(p.interval)
	p.logger.Info("replay progress", "policy", p.policy, "events", events, "hits", hits)
}
