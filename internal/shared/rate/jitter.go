package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

// Jitter paces trace replay to a bounded events-per-second rate, absorbing
// small bursts through a buffered channel so the replay loop does not stall
// on every single event.
type Jitter struct {
	ch    chan struct{}
	l     ratelimit.Limiter
	limit int
}

func NewJitter(ctx context.Context, limit int) *Jitter {
	burst := int(float64(limit) * 0.1)
	if burst < 1 {
		burst = 1
	}
	jitter := &Jitter{
		limit: limit,
		ch:    make(chan struct{}, burst),
		l:     ratelimit.New(limit),
	}
	go jitter.provider(ctx)
	return jitter
}

func (l *Jitter) provider(ctx context.Context) {
	defer close(l.ch)
	for {
		l.l.Take()
		select {
		case <-ctx.Done():
			return
		case l.ch <- struct{}{}:
		}
	}
}

func (l *Jitter) Take() {
	<-l.ch
}

func (l *Jitter) Chan() <-chan struct{} {
	return l.ch
}
