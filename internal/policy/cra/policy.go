package cra

import (
	"fmt"

	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

// Policy runs a single block as a replacement policy of its own: every miss
// is admitted, victims fall out of the rank scoring alone. With maxLists=1
// this degenerates to latency-aware LRU.
type Policy struct {
	name  string
	block *Block
	norm  *Normalizer
	sink  stats.Sink
}

func NewPolicy(k float64, maxLists, maximumSize int, sink stats.Sink) *Policy {
	b := NewBlock(k, maxLists, maximumSize)
	return &Policy{
		name:  fmt.Sprintf("CRA-%s (k=%.2f,maxLists=%d)", b.Type(), k, maxLists),
		block: b,
		norm:  NewNormalizer(b),
		sink:  sink,
	}
}

func (p *Policy) Name() string {
	return p.name
}

func (p *Policy) Record(ev *event.AccessEvent) {
	p.sink.RecordOperation()
	if !ev.Valid() || ev.Weight() > p.block.Capacity() {
		return
	}
	resident := p.block.Contains(ev.Key())
	if !resident {
		p.norm.ObserveMiss(ev.Delta())
	}
	removed := p.block.Record(ev)
	if resident {
		// A touch that removed the entry means its delta turned negative;
		// that counts as an eviction, not a retained hit.
		if len(removed) > 0 {
			p.sink.RecordEviction()
			return
		}
		p.sink.RecordHit(ev.Weight())
		p.sink.RecordHitPenalty(ev.HitPenalty())
		return
	}
	p.sink.RecordMiss(ev.Weight())
	p.sink.RecordMissPenalty(ev.MissPenalty())
	for range removed {
		p.sink.RecordEviction()
	}
}

func (p *Policy) Finished() error {
	if p.block.Size() > p.block.Capacity() {
		return fmt.Errorf("cra: resident weight %d exceeds capacity %d", p.block.Size(), p.block.Capacity())
	}
	return nil
}
