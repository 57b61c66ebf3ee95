// Package windowca implements a latency-aware W-TinyLFU policy: an admission
// window in front of a two-segment (probation/protected) main cache, every
// segment a benefit-bucketed block.
package windowca

import (
	"fmt"

	"github.com/Borislavv/go-cra-sim/internal/admission"
	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

// Config sizes the three segments. PercentMain is the fraction of total
// capacity given to the main (probation+protected) region;
// PercentMainProtected the fraction of main reserved for protected.
type Config struct {
	MaximumSize          int
	PercentMain          float64
	PercentMainProtected float64
	K                    float64
	MaxLists             int
}

type Policy struct {
	name     string
	data     map[uint64]*cra.Node
	admittor admission.Admittor
	sink     stats.Sink

	maximumSize int

	window    *cra.Block
	probation *cra.Block
	protected *cra.Block

	maxWindow    int
	maxProtected int

	sizeWindow    int
	sizeProtected int

	norm *cra.Normalizer
}

func New(cfg Config, admittor admission.Admittor, sink stats.Sink) *Policy {
	maxMain := int(float64(cfg.MaximumSize) * cfg.PercentMain)
	maxProtected := int(float64(maxMain) * cfg.PercentMainProtected)
	maxWindow := cfg.MaximumSize - maxMain

	window := cra.NewBlock(cfg.K, cfg.MaxLists, maxWindow)
	probation := cra.NewBlock(cfg.K, cfg.MaxLists, maxMain-maxProtected)
	protected := cra.NewBlock(cfg.K, cfg.MaxLists, maxProtected)

	return &Policy{
		name: fmt.Sprintf("WindowCA (%.0f%%,k=%.2f,maxLists=%d)",
			100*(1.0-cfg.PercentMain), cfg.K, cfg.MaxLists),
		data:         make(map[uint64]*cra.Node),
		admittor:     admittor,
		sink:         sink,
		maximumSize:  cfg.MaximumSize,
		window:       window,
		probation:    probation,
		protected:    protected,
		maxWindow:    maxWindow,
		maxProtected: maxProtected,
		norm:         cra.NewNormalizer(window, probation, protected),
	}
}

func (p *Policy) Name() string {
	return p.name
}

// Len is the total number of resident entries across all segments.
func (p *Policy) Len() int {
	return len(p.data)
}

func (p *Policy) Contains(key uint64) bool {
	_, ok := p.data[key]
	return ok
}

func (p *Policy) Record(ev *event.AccessEvent) {
	p.sink.RecordOperation()
	if !ev.Valid() || ev.Weight() > p.maximumSize {
		return
	}
	node, ok := p.data[ev.Key()]
	if !ok {
		p.norm.ObserveMiss(ev.Delta())
		p.onMiss(ev)
		p.sink.RecordMiss(ev.Weight())
		p.sink.RecordMissPenalty(ev.MissPenalty())
		return
	}

	node.Event().UpdateHitPenalty(ev.HitPenalty())
	p.sink.RecordApproxAccuracy(ev.MissPenalty(), node.Event().MissPenalty())
	switch node.Segment() {
	case cra.SegmentWindow:
		p.onWindowHit(node)
	case cra.SegmentProbation:
		p.onProbationHit(node)
	case cra.SegmentProtected:
		p.onProtectedHit(node)
	default:
		panic(fmt.Sprintf("windowca: resident key %d has no segment", node.Key()))
	}
	p.sink.RecordHit(ev.Weight())
	p.sink.RecordHitPenalty(ev.HitPenalty())
}

// onMiss adds the entry to the admission window, evicting if necessary.
func (p *Policy) onMiss(ev *event.AccessEvent) {
	p.admittor.Record(ev)
	node := p.window.AddEntry(ev)
	node.SetSegment(cra.SegmentWindow)
	p.data[ev.Key()] = node
	p.sizeWindow++
	p.evict()
}

// onWindowHit moves the entry to the MRU position of the admission window.
func (p *Policy) onWindowHit(node *cra.Node) {
	p.admittor.Record(node.Event())
	node.MoveToTail()
}

// onProbationHit promotes the entry to the protected region's MRU position,
// demoting an entry if necessary.
func (p *Policy) onProbationHit(node *cra.Node) {
	p.admittor.Record(node.Event())

	p.probation.Remove(node.Key())
	p.protected.AddNode(node)
	node.SetSegment(cra.SegmentProtected)

	p.sizeProtected++
	p.demoteProtected()
}

func (p *Policy) demoteProtected() {
	if p.sizeProtected <= p.maxProtected {
		return
	}
	demote := p.protected.FindVictim()
	p.protected.Remove(demote.Key())
	p.probation.AddNode(demote)
	demote.SetSegment(cra.SegmentProbation)
	p.sizeProtected--
}

// onProtectedHit moves the entry to the protected MRU position.
func (p *Policy) onProtectedHit(node *cra.Node) {
	p.admittor.Record(node.Event())
	node.MoveToTail()
}

// evict spills the admission window's victim into probation. If total
// residency then exceeds the maximum, the spill candidate and probation's
// victim are compared by the admittor and the loser is evicted.
func (p *Policy) evict() {
	if p.sizeWindow <= p.maxWindow {
		return
	}
	candidate := p.window.FindVictim()
	p.sizeWindow--
	p.window.Remove(candidate.Key())
	p.probation.AddNode(candidate)
	candidate.SetSegment(cra.SegmentProbation)

	if len(p.data) > p.maximumSize {
		victim := p.probation.FindVictim()
		evicted := candidate
		if p.admittor.Admit(candidate.Event(), victim.Event()) {
			evicted = victim
		}
		p.probation.Remove(evicted.Key())
		delete(p.data, evicted.Key())
		p.sink.RecordEviction()
	}
}

// Finished checks terminal consistency: the recorded segment sizes must
// match the tagged residents and residency must stay within capacity.
func (p *Policy) Finished() error {
	var window, probation, protected int
	for _, n := range p.data {
		switch n.Segment() {
		case cra.SegmentWindow:
			window++
		case cra.SegmentProbation:
			probation++
		case cra.SegmentProtected:
			protected++
		}
	}
	if window != p.sizeWindow || window != p.window.Len() {
		return fmt.Errorf("windowca: window size drift: tagged=%d recorded=%d block=%d", window, p.sizeWindow, p.window.Len())
	}
	if protected != p.sizeProtected || protected != p.protected.Len() {
		return fmt.Errorf("windowca: protected size drift: tagged=%d recorded=%d block=%d", protected, p.sizeProtected, p.protected.Len())
	}
	if probation != p.probation.Len() {
		return fmt.Errorf("windowca: probation size drift: tagged=%d block=%d", probation, p.probation.Len())
	}
	if len(p.data) > p.maximumSize {
		return fmt.Errorf("windowca: residency %d exceeds maximum %d", len(p.data), p.maximumSize)
	}
	return nil
}
