// Package adaptiveca is the WindowCA cache with an online controller: a hill
// climber watches the average penalty per sample period and moves capacity
// between the admission window and the protected region.
package adaptiveca

import (
	"fmt"
	"math"

	"github.com/Borislavv/go-cra-sim/internal/admission"
	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

type Config struct {
	MaximumSize          int
	PercentMain          float64
	PercentMainProtected float64
	K                    float64
	MaxLists             int

	Strategy Strategy
	Climber  ClimberConfig
}

type Policy struct {
	name     string
	data     map[uint64]*cra.Node
	admittor admission.Admittor
	climber  climber
	sink     stats.Sink

	maximumSize        int
	initialPercentMain float64

	window    *cra.Block
	probation *cra.Block
	protected *cra.Block

	maxWindow    int
	maxProtected int

	windowSize    float64
	protectedSize float64

	norm *cra.Normalizer
}

func New(cfg Config, admittor admission.Admittor, sink stats.Sink) (*Policy, error) {
	climberCfg := cfg.Climber
	climberCfg.MaximumSize = cfg.MaximumSize
	cl, err := newClimber(cfg.Strategy, climberCfg)
	if err != nil {
		return nil, err
	}

	maxMain := int(float64(cfg.MaximumSize) * cfg.PercentMain)
	maxProtected := int(float64(maxMain) * cfg.PercentMainProtected)
	maxWindow := cfg.MaximumSize - maxMain

	window := cra.NewBlock(cfg.K, cfg.MaxLists, maxWindow)
	probation := cra.NewBlock(cfg.K, cfg.MaxLists, maxMain-maxProtected)
	protected := cra.NewBlock(cfg.K, cfg.MaxLists, maxProtected)

	return &Policy{
		name: fmt.Sprintf("AdaptiveCA-%s (%.0f%%,k=%.2f,maxLists=%d)",
			cfg.Strategy, 100*(1.0-cfg.PercentMain), cfg.K, cfg.MaxLists),
		data:               make(map[uint64]*cra.Node),
		admittor:           admittor,
		climber:            cl,
		sink:               sink,
		maximumSize:        cfg.MaximumSize,
		initialPercentMain: cfg.PercentMain,
		window:             window,
		probation:          probation,
		protected:          protected,
		maxWindow:          maxWindow,
		maxProtected:       maxProtected,
		norm:               cra.NewNormalizer(window, probation, protected),
	}, nil
}

func (p *Policy) Name() string {
	return p.name
}

func (p *Policy) Len() int {
	return len(p.data)
}

// MaxWindow is the current window capacity in entries.
func (p *Policy) MaxWindow() int {
	return p.maxWindow
}

func (p *Policy) Record(ev *event.AccessEvent) {
	p.sink.RecordOperation()
	if !ev.Valid() || ev.Weight() > p.maximumSize {
		return
	}
	full := len(p.data) >= p.maximumSize
	node, ok := p.data[ev.Key()]
	p.admittor.Record(ev)

	segment := cra.SegmentNone
	if !ok {
		p.norm.ObserveMiss(ev.Delta())
		p.onMiss(ev)
		p.sink.RecordMiss(ev.Weight())
		p.sink.RecordMissPenalty(ev.MissPenalty())
	} else {
		node.Event().UpdateHitPenalty(ev.HitPenalty())
		p.sink.RecordApproxAccuracy(ev.MissPenalty(), node.Event().MissPenalty())
		segment = node.Segment()
		switch segment {
		case cra.SegmentWindow:
			node.MoveToTail()
		case cra.SegmentProbation:
			p.onProbationHit(node)
		case cra.SegmentProtected:
			node.MoveToTail()
		default:
			panic(fmt.Sprintf("adaptiveca: resident key %d has no segment", node.Key()))
		}
		p.sink.RecordHit(ev.Weight())
		p.sink.RecordHitPenalty(ev.HitPenalty())
	}
	p.climb(ev, segment, full)
}

func (p *Policy) onMiss(ev *event.AccessEvent) {
	node := p.window.AddEntry(ev)
	node.SetSegment(cra.SegmentWindow)
	p.data[ev.Key()] = node
	p.windowSize++
	p.evict()
}

func (p *Policy) onProbationHit(node *cra.Node) {
	p.probation.Remove(node.Key())
	p.protected.AddNode(node)
	node.SetSegment(cra.SegmentProtected)
	p.protectedSize++
	p.demoteProtected()
}

func (p *Policy) demoteProtected() {
	if p.protectedSize <= float64(p.maxProtected) {
		return
	}
	demote := p.protected.FindVictim()
	p.protected.Remove(demote.Key())
	p.probation.AddNode(demote)
	demote.SetSegment(cra.SegmentProbation)
	p.protectedSize--
}

func (p *Policy) evict() {
	if p.windowSize <= float64(p.maxWindow) {
		return
	}
	candidate := p.window.FindVictim()
	p.windowSize--
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

// climb feeds the access into the climber and applies any requested resize.
func (p *Policy) climb(ev *event.AccessEvent, segment cra.Segment, full bool) {
	if segment == cra.SegmentNone {
		p.climber.onMiss(ev, full)
	} else {
		p.climber.onHit(ev, segment, full)
	}

	probationSize := float64(p.maximumSize) - p.windowSize - p.protectedSize
	a := p.climber.adapt(p.windowSize, probationSize, p.protectedSize, full)
	switch a.typ {
	case increaseWindow:
		p.increaseWindow(a.amount)
	case decreaseWindow:
		p.decreaseWindow(a.amount)
	}
}

// increaseWindow grows the admission window at the expense of the protected
// region, pulling probation's victims into the window one entry at a time.
func (p *Policy) increaseWindow(amount float64) {
	if amount < 0 {
		panic("adaptiveca: negative increase amount")
	}
	if p.maxProtected == 0 {
		return
	}

	quota := math.Min(amount, float64(p.maxProtected))
	steps := int(p.windowSize+quota) - int(p.windowSize)
	p.windowSize += quota

	for i := 0; i < steps; i++ {
		p.maxWindow++
		p.maxProtected--

		p.demoteProtected()
		candidate := p.probation.FindVictim()
		p.probation.Remove(candidate.Key())
		p.window.AddNode(candidate)
		candidate.SetSegment(cra.SegmentWindow)
	}
	p.checkSizes()
}

// decreaseWindow is the symmetric shrink: window victims spill to probation
// and the freed slots return to protected.
func (p *Policy) decreaseWindow(amount float64) {
	if amount < 0 {
		panic("adaptiveca: negative decrease amount")
	}
	if p.maxWindow == 0 {
		return
	}

	quota := math.Min(amount, p.windowSize)
	steps := int(p.windowSize) - int(p.windowSize-quota)
	p.windowSize -= quota

	for i := 0; i < steps; i++ {
		p.maxWindow--
		p.maxProtected++

		candidate := p.window.FindVictim()
		p.window.Remove(candidate.Key())
		p.probation.AddNode(candidate)
		candidate.SetSegment(cra.SegmentProbation)
	}
	p.checkSizes()
}

func (p *Policy) checkSizes() {
	if p.windowSize < 0 || p.maxWindow < 0 || p.maxProtected < 0 {
		panic(fmt.Sprintf("adaptiveca: negative segment size (windowSize=%.2f maxWindow=%d maxProtected=%d)",
			p.windowSize, p.maxWindow, p.maxProtected))
	}
}

// Finished reports the window drift and checks terminal consistency between
// recorded and actual segment sizes.
func (p *Policy) Finished() error {
	p.sink.RecordPercentAdaption(
		float64(p.maxWindow)/float64(p.maximumSize) - (1.0 - p.initialPercentMain))

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
	if int64(p.windowSize) != int64(window) {
		return fmt.Errorf("adaptiveca: window drift: recorded=%d actual=%d", int64(p.windowSize), window)
	}
	if int64(p.protectedSize) != int64(protected) {
		return fmt.Errorf("adaptiveca: protected drift: recorded=%d actual=%d", int64(p.protectedSize), protected)
	}
	if probation != len(p.data)-window-protected {
		return fmt.Errorf("adaptiveca: probation drift: actual=%d calculated=%d", probation, len(p.data)-window-protected)
	}
	if len(p.data) > p.maximumSize {
		return fmt.Errorf("adaptiveca: residency %d exceeds maximum %d", len(p.data), p.maximumSize)
	}
	return nil
}
