// Package admission decides whether a miss candidate may replace an eviction
// victim.
package admission

import (
	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/sketch"
	"github.com/Borislavv/go-cra-sim/internal/stats"
)

// Admittor is consulted at the main-cache boundary: Record observes every
// access, Admit compares a candidate against the victim it would displace.
type Admittor interface {
	Record(ev *event.AccessEvent)
	Admit(candidate, victim *event.AccessEvent) bool
}

// LATinyLFU admits by comparing freq·delta of candidate and victim: estimated
// popularity weighted by the latency a hit on the entry would save. Ties
// reject, keeping eviction stable.
type LATinyLFU struct {
	sketch sketch.Frequency
	sink   stats.Sink
}

var _ Admittor = (*LATinyLFU)(nil)

func NewLATinyLFU(freq sketch.Frequency, sink stats.Sink) *LATinyLFU {
	return &LATinyLFU{sketch: freq, sink: sink}
}

func (a *LATinyLFU) Record(ev *event.AccessEvent) {
	a.sketch.Increment(ev.Key())
}

func (a *LATinyLFU) Admit(candidate, victim *event.AccessEvent) bool {
	a.sketch.ReportMiss()
	candidateScore := candidate.Delta() * float64(a.sketch.Frequency(candidate.Key()))
	victimScore := victim.Delta() * float64(a.sketch.Frequency(victim.Key()))
	if candidateScore > victimScore {
		a.sink.RecordAdmission()
		return true
	}
	a.sink.RecordRejection()
	return false
}

// AdmitAll is the pass-through admittor used for deterministic replays.
type AdmitAll struct{}

var _ Admittor = AdmitAll{}

func (AdmitAll) Record(*event.AccessEvent) {}

func (AdmitAll) Admit(*event.AccessEvent, *event.AccessEvent) bool { return true }
