package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Borislavv/go-cra-sim/internal/stats"
)

// Adapter implements stats.Sink and exports the simulation signals as
// Prometheus metrics, one set per policy via the policy const label.
type Adapter struct {
	operations prometheus.Counter
	hits       prometheus.Counter
	misses     prometheus.Counter
	evictions  prometheus.Counter
	decisions  *prometheus.CounterVec

	hitPenalty  prometheus.Counter
	missPenalty prometheus.Counter

	accuracyError prometheus.Counter
	accuracyObs   prometheus.Counter

	percentAdaption prometheus.Gauge
}

// New constructs a Prometheus sink.
//   - reg:    registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - policy: policy name, applied as a const label to all metrics
func New(reg prometheus.Registerer, policy string) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"policy": policy}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "crasim",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	a := &Adapter{
		operations:  counter("operations_total", "Trace events processed"),
		hits:        counter("hits_total", "Cache hits"),
		misses:      counter("misses_total", "Cache misses"),
		evictions:   counter("evictions_total", "Evictions"),
		hitPenalty:  counter("hit_penalty_sum", "Sum of observed hit penalties"),
		missPenalty: counter("miss_penalty_sum", "Sum of observed miss penalties"),
		accuracyError: counter("approx_accuracy_error_sum",
			"Sum of absolute gaps between real and estimated miss penalties"),
		accuracyObs: counter("approx_accuracy_observations_total",
			"Number of accuracy observations"),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "crasim",
			Name:        "admission_decisions_total",
			Help:        "Admission filter decisions by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		percentAdaption: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "crasim",
			Name:        "percent_adaption",
			Help:        "Window drift from the configured split, fraction of capacity",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(
		a.operations, a.hits, a.misses, a.evictions, a.decisions,
		a.hitPenalty, a.missPenalty, a.accuracyError, a.accuracyObs,
		a.percentAdaption,
	)
	return a
}

func (a *Adapter) RecordOperation() { a.operations.Inc() }
func (a *Adapter) RecordHit(int)    { a.hits.Inc() }
func (a *Adapter) RecordMiss(int)   { a.misses.Inc() }
func (a *Adapter) RecordEviction()  { a.evictions.Inc() }
func (a *Adapter) RecordAdmission() { a.decisions.WithLabelValues("admit").Inc() }
func (a *Adapter) RecordRejection() { a.decisions.WithLabelValues("reject").Inc() }

func (a *Adapter) RecordHitPenalty(p float64)  { a.hitPenalty.Add(p) }
func (a *Adapter) RecordMissPenalty(p float64) { a.missPenalty.Add(p) }

func (a *Adapter) RecordApproxAccuracy(real, estimated float64) {
	diff := real - estimated
	if diff < 0 {
		diff = -diff
	}
	a.accuracyError.Add(diff)
	a.accuracyObs.Inc()
}

func (a *Adapter) RecordPercentAdaption(p float64) { a.percentAdaption.Set(p) }

var _ stats.Sink = (*Adapter)(nil)
