// Package crasim replays penalty traces against cost- and latency-aware
// replacement policies and reports hit rates and average service latency.
package crasim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Borislavv/go-cra-sim/config"
	"github.com/Borislavv/go-cra-sim/internal/admission"
	"github.com/Borislavv/go-cra-sim/internal/event"
	"github.com/Borislavv/go-cra-sim/internal/policy"
	"github.com/Borislavv/go-cra-sim/internal/policy/adaptiveca"
	"github.com/Borislavv/go-cra-sim/internal/policy/cra"
	"github.com/Borislavv/go-cra-sim/internal/policy/windowca"
	"github.com/Borislavv/go-cra-sim/internal/shared/rate"
	"github.com/Borislavv/go-cra-sim/internal/sketch"
	"github.com/Borislavv/go-cra-sim/internal/stats"
	"github.com/Borislavv/go-cra-sim/internal/stats/prom"
	"github.com/Borislavv/go-cra-sim/internal/telemetry"
	"github.com/Borislavv/go-cra-sim/internal/trace"
)

// ctxCheckMask bounds how often the replay loop polls for cancellation.
const ctxCheckMask = 1<<12 - 1

// Result is the outcome of replaying the trace against one policy.
type Result struct {
	Policy  string
	Events  int64
	Skipped int64
	stats.Snapshot
}

// Simulator replays the configured trace against every configured policy.
// Each policy gets its own reader and runs single-threaded; policies run
// concurrently with no shared state.
type Simulator struct {
	cfg    *config.Simulation
	logger *slog.Logger
	clk    clock.Clock
	reg    prometheus.Registerer
}

type Option func(*Simulator)

// WithPrometheus additionally exports every policy's signals to the given
// registry.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(s *Simulator) { s.reg = reg }
}

// WithClock overrides the progress-reporting clock, for tests.
func WithClock(clk clock.Clock) Option {
	return func(s *Simulator) { s.clk = clk }
}

func New(cfg *config.Simulation, logger *slog.Logger, opts ...Option) *Simulator {
	s := &Simulator{cfg: cfg, logger: logger, clk: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run replays the trace once per configured policy and returns the results
// in configuration order. Cancelling ctx stops all replays; engine state is
// well-formed at any stop point but the partial results are discarded.
func (s *Simulator) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(s.cfg.Policies))
	g, ctx := errgroup.WithContext(ctx)
	for i, pc := range s.cfg.Policies {
		g.Go(func() error {
			res, err := s.runPolicy(ctx, i, pc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Simulator) runPolicy(ctx context.Context, idx int, pc config.PolicyCfg) (Result, error) {
	collector := stats.NewCollector()
	var sink stats.Sink = collector
	if s.reg != nil {
		sink = stats.Tee{collector, prom.New(s.reg, fmt.Sprintf("%s-%d", pc.Type, idx))}
	}

	pol, err := buildPolicy(pc, sink)
	if err != nil {
		return Result{}, err
	}

	reader, err := trace.Open(s.cfg.Trace.Format, s.cfg.Trace.Path)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = reader.Close() }()

	var progress *telemetry.Progress
	if s.cfg.Telemetry.Enabled() {
		progress = telemetry.NewProgress(s.logger, s.clk, s.cfg.Telemetry.ProgressLogsInterval, pol.Name())
	}
	var pace *rate.Jitter
	if s.cfg.Trace.EventsPerSec > 0 {
		pace = rate.NewJitter(ctx, s.cfg.Trace.EventsPerSec)
	}

	s.logger.Info("replay started", "policy", pol.Name(), "trace", s.cfg.Trace.Path)

	var events int64
	for {
		if events&ctxCheckMask == 0 {
			if err = ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		var ev *event.AccessEvent
		ev, err = reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, err
		}
		if pace != nil {
			pace.Take()
		}
		pol.Record(ev)
		events++
		if progress != nil {
			progress.Observe(events, collector.Hits())
		}
	}

	if err = pol.Finished(); err != nil {
		return Result{}, err
	}

	s.logger.Info("replay finished",
		"policy", pol.Name(),
		"events", events,
		"skipped", reader.Skipped(),
		"hit_rate", collector.HitRate(),
		"avg_penalty", collector.AveragePenalty(),
	)

	return Result{
		Policy:   pol.Name(),
		Events:   events,
		Skipped:  reader.Skipped(),
		Snapshot: collector.Snapshot(),
	}, nil
}

func buildPolicy(pc config.PolicyCfg, sink stats.Sink) (policy.Policy, error) {
	switch pc.Type {
	case config.PolicyCRA:
		return cra.NewPolicy(pc.K, pc.MaxLists, pc.MaximumSize, sink), nil
	case config.PolicyWindowCA:
		adm, err := buildAdmittor(pc, sink)
		if err != nil {
			return nil, err
		}
		return windowca.New(windowca.Config{
			MaximumSize:          pc.MaximumSize,
			PercentMain:          pc.PercentMain,
			PercentMainProtected: pc.PercentMainProtected,
			K:                    pc.K,
			MaxLists:             pc.MaxLists,
		}, adm, sink), nil
	case config.PolicyAdaptiveCA:
		adm, err := buildAdmittor(pc, sink)
		if err != nil {
			return nil, err
		}
		return adaptiveca.New(adaptiveca.Config{
			MaximumSize:          pc.MaximumSize,
			PercentMain:          pc.PercentMain,
			PercentMainProtected: pc.PercentMainProtected,
			K:                    pc.K,
			MaxLists:             pc.MaxLists,
			Strategy:             adaptiveca.Strategy(pc.Climber.Strategy),
			Climber: adaptiveca.ClimberConfig{
				PercentPivot:     pc.Climber.PercentPivot,
				PercentSample:    pc.Climber.PercentSample,
				Tolerance:        pc.Climber.Tolerance,
				StepDecayRate:    pc.Climber.StepDecayRate,
				SampleDecayRate:  pc.Climber.SampleDecayRate,
				RestartThreshold: pc.Climber.RestartThreshold,
				Beta1:            pc.Climber.Beta1,
				Beta2:            pc.Climber.Beta2,
				Epsilon:          pc.Climber.Epsilon,
			},
		}, adm, sink)
	default:
		return nil, fmt.Errorf("unknown policy type %q", pc.Type)
	}
}

func buildAdmittor(pc config.PolicyCfg, sink stats.Sink) (admission.Admittor, error) {
	if !pc.Admission.Enabled() {
		return admission.AdmitAll{}, nil
	}
	freq, err := sketch.New(pc.Admission.Sketch, pc.MaximumSize)
	if err != nil {
		return nil, err
	}
	return admission.NewLATinyLFU(freq, sink), nil
}
