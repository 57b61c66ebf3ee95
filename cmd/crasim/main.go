package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	crasim "github.com/Borislavv/go-cra-sim"
	"github.com/Borislavv/go-cra-sim/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the simulation yaml config")
	metricsListen := flag.String("metrics-listen", "", "optional address exposing Prometheus metrics during the run")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("service", "craSim"))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []crasim.Option
	if *metricsListen != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, crasim.WithPrometheus(reg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if serveErr := http.ListenAndServe(*metricsListen, mux); serveErr != nil {
				logger.Error("metrics listener stopped", "err", serveErr)
			}
		}()
	}

	results, err := crasim.New(cfg, logger, opts...).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	for _, r := range results {
		log.Info().
			Str("policy", r.Policy).
			Int64("events", r.Events).
			Int64("skipped", r.Skipped).
			Int64("hits", r.Hits).
			Int64("misses", r.Misses).
			Int64("evictions", r.Evictions).
			Float64("hit_rate", r.HitRate).
			Float64("weighted_hit_rate", r.WeightedHitRate).
			Float64("avg_penalty", r.AveragePenalty).
			Float64("percent_adaption", r.PercentAdaption).
			Msg("result")
	}
}
