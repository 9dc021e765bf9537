// The collector binary performs one visitor-tracking pass against the local
// host environment: wait the start delay, run the probes, post the record to
// the relay, exit. Browser-only probes degrade to their sentinels, which
// keeps the wire record complete even from a headless host.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/okonenko/pharos/internal/collector"
	"github.com/okonenko/pharos/internal/config"
	"github.com/okonenko/pharos/internal/probe"
	"github.com/okonenko/pharos/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Monitoring.LogLevel))

	env := probe.NewHostEnv(cfg.Collector.PageURL)
	geo := probe.NewGeoLookup(
		cfg.Collector.GeoPrimaryURL,
		cfg.Collector.GeoFallbackURL,
		cfg.Collector.GeoPrimaryTimeout,
		cfg.Collector.GeoFallbackTimeout,
	)
	sender := collector.NewSender(cfg.Collector.RelayURL, cfg.Collector.SendTimeout)
	tracker := collector.NewTracker(env, geo, sender, cfg.Collector.StartDelay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting visitor tracking pass", map[string]any{
		"relay": cfg.Collector.RelayURL,
		"delay": cfg.Collector.StartDelay.String(),
	})

	tracker.Track(ctx)
}
