package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/socialdesk-lab/socialdesk/internal/aggregation"
	corecfg "github.com/socialdesk-lab/socialdesk/internal/core/config"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage/postgres"
	"github.com/socialdesk-lab/socialdesk/internal/delivery"
	"github.com/socialdesk-lab/socialdesk/internal/server"
)

func main() {
	configPath := flag.String("config", "statsreporter.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage (read-only view of the feed database)
	eventStore, err := postgres.NewEngagementAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer eventStore.Close()

	// 3. Initialize Server (health, metrics, manual trigger)
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), eventStore.DB(), server.Options{
		Mode:        cfg.Server.Mode,
		ServiceName: "statsreporter",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// 4. Initialize Reporting Pipeline (aggregate → sign → deliver)
	if cfg.Reporter.Enabled {
		aggregator := aggregation.NewAggregator(eventStore, cfg.Reporter.TopK)
		client := delivery.NewClient(
			cfg.Reporter.IngestURL,
			cfg.Reporter.PlatformID,
			cfg.Webhook.Secret,
			cfg.Reporter.BearerToken,
			cfg.Reporter.EffectiveDeliveryTimeout(),
		)
		scheduler := aggregation.NewScheduler(
			cfg.Reporter.EffectiveInterval(),
			cfg.Reporter.EffectiveWindowSize(),
			aggregator,
			client,
		)
		scheduler.RegisterRoutes(srv.Engine)

		slog.Info("Reporter initialized",
			"platform", cfg.Reporter.PlatformID,
			"ingest_url", cfg.Reporter.IngestURL,
			"interval", cfg.Reporter.EffectiveInterval(),
			"window_size", cfg.Reporter.EffectiveWindowSize(),
			"top_k", cfg.Reporter.TopK,
		)

		g.Go(func() error {
			return scheduler.Start(ctx)
		})
	} else {
		slog.Info("Reporter disabled by config")
	}

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Reporter stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
