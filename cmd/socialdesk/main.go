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

	corecfg "github.com/socialdesk-lab/socialdesk/internal/core/config"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage/postgres"
	"github.com/socialdesk-lab/socialdesk/internal/dashboard"
	"github.com/socialdesk-lab/socialdesk/internal/ingestion"
	"github.com/socialdesk-lab/socialdesk/internal/migrations"
	"github.com/socialdesk-lab/socialdesk/internal/server"
)

func main() {
	configPath := flag.String("config", "socialdesk.yaml", "Path to configuration file")
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
	slog.Info("Loaded config",
		"addr", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"reject_unverified", cfg.Webhook.RejectUnverified,
	)

	// 2. Initialize Storage (PostgreSQL ledger)
	ledger, err := postgres.NewStatsAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(ledger.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Ingestion (signed stats webhook)
	ingestionSvc := ingestion.NewService(
		ledger,
		cfg.Webhook.Secret,
		cfg.Webhook.RejectUnverified,
		cfg.Server.MaxBodySizeMB,
	)

	// 4. Initialize Dashboard (read-only query API)
	dashboardSvc := dashboard.NewService(ledger)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), ledger.DB(), server.Options{
		Mode:        cfg.Server.Mode,
		ServiceName: "socialdesk",
		EnableCORS:  true,
	})
	ingestionSvc.RegisterRoutes(srv.Engine)
	dashboardSvc.RegisterRoutes(srv.Engine)

	// 6. Run until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
