// Command sectorpulse runs one sector-momentum report cycle: fetch the
// market snapshot, rank sectors, reconcile investor flows and deliver the
// report to Telegram. It is designed for unattended periodic execution; the
// scheduler (cron, CI workflow) lives outside this binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"sectorpulse/internal/app"
	"sectorpulse/internal/config"
	"sectorpulse/internal/datasource"
	"sectorpulse/internal/infrastructure"
	"sectorpulse/internal/telegram"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to config.yaml / configs/config.yaml)")
	mode := flag.String("mode", "", "override selection mode: top or watchlist")
	dryRun := flag.Bool("dry-run", false, "print the report to stdout instead of delivering it")
	flag.Parse()

	// Local runs keep credentials in .env; unattended runs inject real
	// environment variables and have no .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Engine.Mode = *mode
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid mode override", "error", err)
			os.Exit(1)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	client := datasource.NewClient(cfg.Provider.BaseURL, logger)

	var deliverer app.Deliverer
	switch {
	case *dryRun:
		deliverer = consoleDeliverer{}
	case cfg.DeliveryConfigured():
		deliverer = telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
	default:
		logger.Warn("telegram credentials not configured, printing report to stdout")
		deliverer = consoleDeliverer{}
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	runner := app.New(cfg, client, client, deliverer, logger)

	if err := runner.Run(ctx); err != nil {
		os.Exit(1)
	}
}

// consoleDeliverer writes the payload to stdout for dry runs.
type consoleDeliverer struct{}

func (consoleDeliverer) Send(_ context.Context, text string) error {
	_, err := fmt.Println(text)
	return err
}
