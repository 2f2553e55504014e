package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sectorpulse/internal/config"
	"sectorpulse/internal/flow"
	"sectorpulse/internal/infrastructure"
	"sectorpulse/internal/listing"
	"sectorpulse/internal/report"
	"sectorpulse/internal/sector"
)

// ListingSource provides the current snapshot's two raw tables.
type ListingSource interface {
	Listings(ctx context.Context) (desc, quote listing.Table, err error)
}

// Deliverer accepts one formatted payload per run.
type Deliverer interface {
	Send(ctx context.Context, text string) error
}

// App wires the run pipeline together.
type App struct {
	cfg       *config.Config
	listings  ListingSource
	history   flow.HistorySource
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an App from its collaborators.
func New(cfg *config.Config, listings ListingSource, history flow.HistorySource, deliverer Deliverer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:       cfg,
		listings:  listings,
		history:   history,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one complete run. On fatal error it sends the single failure
// notification (best effort) and returns the error.
func (a *App) Run(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	started := a.now()

	a.logger.InfoContext(ctx, "run started",
		slog.String("mode", a.cfg.Engine.Mode))

	payload, err := a.buildReport(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "run failed",
			slog.String("error", err.Error()))
		a.notifyFailure(ctx, err)
		return err
	}

	if err := a.deliverer.Send(ctx, payload); err != nil {
		a.logger.ErrorContext(ctx, "report delivery failed",
			slog.String("error", err.Error()))
		return fmt.Errorf("deliver report: %w", err)
	}

	a.logger.InfoContext(ctx, "run completed",
		slog.Duration("elapsed", a.now().Sub(started)))
	return nil
}

// buildReport produces the complete payload, or the first fatal error.
func (a *App) buildReport(ctx context.Context) (string, error) {
	desc, quote, err := a.listings.Listings(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch listing snapshot: %w", err)
	}

	records, err := listing.Merge(desc, quote)
	if err != nil {
		return "", fmt.Errorf("merge listing tables: %w", err)
	}
	a.logger.InfoContext(ctx, "listing tables merged",
		slog.Int("record_count", len(records)))

	switch a.cfg.Engine.Mode {
	case "watchlist":
		return a.buildWatchlistReport(ctx, records)
	default:
		return a.buildTopSectorReport(ctx, records)
	}
}

// buildTopSectorReport ranks all sectors, selects the top stocks of the
// winner by traded value and reconciles each one's flow series.
func (a *App) buildTopSectorReport(ctx context.Context, records []listing.StockRecord) (string, error) {
	ranking, err := sector.Rank(records)
	if err != nil {
		return "", fmt.Errorf("rank sectors: %w", err)
	}

	topLabel := ranking[0].Label
	selected := sector.TopByValue(records, topLabel, a.cfg.Engine.TopK)
	a.logger.InfoContext(ctx, "top sector selected",
		slog.String("sector", topLabel),
		slog.Float64("mean_rate", ranking[0].MeanRate),
		slog.Int("stock_count", len(selected)))

	identifiers := make([]string, len(selected))
	for i, rec := range selected {
		identifiers[i] = rec.Identifier
	}

	reconciler := flow.NewReconciler(a.history, flow.Config{
		LookbackDays:  a.cfg.Engine.LookbackDays,
		FetchInterval: a.cfg.Engine.FetchInterval,
		MaxParallel:   a.cfg.Engine.MaxParallel,
	}, a.logger)

	var outcomes []flow.Outcome
	if a.cfg.Engine.MaxParallel > 1 {
		outcomes = reconciler.ReconcileAllParallel(ctx, identifiers)
	} else {
		outcomes = reconciler.ReconcileAll(ctx, identifiers)
	}

	entries := make([]report.StockEntry, len(selected))
	for i := range selected {
		entries[i] = report.StockEntry{Record: selected[i], Flow: outcomes[i]}
	}

	return report.TopSector(ranking, entries), nil
}

// buildWatchlistReport renders the fixed keyword watch-list without flow
// reconciliation; the watch-list report carries valuation figures instead.
func (a *App) buildWatchlistReport(ctx context.Context, records []listing.StockRecord) (string, error) {
	selections := sector.SelectKeywordGroups(records, a.cfg.Watch)
	a.logger.InfoContext(ctx, "watchlist groups selected",
		slog.Int("group_count", len(selections)))

	return report.Watchlist(selections, a.now()), nil
}

// notifyFailure sends the single failure notification. Delivery problems at
// this point are only logged; the run already failed.
func (a *App) notifyFailure(ctx context.Context, runErr error) {
	if err := a.deliverer.Send(ctx, report.Failure(runErr)); err != nil {
		a.logger.ErrorContext(ctx, "failure notification could not be delivered",
			slog.String("error", err.Error()))
	}
}
