package flow

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// HistorySource retrieves the daily flow history for one stock from the
// provider, covering the calendar days from the given start date to now.
type HistorySource interface {
	History(ctx context.Context, identifier string, from time.Time) ([]Observation, error)
}

// Config holds reconciliation settings.
type Config struct {
	// LookbackDays bounds the historical window fetched per stock.
	LookbackDays int
	// FetchInterval is the mandatory pause between per-stock history
	// fetches. This pacing is part of the contract with the upstream
	// provider, not a performance knob.
	FetchInterval time.Duration
	// MaxParallel bounds concurrent fetches in ReconcileAllParallel.
	MaxParallel int
}

// DefaultConfig returns the settings used by the unattended runs.
func DefaultConfig() Config {
	return Config{
		LookbackDays:  10,
		FetchInterval: 150 * time.Millisecond,
		MaxParallel:   1,
	}
}

// Reconciler resolves per-stock flow outcomes. It is stateless across
// stocks; every stock is fully independent.
type Reconciler struct {
	source   HistorySource
	limiter  *rate.Limiter
	lookback int
	parallel int
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconciler creates a reconciler over the given history source.
func NewReconciler(source HistorySource, cfg Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultConfig().LookbackDays
	}
	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = DefaultConfig().FetchInterval
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}

	return &Reconciler{
		source:   source,
		limiter:  rate.NewLimiter(rate.Every(cfg.FetchInterval), 1),
		lookback: cfg.LookbackDays,
		parallel: cfg.MaxParallel,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile fetches the stock's bounded history and scans it backward for
// the most recent non-stale observation. The returned outcome is always
// terminal: fetch errors degrade to StateFailed, an exhausted window to
// StateUnavailable. Reconcile never returns an error.
func (r *Reconciler) Reconcile(ctx context.Context, identifier string) Outcome {
	if err := r.limiter.Wait(ctx); err != nil {
		return Outcome{Identifier: identifier, State: StateFailed, Err: err}
	}

	from := r.now().AddDate(0, 0, -r.lookback)
	observations, err := r.source.History(ctx, identifier, from)
	if err != nil {
		r.logger.WarnContext(ctx, "flow history fetch failed",
			slog.String("identifier", identifier),
			slog.String("error", err.Error()))
		return Outcome{Identifier: identifier, State: StateFailed, Err: err}
	}

	return scan(identifier, observations)
}

// scan walks the observations from most recent to least recent and stops at
// the first non-stale one. No averaging, no interpolation.
func scan(identifier string, observations []Observation) Outcome {
	sorted := append([]Observation(nil), observations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	for _, obs := range sorted {
		if !obs.Stale() {
			return Outcome{Identifier: identifier, State: StateResolved, Observation: obs}
		}
	}

	return Outcome{Identifier: identifier, State: StateUnavailable}
}

// ReconcileAll processes the stocks strictly one at a time, preserving
// input order in the result. One stock's failure never affects another's
// outcome.
func (r *Reconciler) ReconcileAll(ctx context.Context, identifiers []string) []Outcome {
	outcomes := make([]Outcome, len(identifiers))
	for i, id := range identifiers {
		outcomes[i] = r.Reconcile(ctx, id)
	}
	return outcomes
}

// ReconcileAllParallel processes the stocks concurrently with bounded
// parallelism. All goroutines share the reconciler's rate limiter, so the
// provider-facing pacing is identical to the sequential path. Result order
// matches input order.
func (r *Reconciler) ReconcileAllParallel(ctx context.Context, identifiers []string) []Outcome {
	outcomes := make([]Outcome, len(identifiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, id := range identifiers {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = r.Reconcile(gctx, id)
			return nil
		})
	}
	// Workers only record outcomes, they never return errors.
	_ = g.Wait()

	return outcomes
}
