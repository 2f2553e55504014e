// Package flow reconciles a stock's noisy daily investor-flow series into
// one defensible "most recent confirmed" data point.
//
// The provider reports same-day foreign/institutional net figures as zero
// until end-of-day settlement, so the reconciler scans the lookback window
// backward from the most recent date and takes the first day where either
// figure is non-zero. A day where both figures are exactly zero is treated
// as unreported rather than genuinely flat; this heuristic is lossy but
// matches the provider's convention and always prefers the most recent
// confirmed day.
//
// Each stock resolves to one of three states: resolved (a usable observation
// was found), unavailable (history existed but every day was unreported), or
// failed (the fetch itself errored). Failures are isolated per stock and
// never abort the batch.
package flow
