package flow

import "time"

// Observation is one calendar day's flow record for one stock.
type Observation struct {
	Date           time.Time
	ForeignNet     int64
	InstitutionNet int64
}

// Stale reports whether the observation is an unreported placeholder: both
// tracked flow figures equal zero.
func (o Observation) Stale() bool {
	return o.ForeignNet == 0 && o.InstitutionNet == 0
}

// State is the terminal state of one stock's reconciliation.
type State string

const (
	// StateResolved means a non-stale observation was found in the window.
	StateResolved State = "resolved"
	// StateUnavailable means the window held only stale observations.
	StateUnavailable State = "unavailable"
	// StateFailed means the history fetch itself failed. Failures are
	// isolated per stock and never abort the run.
	StateFailed State = "failed"
)

// Outcome is the reconciliation result for one stock. Callers must switch
// on State instead of reading zero values out of Observation: a zero net is
// ambiguous between "no signal" and "flat signal", the state is not.
type Outcome struct {
	Identifier  string
	State       State
	Observation Observation
	Err         error
}

// Resolved reports whether the outcome carries a confirmed observation.
func (o Outcome) Resolved() bool {
	return o.State == StateResolved
}

// ForeignPositive reports net foreign buying on the resolved day. Zero or
// negative is not positive; an unresolved outcome is never positive.
func (o Outcome) ForeignPositive() bool {
	return o.State == StateResolved && o.Observation.ForeignNet > 0
}

// InstitutionPositive reports net institutional buying on the resolved day.
func (o Outcome) InstitutionPositive() bool {
	return o.State == StateResolved && o.Observation.InstitutionNet > 0
}
