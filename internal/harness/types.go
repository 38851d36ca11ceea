package harness

import (
	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Counts are the totals after all presses.
	Counts engine.Counts `json:"counts"`

	// Trace holds the pulses of the leading TracePresses presses in
	// delivery order.
	Trace []ir.PulseRecord `json:"trace"`

	// TraceHash fingerprints Trace.
	TraceHash string `json:"trace_hash"`

	// State is the module state after all presses.
	State ir.StateSnapshot `json:"state"`

	// Cycles is set when the scenario has a target and the search succeeded.
	Cycles *engine.CycleReport `json:"cycles,omitempty"`

	// CycleErr is the cycle-search failure, if any. Checked by unsolvable
	// assertions; otherwise it fails the scenario.
	CycleErr error `json:"-"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.PulseRecord{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// traceCanonical converts the trace into the generic form accepted by
// ir.MarshalCanonical.
func traceCanonical(trace []ir.PulseRecord) []any {
	out := make([]any, len(trace))
	for i, p := range trace {
		out[i] = map[string]any{
			"press":       p.Press,
			"seq":         p.Seq,
			"source":      p.Source,
			"destination": p.Destination,
			"amplitude":   p.Amplitude,
		}
	}
	return out
}
