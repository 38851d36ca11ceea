package harness

import (
	"fmt"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// Run executes a scenario on a fresh simulator and evaluates its
// assertions.
//
// Execution flow:
//  1. Parse the network (a parse error aborts the run)
//  2. Press the button Presses times, capturing the leading trace
//  3. Snapshot state and fingerprint the trace
//  4. If Target is set, run the cycle search on a second fresh simulator
//  5. Evaluate assertions
//
// The returned error covers setup failures only; assertion failures are
// reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	g, err := network.Parse(scenario.Network)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	presses := scenario.Presses
	if presses == 0 {
		presses = engine.DefaultPresses
	}
	traceLimit := scenario.TracePresses
	if traceLimit == 0 {
		traceLimit = 1
	}

	result := NewResult()
	recorder := engine.ObserverFunc(func(ev engine.PulseEvent) {
		if ev.Press <= traceLimit {
			result.Trace = append(result.Trace, ev.Record(g))
		}
	})

	opts := scenarioOptions(scenario)
	sim, err := engine.New(g, append(opts, engine.WithObserver(recorder))...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	counts, err := sim.Run(presses)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result.Counts = counts
	result.State = sim.Snapshot()

	result.TraceHash, err = ir.HashCanonical(ir.DomainTrace, traceCanonical(result.Trace))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	if scenario.Target != "" {
		fresh, err := engine.New(g, opts...)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Cycles, result.CycleErr = engine.Extrapolate(fresh, scenario.Target, scenario.Horizon)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	if result.CycleErr != nil && !expectsUnsolvable(scenario.Assertions) {
		result.AddError(fmt.Sprintf("cycle search: %v", result.CycleErr))
	}
	return result, nil
}

func scenarioOptions(s *Scenario) []engine.Option {
	var opts []engine.Option
	if s.MaxPulsesPerPress > 0 {
		opts = append(opts, engine.WithMaxPulsesPerPress(s.MaxPulsesPerPress))
	}
	return opts
}

func expectsUnsolvable(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertUnsolvable {
			return true
		}
	}
	return false
}
