package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// TraceSnapshot is the golden-file form of a scenario result.
type TraceSnapshot struct {
	ScenarioName string
	Presses      int
	Low          int64
	High         int64
	Trace        []ir.PulseRecord
	State        ir.StateSnapshot
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical, which only
// handles primitives, slices of any and string-keyed maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"presses":       s.Presses,
		"low":           s.Low,
		"high":          s.High,
		"trace":         traceCanonical(s.Trace),
		"state":         s.State.CanonicalMap(),
	}
}

// RunWithGolden executes a scenario and compares its trace, totals and
// final state against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot be run. A mismatch fails t via
// goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	presses := scenario.Presses
	if presses == 0 {
		presses = engine.DefaultPresses
	}
	return result, assertGolden(t, scenario.Name, presses, result)
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, presses int, result *Result) error {
	t.Helper()
	return assertGolden(t, scenarioName, presses, result)
}

func assertGolden(t *testing.T, name string, presses int, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: name,
		Presses:      presses,
		Low:          result.Counts.Low,
		High:         result.Counts.High,
		Trace:        result.Trace,
		State:        result.State,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
