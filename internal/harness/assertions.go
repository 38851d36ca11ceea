package harness

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []ir.PulseRecord // Included for trace_order failures
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for _, p := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -%s-> %s\n", p.Seq, p.Source, p.Amplitude, p.Destination)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertPulseCounts:
		return assertPulseCounts(result.Counts, a)
	case AssertProduct:
		return assertProduct(result.Counts, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertFinalState:
		return assertFinalState(result.State, a)
	case AssertFirstHigh:
		return assertFirstHigh(result, a)
	case AssertAnswer:
		return assertAnswer(result, a)
	case AssertUnsolvable:
		return assertUnsolvable(result.CycleErr, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertPulseCounts(c engine.Counts, a Assertion) error {
	if (a.Low != nil && *a.Low != c.Low) || (a.High != nil && *a.High != c.High) {
		return &AssertionError{
			Type:     AssertPulseCounts,
			Expected: fmt.Sprintf("low=%s high=%s", optInt(a.Low), optInt(a.High)),
			Actual:   fmt.Sprintf("low=%d high=%d", c.Low, c.High),
		}
	}
	return nil
}

func assertProduct(c engine.Counts, a Assertion) error {
	if got := uint64(c.Product()); got != *a.Value {
		return &AssertionError{
			Type:     AssertProduct,
			Expected: fmt.Sprintf("%d", *a.Value),
			Actual:   fmt.Sprintf("%d (low=%d high=%d)", got, c.Low, c.High),
		}
	}
	return nil
}

// assertTraceOrder checks that the listed destinations receive pulses in
// order during one press. Intervening pulses are allowed; a destination
// may appear more than once in the list.
func assertTraceOrder(trace []ir.PulseRecord, a Assertion) error {
	press := a.Press
	if press == 0 {
		press = 1
	}

	var inPress []ir.PulseRecord
	for _, p := range trace {
		if p.Press == press {
			inPress = append(inPress, p)
		}
	}

	next := 0
	for _, p := range inPress {
		if next < len(a.Destinations) && p.Destination == a.Destinations[next] {
			next++
		}
	}
	if next == len(a.Destinations) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("press %d delivers to %v in order", press, a.Destinations),
		Actual:   fmt.Sprintf("matched %d of %d (stuck at %q)", next, len(a.Destinations), a.Destinations[next]),
		Trace:    inPress,
	}
}

// assertFinalState compares the listed modules only.
func assertFinalState(s ir.StateSnapshot, a Assertion) error {
	var diffs []string

	for _, name := range sortedKeys(a.FlipFlops) {
		want := a.FlipFlops[name]
		got, ok := s.FlipFlops[name]
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("%s: not a flip-flop", name))
		case got != want:
			diffs = append(diffs, fmt.Sprintf("%s: on=%t, want %t", name, got, want))
		}
	}

	for _, name := range sortedKeys(a.Conjunctions) {
		mem, ok := s.Conjunctions[name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s: not a conjunction", name))
			continue
		}
		want := a.Conjunctions[name]
		for _, input := range sortedKeys(want) {
			wantAmp, err := ir.ParseAmplitude(want[input])
			if err != nil {
				diffs = append(diffs, fmt.Sprintf("%s[%s]: %v", name, input, err))
				continue
			}
			got, ok := mem[input]
			switch {
			case !ok:
				diffs = append(diffs, fmt.Sprintf("%s[%s]: not an input", name, input))
			case got != wantAmp:
				diffs = append(diffs, fmt.Sprintf("%s[%s]: %s, want %s", name, input, got, wantAmp))
			}
		}
	}

	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: "listed module state",
		Actual:   strings.Join(diffs, "; "),
	}
}

func assertFirstHigh(result *Result, a Assertion) error {
	if result.Cycles == nil {
		return &AssertionError{
			Type:     AssertFirstHigh,
			Expected: fmt.Sprintf("%s first High at press %d", a.Input, a.Press),
			Actual:   fmt.Sprintf("cycle search failed: %v", result.CycleErr),
		}
	}
	i := slices.IndexFunc(result.Cycles.Periods, func(p engine.InputPeriod) bool {
		return p.Input == a.Input
	})
	if i < 0 {
		return &AssertionError{
			Type:     AssertFirstHigh,
			Expected: fmt.Sprintf("%s is an input of %s", a.Input, result.Cycles.Feeder),
			Actual:   fmt.Sprintf("inputs %v", result.Cycles.Periods),
		}
	}
	if got := result.Cycles.Periods[i].Press; got != a.Press {
		return &AssertionError{
			Type:     AssertFirstHigh,
			Expected: fmt.Sprintf("%s first High at press %d", a.Input, a.Press),
			Actual:   fmt.Sprintf("press %d", got),
		}
	}
	return nil
}

func assertAnswer(result *Result, a Assertion) error {
	if result.Cycles == nil {
		return &AssertionError{
			Type:     AssertAnswer,
			Expected: fmt.Sprintf("%d", *a.Value),
			Actual:   fmt.Sprintf("cycle search failed: %v", result.CycleErr),
		}
	}
	if result.Cycles.Answer != *a.Value {
		return &AssertionError{
			Type:     AssertAnswer,
			Expected: fmt.Sprintf("%d", *a.Value),
			Actual:   fmt.Sprintf("%d", result.Cycles.Answer),
		}
	}
	return nil
}

func assertUnsolvable(cycleErr error, a Assertion) error {
	var rtErr *engine.RuntimeError
	if errors.As(cycleErr, &rtErr) && string(rtErr.Code) == a.Code {
		return nil
	}
	actual := "cycle search succeeded"
	if cycleErr != nil {
		actual = cycleErr.Error()
	}
	return &AssertionError{
		Type:     AssertUnsolvable,
		Expected: fmt.Sprintf("error %s", a.Code),
		Actual:   actual,
	}
}

func optInt(v *int64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%d", *v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
