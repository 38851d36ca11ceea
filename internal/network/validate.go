package network

import (
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// Validation warning codes (W001-W099)
const (
	WarnNoBroadcaster        = "W001" // no broadcaster defined
	WarnMultipleBroadcasters = "W002" // more than one broadcaster
	WarnUndefinedDestination = "W003" // destination names no module (legal sink)
	WarnConjunctionNoInputs  = "W004" // conjunction nothing sends to
	WarnUnreachable          = "W005" // module unreachable from the broadcaster
)

// ValidationWarning describes a structural oddity that does not prevent
// simulation. Undefined destinations, for instance, are legal sinks.
type ValidationWarning struct {
	Code    string `json:"code"`
	Module  string `json:"module,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// String formats the warning for text output.
func (w ValidationWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", w.Code, w.Line, w.Module, w.Message)
	}
	if w.Module != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Module, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// Validate reports structural warnings for g.
// Returns all warnings found (does not fail-fast), in a deterministic order.
func Validate(g *Graph) []ValidationWarning {
	var warns []ValidationWarning

	switch n := len(g.broadcasters); {
	case n == 0:
		warns = append(warns, ValidationWarning{
			Code:    WarnNoBroadcaster,
			Message: "no broadcaster defined; button presses deliver nowhere",
		})
	case n > 1:
		for _, h := range g.broadcasters[1:] {
			m := g.modules[h]
			warns = append(warns, ValidationWarning{
				Code:    WarnMultipleBroadcasters,
				Module:  m.Name,
				Line:    m.Line,
				Message: fmt.Sprintf("additional broadcaster; presses target %q", g.names[g.broadcasters[0]]),
			})
		}
	}

	reported := make(map[Handle]bool)
	for _, h := range g.order {
		m := g.modules[h]
		for _, d := range m.Destinations {
			if g.modules[d] == nil && !reported[d] {
				reported[d] = true
				warns = append(warns, ValidationWarning{
					Code:    WarnUndefinedDestination,
					Module:  g.names[d],
					Line:    m.Line,
					Message: "destination is not a defined module; pulses are counted then absorbed",
				})
			}
		}
	}

	var reachable []bool
	if len(g.broadcasters) > 0 {
		reachable = make([]bool, len(g.names))
		for _, h := range g.Reachable(g.broadcasters[0]) {
			reachable[h] = true
		}
	}

	for _, h := range g.order {
		m := g.modules[h]
		if m.Kind == ir.Conjunction && len(g.inputs[h]) == 0 {
			warns = append(warns, ValidationWarning{
				Code:    WarnConjunctionNoInputs,
				Module:  m.Name,
				Line:    m.Line,
				Message: "conjunction has no inputs",
			})
		}
		if reachable != nil && !reachable[h] {
			warns = append(warns, ValidationWarning{
				Code:    WarnUnreachable,
				Module:  m.Name,
				Line:    m.Line,
				Message: "module is unreachable from the broadcaster",
			})
		}
	}

	return warns
}
