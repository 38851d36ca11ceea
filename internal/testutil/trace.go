package testutil

import (
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// Arrow renders a pulse the way traces print it: "src -high-> dst".
func Arrow(p ir.PulseRecord) string {
	return fmt.Sprintf("%s -%s-> %s", p.Source, p.Amplitude, p.Destination)
}

// Arrows renders a trace with Arrow.
func Arrows(trace []ir.PulseRecord) []string {
	out := make([]string, len(trace))
	for i, p := range trace {
		out[i] = Arrow(p)
	}
	return out
}

// Destinations lists who received each pulse of press, in delivery order.
func Destinations(trace []ir.PulseRecord, press int64) []string {
	var out []string
	for _, p := range trace {
		if p.Press == press {
			out = append(out, p.Destination)
		}
	}
	return out
}
