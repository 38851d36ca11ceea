package engine

import (
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// transition applies the transition rule of module h to an incoming pulse.
//
// Every rule that emits sends one amplitude to all destinations, so the
// result is that amplitude plus whether anything is emitted at all:
//   - broadcaster: re-emits the incoming amplitude
//   - flip-flop: absorbs High; on Low toggles, then emits High if now on
//     and Low if now off
//   - conjunction: records the amplitude for the source, then emits Low if
//     every input reads High and High otherwise (always emits)
//
// Returns (Low, false) for handles that name no module.
func (s *state) transition(h network.Handle, p Pulse) (ir.Amplitude, bool) {
	switch st := s.modules[h].(type) {
	case broadcasterState:
		return p.Amplitude, true

	case *flipFlopState:
		if p.Amplitude == ir.High {
			return ir.Low, false
		}
		st.on = !st.on
		if st.on {
			return ir.High, true
		}
		return ir.Low, true

	case *conjunctionState:
		st.record(p.Source, p.Amplitude)
		if st.allHigh() {
			return ir.Low, true
		}
		return ir.High, true

	default:
		return ir.Low, false
	}
}
