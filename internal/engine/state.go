package engine

import (
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// moduleState is the per-kind memory of one module. Each variant holds only
// what its transition rule needs.
type moduleState interface {
	kind() ir.Kind
}

type broadcasterState struct{}

func (broadcasterState) kind() ir.Kind { return ir.Broadcaster }

type flipFlopState struct {
	on bool
}

func (*flipFlopState) kind() ir.Kind { return ir.FlipFlop }

// conjunctionState remembers the last amplitude received from each static
// input. memory[i] belongs to inputs[i]; high counts the High entries so
// the all-High check is O(1).
type conjunctionState struct {
	inputs []network.Handle
	memory []ir.Amplitude
	high   int
}

func (*conjunctionState) kind() ir.Kind { return ir.Conjunction }

// record overwrites the memory slot for source. Sources outside the static
// input set (only the synthetic button can be one) are not remembered.
// Input sets are small; a linear scan finds the slot.
func (c *conjunctionState) record(source network.Handle, a ir.Amplitude) {
	for i, in := range c.inputs {
		if in != source {
			continue
		}
		prev := c.memory[i]
		c.memory[i] = a
		switch {
		case prev == ir.Low && a == ir.High:
			c.high++
		case prev == ir.High && a == ir.Low:
			c.high--
		}
		return
	}
}

// allHigh reports whether every static input currently reads High.
// Vacuously true for a conjunction with no inputs.
func (c *conjunctionState) allHigh() bool {
	return c.high == len(c.inputs)
}

// state is the mutable memory of every module in one graph, indexed by
// handle. It is owned by exactly one Simulator.
type state struct {
	graph   *network.Graph
	modules []moduleState // nil for names that are never defined
}

// newState creates the initial state: flip-flops off, conjunction memories
// all Low.
func newState(g *network.Graph) *state {
	s := &state{
		graph:   g,
		modules: make([]moduleState, g.Len()),
	}
	for _, m := range g.Modules() {
		switch m.Kind {
		case ir.Broadcaster:
			s.modules[m.Handle] = broadcasterState{}
		case ir.FlipFlop:
			s.modules[m.Handle] = &flipFlopState{}
		case ir.Conjunction:
			inputs := g.Inputs(m.Handle)
			s.modules[m.Handle] = &conjunctionState{
				inputs: inputs,
				memory: make([]ir.Amplitude, len(inputs)),
			}
		}
	}
	return s
}

// snapshot copies the state into name-keyed form.
func (s *state) snapshot() ir.StateSnapshot {
	snap := ir.StateSnapshot{
		FlipFlops:    make(map[string]bool),
		Conjunctions: make(map[string]map[string]ir.Amplitude),
	}
	for h, ms := range s.modules {
		name := s.graph.Name(network.Handle(h))
		switch st := ms.(type) {
		case *flipFlopState:
			snap.FlipFlops[name] = st.on
		case *conjunctionState:
			mem := make(map[string]ir.Amplitude, len(st.inputs))
			for i, in := range st.inputs {
				mem[s.graph.Name(in)] = st.memory[i]
			}
			snap.Conjunctions[name] = mem
		}
	}
	return snap
}
