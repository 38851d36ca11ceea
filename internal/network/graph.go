package network

import (
	"fmt"
	"strings"

	"github.com/roach88/pulsesim/internal/ir"
)

// ButtonName is the source name of the synthetic pulse that starts a press.
const ButtonName = "button"

// Handle is the interned identity of a module name within one Graph.
type Handle int32

// NoHandle is returned by lookups that find nothing.
const NoHandle Handle = -1

// Module is one defined node of the graph.
type Module struct {
	Name         string
	Handle       Handle
	Kind         ir.Kind
	Destinations []Handle // Declaration order; duplicates and self references kept
	Line         int      // 1-based source line
}

// Graph is the immutable module graph.
//
// INVARIANTS:
//   - names and modules have the same length; modules[h] is nil when name h
//     is referenced but never defined
//   - inputs[h] lists each source at most once, in declaration order
//   - nothing is mutated after Parse returns
type Graph struct {
	names        []string
	index        map[string]Handle
	modules      []*Module
	order        []Handle
	inputs       [][]Handle
	broadcasters []Handle
	button       Handle
	text         string
}

// Len returns the number of interned names (defined or not).
func (g *Graph) Len() int {
	return len(g.names)
}

// Name returns the name interned as h.
func (g *Graph) Name(h Handle) string {
	if h < 0 || int(h) >= len(g.names) {
		return ""
	}
	return g.names[h]
}

// Handle returns the handle interned for name.
func (g *Graph) Handle(name string) (Handle, bool) {
	h, ok := g.index[name]
	return h, ok
}

// Module returns the module defined as h, or nil if h names no module.
func (g *Graph) Module(h Handle) *Module {
	if h < 0 || int(h) >= len(g.modules) {
		return nil
	}
	return g.modules[h]
}

// Lookup returns the module defined under name.
func (g *Graph) Lookup(name string) (*Module, bool) {
	h, ok := g.index[name]
	if !ok {
		return nil, false
	}
	m := g.modules[h]
	return m, m != nil
}

// Modules returns defined modules in declaration order.
func (g *Graph) Modules() []*Module {
	out := make([]*Module, len(g.order))
	for i, h := range g.order {
		out[i] = g.modules[h]
	}
	return out
}

// Inputs returns the static input set of h: every defined module whose
// destination list contains h. The returned slice must not be modified.
func (g *Graph) Inputs(h Handle) []Handle {
	if h < 0 || int(h) >= len(g.inputs) {
		return nil
	}
	return g.inputs[h]
}

// Broadcasters returns the handles of all broadcaster modules.
// Exactly one is expected by convention; Validate warns otherwise.
func (g *Graph) Broadcasters() []Handle {
	return g.broadcasters
}

// Button returns the handle of the synthetic button source.
func (g *Graph) Button() Handle {
	return g.button
}

// Text returns the configuration text the graph was parsed from.
func (g *Graph) Text() string {
	return g.text
}

// Feeders returns the defined modules whose destinations contain target,
// in declaration order.
func (g *Graph) Feeders(target string) []*Module {
	h, ok := g.index[target]
	if !ok {
		return nil
	}
	inputs := g.inputs[h]
	out := make([]*Module, len(inputs))
	for i, in := range inputs {
		out[i] = g.modules[in]
	}
	return out
}

// Reachable returns every handle reachable from start by following
// destination edges, in breadth-first order. start itself is included.
func (g *Graph) Reachable(start Handle) []Handle {
	if start < 0 || int(start) >= len(g.names) {
		return nil
	}
	seen := make([]bool, len(g.names))
	seen[start] = true
	out := []Handle{start}
	for i := 0; i < len(out); i++ {
		m := g.modules[out[i]]
		if m == nil {
			continue
		}
		for _, d := range m.Destinations {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// Hash returns a content hash over the graph structure (kinds and ordered
// destinations). Formatting differences in the source text do not change it.
func (g *Graph) Hash() (string, error) {
	mods := make(map[string]any, len(g.order))
	for _, h := range g.order {
		m := g.modules[h]
		dests := make([]any, len(m.Destinations))
		for i, d := range m.Destinations {
			dests[i] = g.names[d]
		}
		mods[m.Name] = map[string]any{
			"kind":         m.Kind.String(),
			"destinations": dests,
		}
	}
	return ir.HashCanonical(ir.DomainGraph, mods)
}

// String formats the graph back into configuration syntax.
func (g *Graph) String() string {
	var b strings.Builder
	for _, h := range g.order {
		m := g.modules[h]
		fmt.Fprintf(&b, "%s%s ->", m.Kind.Prefix(), m.Name)
		for i, d := range m.Destinations {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(", ")
			}
			b.WriteString(g.names[d])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
