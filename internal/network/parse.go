package network

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/roach88/pulsesim/internal/ir"
)

// ParseError reports a malformed configuration line.
// Parsing is all-or-nothing: no partial graph accompanies a ParseError.
type ParseError struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
}

// Parse builds a Graph from configuration text.
//
// Blank lines are skipped. A line without "->", with an empty or
// non-alphanumeric name, or with an empty destination token is rejected.
// A module defined twice is rejected. An empty destination list
// ("%c -> ") is legal.
//
// Conjunction input sets are computed after every line has loaded.
func Parse(text string) (*Graph, error) {
	b := newBuilder(text)

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := b.addLine(i+1, line); err != nil {
			return nil, err
		}
	}

	return b.finish(), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(text string) *Graph {
	g, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("network.MustParse: %v", err))
	}
	return g
}

type builder struct {
	g *Graph
}

func newBuilder(text string) *builder {
	b := &builder{g: &Graph{
		index: make(map[string]Handle),
		text:  text,
	}}
	b.g.button = b.intern(ButtonName)
	return b
}

// intern returns the handle for name, allocating one on first sight.
func (b *builder) intern(name string) Handle {
	if h, ok := b.g.index[name]; ok {
		return h
	}
	h := Handle(len(b.g.names))
	b.g.names = append(b.g.names, name)
	b.g.modules = append(b.g.modules, nil)
	b.g.index[name] = h
	return h
}

func (b *builder) addLine(lineNo int, line string) error {
	fail := func(msg string) error {
		return &ParseError{Line: lineNo, Text: line, Message: msg}
	}

	left, right, ok := strings.Cut(line, "->")
	if !ok {
		return fail("missing \"->\" separator")
	}

	decl := strings.TrimSpace(left)
	kind := ir.Broadcaster
	switch {
	case strings.HasPrefix(decl, "%"):
		kind = ir.FlipFlop
		decl = decl[1:]
	case strings.HasPrefix(decl, "&"):
		kind = ir.Conjunction
		decl = decl[1:]
	}
	if decl == "" {
		return fail("empty module name")
	}
	if !isName(decl) {
		return fail(fmt.Sprintf("invalid module name %q", decl))
	}

	var dests []string
	if rest := strings.TrimSpace(right); rest != "" {
		for _, tok := range strings.Split(rest, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				return fail("empty destination")
			}
			if !isName(tok) {
				return fail(fmt.Sprintf("invalid destination name %q", tok))
			}
			dests = append(dests, tok)
		}
	}

	h := b.intern(decl)
	if prev := b.g.modules[h]; prev != nil {
		return fail(fmt.Sprintf("module %q already defined on line %d", decl, prev.Line))
	}

	m := &Module{
		Name:         decl,
		Handle:       h,
		Kind:         kind,
		Destinations: make([]Handle, len(dests)),
		Line:         lineNo,
	}
	for i, d := range dests {
		m.Destinations[i] = b.intern(d)
	}
	b.g.modules[h] = m
	b.g.order = append(b.g.order, h)
	if kind == ir.Broadcaster {
		b.g.broadcasters = append(b.g.broadcasters, h)
	}
	return nil
}

// finish computes static input sets. Each source appears once per target
// even when it lists the target several times.
func (b *builder) finish() *Graph {
	g := b.g
	g.inputs = make([][]Handle, len(g.names))
	for _, src := range g.order {
		m := g.modules[src]
		for _, d := range m.Destinations {
			if !slices.Contains(g.inputs[d], src) {
				g.inputs[d] = append(g.inputs[d], src)
			}
		}
	}
	return g
}

func isName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}
