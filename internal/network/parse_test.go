package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
)

const exampleOne = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

const exampleTwo = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output
`

func TestParse_Kinds(t *testing.T) {
	g, err := Parse(exampleOne)
	require.NoError(t, err)

	tests := []struct {
		name string
		kind ir.Kind
	}{
		{"broadcaster", ir.Broadcaster},
		{"a", ir.FlipFlop},
		{"c", ir.FlipFlop},
		{"inv", ir.Conjunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := g.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, m.Kind)
		})
	}
}

func TestParse_DestinationOrder(t *testing.T) {
	g := MustParse(exampleOne)

	m, ok := g.Lookup("broadcaster")
	require.True(t, ok)
	require.Len(t, m.Destinations, 3)
	assert.Equal(t, "a", g.Name(m.Destinations[0]))
	assert.Equal(t, "b", g.Name(m.Destinations[1]))
	assert.Equal(t, "c", g.Name(m.Destinations[2]))
}

func TestParse_UndefinedDestinationIsInterned(t *testing.T) {
	g := MustParse(exampleTwo)

	h, ok := g.Handle("output")
	require.True(t, ok, "undefined destinations still get a handle")
	assert.Nil(t, g.Module(h))

	_, defined := g.Lookup("output")
	assert.False(t, defined)
}

func TestParse_ButtonInterned(t *testing.T) {
	g := MustParse(exampleOne)
	assert.Equal(t, ButtonName, g.Name(g.Button()))
	assert.Nil(t, g.Module(g.Button()))
}

func TestParse_EmptyDestinationList(t *testing.T) {
	g, err := Parse("broadcaster -> a, b, c\n%a -> b\n%b -> c\n%c -> \n")
	require.NoError(t, err)

	m, ok := g.Lookup("c")
	require.True(t, ok)
	assert.Empty(t, m.Destinations)
}

func TestParse_DuplicatesAndSelfReferences(t *testing.T) {
	g := MustParse("broadcaster -> a, a\n&a -> a, b\n")

	b, _ := g.Lookup("broadcaster")
	assert.Len(t, b.Destinations, 2, "duplicate destinations are kept")

	a, _ := g.Lookup("a")
	inputs := g.Inputs(a.Handle)
	require.Len(t, inputs, 2, "each source counted once in the input set")
	assert.Equal(t, "broadcaster", g.Name(inputs[0]))
	assert.Equal(t, "a", g.Name(inputs[1]))
}

func TestParse_ConjunctionInputSet(t *testing.T) {
	g := MustParse(exampleTwo)

	con, ok := g.Lookup("con")
	require.True(t, ok)

	var names []string
	for _, h := range g.Inputs(con.Handle) {
		names = append(names, g.Name(h))
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestParse_SkipsBlankLinesAndCRLF(t *testing.T) {
	g, err := Parse("broadcaster -> a\r\n\r\n%a -> b\r\n")
	require.NoError(t, err)
	assert.Len(t, g.Modules(), 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"missing separator", "broadcaster a, b", 1},
		{"empty name", "% -> a", 1},
		{"empty name no prefix", " -> a", 1},
		{"empty destination", "broadcaster -> a, , b", 1},
		{"trailing comma", "broadcaster -> a,", 1},
		{"bad name", "%a-b -> c", 1},
		{"duplicate module", "%a -> b\n%a -> c", 2},
		{"error on later line", "broadcaster -> a\n%a -> b\nnonsense", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.text)
			require.Error(t, err)
			assert.Nil(t, g, "no partial graph on error")

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("garbage") })
}

func TestGraph_StringRoundTrip(t *testing.T) {
	g := MustParse(exampleTwo)
	again := MustParse(g.String())

	h1, err := g.Hash()
	require.NoError(t, err)
	h2, err := again.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestGraph_HashIgnoresFormatting(t *testing.T) {
	a := MustParse("broadcaster -> a, b\n%a -> b\n")
	b := MustParse("broadcaster->a,b\n\n%a ->   b\n")

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestGraph_Feeders(t *testing.T) {
	g := MustParse(exampleTwo)

	feeders := g.Feeders("output")
	require.Len(t, feeders, 1)
	assert.Equal(t, "con", feeders[0].Name)

	assert.Empty(t, g.Feeders("nowhere"))
}

func TestGraph_Reachable(t *testing.T) {
	g := MustParse("broadcaster -> a\n%a -> b\n%b -> out\n%lonely -> a\n")

	bc, _ := g.Lookup("broadcaster")
	var names []string
	for _, h := range g.Reachable(bc.Handle) {
		names = append(names, g.Name(h))
	}
	assert.Equal(t, []string{"broadcaster", "a", "b", "out"}, names)
}
