package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

func TestFixturesParse(t *testing.T) {
	for name, text := range map[string]string{
		"example one": ExampleOne,
		"example two": ExampleTwo,
		"open chain":  OpenChain,
		"counters":    Counters,
	} {
		t.Run(name, func(t *testing.T) {
			g, err := network.Parse(text)
			require.NoError(t, err)
			assert.Len(t, g.Broadcasters(), 1)
		})
	}
}

func TestArrows(t *testing.T) {
	trace := []ir.PulseRecord{
		{Press: 1, Seq: 1, Source: "button", Destination: "broadcaster", Amplitude: ir.Low},
		{Press: 1, Seq: 2, Source: "a", Destination: "b", Amplitude: ir.High},
		{Press: 2, Seq: 3, Source: "button", Destination: "broadcaster", Amplitude: ir.Low},
	}

	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"a -high-> b",
		"button -low-> broadcaster",
	}, Arrows(trace))
	assert.Equal(t, []string{"broadcaster", "b"}, Destinations(trace, 1))
	assert.Nil(t, Destinations(trace, 3))
}
