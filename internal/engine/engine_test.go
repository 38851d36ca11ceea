package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
	"github.com/roach88/pulsesim/internal/testutil"
)

func newSim(t *testing.T, text string, opts ...Option) *Simulator {
	t.Helper()
	sim, err := New(network.MustParse(text), opts...)
	require.NoError(t, err)
	return sim
}

// recorder collects delivered pulses as arrows.
type recorder struct {
	g      *network.Graph
	pulses []string
}

func (r *recorder) ObservePulse(ev PulseEvent) {
	r.pulses = append(r.pulses, testutil.Arrow(ev.Record(r.g)))
}

func TestPress_ExampleOneSinglePress(t *testing.T) {
	sim := newSim(t, testutil.ExampleOne)

	c, err := sim.Press()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 8, High: 4}, c)
	assert.Equal(t, int64(32), c.Product())
}

func TestPress_OpenChainSinglePress(t *testing.T) {
	sim := newSim(t, testutil.OpenChain)

	c, err := sim.Press()
	require.NoError(t, err)
	// button->broadcaster, broadcaster->a,b,c are Low; a->b, b->c are High
	// and absorbed by flip-flops; c has nowhere to send.
	assert.Equal(t, Counts{Low: 4, High: 2}, c)
	assert.Equal(t, int64(8), c.Product())

	snap := sim.Snapshot()
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, snap.FlipFlops)
}

func TestPress_ExampleOneTrace(t *testing.T) {
	g := network.MustParse(testutil.ExampleOne)
	rec := &recorder{g: g}
	sim, err := New(g, WithObserver(rec))
	require.NoError(t, err)

	_, err = sim.Press()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"broadcaster -low-> b",
		"broadcaster -low-> c",
		"a -high-> b",
		"b -high-> c",
		"c -high-> inv",
		"inv -low-> a",
		"a -low-> b",
		"b -low-> c",
		"c -low-> inv",
		"inv -high-> a",
	}, rec.pulses)
}

func TestPress_BreadthFirstOrdering(t *testing.T) {
	// a, b and c each forward to a sink; all broadcaster pulses must land
	// before any of a, b, c's own emissions are delivered.
	g := network.MustParse("broadcaster -> a, b, c\n&a -> sink\n&b -> sink\n&c -> sink\n")
	rec := &recorder{g: g}
	sim, err := New(g, WithObserver(rec))
	require.NoError(t, err)

	_, err = sim.Press()
	require.NoError(t, err)

	require.Len(t, rec.pulses, 7)
	assert.Equal(t, []string{
		"broadcaster -low-> a",
		"broadcaster -low-> b",
		"broadcaster -low-> c",
	}, rec.pulses[1:4])
	for _, p := range rec.pulses[4:] {
		assert.Contains(t, p, "-> sink")
	}
}

func TestRun_ThousandPresses(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Counts
		product int64
	}{
		{"example one", testutil.ExampleOne, Counts{Low: 8000, High: 4000}, 32000000},
		{"example two", testutil.ExampleTwo, Counts{Low: 4250, High: 2750}, 11687500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newSim(t, tt.text)

			c, err := sim.Run(DefaultPresses)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.product, c.Product())
			assert.Equal(t, tt.want, sim.Totals())
			assert.Equal(t, int64(DefaultPresses), sim.Presses())
		})
	}
}

func TestRun_StateCarriesAcrossPresses(t *testing.T) {
	sim := newSim(t, testutil.ExampleTwo)

	_, err := sim.Run(4)
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 17, High: 11}, sim.Totals())

	// Four presses bring example two back to its initial configuration
	snap := sim.Snapshot()
	assert.Equal(t, map[string]bool{"a": false, "b": false}, snap.FlipFlops)
	assert.Equal(t, ir.Low, snap.Conjunctions["con"]["a"])
	assert.Equal(t, ir.Low, snap.Conjunctions["con"]["b"])

	first, err := sim.Press()
	require.NoError(t, err)
	fresh := newSim(t, testutil.ExampleTwo)
	again, err := fresh.Press()
	require.NoError(t, err)
	assert.Equal(t, again, first)
}

func TestRun_Deterministic(t *testing.T) {
	a := newSim(t, testutil.ExampleTwo)
	b := newSim(t, testutil.ExampleTwo)

	ca, err := a.Run(137)
	require.NoError(t, err)
	cb, err := b.Run(137)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	ha, err := ir.StateHash(a.Snapshot())
	require.NoError(t, err)
	hb, err := ir.StateHash(b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestPress_UndefinedDestinationCountedThenAbsorbed(t *testing.T) {
	sim := newSim(t, "broadcaster -> output, output\n")

	c, err := sim.Press()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 3}, c)
}

func TestNew_NoBroadcaster(t *testing.T) {
	_, err := New(network.MustParse("%a -> b\n"))
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeNoBroadcaster, re.Code)
	assert.False(t, IsUnsolvable(err))
}

func TestNew_WithBroadcaster(t *testing.T) {
	g := network.MustParse("%a -> b\n%b -> out\n")

	sim, err := New(g, WithBroadcaster("a"))
	require.NoError(t, err)
	c, err := sim.Press()
	require.NoError(t, err)
	// button -low-> a, a -high-> b (absorbed)
	assert.Equal(t, Counts{Low: 1, High: 1}, c)

	_, err = New(g, WithBroadcaster("missing"))
	assert.Error(t, err)
}

func TestPress_QuotaStopsOscillation(t *testing.T) {
	// A conjunction feeding itself never quiesces
	sim := newSim(t, "broadcaster -> loop\n&loop -> loop\n", WithMaxPulsesPerPress(50))

	_, err := sim.Press()
	require.Error(t, err)
	assert.True(t, IsPulseQuotaError(err))

	var qe *PulseQuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(1), qe.Press)
	assert.Equal(t, int64(50), qe.Limit)

	// Sticky: the simulator refuses to continue
	_, err = sim.Press()
	assert.True(t, IsPulseQuotaError(err))
	assert.Equal(t, int64(0), sim.Presses())

	_, err = sim.Run(3)
	assert.True(t, IsPulseQuotaError(err), "wrapped error still matches")
}

func TestWithMaxPulsesPerPress_NonPositiveSelectsDefault(t *testing.T) {
	for _, n := range []int64{0, -1} {
		sim := newSim(t, testutil.ExampleOne, WithMaxPulsesPerPress(n))
		assert.Equal(t, int64(DefaultMaxPulsesPerPress), sim.maxPulses)

		c, err := sim.Press()
		require.NoError(t, err)
		assert.Equal(t, Counts{Low: 8, High: 4}, c)
	}
}

func TestPress_QuotaNotHitByNormalNetworks(t *testing.T) {
	sim := newSim(t, testutil.ExampleOne, WithMaxPulsesPerPress(12))

	_, err := sim.Run(10)
	assert.NoError(t, err, "exactly 12 pulses per press fits a quota of 12")
}

func TestPulseEvent_SeqMonotonic(t *testing.T) {
	var last int64
	var presses []int64
	obs := ObserverFunc(func(ev PulseEvent) {
		assert.Equal(t, last+1, ev.Seq)
		last = ev.Seq
		if len(presses) == 0 || presses[len(presses)-1] != ev.Press {
			presses = append(presses, ev.Press)
		}
	})
	sim := newSim(t, testutil.ExampleOne, WithObserver(obs))

	_, err := sim.Run(3)
	require.NoError(t, err)
	assert.Equal(t, int64(36), last)
	assert.Equal(t, []int64{1, 2, 3}, presses)
}
