package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
	"github.com/roach88/pulsesim/internal/testutil"
)

func TestFindFeeder(t *testing.T) {
	g := network.MustParse(testutil.Counters)

	feeder, err := FindFeeder(g, "rx")
	require.NoError(t, err)
	assert.Equal(t, "hub", feeder.Name)
}

func TestFindFeeder_Unsolvable(t *testing.T) {
	tests := []struct {
		name string
		text string
		code RuntimeErrorCode
	}{
		{"nothing feeds target", "broadcaster -> a\n%a -> b\n", ErrCodeNoFeeder},
		{"feeder is a flip-flop", "broadcaster -> a\n%a -> rx\n", ErrCodeNoFeeder},
		{"two feeders", "broadcaster -> a, b\n&a -> rx\n&b -> rx\n", ErrCodeAmbiguousFeeder},
		{"two conjunctions and a flip-flop", "broadcaster -> a, b, c\n&a -> rx\n&b -> rx\n%c -> rx\n", ErrCodeAmbiguousFeeder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindFeeder(network.MustParse(tt.text), "rx")
			require.Error(t, err)

			var re *RuntimeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.code, re.Code)
			assert.Equal(t, "rx", re.Target)
			assert.True(t, IsUnsolvable(err))
		})
	}
}

func TestFindFeeder_IgnoresNonConjunctionFeeders(t *testing.T) {
	g := network.MustParse("broadcaster -> a, ff\n%a -> hub\n&hub -> rx\n%ff -> rx\n")

	feeder, err := FindFeeder(g, "rx")
	require.NoError(t, err)
	assert.Equal(t, "hub", feeder.Name)

	sim := newSim(t, "broadcaster -> a, ff\n%a -> hub\n&hub -> rx\n%ff -> rx\n")
	report, err := Extrapolate(sim, "rx", 0)
	require.NoError(t, err)
	assert.Equal(t, "hub", report.Feeder)
	assert.Equal(t, uint64(1), report.Answer)
}

func TestNewCycleDetector_FeederWithoutInputs(t *testing.T) {
	_, err := NewCycleDetector(network.MustParse("broadcaster -> a\n&hub -> rx\n"), "rx")
	require.Error(t, err)
	assert.True(t, IsUnsolvable(err))
}

func TestCycleDetector_RecordsFirstHighOnly(t *testing.T) {
	g := network.MustParse("broadcaster -> a, b\n%a -> hub\n%b -> hub\n&hub -> rx\n")
	det, err := NewCycleDetector(g, "rx")
	require.NoError(t, err)

	hub, _ := g.Handle("hub")
	a, _ := g.Handle("a")
	b, _ := g.Handle("b")

	send := func(press int64, src network.Handle, amp ir.Amplitude) {
		det.ObservePulse(PulseEvent{Press: press, Pulse: Pulse{Source: src, Destination: hub, Amplitude: amp}})
	}

	send(1, a, ir.Low)
	send(3, a, ir.High)
	send(6, a, ir.High) // later Highs do not move the record
	assert.False(t, det.Done())

	send(5, b, ir.High)
	require.True(t, det.Done())

	assert.Equal(t, []InputPeriod{{Input: "a", Press: 3}, {Input: "b", Press: 5}}, det.Periods())
	answer, err := det.Answer()
	require.NoError(t, err)
	assert.Equal(t, uint64(15), answer)
}

func TestCycleDetector_IgnoresPulsesElsewhere(t *testing.T) {
	g := network.MustParse("broadcaster -> a\n%a -> hub, other\n&hub -> rx\n%other -> rx2\n")
	det, err := NewCycleDetector(g, "rx")
	require.NoError(t, err)

	a, _ := g.Handle("a")
	other, _ := g.Handle("other")
	det.ObservePulse(PulseEvent{Press: 1, Pulse: Pulse{Source: a, Destination: other, Amplitude: ir.High}})

	assert.False(t, det.Done())
}

func TestExtrapolate_Counters(t *testing.T) {
	sim := newSim(t, testutil.Counters)

	report, err := Extrapolate(sim, "rx", 0)
	require.NoError(t, err)

	assert.Equal(t, "rx", report.Target)
	assert.Equal(t, "hub", report.Feeder)
	assert.Equal(t, []InputPeriod{
		{Input: "a", Press: 1},
		{Input: "y", Press: 2},
		{Input: "r", Press: 4},
	}, report.Periods)
	assert.Equal(t, int64(4), report.Presses, "search stops as soon as every input has fired")
	assert.Equal(t, uint64(4), report.Answer)
}

func TestExtrapolate_DetachesDetector(t *testing.T) {
	sim := newSim(t, testutil.Counters)
	_, err := Extrapolate(sim, "rx", 0)
	require.NoError(t, err)

	assert.Empty(t, sim.observers)
}

func TestExtrapolate_HorizonExceeded(t *testing.T) {
	// The broadcaster only ever sends Low, so hub's broadcaster input never fires
	sim := newSim(t, "broadcaster -> a, hub\n%a -> hub\n&hub -> rx\n")

	_, err := Extrapolate(sim, "rx", 10)
	require.Error(t, err)
	assert.True(t, IsUnsolvable(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeHorizonExceeded, re.Code)
	assert.Equal(t, "[broadcaster]", re.Details["missing"])
	assert.Equal(t, int64(10), sim.Presses(), "no more than horizon presses are simulated")
}

func TestExtrapolate_RequiresFreshSimulator(t *testing.T) {
	sim := newSim(t, testutil.Counters)
	_, err := sim.Press()
	require.NoError(t, err)

	_, err = Extrapolate(sim, "rx", 0)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeSimulatorNotFresh, re.Code)
	assert.False(t, IsUnsolvable(err))
}

func TestExtrapolate_PropagatesQuotaError(t *testing.T) {
	sim := newSim(t, "broadcaster -> loop, a\n&loop -> loop\n%a -> hub\n&hub -> rx\n", WithMaxPulsesPerPress(20))

	_, err := Extrapolate(sim, "rx", 0)
	assert.True(t, IsPulseQuotaError(err))
}

func TestCycleDetector_AnswerOverflow(t *testing.T) {
	g := network.MustParse("broadcaster -> a, b, c, d\n%a -> hub\n%b -> hub\n%c -> hub\n%d -> hub\n&hub -> rx\n")
	det, err := NewCycleDetector(g, "rx")
	require.NoError(t, err)

	hub, _ := g.Handle("hub")
	// Coprime presses near the default horizon; their product exceeds 2^64.
	for name, press := range map[string]int64{"a": 99991, "b": 99989, "c": 99971, "d": 99961} {
		h, _ := g.Handle(name)
		det.ObservePulse(PulseEvent{Press: press, Pulse: Pulse{Source: h, Destination: hub, Amplitude: ir.High}})
	}
	require.True(t, det.Done())

	answer, err := det.Answer()
	require.Error(t, err)
	assert.Zero(t, answer)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeAnswerOverflow, re.Code)
	assert.Equal(t, "rx", re.Target)
	assert.Contains(t, re.Message, "a=99991")
	assert.True(t, IsUnsolvable(err))
}
