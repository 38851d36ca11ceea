package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pulsesim/internal/arith"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// DefaultHorizon is the default safety bound on presses simulated while
// waiting for every feeder input to emit High.
const DefaultHorizon = 100_000

// CycleDetector records, for each input of the conjunction feeding a
// target, the first press in which that input sent High to the feeder.
//
// ASSUMPTION (not verified): each input sub-circuit is an independent
// counter that emits High exactly on multiples of its first-High press.
// Under that assumption the target is first reached at the LCM of those
// presses. This holds for the puzzle inputs the heuristic was built for;
// it is not a property of arbitrary module graphs.
//
// CycleDetector implements Observer and must be attached to a fresh
// Simulator so press indices start at 1.
type CycleDetector struct {
	graph     *network.Graph
	target    string
	feeder    network.Handle
	inputs    []network.Handle
	first     []int64 // 0 = not seen yet
	remaining int
}

// InputPeriod is the first-High press of one feeder input.
type InputPeriod struct {
	Input string `json:"input"`
	Press int64  `json:"press"`
}

// CycleReport is the outcome of a completed cycle search.
type CycleReport struct {
	Target  string        `json:"target"`
	Feeder  string        `json:"feeder"`
	Periods []InputPeriod `json:"periods"` // In static input order
	Presses int64         `json:"presses"` // Presses simulated
	Answer  uint64        `json:"answer"`  // LCM of all periods
}

// FindFeeder returns the single conjunction whose destinations contain
// target. Other modules feeding the target (flip-flops, broadcasters) do
// not take part. No conjunction, or several, is reported as a RuntimeError
// for which IsUnsolvable is true.
func FindFeeder(g *network.Graph, target string) (*network.Module, error) {
	var conjunctions []*network.Module
	for _, f := range g.Feeders(target) {
		if f.Kind == ir.Conjunction {
			conjunctions = append(conjunctions, f)
		}
	}

	switch len(conjunctions) {
	case 0:
		return nil, NewFeederError(target, nil)
	case 1:
		return conjunctions[0], nil
	}
	names := make([]string, len(conjunctions))
	for i, c := range conjunctions {
		names[i] = c.Name
	}
	return nil, NewFeederError(target, names)
}

// NewCycleDetector locates the feeder of target and prepares to watch its
// static input set.
func NewCycleDetector(g *network.Graph, target string) (*CycleDetector, error) {
	feeder, err := FindFeeder(g, target)
	if err != nil {
		return nil, err
	}
	inputs := g.Inputs(feeder.Handle)
	if len(inputs) == 0 {
		err := NewFeederError(target, nil)
		err.Message = fmt.Sprintf("feeder %q has no inputs and never emits", feeder.Name)
		return nil, err
	}
	return &CycleDetector{
		graph:     g,
		target:    target,
		feeder:    feeder.Handle,
		inputs:    inputs,
		first:     make([]int64, len(inputs)),
		remaining: len(inputs),
	}, nil
}

// ObservePulse implements Observer.
func (d *CycleDetector) ObservePulse(ev PulseEvent) {
	p := ev.Pulse
	if d.remaining == 0 || p.Destination != d.feeder || p.Amplitude != ir.High {
		return
	}
	for i, in := range d.inputs {
		if in == p.Source && d.first[i] == 0 {
			d.first[i] = ev.Press
			d.remaining--
			slog.Info("input emitted high", "input", d.graph.Name(in), "press", ev.Press, "remaining", d.remaining)
			return
		}
	}
}

// Done reports whether every input has a recorded press.
func (d *CycleDetector) Done() bool {
	return d.remaining == 0
}

// Periods returns the recorded presses in static input order.
// Inputs not seen yet report press 0.
func (d *CycleDetector) Periods() []InputPeriod {
	out := make([]InputPeriod, len(d.inputs))
	for i, in := range d.inputs {
		out[i] = InputPeriod{Input: d.graph.Name(in), Press: d.first[i]}
	}
	return out
}

// missing returns the names of inputs without a recorded press.
func (d *CycleDetector) missing() []string {
	var out []string
	for i, in := range d.inputs {
		if d.first[i] == 0 {
			out = append(out, d.graph.Name(in))
		}
	}
	return out
}

// Answer returns the LCM of all recorded presses.
//
// Returns a RuntimeError with ErrCodeAnswerOverflow if the LCM does not fit
// in a uint64.
func (d *CycleDetector) Answer() (uint64, error) {
	vals := make([]uint64, len(d.first))
	for i, f := range d.first {
		vals[i] = uint64(f)
	}
	answer, err := arith.LCMAll(vals...)
	if err != nil {
		return 0, NewOverflowError(d.target, d.Periods())
	}
	return answer, nil
}

// Extrapolate presses sim until every input of the conjunction feeding
// target has emitted High at least once, then combines the first-High
// presses with LCM. See CycleDetector for the assumption this relies on.
//
// sim must be fresh (no presses yet). horizon <= 0 selects DefaultHorizon.
// Returns a RuntimeError with ErrCodeHorizonExceeded if some input stays
// silent for horizon presses.
func Extrapolate(sim *Simulator, target string, horizon int64) (*CycleReport, error) {
	if sim.Presses() != 0 {
		return nil, &RuntimeError{
			Code:    ErrCodeSimulatorNotFresh,
			Message: "cycle search needs press indices starting at 1",
			Target:  target,
		}
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	det, err := NewCycleDetector(sim.Graph(), target)
	if err != nil {
		return nil, err
	}
	slog.Info("cycle search starting", "target", target, "feeder", sim.Graph().Name(det.feeder), "inputs", len(det.inputs), "horizon", horizon)

	sim.observers = append(sim.observers, det)
	defer func() { sim.observers = sim.observers[:len(sim.observers)-1] }()

	for !det.Done() {
		if sim.Presses() >= horizon {
			return nil, NewHorizonError(target, horizon, det.missing())
		}
		if _, err := sim.Press(); err != nil {
			return nil, err
		}
	}

	answer, err := det.Answer()
	if err != nil {
		return nil, err
	}
	report := &CycleReport{
		Target:  target,
		Feeder:  sim.Graph().Name(det.feeder),
		Periods: det.Periods(),
		Presses: sim.Presses(),
		Answer:  answer,
	}
	slog.Info("cycle search complete", "target", target, "presses", report.Presses, "answer", report.Answer)
	return report, nil
}
