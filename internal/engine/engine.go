package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// DefaultPresses is the press count of the bounded question.
const DefaultPresses = 1000

// Simulator drives button presses over one graph.
//
// Thread-safety model: none. A Simulator, its state and its queue belong
// to the goroutine that calls Press; observers are invoked synchronously
// on that goroutine.
//
// INVARIANTS:
//   - state is created once and never reset
//   - observers from construction are called first, in registration order
//   - totals equal the sum of every completed press's counts
type Simulator struct {
	graph       *network.Graph
	state       *state
	queue       *pulseQueue
	broadcaster network.Handle
	observers   []Observer
	maxPulses   int64

	presses int64
	seq     int64
	totals  Counts
	err     error // Sticky: set when a press is abandoned
}

// Option allows configuration of simulator parameters.
type Option func(*simConfig)

type simConfig struct {
	broadcaster string
	observers   []Observer
	maxPulses   int64
}

// WithBroadcaster sets the module the button pulse is sent to.
// Default: the first broadcaster declared in the graph.
func WithBroadcaster(name string) Option {
	return func(c *simConfig) {
		c.broadcaster = name
	}
}

// WithObserver registers an observer. Observers are called in
// registration order.
func WithObserver(o Observer) Option {
	return func(c *simConfig) {
		c.observers = append(c.observers, o)
	}
}

// WithMaxPulsesPerPress sets the per-press pulse quota.
//
// Default: 1 000 000 (DefaultMaxPulsesPerPress). n <= 0 selects the default.
// Use WithMaxPulsesPerPress(10) for testing quota enforcement.
func WithMaxPulsesPerPress(n int64) Option {
	return func(c *simConfig) {
		if n <= 0 {
			n = DefaultMaxPulsesPerPress
		}
		c.maxPulses = n
	}
}

// New creates a Simulator with all flip-flops off and all conjunction
// memories Low.
//
// Returns a RuntimeError with ErrCodeNoBroadcaster if the graph declares no
// broadcaster and none was named with WithBroadcaster. A name given with
// WithBroadcaster must appear in the graph but need not be defined; presses
// then deliver a single absorbed pulse.
func New(g *network.Graph, opts ...Option) (*Simulator, error) {
	cfg := simConfig{maxPulses: DefaultMaxPulsesPerPress}
	for _, opt := range opts {
		opt(&cfg)
	}

	bc, err := resolveBroadcaster(g, cfg.broadcaster)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		graph:       g,
		state:       newState(g),
		queue:       newPulseQueue(),
		broadcaster: bc,
		observers:   cfg.observers,
		maxPulses:   cfg.maxPulses,
	}, nil
}

func resolveBroadcaster(g *network.Graph, name string) (network.Handle, error) {
	if name != "" {
		h, ok := g.Handle(name)
		if !ok {
			return network.NoHandle, &RuntimeError{
				Code:    ErrCodeNoBroadcaster,
				Message: fmt.Sprintf("entry module %q does not appear in the graph", name),
			}
		}
		return h, nil
	}
	bcs := g.Broadcasters()
	if len(bcs) == 0 {
		return network.NoHandle, &RuntimeError{
			Code:    ErrCodeNoBroadcaster,
			Message: "graph declares no broadcaster",
		}
	}
	return bcs[0], nil
}

// Graph returns the graph being simulated.
func (s *Simulator) Graph() *network.Graph {
	return s.graph
}

// Presses returns the number of completed presses.
func (s *Simulator) Presses() int64 {
	return s.presses
}

// Totals returns pulse counts summed over all completed presses.
func (s *Simulator) Totals() Counts {
	return s.totals
}

// Snapshot returns a name-keyed copy of the current module state.
func (s *Simulator) Snapshot() ir.StateSnapshot {
	return s.state.snapshot()
}

// Press runs one button press to quiescence and returns its pulse counts.
//
// Returns *PulseQuotaError if the press does not quiesce within the quota.
// After that error every later call returns the same error.
func (s *Simulator) Press() (Counts, error) {
	if s.err != nil {
		return Counts{}, s.err
	}

	press := s.presses + 1
	var counts Counts

	s.queue.Enqueue(Pulse{
		Source:      s.graph.Button(),
		Destination: s.broadcaster,
		Amplitude:   ir.Low,
	})

	for {
		p, ok := s.queue.Dequeue()
		if !ok {
			break
		}

		if counts.Low+counts.High >= s.maxPulses {
			s.queue.Reset()
			s.err = &PulseQuotaError{
				Press:  press,
				Pulses: counts.Low + counts.High + 1,
				Limit:  s.maxPulses,
			}
			slog.Warn("press abandoned", "press", press, "error", s.err)
			return counts, s.err
		}

		s.seq++
		counts.tally(p.Amplitude)
		ev := PulseEvent{Press: press, Seq: s.seq, Pulse: p}
		for _, o := range s.observers {
			o.ObservePulse(ev)
		}

		// Undefined destinations are counted above and absorbed by transition.
		out, emit := s.state.transition(p.Destination, p)
		if !emit {
			continue
		}
		for _, d := range s.graph.Module(p.Destination).Destinations {
			s.queue.Enqueue(Pulse{Source: p.Destination, Destination: d, Amplitude: out})
		}
	}

	s.presses = press
	s.totals = s.totals.Add(counts)
	slog.Debug("press complete", "press", press, "low", counts.Low, "high", counts.High)
	return counts, nil
}

// Run performs n presses and returns the counts summed over those presses.
// State carries forward from any earlier presses.
func (s *Simulator) Run(n int) (Counts, error) {
	var sum Counts
	for i := 0; i < n; i++ {
		c, err := s.Press()
		if err != nil {
			return sum, fmt.Errorf("run press %d of %d: %w", i+1, n, err)
		}
		sum = sum.Add(c)
	}
	return sum, nil
}
