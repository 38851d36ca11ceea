package engine

import (
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// Pulse is a transient signal between two modules, addressed by handle.
type Pulse struct {
	Source      network.Handle
	Destination network.Handle
	Amplitude   ir.Amplitude
}

// PulseEvent is one delivered pulse as reported to observers.
type PulseEvent struct {
	Press int64 // 1-based press index
	Seq   int64 // Logical clock, monotonic across the simulator's lifetime
	Pulse Pulse
}

// Record resolves handles through g into a storable record.
func (ev PulseEvent) Record(g *network.Graph) ir.PulseRecord {
	return ir.PulseRecord{
		Press:       ev.Press,
		Seq:         ev.Seq,
		Source:      g.Name(ev.Pulse.Source),
		Destination: g.Name(ev.Pulse.Destination),
		Amplitude:   ev.Pulse.Amplitude,
	}
}

// Observer is notified of every delivered pulse, in delivery order,
// before the destination's transition runs.
//
// Observers run on the simulator's goroutine and must not call back into
// the Simulator.
type Observer interface {
	ObservePulse(ev PulseEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev PulseEvent)

// ObservePulse calls f(ev).
func (f ObserverFunc) ObservePulse(ev PulseEvent) {
	f(ev)
}

// Counts tallies delivered pulses by amplitude.
type Counts struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{Low: c.Low + o.Low, High: c.High + o.High}
}

// Product returns Low × High.
func (c Counts) Product() int64 {
	return c.Low * c.High
}

func (c *Counts) tally(a ir.Amplitude) {
	if a == ir.High {
		c.High++
	} else {
		c.Low++
	}
}
