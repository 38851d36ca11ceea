package ir

import "fmt"

// Amplitude is the Low/High value carried by a pulse.
type Amplitude uint8

const (
	// Low is the zero value so fresh conjunction memory reads Low.
	Low Amplitude = iota
	High
)

// String returns "low" or "high".
func (a Amplitude) String() string {
	if a == High {
		return "high"
	}
	return "low"
}

// MarshalText implements encoding.TextMarshaler (JSON and YAML use it).
func (a Amplitude) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amplitude) UnmarshalText(text []byte) error {
	amp, err := ParseAmplitude(string(text))
	if err != nil {
		return err
	}
	*a = amp
	return nil
}

// ParseAmplitude parses "low" or "high".
func ParseAmplitude(s string) (Amplitude, error) {
	switch s {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("invalid amplitude %q: must be low or high", s)
	}
}

// Kind is the transition rule of a module.
type Kind uint8

const (
	Broadcaster Kind = iota + 1
	FlipFlop
	Conjunction
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Broadcaster:
		return "broadcaster"
	case FlipFlop:
		return "flipflop"
	case Conjunction:
		return "conjunction"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Prefix returns the configuration prefix for the kind ("%", "&" or "").
func (k Kind) Prefix() string {
	switch k {
	case FlipFlop:
		return "%"
	case Conjunction:
		return "&"
	default:
		return ""
	}
}

// PulseRecord is one delivered pulse as seen by observers and the store.
type PulseRecord struct {
	Press       int64     `json:"press"` // 1-based press index within the run
	Seq         int64     `json:"seq"`   // Logical clock, monotonic across the run
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Amplitude   Amplitude `json:"amplitude"`
}

// RunRecord summarises one simulation run for the run log.
type RunRecord struct {
	ID            string `json:"id"`
	GraphHash     string `json:"graph_hash"`
	Network       string `json:"network"` // Network text as parsed, used for replay
	Presses       int64  `json:"presses"`
	Low           int64  `json:"low"`
	High          int64  `json:"high"`
	StateHash     string `json:"state_hash"`
	EngineVersion string `json:"engine_version"`
	RecordVersion string `json:"record_version"`
}

// Product returns Low × High.
func (r RunRecord) Product() int64 {
	return r.Low * r.High
}

// FirstHighRecord stores the press at which one feeder input first emitted High.
type FirstHighRecord struct {
	RunID  string `json:"run_id"`
	Target string `json:"target"`
	Feeder string `json:"feeder"`
	Input  string `json:"input"`
	Press  int64  `json:"press"`
}

// StateSnapshot is an immutable, name-keyed copy of simulator state.
type StateSnapshot struct {
	FlipFlops    map[string]bool                 `json:"flip_flops"`
	Conjunctions map[string]map[string]Amplitude `json:"conjunctions"`
}

// CanonicalMap converts the snapshot into the generic form accepted by
// MarshalCanonical.
func (s StateSnapshot) CanonicalMap() map[string]any {
	ff := make(map[string]any, len(s.FlipFlops))
	for name, on := range s.FlipFlops {
		ff[name] = on
	}
	conj := make(map[string]any, len(s.Conjunctions))
	for name, mem := range s.Conjunctions {
		m := make(map[string]any, len(mem))
		for input, amp := range mem {
			m[input] = amp.String()
		}
		conj[name] = m
	}
	return map[string]any{
		"flip_flops":   ff,
		"conjunctions": conj,
	}
}
