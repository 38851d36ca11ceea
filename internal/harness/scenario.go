package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one simulator conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Network is the inline module configuration.
	Network string `yaml:"network,omitempty"`

	// NetworkFile points at a configuration file, relative to the
	// scenario file. Exactly one of Network and NetworkFile is set.
	NetworkFile string `yaml:"network_file,omitempty"`

	// Presses is the number of button presses (default 1000).
	Presses int `yaml:"presses,omitempty"`

	// TracePresses bounds how many leading presses are kept in the trace
	// (default 1).
	TracePresses int64 `yaml:"trace_presses,omitempty"`

	// Target enables the cycle search for this module name.
	Target string `yaml:"target,omitempty"`

	// Horizon bounds the cycle search (default engine.DefaultHorizon).
	Horizon int64 `yaml:"horizon,omitempty"`

	// MaxPulsesPerPress overrides the per-press pulse quota.
	MaxPulsesPerPress int64 `yaml:"max_pulses_per_press,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a scenario result. Which fields apply
// depends on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// pulse_counts
	Low  *int64 `yaml:"low,omitempty"`
	High *int64 `yaml:"high,omitempty"`

	// product, answer
	Value *uint64 `yaml:"value,omitempty"`

	// first_high (Press also selects the press for trace_order)
	Input string `yaml:"input,omitempty"`
	Press int64  `yaml:"press,omitempty"`

	// trace_order
	Destinations []string `yaml:"destinations,omitempty"`

	// final_state (subset match)
	FlipFlops    map[string]bool              `yaml:"flip_flops,omitempty"`
	Conjunctions map[string]map[string]string `yaml:"conjunctions,omitempty"`

	// unsolvable
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertPulseCounts = "pulse_counts"
	AssertProduct     = "product"
	AssertTraceOrder  = "trace_order"
	AssertFinalState  = "final_state"
	AssertFirstHigh   = "first_high"
	AssertAnswer      = "answer"
	AssertUnsolvable  = "unsolvable"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly. A network_file path is
// resolved relative to the scenario file and its contents are inlined.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if scenario.NetworkFile != "" && scenario.Network == "" {
		netPath := scenario.NetworkFile
		if !filepath.IsAbs(netPath) {
			netPath = filepath.Join(filepath.Dir(path), netPath)
		}
		text, err := os.ReadFile(netPath)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: network file: %w", path, err)
		}
		scenario.Network = string(text)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Network == "" {
		return fmt.Errorf("network or network_file is required")
	}
	if s.Presses < 0 {
		return fmt.Errorf("presses must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertPulseCounts:
		if a.Low == nil && a.High == nil {
			return fmt.Errorf("assertions[%d]: low or high is required for pulse_counts", index)
		}
	case AssertProduct, AssertAnswer:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertTraceOrder:
		if len(a.Destinations) == 0 {
			return fmt.Errorf("assertions[%d]: destinations list is required for trace_order", index)
		}
	case AssertFinalState:
		if len(a.FlipFlops) == 0 && len(a.Conjunctions) == 0 {
			return fmt.Errorf("assertions[%d]: flip_flops or conjunctions is required for final_state", index)
		}
	case AssertFirstHigh:
		if a.Input == "" || a.Press <= 0 {
			return fmt.Errorf("assertions[%d]: input and a positive press are required for first_high", index)
		}
	case AssertUnsolvable:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for unsolvable", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	switch a.Type {
	case AssertFirstHigh, AssertAnswer, AssertUnsolvable:
		if s.Target == "" {
			return fmt.Errorf("assertions[%d]: %s needs a scenario target", index, a.Type)
		}
	}
	return nil
}
