package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/network"
)

// runSchema constrains run.cue files. Defaults mirror the engine's.
const runSchema = `
#Run: {
	network:              string & != ""
	presses:              int & >0 | *1000
	target:               string | *"rx"
	horizon:              int & >0 | *100000
	max_pulses_per_press: int & >0 | *1000000
}
`

// RunConfig is the resolved input of the simulation commands.
type RunConfig struct {
	NetworkPath       string `json:"network"`
	Presses           int    `json:"presses"`
	Target            string `json:"target"`
	Horizon           int64  `json:"horizon"`
	MaxPulsesPerPress int64  `json:"max_pulses_per_press"`

	Graph *network.Graph `json:"-"`
}

// Options returns the simulator options implied by the config.
func (c *RunConfig) Options() []engine.Option {
	return []engine.Option{engine.WithMaxPulsesPerPress(c.MaxPulsesPerPress)}
}

// LoadError represents an error that occurred while loading input files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRunConfig resolves a command's input path. A .cue file is evaluated
// against the run schema and names the network file relative to itself;
// any other file is a network with default settings.
func LoadRunConfig(path string) (*RunConfig, error) {
	var cfg *RunConfig
	if filepath.Ext(path) == ".cue" {
		var err error
		if cfg, err = loadCUEConfig(path); err != nil {
			return nil, err
		}
	} else {
		cfg = &RunConfig{
			NetworkPath:       path,
			Presses:           engine.DefaultPresses,
			Target:            "rx",
			Horizon:           engine.DefaultHorizon,
			MaxPulsesPerPress: engine.DefaultMaxPulsesPerPress,
		}
	}

	g, err := LoadNetwork(cfg.NetworkPath)
	if err != nil {
		return nil, err
	}
	cfg.Graph = g
	return cfg, nil
}

// LoadNetwork reads and parses a network file.
func LoadNetwork(path string) (*network.Graph, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("network file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading network file: %v", err)}
	}
	g, err := network.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func loadCUEConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("run config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading run config: %v", err)}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(runSchema, cue.Filename("run-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, cueLoadError(err)
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, cueLoadError(err)
	}

	value := schema.LookupPath(cue.ParsePath("#Run")).Unify(user)
	if err := value.Validate(); err != nil {
		return nil, cueLoadError(err)
	}

	var cfg RunConfig
	if err := value.Decode(&cfg); err != nil {
		return nil, cueLoadError(err)
	}
	if !filepath.IsAbs(cfg.NetworkPath) {
		cfg.NetworkPath = filepath.Join(filepath.Dir(path), cfg.NetworkPath)
	}
	return &cfg, nil
}

// cueLoadError converts a CUE error to a LoadError with position info.
func cueLoadError(err error) *LoadError {
	loadErr := &LoadError{Code: ErrCodeConfigInvalid, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		loadErr.Pos = errs[0].Position()
		loadErr.Message = errs[0].Error()
	}
	return loadErr
}
