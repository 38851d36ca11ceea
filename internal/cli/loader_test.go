package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/network"
)

func TestLoadRunConfig_NetworkFile(t *testing.T) {
	cfg, err := LoadRunConfig("testdata/example_one.txt")
	require.NoError(t, err)

	assert.Equal(t, "testdata/example_one.txt", cfg.NetworkPath)
	assert.Equal(t, engine.DefaultPresses, cfg.Presses)
	assert.Equal(t, "rx", cfg.Target)
	assert.Equal(t, int64(engine.DefaultHorizon), cfg.Horizon)
	assert.Equal(t, int64(engine.DefaultMaxPulsesPerPress), cfg.MaxPulsesPerPress)
	require.NotNil(t, cfg.Graph)
	assert.Len(t, cfg.Graph.Modules(), 5)
}

func TestLoadRunConfig_CUE(t *testing.T) {
	cfg, err := LoadRunConfig("testdata/run.cue")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "counters.txt"), cfg.NetworkPath, "network is relative to the cue file")
	assert.Equal(t, 8, cfg.Presses)
	assert.Equal(t, "rx", cfg.Target, "schema default")
	assert.Equal(t, int64(100000), cfg.Horizon, "schema default")
	assert.Equal(t, int64(1000000), cfg.MaxPulsesPerPress, "schema default")
	require.NotNil(t, cfg.Graph)
	_, ok := cfg.Graph.Lookup("hub")
	assert.True(t, ok)
}

func TestLoadRunConfig_CUEConstraintViolation(t *testing.T) {
	_, err := LoadRunConfig("testdata/bad_presses.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeConfigInvalid, loadErr.Code)
}

func TestLoadRunConfig_CUEUnknownField(t *testing.T) {
	_, err := LoadRunConfig("testdata/unknown_field.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeConfigInvalid, loadErr.Code)
}

func TestLoadRunConfig_Missing(t *testing.T) {
	for _, path := range []string{"testdata/nope.txt", "testdata/nope.cue"} {
		t.Run(path, func(t *testing.T) {
			_, err := LoadRunConfig(path)
			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, ErrCodeNotFound, loadErr.Code)
		})
	}
}

func TestLoadNetwork_ParseError(t *testing.T) {
	_, err := LoadNetwork("testdata/broken.txt")
	require.Error(t, err)

	var parseErr *network.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, err.Error(), "testdata/broken.txt")
}
