package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/engine"
)

func TestCycles_Text(t *testing.T) {
	out, err := executeCommand(t, "cycles", "testdata/counters.txt")
	require.NoError(t, err)

	assert.Contains(t, out, "Target: rx (fed by &hub)")
	assert.Contains(t, out, "INPUT  FIRST HIGH\n")
	assert.Contains(t, out, "a      1\n")
	assert.Contains(t, out, "y      2\n")
	assert.Contains(t, out, "r      4\n")
	assert.Contains(t, out, "LCM: 4 (after 4 presses)")
}

func TestCycles_JSON(t *testing.T) {
	out, err := executeCommand(t, "--format", "json", "cycles", "testdata/counters.txt")
	require.NoError(t, err)

	var resp struct {
		Data engine.CycleReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, uint64(4), resp.Data.Answer)
	assert.Equal(t, []engine.InputPeriod{
		{Input: "a", Press: 1},
		{Input: "y", Press: 2},
		{Input: "r", Press: 4},
	}, resp.Data.Periods)
}

func TestCycles_HorizonExceeded(t *testing.T) {
	out, err := executeCommand(t, "cycles", "testdata/counters.txt", "--horizon", "3")
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "HORIZON_EXCEEDED")
}

func TestCycles_EmptyTarget(t *testing.T) {
	_, err := executeCommand(t, "cycles", "testdata/counters.txt", "--target", "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
