package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_ListRuns(t *testing.T) {
	dbPath := pressWithLog(t, "testdata/example_one.txt", 2, false, "listed")

	out, err := executeCommand(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "listed  presses=2 low=16 high=8 product=128\n", out)
}

func TestTrace_SinglePress(t *testing.T) {
	dbPath := pressWithLog(t, "testdata/example_one.txt", 2, true, "traced")

	out, err := executeCommand(t, "trace", "--db", dbPath, "--run", "traced", "--press", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Run traced\n")
	assert.Contains(t, out, "press 2\n")
	assert.NotContains(t, out, "press 1\n")
	assert.Contains(t, out, "  [13] button -low-> broadcaster\n")
	assert.Contains(t, out, "  [24] inv -high-> a\n")
}

func TestTrace_JSON(t *testing.T) {
	dbPath := pressWithLog(t, "testdata/example_one.txt", 1, true, "j")

	out, err := executeCommand(t, "--format", "json", "trace", "--db", dbPath, "--run", "j")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "j", resp.Data.Run.ID)
	assert.Len(t, resp.Data.Pulses, 12)
}

func TestTrace_UnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := executeCommand(t, "trace", "--db", dbPath, "--run", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E031]")
}

func TestTrace_RequiresDB(t *testing.T) {
	_, err := executeCommand(t, "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
