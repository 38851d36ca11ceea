package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
)

// createTestStore opens a fresh run log in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string) ir.RunRecord {
	return ir.RunRecord{
		ID:        id,
		GraphHash: "graph-" + id,
		Network:   "broadcaster -> a\n%a -> \n",
		Presses:   2,
		Low:       4,
		High:      2,
		StateHash: "state-" + id,
	}
}
