package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestListRuns_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// IDs deliberately out of lexical order.
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.WriteRun(ctx, testRun(id)))
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "zeta", runs[0].ID)
	assert.Equal(t, "alpha", runs[1].ID)
	assert.Equal(t, "mid", runs[2].ID)
}

func TestListRuns_SkipsUnfinished(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("done")))
	w, err := s.BeginRun(ctx, testRun("dropped"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "done", runs[0].ID)
}

func TestReadPulses_NoTrace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, testRun("plain")))

	pulses, err := s.ReadPulses(ctx, "plain", 0)
	require.NoError(t, err)
	assert.NotNil(t, pulses)
	assert.Empty(t, pulses)
}
