package turnlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "turns.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	rows := []Row{
		{TurnID: "t1", Attempt: 1, CleanLen: 52, Emotion: 2, Flow: 1, Clarity: 2, Dialogue: 2, Variety: 1,
			Aggregate: 1.6, Label: "poor", Action: "retry", Reason: "aggregate 1.6 below threshold"},
		{TurnID: "t1", Attempt: 2, CleanLen: 44, Emotion: 4, Flow: 5, Clarity: 4, Dialogue: 4, Variety: 5,
			Aggregate: 4.4, Label: "excellent", Action: "accept", Reason: "quality excellent"},
	}
	for _, r := range rows {
		require.NoError(t, store.Record(r))
	}

	got, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	assert.Equal(t, 2, got[0].Attempt)
	assert.Equal(t, "accept", got[0].Action)
	assert.Equal(t, "excellent", got[0].Label)
	assert.InDelta(t, 4.4, got[0].Aggregate, 0.001)
	assert.False(t, got[0].Forced)
	assert.False(t, got[0].CreatedAt.IsZero())

	assert.Equal(t, "retry", got[1].Action)
	assert.Equal(t, "aggregate 1.6 below threshold", got[1].Reason)
}

func TestRecent_Limit(t *testing.T) {
	store := openTestStore(t)
	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Record(Row{
			TurnID: "t1", Attempt: i, Label: "good", Action: "accept", Aggregate: 3.2,
		}))
	}

	got, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 5, got[0].Attempt)
	assert.Equal(t, 3, got[2].Attempt)
}

func TestRecord_ForcedRoundTrip(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Record(Row{
		TurnID: "t1", Attempt: 3, Label: "poor", Action: "accept_exhausted",
		Forced: true, Reason: "retry cap reached",
	}))

	got, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Forced)
	assert.Equal(t, "accept_exhausted", got[0].Action)
}

func TestMetrics_Upsert(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveMetrics(Metrics{TotalOutputs: 1, TotalRegens: 1}))
	require.NoError(t, store.SaveMetrics(Metrics{
		TotalOutputs: 4, TotalRegens: 2, FatigueDetections: 1, DriftDetections: 1, EmptyResults: 1,
	}))

	got, err := store.LoadMetrics()
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalOutputs)
	assert.Equal(t, 2, got.TotalRegens)
	assert.Equal(t, 1, got.FatigueDetections)
	assert.Equal(t, 1, got.DriftDetections)
	assert.Equal(t, 1, got.EmptyResults)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestLoadMetrics_Empty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.LoadMetrics()
	require.NoError(t, err)
	assert.Zero(t, got.TotalOutputs)
	assert.Zero(t, got.TotalRegens)
}
