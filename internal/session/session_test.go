package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdunmore/driftgate/internal/analysis"
)

func TestNew(t *testing.T) {
	s := New()
	assert.True(t, s.Initialized)
	assert.NotNil(t, s.ActiveCardKeys)
	assert.Equal(t, 0, s.HistoryLen())
	assert.Equal(t, 0, s.RegenCount)
	assert.False(t, s.CardsDisabled)
}

func TestHistoryRing_Bounded(t *testing.T) {
	s := New()
	for i := 0; i < 25; i++ {
		s.PushRecord(analysis.Record{Fragment: fmt.Sprintf("record %d", i)})
	}

	require.Equal(t, 20, s.HistoryLen(), "ring must cap at 20")

	recent := s.RecentRecords(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "record 24", recent[0].Fragment)
	assert.Equal(t, "record 23", recent[1].Fragment)
	assert.Equal(t, "record 22", recent[2].Fragment)

	// oldest retained record is the 6th pushed; 0..4 were evicted
	all := s.RecentRecords(50)
	require.Len(t, all, 20)
	assert.Equal(t, "record 5", all[len(all)-1].Fragment)
}

func TestHistoryRing_Underfilled(t *testing.T) {
	s := New()
	s.PushRecord(analysis.Record{Fragment: "only"})

	recent := s.RecentRecords(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "only", recent[0].Fragment)

	assert.Nil(t, s.RecentRecords(0))
}

func TestSummary_Rates(t *testing.T) {
	s := New()
	s.Counters = Counters{
		TotalOutputs:      10,
		TotalRegens:       3,
		FatigueDetections: 2,
		DriftDetections:   1,
	}

	sum := s.Summary()
	assert.Equal(t, 10, sum.TotalOutputs)
	assert.Equal(t, 3, sum.TotalRegens)
	assert.InDelta(t, 30.0, sum.RegenRate, 0.001)
	assert.InDelta(t, 20.0, sum.FatigueRate, 0.001)
	assert.InDelta(t, 10.0, sum.DriftRate, 0.001)
}

func TestSummary_NoOutputs(t *testing.T) {
	sum := New().Summary()
	assert.Zero(t, sum.RegenRate)
	assert.Zero(t, sum.FatigueRate)
	assert.Zero(t, sum.DriftRate)
}
