// Package session holds the gate's process-wide state for one session. The
// gate is the only writer; the pipeline is single-threaded so no locking is
// needed.
package session

import (
	"github.com/pdunmore/driftgate/internal/analysis"
	"github.com/pdunmore/driftgate/internal/directive"
)

// #region counters

// Counters accumulate across the whole session.
type Counters struct {
	TotalOutputs      int
	TotalRegens       int
	FatigueDetections int
	DriftDetections   int
	EmptyResults      int
}

// #endregion counters

// #region state

// historyCapacity bounds the retained analysis records; oldest evicted first.
const historyCapacity = 20

// State is the session-scoped store passed into the gate's entry points.
type State struct {
	Initialized bool

	// history is a fixed-capacity ring of past analysis records.
	history recordRing

	// ActiveCardKeys tracks correction cards currently installed in the
	// guidance-card store, so each cycle's cleanup is exact.
	ActiveCardKeys map[string]struct{}

	Counters Counters

	// RegenCount is the per-turn regeneration counter, reset on acceptance.
	RegenCount int

	// Adapted holds this turn's sampling parameters in adaptive mode.
	// Nil outside adaptive mode; valid for the current turn only.
	Adapted *directive.SamplingParams

	// CardsDisabled is set after the first guidance-card store failure;
	// card writers no-op for the remainder of the session.
	CardsDisabled bool
}

// New returns an initialized session state.
func New() *State {
	return &State{
		Initialized:    true,
		history:        newRecordRing(historyCapacity),
		ActiveCardKeys: make(map[string]struct{}),
	}
}

// PushRecord appends an analysis record to the bounded history.
func (s *State) PushRecord(rec analysis.Record) {
	s.history.push(rec)
}

// RecentRecords returns up to n retained records, newest first.
func (s *State) RecentRecords(n int) []analysis.Record {
	return s.history.recent(n)
}

// HistoryLen returns the number of retained records.
func (s *State) HistoryLen() int {
	return s.history.count
}

// #endregion state

// #region summary

// Summary is the metrics view exposed to the diagnostics sink.
type Summary struct {
	TotalOutputs int
	TotalRegens  int
	// Rates are percentages over total outputs.
	RegenRate   float64
	FatigueRate float64
	DriftRate   float64
}

// Summary derives percentage rates from the session counters.
func (s *State) Summary() Summary {
	sum := Summary{
		TotalOutputs: s.Counters.TotalOutputs,
		TotalRegens:  s.Counters.TotalRegens,
	}
	if s.Counters.TotalOutputs > 0 {
		n := float64(s.Counters.TotalOutputs)
		sum.RegenRate = 100 * float64(s.Counters.TotalRegens) / n
		sum.FatigueRate = 100 * float64(s.Counters.FatigueDetections) / n
		sum.DriftRate = 100 * float64(s.Counters.DriftDetections) / n
	}
	return sum
}

// #endregion summary

// #region ring

// recordRing is a fixed-capacity circular buffer; oldest records are
// evicted when capacity is reached.
type recordRing struct {
	items    []analysis.Record
	capacity int
	head     int // next write position
	count    int
}

func newRecordRing(capacity int) recordRing {
	return recordRing{
		items:    make([]analysis.Record, capacity),
		capacity: capacity,
	}
}

func (r *recordRing) push(rec analysis.Record) {
	r.items[r.head] = rec
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// recent returns up to n records, newest first.
func (r *recordRing) recent(n int) []analysis.Record {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]analysis.Record, n)
	for i := 0; i < n; i++ {
		idx := (r.head - 1 - i + r.capacity) % r.capacity
		out[i] = r.items[idx]
	}
	return out
}

// #endregion ring
