package gate

import (
	"github.com/pdunmore/driftgate/internal/analysis"
	"github.com/pdunmore/driftgate/internal/scoring"
)

// #region action

// Action is the gate's verdict for one generation attempt.
type Action string

const (
	// ActionAccept finalizes the turn; Outcome.Text is the reader-visible text.
	ActionAccept Action = "accept"
	// ActionRetry asks the caller to request a fresh generation. The
	// evaluated text is discarded entirely.
	ActionRetry Action = "retry"
)

// #endregion action

// #region phase

// Phase tracks the per-turn state machine.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseScored       Phase = "scored"
	PhaseAccepted     Phase = "accepted"
	PhaseRegenerating Phase = "regenerating"
)

// #endregion phase

// #region outcome

// Outcome is the tagged result of evaluating one generation attempt.
type Outcome struct {
	Action Action

	// Text is the sanitized final text; set only on accept.
	Text string

	Record analysis.Record
	Scores scoring.ScoreSet

	// Forced marks acceptance by retry exhaustion rather than quality.
	Forced bool

	// EmptyResult marks the single-space placeholder turn.
	EmptyResult bool

	// Diagnostics lists up to three leading issues when retrying.
	Diagnostics []string

	TurnID  string
	Attempt int
}

// Accepted reports whether the turn ended with this attempt.
func (o Outcome) Accepted() bool { return o.Action == ActionAccept }

// #endregion outcome
