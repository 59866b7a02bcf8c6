// Package gate is the closed-loop controller between the upstream generator
// and the reader. It synthesizes the sampling directive, sanitizes and
// scores each attempt, and decides accept versus regenerate under a strict
// per-turn retry cap. Regeneration is signalled back to the caller; the
// caller owns the generate call.
package gate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdunmore/driftgate/internal/analysis"
	"github.com/pdunmore/driftgate/internal/config"
	"github.com/pdunmore/driftgate/internal/correction"
	"github.com/pdunmore/driftgate/internal/directive"
	"github.com/pdunmore/driftgate/internal/host"
	"github.com/pdunmore/driftgate/internal/logging"
	"github.com/pdunmore/driftgate/internal/sanitize"
	"github.com/pdunmore/driftgate/internal/scoring"
	"github.com/pdunmore/driftgate/internal/session"
	"github.com/pdunmore/driftgate/internal/turnlog"
)

// #region gate

// Gate owns one session's pipeline state. It is the sole writer of the
// session state it is given.
type Gate struct {
	cfg         config.Config
	sess        *session.State
	history     host.History
	publisher   *directive.Publisher
	corrections *correction.Manager
	log         *logging.Logger
	turns       *turnlog.Store // nil disables the turn log

	phase   Phase
	turnID  string
	attempt int
}

// New wires a Gate. turns may be nil when no turn log is wanted.
func New(cfg config.Config, sess *session.State, cards host.CardStore, history host.History, log *logging.Logger, turns *turnlog.Store) *Gate {
	return &Gate{
		cfg:         cfg,
		sess:        sess,
		history:     history,
		publisher:   directive.NewPublisher(cards),
		corrections: correction.NewManager(cards),
		log:         log,
		turns:       turns,
		phase:       PhaseIdle,
	}
}

// Phase exposes the state machine position, for diagnostics only.
func (g *Gate) Phase() Phase { return g.phase }

// #endregion gate

// #region begin-turn

// BeginTurn synthesizes this attempt's directive and publishes it to the
// guidance-card store. Never fails: store trouble degrades card writing for
// the rest of the session and history trouble falls back to base sampling
// parameters.
func (g *Gate) BeginTurn(ctx context.Context) string {
	if g.phase == PhaseRegenerating {
		g.attempt++
	} else {
		g.turnID = uuid.New().String()
		g.attempt = 1
		g.sess.Adapted = nil
	}
	g.phase = PhaseIdle

	params := directive.SamplingParams{K: g.cfg.CandidateCount, Tau: g.cfg.Tau}
	if g.cfg.AdaptiveMode {
		params = g.adaptParams(ctx, params)
		g.sess.Adapted = &params
	}

	text := directive.Synthesize(params)
	if !g.sess.CardsDisabled {
		if err := g.publisher.Publish(ctx, text); err != nil {
			g.degradeCards(err)
		}
	}
	return text
}

// adaptParams classifies the last three generated outputs and widens or
// narrows {k, tau} per the fixed table.
func (g *Gate) adaptParams(ctx context.Context, base directive.SamplingParams) directive.SamplingParams {
	turns, err := g.history.Recent(ctx, 12)
	if err != nil {
		g.log.Warnf("history unavailable, keeping base sampling params: %v", err)
		return base
	}
	kind := directive.ClassifyContext(host.RecentOutputs(turns, 3))
	adapted := directive.Adapt(base, kind)
	g.log.Infof("turn %s attempt %d: context=%s k=%d tau=%.2f",
		g.turnID, g.attempt, kind, adapted.K, adapted.Tau)
	return adapted
}

// #endregion begin-turn

// #region evaluate

// EvaluateGeneration runs sanitize → analyze → score on raw generated text
// and decides the turn. Always returns a definite outcome; nothing
// propagates past this entry point.
func (g *Gate) EvaluateGeneration(ctx context.Context, raw string) Outcome {
	prior := g.priorTurnText(ctx)
	clean, emptied := sanitize.Sanitize(raw, prior)

	rec := analysis.Analyze(clean, g.cfg.FatigueThreshold)
	scores := scoring.Score(rec)
	g.phase = PhaseScored

	out := Outcome{
		Record:      rec,
		Scores:      scores,
		EmptyResult: emptied,
		TurnID:      g.turnID,
		Attempt:     g.attempt,
	}

	// Once the per-turn counter reaches the cap the turn is accepted
	// regardless of score; Forced marks acceptance that quality alone
	// would not have granted.
	exhausted := g.sess.RegenCount >= g.cfg.MaxRegenAttempts
	belowThreshold := scores.Aggregate < g.cfg.QualityThreshold
	if belowThreshold && !exhausted {
		return g.retry(out)
	}
	return g.accept(ctx, out, clean, belowThreshold && exhausted)
}

// #endregion evaluate

// #region retry

func (g *Gate) retry(out Outcome) Outcome {
	g.sess.RegenCount++
	g.sess.Counters.TotalRegens++
	g.phase = PhaseRegenerating

	out.Action = ActionRetry
	out.Diagnostics = scoring.LeadingIssues(out.Record, 3)
	g.log.Warnf("turn %s attempt %d: regenerating (aggregate %.1f < %.1f): %v",
		g.turnID, g.attempt, out.Scores.Aggregate, g.cfg.QualityThreshold, out.Diagnostics)

	g.record(out, "retry", fmt.Sprintf("aggregate %.1f below threshold", out.Scores.Aggregate))
	return out
}

// #endregion retry

// #region accept

func (g *Gate) accept(ctx context.Context, out Outcome, clean string, forced bool) Outcome {
	out.Action = ActionAccept
	out.Text = clean
	out.Forced = forced

	g.sess.Counters.TotalOutputs++
	if out.Record.HasFatigue() {
		g.sess.Counters.FatigueDetections++
	}
	if out.Record.HasDrift() {
		g.sess.Counters.DriftDetections++
	}
	if out.EmptyResult {
		g.sess.Counters.EmptyResults++
		g.log.Warnf("turn %s: sanitization emptied the text, placeholder accepted", g.turnID)
	}

	g.sess.PushRecord(out.Record)
	g.sess.RegenCount = 0
	g.phase = PhaseAccepted

	if g.cfg.DynamicCorrections && !g.sess.CardsDisabled {
		if err := g.corrections.Apply(ctx, out.Record, g.sess); err != nil {
			g.degradeCards(err)
		}
	}

	action, reason := "accept", fmt.Sprintf("quality %s", out.Scores.Label)
	if forced {
		action, reason = "accept_exhausted", "retry cap reached"
		g.log.Warnf("turn %s attempt %d: accepted by exhaustion (aggregate %.1f)",
			g.turnID, g.attempt, out.Scores.Aggregate)
	} else {
		g.log.Successf("turn %s attempt %d: accepted (%s, aggregate %.1f)",
			g.turnID, g.attempt, out.Scores.Label, out.Scores.Aggregate)
	}
	g.record(out, action, reason)
	g.saveMetrics()
	return out
}

// #endregion accept

// #region side-channels

// degradeCards disables card writing for the rest of the session, logging
// once. Per-call retries against a refusing store are never attempted.
func (g *Gate) degradeCards(err error) {
	if g.sess.CardsDisabled {
		return
	}
	g.sess.CardsDisabled = true
	g.log.Warnf("guidance-card store unavailable, card writers disabled for this session: %v", err)
}

// priorTurnText reads the most recent generated output, or "" when there is
// none or the history is unreadable.
func (g *Gate) priorTurnText(ctx context.Context) string {
	turns, err := g.history.Recent(ctx, 12)
	if err != nil {
		g.log.Warnf("history unavailable, skipping duplicate suppression: %v", err)
		return ""
	}
	prior, _ := host.LastOutput(turns)
	return prior
}

func (g *Gate) record(out Outcome, action, reason string) {
	if g.turns == nil {
		return
	}
	row := turnlog.Row{
		TurnID:    out.TurnID,
		Attempt:   out.Attempt,
		CleanLen:  len(out.Text),
		Emotion:   out.Scores.Dimensions[scoring.DimEmotionalStrength],
		Flow:      out.Scores.Dimensions[scoring.DimStoryFlow],
		Clarity:   out.Scores.Dimensions[scoring.DimCharacterClarity],
		Dialogue:  out.Scores.Dimensions[scoring.DimDialogueWeight],
		Variety:   out.Scores.Dimensions[scoring.DimWordVariety],
		Aggregate: out.Scores.Aggregate,
		Label:     out.Scores.Label,
		Action:    action,
		Forced:    out.Forced,
		Reason:    reason,
	}
	if err := g.turns.Record(row); err != nil {
		g.log.Errorf("turn log write failed: %v", err)
	}
}

func (g *Gate) saveMetrics() {
	if g.turns == nil {
		return
	}
	c := g.sess.Counters
	err := g.turns.SaveMetrics(turnlog.Metrics{
		TotalOutputs:      c.TotalOutputs,
		TotalRegens:       c.TotalRegens,
		FatigueDetections: c.FatigueDetections,
		DriftDetections:   c.DriftDetections,
		EmptyResults:      c.EmptyResults,
	})
	if err != nil {
		g.log.Errorf("metrics save failed: %v", err)
	}
}

// #endregion side-channels
