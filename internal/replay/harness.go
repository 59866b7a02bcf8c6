package replay

import (
	"context"

	"github.com/pdunmore/driftgate/internal/config"
	"github.com/pdunmore/driftgate/internal/gate"
	"github.com/pdunmore/driftgate/internal/host"
	"github.com/pdunmore/driftgate/internal/logging"
	"github.com/pdunmore/driftgate/internal/session"
)

// #region types

// Result captures the outcome of replaying one turn.
type Result struct {
	TurnID string
	// Attempts is how many recorded attempts were consumed.
	Attempts int
	// Action is "accept", "accept_exhausted", or "retry" when the fixture
	// ran out of attempts while the gate still wanted another generation.
	Action    string
	Label     string
	Aggregate float64
	Forced    bool
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns    int
	Accepts       int
	ForcedAccepts int
	Starved       int
	TotalAttempts int
}

// #endregion types

// #region replay

// Replay runs every fixture turn through a fresh gate with in-memory
// collaborators. Deterministic for a fixed fixture and config.
func Replay(cfg config.Config, turns []FixtureTurn) ([]Result, Summary) {
	ctx := context.Background()
	sess := session.New()
	cards := host.NewMemoryStore()
	history := host.NewMemoryHistory()
	g := gate.New(cfg, sess, cards, history, logging.NewNop(), nil)

	results := make([]Result, 0, len(turns))
	var sum Summary

	for _, turn := range turns {
		history.Append(host.Turn{Role: host.RoleInput, Text: turn.Input})

		res := Result{TurnID: turn.TurnID, Action: "retry"}
		for _, raw := range turn.Attempts {
			g.BeginTurn(ctx)
			out := g.EvaluateGeneration(ctx, raw)
			res.Attempts++
			sum.TotalAttempts++

			if out.Accepted() {
				res.Label = out.Scores.Label
				res.Aggregate = out.Scores.Aggregate
				res.Forced = out.Forced
				if out.Forced {
					res.Action = "accept_exhausted"
					sum.ForcedAccepts++
				} else {
					res.Action = "accept"
					sum.Accepts++
				}
				history.Append(host.Turn{Role: host.RoleOutput, Text: out.Text})
				break
			}
			res.Label = out.Scores.Label
			res.Aggregate = out.Scores.Aggregate
		}
		if res.Action == "retry" {
			sum.Starved++
		}
		sum.TotalTurns++
		results = append(results, res)
	}
	return results, sum
}

// #endregion replay
