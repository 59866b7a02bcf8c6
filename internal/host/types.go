// Package host defines the gate's view of its external collaborators: the
// upstream generator, the guidance-card store, and the turn history. The
// host owns all three; this package only speaks their interfaces.
package host

import (
	"context"
	"errors"
	"strings"
)

// #region errors

// ErrStoreUnavailable signals that the guidance-card store refused an
// operation (for example the host feature is disabled). Callers degrade to
// no-ops for the rest of the session rather than retrying per call.
var ErrStoreUnavailable = errors.New("guidance-card store unavailable")

// #endregion errors

// #region card

// Card is one guidance snippet in the host's keyed collection.
type Card struct {
	Key      string `json:"key"`
	Body     string `json:"body"`
	Category string `json:"category"`
	// Position is the priority slot; 0 is read first by the generator.
	Position int `json:"position"`
}

// #endregion card

// #region interfaces

// CardStore is the keyed guidance-card collection. Writers use
// delete-then-create, never update in place.
type CardStore interface {
	Create(ctx context.Context, card Card) error
	Find(ctx context.Context, match func(Card) bool) ([]Card, error)
	Delete(ctx context.Context, key string) error
}

// Generator is the upstream text generator. Any returned text is a
// candidate, including empty; there is no structured error channel beyond
// transport failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TurnRole tags one entry in the turn history.
type TurnRole string

const (
	RoleInput    TurnRole = "input"    // human input
	RoleOutput   TurnRole = "output"   // generated output
	RoleContinue TurnRole = "continue" // continuation request
)

// Turn is one entry in the host's append-only history.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

// History is the host's ordered turn log, read-only to the gate.
// Recent returns up to n most recent turns, newest last.
type History interface {
	Recent(ctx context.Context, n int) ([]Turn, error)
}

// #endregion interfaces

// #region history-helpers

// LastOutput returns the most recent generated-output entry, if any.
func LastOutput(turns []Turn) (string, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleOutput {
			return turns[i].Text, true
		}
	}
	return "", false
}

// RecentOutputs concatenates the last n generated-output entries in order,
// separated by blank lines. Used for context classification.
func RecentOutputs(turns []Turn, n int) string {
	var outputs []string
	for i := len(turns) - 1; i >= 0 && len(outputs) < n; i-- {
		if turns[i].Role == RoleOutput {
			outputs = append(outputs, turns[i].Text)
		}
	}
	// reverse back to chronological order
	for i, j := 0, len(outputs)-1; i < j; i, j = i+1, j-1 {
		outputs[i], outputs[j] = outputs[j], outputs[i]
	}
	return strings.Join(outputs, "\n\n")
}

// #endregion history-helpers
