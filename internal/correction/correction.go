// Package correction translates an analysis record into named guidance
// cards that steer the next generation attempt away from detected defects.
// One card per issue category, superseded every cycle; guidance never
// accumulates.
package correction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdunmore/driftgate/internal/analysis"
	"github.com/pdunmore/driftgate/internal/host"
	"github.com/pdunmore/driftgate/internal/session"
)

// #region keys

// KeyPrefix namespaces every card this manager owns.
const KeyPrefix = "driftgate/"

const (
	KeyVariety   = KeyPrefix + "correction-variety"
	KeyGrounding = KeyPrefix + "correction-grounding"
	KeyCoherence = KeyPrefix + "correction-coherence"
)

const cardCategory = "correction"

// correction cards sit just below the sampling directive.
const cardPosition = 1

// #endregion keys

// #region manager

// Manager issues create/delete commands against the external card store,
// tracking issued keys in session state so cleanup is exact.
type Manager struct {
	store host.CardStore
}

// NewManager creates a Manager against the given store.
func NewManager(store host.CardStore) *Manager {
	return &Manager{store: store}
}

// Apply replaces the previous cycle's correction cards with cards for the
// issues present in rec. Cleanup of tracked keys is unconditional, so a
// category's guidance disappears the first cycle it is no longer detected.
func (m *Manager) Apply(ctx context.Context, rec analysis.Record, sess *session.State) error {
	if sess.CardsDisabled {
		return nil
	}

	// 1-2. delete previous cycle's cards, clear the tracked set
	for key := range sess.ActiveCardKeys {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("correction cleanup %s: %w", key, err)
		}
	}
	sess.ActiveCardKeys = make(map[string]struct{})

	// 3-4. one card per detected category
	for _, card := range cardsFor(rec) {
		if err := m.store.Create(ctx, card); err != nil {
			return fmt.Errorf("correction create %s: %w", card.Key, err)
		}
		sess.ActiveCardKeys[card.Key] = struct{}{}
	}
	return nil
}

// #endregion manager

// #region card-text

func cardsFor(rec analysis.Record) []host.Card {
	var cards []host.Card
	if rec.HasFatigue() {
		cards = append(cards, host.Card{
			Key:      KeyVariety,
			Category: cardCategory,
			Position: cardPosition,
			Body: "The recent passage leaned too hard on these words: " +
				strings.Join(topWords(rec.Fatigue, 5), ", ") +
				". Vary word choice and sentence rhythm in the next passage.",
		})
	}
	if rec.HasDrift() {
		cards = append(cards, host.Card{
			Key:      KeyGrounding,
			Category: cardCategory,
			Position: cardPosition,
			Body: "The recent passage drifted into abstract, system-like language. " +
				"Keep the next passage grounded in concrete physical action, " +
				"objects, and sensory detail.",
		})
	}
	if rec.HasContradiction() {
		cards = append(cards, host.Card{
			Key:      KeyCoherence,
			Category: cardCategory,
			Position: cardPosition,
			Body: "The recent passage contradicted its own timeline. Keep the " +
				"next passage consistent with what has already happened; do not " +
				"undo or repeat established events.",
		})
	}
	return cards
}

// topWords returns up to n fatigued words, highest count first, ties
// broken alphabetically.
func topWords(fatigue map[string]int, n int) []string {
	words := make([]string, 0, len(fatigue))
	for w := range fatigue {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if fatigue[words[i]] != fatigue[words[j]] {
			return fatigue[words[i]] > fatigue[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// #endregion card-text
