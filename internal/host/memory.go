package host

import (
	"context"
	"fmt"
	"sort"
)

// #region memory-store

// MemoryStore is an in-process CardStore used by tests and the replay
// harness. It mimics the host contract, including duplicate-key rejection.
type MemoryStore struct {
	cards map[string]Card

	// Fail, when set, makes every operation return ErrStoreUnavailable.
	Fail bool
}

// NewMemoryStore returns an empty in-memory card store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cards: make(map[string]Card)}
}

// Create inserts a card, rejecting duplicate keys.
func (m *MemoryStore) Create(_ context.Context, card Card) error {
	if m.Fail {
		return ErrStoreUnavailable
	}
	if _, ok := m.cards[card.Key]; ok {
		return fmt.Errorf("create card %s: duplicate key", card.Key)
	}
	m.cards[card.Key] = card
	return nil
}

// Find returns matching cards sorted by position then key.
func (m *MemoryStore) Find(_ context.Context, match func(Card) bool) ([]Card, error) {
	if m.Fail {
		return nil, ErrStoreUnavailable
	}
	var out []Card
	for _, card := range m.cards {
		if match(card) {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Delete removes a card; deleting an absent key is a no-op.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.Fail {
		return ErrStoreUnavailable
	}
	delete(m.cards, key)
	return nil
}

// Len returns the number of stored cards.
func (m *MemoryStore) Len() int { return len(m.cards) }

// Get returns a card by key.
func (m *MemoryStore) Get(key string) (Card, bool) {
	c, ok := m.cards[key]
	return c, ok
}

// #endregion memory-store

// #region memory-history

// MemoryHistory is an in-process History for tests and replay.
type MemoryHistory struct {
	turns []Turn
}

// NewMemoryHistory seeds a history with the given turns, oldest first.
func NewMemoryHistory(turns ...Turn) *MemoryHistory {
	return &MemoryHistory{turns: turns}
}

// Append adds a turn to the end of the history.
func (h *MemoryHistory) Append(turn Turn) {
	h.turns = append(h.turns, turn)
}

// Recent returns up to n most recent turns, newest last.
func (h *MemoryHistory) Recent(_ context.Context, n int) ([]Turn, error) {
	if n >= len(h.turns) {
		out := make([]Turn, len(h.turns))
		copy(out, h.turns)
		return out, nil
	}
	out := make([]Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out, nil
}

// #endregion memory-history

// #region scripted-generator

// ScriptedGenerator replays a fixed sequence of responses. Once the script
// is exhausted it repeats the last entry.
type ScriptedGenerator struct {
	Responses []string
	Calls     int
}

// Generate returns the next scripted response.
func (g *ScriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	if len(g.Responses) == 0 {
		return "", nil
	}
	i := g.Calls
	if i >= len(g.Responses) {
		i = len(g.Responses) - 1
	}
	g.Calls++
	return g.Responses[i], nil
}

// #endregion scripted-generator
