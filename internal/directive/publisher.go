package directive

import (
	"context"
	"fmt"

	"github.com/pdunmore/driftgate/internal/host"
)

// #region card-constants

// CardKey is the well-known guidance card holding the current directive.
const CardKey = "driftgate/sampling-directive"

// cardCategory tags the card so host-side tooling can group it.
const cardCategory = "sampling"

// #endregion card-constants

// #region publisher

// Publisher writes the synthesized directive into the guidance-card store
// at the highest priority slot. Replace-by-key: publishing an unchanged
// directive is a no-op, a changed one deletes then recreates the card.
type Publisher struct {
	store host.CardStore
}

// NewPublisher creates a Publisher against the given store.
func NewPublisher(store host.CardStore) *Publisher {
	return &Publisher{store: store}
}

// Publish installs text as the directive card. Idempotent.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	existing, err := p.store.Find(ctx, func(c host.Card) bool {
		return c.Key == CardKey
	})
	if err != nil {
		return fmt.Errorf("publish directive: %w", err)
	}
	if len(existing) > 0 && existing[0].Body == text {
		return nil
	}
	if len(existing) > 0 {
		if err := p.store.Delete(ctx, CardKey); err != nil {
			return fmt.Errorf("publish directive: %w", err)
		}
	}
	card := host.Card{
		Key:      CardKey,
		Body:     text,
		Category: cardCategory,
		Position: 0, // highest priority so the generator always reads it
	}
	if err := p.store.Create(ctx, card); err != nil {
		return fmt.Errorf("publish directive: %w", err)
	}
	return nil
}

// #endregion publisher
