package directive

import (
	"context"
	"testing"

	"github.com/pdunmore/driftgate/internal/host"
)

func TestPublisher_InstallsCard(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryStore()
	pub := NewPublisher(store)

	text := Synthesize(SamplingParams{K: 5, Tau: 0.30})
	if err := pub.Publish(ctx, text); err != nil {
		t.Fatalf("publish: %v", err)
	}

	card, ok := store.Get(CardKey)
	if !ok {
		t.Fatal("directive card not created")
	}
	if card.Body != text {
		t.Errorf("card body = %q, want directive text", card.Body)
	}
	if card.Position != 0 {
		t.Errorf("card position = %d, want 0", card.Position)
	}
}

func TestPublisher_UnchangedIsNoop(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryStore()
	pub := NewPublisher(store)

	text := Synthesize(SamplingParams{K: 5, Tau: 0.30})
	if err := pub.Publish(ctx, text); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	// the memory store rejects duplicate keys, so a second create would fail
	if err := pub.Publish(ctx, text); err != nil {
		t.Fatalf("republish of unchanged directive: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d cards, want 1", store.Len())
	}
}

func TestPublisher_ChangedReplaces(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryStore()
	pub := NewPublisher(store)

	first := Synthesize(SamplingParams{K: 5, Tau: 0.30})
	second := Synthesize(SamplingParams{K: 7, Tau: 0.25})

	if err := pub.Publish(ctx, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Publish(ctx, second); err != nil {
		t.Fatalf("publish changed directive: %v", err)
	}

	card, _ := store.Get(CardKey)
	if card.Body != second {
		t.Errorf("card body = %q, want updated directive", card.Body)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d cards, want 1", store.Len())
	}
}

func TestPublisher_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryStore()
	store.Fail = true
	pub := NewPublisher(store)

	if err := pub.Publish(ctx, "anything"); err == nil {
		t.Error("expected error from refusing store")
	}
}
