package host

import (
	"context"
	"testing"
)

func TestLastOutput(t *testing.T) {
	turns := []Turn{
		{Role: RoleInput, Text: "look around"},
		{Role: RoleOutput, Text: "The room was dark."},
		{Role: RoleInput, Text: "light a candle"},
		{Role: RoleOutput, Text: "A small flame caught."},
		{Role: RoleContinue, Text: ""},
	}

	got, ok := LastOutput(turns)
	if !ok || got != "A small flame caught." {
		t.Errorf("got %q (ok=%v)", got, ok)
	}

	if _, ok := LastOutput([]Turn{{Role: RoleInput, Text: "hello"}}); ok {
		t.Error("history without outputs should report none")
	}
}

func TestRecentOutputs(t *testing.T) {
	turns := []Turn{
		{Role: RoleOutput, Text: "first"},
		{Role: RoleInput, Text: "go on"},
		{Role: RoleOutput, Text: "second"},
		{Role: RoleOutput, Text: "third"},
	}

	if got := RecentOutputs(turns, 2); got != "second\n\nthird" {
		t.Errorf("got %q, want chronological join of last two outputs", got)
	}
	if got := RecentOutputs(turns, 10); got != "first\n\nsecond\n\nthird" {
		t.Errorf("got %q, want all outputs", got)
	}
	if got := RecentOutputs(nil, 3); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestMemoryStore_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	card := Card{Key: "driftgate/test", Body: "body"}
	if err := store.Create(ctx, card); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, card); err == nil {
		t.Error("duplicate key accepted")
	}
}

func TestMemoryStore_FindSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cards := []Card{
		{Key: "b", Position: 1},
		{Key: "a", Position: 1},
		{Key: "c", Position: 0},
	}
	for _, c := range cards {
		if err := store.Create(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.Key, err)
		}
	}

	got, err := store.Find(ctx, func(Card) bool { return true })
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("position %d: got %q, want %q", i, got[i].Key, key)
		}
	}
}

func TestMemoryHistory_Recent(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(
		Turn{Role: RoleInput, Text: "one"},
		Turn{Role: RoleOutput, Text: "two"},
		Turn{Role: RoleInput, Text: "three"},
	)

	got, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Text != "two" || got[1].Text != "three" {
		t.Errorf("got %v, want last two turns in order", got)
	}

	all, _ := h.Recent(ctx, 10)
	if len(all) != 3 {
		t.Errorf("got %d turns, want 3", len(all))
	}
}

func TestScriptedGenerator(t *testing.T) {
	ctx := context.Background()
	gen := &ScriptedGenerator{Responses: []string{"first", "second"}}

	for i, want := range []string{"first", "second", "second"} {
		got, err := gen.Generate(ctx, "prompt")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: got %q, want %q", i, got, want)
		}
	}
	if gen.Calls != 3 {
		t.Errorf("calls = %d, want 3", gen.Calls)
	}
}
