package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixtures

const goodText = `She said "I missed you" through her tears.`
const badText = "The wind was already not wind. Wind wind wind wind."

func defaultFixtureConfig() FixtureConfig {
	return FixtureConfig{
		CandidateCount:     5,
		Tau:                0.30,
		AdaptiveMode:       false,
		FatigueThreshold:   4,
		QualityThreshold:   3.0,
		MaxRegenAttempts:   2,
		DynamicCorrections: true,
	}
}

// #endregion fixtures

// #region harness-tests

func TestReplay_MixedTurns(t *testing.T) {
	cfg, err := defaultFixtureConfig().ToConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	turns := []FixtureTurn{
		{TurnID: "t1", Input: "continue", Attempts: []string{goodText}},
		{TurnID: "t2", Input: "continue", Attempts: []string{badText, badText, badText}},
		{TurnID: "t3", Input: "continue", Attempts: []string{badText, goodText}},
	}

	results, sum := Replay(cfg, turns)
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	if results[0].Action != "accept" || results[0].Attempts != 1 {
		t.Errorf("t1 = %+v, want first-attempt accept", results[0])
	}
	if results[1].Action != "accept_exhausted" || results[1].Attempts != 3 || !results[1].Forced {
		t.Errorf("t2 = %+v, want exhausted accept after 3 attempts", results[1])
	}
	if results[2].Action != "accept" || results[2].Attempts != 2 {
		t.Errorf("t3 = %+v, want accept on the second attempt", results[2])
	}

	if sum.TotalTurns != 3 || sum.Accepts != 2 || sum.ForcedAccepts != 1 || sum.Starved != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.TotalAttempts != 6 {
		t.Errorf("total attempts = %d, want 6", sum.TotalAttempts)
	}
}

func TestReplay_StarvedTurn(t *testing.T) {
	cfg, err := defaultFixtureConfig().ToConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	// the fixture recorded only one attempt but the gate wants another
	_, sum := Replay(cfg, []FixtureTurn{
		{TurnID: "t1", Input: "continue", Attempts: []string{badText}},
	})
	if sum.Starved != 1 {
		t.Errorf("starved = %d, want 1", sum.Starved)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	cfg, _ := defaultFixtureConfig().ToConfig()
	turns := []FixtureTurn{
		{TurnID: "t1", Input: "continue", Attempts: []string{badText, goodText}},
	}

	a, asum := Replay(cfg, turns)
	b, bsum := Replay(cfg, turns)
	if asum != bsum {
		t.Errorf("summaries differ: %+v vs %+v", asum, bsum)
	}
	if a[0].Action != b[0].Action || a[0].Aggregate != b[0].Aggregate {
		t.Errorf("results differ: %+v vs %+v", a[0], b[0])
	}
}

// #endregion harness-tests

// #region fixture-tests

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	data := `{
		"description": "smoke",
		"config": {
			"candidate_count": 5, "tau": 0.3, "fatigue_threshold": 4,
			"quality_threshold": 3.0, "max_regen_attempts": 2
		},
		"turns": [
			{"turn_id": "t1", "input": "continue", "attempts": ["some text"]}
		],
		"expected_results": [
			{"turn_id": "t1", "action": "accept"}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Description != "smoke" || len(f.Turns) != 1 || len(f.ExpectedResults) != 1 {
		t.Errorf("fixture = %+v", f)
	}

	cfg, err := f.Config.ToConfig()
	if err != nil {
		t.Fatalf("to config: %v", err)
	}
	if cfg.MaxRegenAttempts != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{"no-turns", `{"turns": []}`},
		{"turn-without-attempts", `{"turns": [{"turn_id": "t1", "attempts": []}]}`},
		{"bad-json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFixture(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFixtureConfig_Invalid(t *testing.T) {
	fc := defaultFixtureConfig()
	fc.Tau = 2.0
	if _, err := fc.ToConfig(); err == nil {
		t.Error("expected validation error")
	}
}

// #endregion fixture-tests
