// Package replay re-runs recorded generations through the full
// sanitize → analyze → score → decide pipeline, entirely in memory, for
// deterministic regression checks.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdunmore/driftgate/internal/config"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string           `json:"description"`
	Config          FixtureConfig    `json:"config"`
	Turns           []FixtureTurn    `json:"turns"`
	ExpectedResults []ExpectedResult `json:"expected_results"`
}

// FixtureConfig mirrors config.Config with JSON tags.
type FixtureConfig struct {
	CandidateCount     int     `json:"candidate_count"`
	Tau                float64 `json:"tau"`
	AdaptiveMode       bool    `json:"adaptive_mode"`
	FatigueThreshold   int     `json:"fatigue_threshold"`
	QualityThreshold   float64 `json:"quality_threshold"`
	MaxRegenAttempts   int     `json:"max_regen_attempts"`
	DynamicCorrections bool    `json:"dynamic_corrections"`
}

// ToConfig converts the fixture config into a validated gate config.
func (fc FixtureConfig) ToConfig() (config.Config, error) {
	cfg := config.Config{
		CandidateCount:     fc.CandidateCount,
		Tau:                fc.Tau,
		AdaptiveMode:       fc.AdaptiveMode,
		FatigueThreshold:   fc.FatigueThreshold,
		QualityThreshold:   fc.QualityThreshold,
		MaxRegenAttempts:   fc.MaxRegenAttempts,
		DynamicCorrections: fc.DynamicCorrections,
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// FixtureTurn is one logical turn: the player input and the raw generator
// output for each attempt, in order.
type FixtureTurn struct {
	TurnID   string   `json:"turn_id"`
	Input    string   `json:"input"`
	Attempts []string `json:"attempts"`
}

// ExpectedResult pins the expected action (and optionally label) per turn.
type ExpectedResult struct {
	TurnID string `json:"turn_id"`
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Turns) == 0 {
		return nil, fmt.Errorf("fixture %s: no turns", path)
	}
	for i, turn := range f.Turns {
		if len(turn.Attempts) == 0 {
			return nil, fmt.Errorf("fixture %s: turn %d has no attempts", path, i)
		}
	}
	return &f, nil
}

// #endregion fixture-loader
