// Package config holds the flat configuration surface for the quality gate.
// Everything is loaded and validated once at startup; the gate never mutates
// configuration mid-session.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// #region config

// Config is the complete tuning surface for the gate.
type Config struct {
	// CandidateCount is k: how many internal candidates the directive asks
	// the generator to draft per reply. Must be >= 1.
	CandidateCount int `yaml:"candidate_count"`

	// Tau is the tail-probability threshold: candidates whose estimated
	// typicality is above tau are discarded. Must satisfy 0 < tau < 1.
	Tau float64 `yaml:"tau"`

	// AdaptiveMode widens or narrows {k, tau} per turn based on the recent
	// narrative context (dialogue, action, long description).
	AdaptiveMode bool `yaml:"adaptive_mode"`

	// FatigueThreshold is the minimum occurrence count for a content word to
	// be flagged as overused. Must be >= 1.
	FatigueThreshold int `yaml:"fatigue_threshold"`

	// QualityThreshold is the minimum aggregate score for acceptance.
	QualityThreshold float64 `yaml:"quality_threshold"`

	// MaxRegenAttempts caps regenerations per turn. 0 disables retries.
	MaxRegenAttempts int `yaml:"max_regen_attempts"`

	// DynamicCorrections enables the correction-card writer.
	DynamicCorrections bool `yaml:"dynamic_corrections"`

	// Debug enables the diagnostics sink. When false nothing is logged.
	Debug bool `yaml:"debug"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		CandidateCount:     5,
		Tau:                0.30,
		AdaptiveMode:       true,
		FatigueThreshold:   4,
		QualityThreshold:   3.0,
		MaxRegenAttempts:   2,
		DynamicCorrections: true,
		Debug:              false,
	}
}

// #endregion config

// #region config-error

// ConfigError reports a malformed option at load time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// #endregion config-error

// #region load

// Load reads a YAML config file, applies env overrides, and validates.
// A missing file is not an error; defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays DRIFTGATE_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DRIFTGATE_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CandidateCount = n
		}
	}
	if v := os.Getenv("DRIFTGATE_TAU"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tau = f
		}
	}
	if v := os.Getenv("DRIFTGATE_ADAPTIVE"); v != "" {
		cfg.AdaptiveMode = v == "true" || v == "1"
	}
	if v := os.Getenv("DRIFTGATE_FATIGUE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FatigueThreshold = n
		}
	}
	if v := os.Getenv("DRIFTGATE_QUALITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.QualityThreshold = f
		}
	}
	if v := os.Getenv("DRIFTGATE_MAX_REGEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRegenAttempts = n
		}
	}
	if v := os.Getenv("DRIFTGATE_CORRECTIONS"); v != "" {
		cfg.DynamicCorrections = v == "true" || v == "1"
	}
	if v := os.Getenv("DRIFTGATE_DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}
}

// #endregion load

// #region validate

// Validate checks bounds on every option. Called once at load; the gate
// assumes a valid config everywhere else.
func (c Config) Validate() error {
	if c.CandidateCount < 1 {
		return &ConfigError{Field: "candidate_count", Reason: "must be >= 1"}
	}
	if c.Tau <= 0 || c.Tau >= 1 {
		return &ConfigError{Field: "tau", Reason: "must be in (0, 1)"}
	}
	if c.FatigueThreshold < 1 {
		return &ConfigError{Field: "fatigue_threshold", Reason: "must be >= 1"}
	}
	if c.MaxRegenAttempts < 0 {
		return &ConfigError{Field: "max_regen_attempts", Reason: "must be >= 0"}
	}
	if c.QualityThreshold < 1 || c.QualityThreshold > 5 {
		return &ConfigError{Field: "quality_threshold", Reason: "must be in [1, 5]"}
	}
	return nil
}

// #endregion validate
