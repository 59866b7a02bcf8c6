// Package analysis scans a sanitized text body for contradiction markers,
// lexical fatigue, and ungrounded drift. Analyze is pure; the Record it
// returns is never mutated afterwards.
package analysis

import (
	"strings"
	"time"
	"unicode"
)

// #region meta-status

// MetaStatus is the coarse meta-awareness reading for one text body.
type MetaStatus string

const (
	MetaSuppressed MetaStatus = "suppressed"
	MetaFlicker    MetaStatus = "flicker"
	MetaActive     MetaStatus = "active"
)

// #endregion meta-status

// #region record

// Record is the immutable analysis of one sanitized text body.
type Record struct {
	// Fragment is the analyzed source text.
	Fragment string

	// Contradictions holds trimmed segments pairing a temporal marker with
	// a negation, in document order.
	Contradictions []string

	// Fatigue maps overused words to their occurrence count. Only words at
	// or above the configured threshold appear.
	Fatigue map[string]int

	// Drift holds trimmed segments flagged as ungrounded system-speak.
	Drift []string

	// Meta is the accumulated meta-awareness reading.
	Meta MetaStatus

	CreatedAt time.Time
}

// HasFatigue reports whether any word crossed the fatigue threshold.
func (r Record) HasFatigue() bool { return len(r.Fatigue) > 0 }

// HasDrift reports whether any drift segment was found.
func (r Record) HasDrift() bool { return len(r.Drift) > 0 }

// HasContradiction reports whether any contradiction segment was found.
func (r Record) HasContradiction() bool { return len(r.Contradictions) > 0 }

// #endregion record

// #region analyze

// Analyze scans text and returns its analysis record. Deterministic for
// identical input apart from the creation timestamp.
func Analyze(text string, fatigueThreshold int) Record {
	segments := splitSegments(text)

	rec := Record{
		Fragment:       text,
		Contradictions: detectContradictions(segments),
		Fatigue:        detectFatigue(text, fatigueThreshold),
		Drift:          detectDrift(segments),
		CreatedAt:      time.Now().UTC(),
	}
	rec.Meta = metaStatus(text, rec)
	return rec
}

// #endregion analyze

// #region segments

// splitSegments cuts text into sentence-like segments on terminal
// punctuation, keeping non-empty trimmed pieces in order.
func splitSegments(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	var segments []string
	for _, s := range raw {
		if t := strings.TrimSpace(s); t != "" {
			segments = append(segments, t)
		}
	}
	return segments
}

// #endregion segments

// #region contradictions

func detectContradictions(segments []string) []string {
	var found []string
	for _, seg := range segments {
		words := wordSet(seg)
		temporal := false
		for _, m := range temporalMarkers {
			if words[m] {
				temporal = true
				break
			}
		}
		if !temporal {
			continue
		}
		for _, n := range negationMarkers {
			if words[n] {
				found = append(found, seg)
				break
			}
		}
	}
	return found
}

// #endregion contradictions

// #region fatigue

func detectFatigue(text string, threshold int) map[string]int {
	counts := make(map[string]int)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		// tokens of length <= 3 are short function words, not fatigue
		if len(tok) <= 3 {
			continue
		}
		counts[tok]++
	}
	fatigued := make(map[string]int)
	for word, n := range counts {
		if n >= threshold {
			fatigued[word] = n
		}
	}
	return fatigued
}

// #endregion fatigue

// #region drift

func detectDrift(segments []string) []string {
	var found []string
	for _, seg := range segments {
		if isPureDialogue(seg) {
			continue
		}
		lower := strings.ToLower(seg)
		system := false
		for _, term := range systemSpeakTerms {
			if strings.Contains(lower, term) {
				system = true
				break
			}
		}
		if !system {
			continue
		}
		grounded := false
		for _, term := range groundedActionTerms {
			if strings.Contains(lower, term) {
				grounded = true
				break
			}
		}
		if !grounded {
			found = append(found, seg)
		}
	}
	return found
}

// isPureDialogue reports whether a trimmed segment is entirely one quoted
// utterance. Pure dialogue is exempt from drift scrutiny.
func isPureDialogue(seg string) bool {
	runes := []rune(seg)
	if len(runes) < 2 {
		return false
	}
	opened := runes[0] == '"' || runes[0] == '“'
	closed := runes[len(runes)-1] == '"' || runes[len(runes)-1] == '”'
	return opened && closed
}

// #endregion drift

// #region meta

// metaStatus accumulates a score: +1 for any meta-awareness term, up to +2
// for contradictions, +1 each for fatigue and drift.
func metaStatus(text string, rec Record) MetaStatus {
	score := 0
	lower := strings.ToLower(text)
	for _, term := range metaAwarenessTerms {
		if strings.Contains(lower, term) {
			score++
			break
		}
	}
	contradictions := len(rec.Contradictions)
	if contradictions > 2 {
		contradictions = 2
	}
	score += contradictions
	if rec.HasFatigue() {
		score++
	}
	if rec.HasDrift() {
		score++
	}

	switch {
	case score >= 3:
		return MetaActive
	case score == 2:
		return MetaFlicker
	default:
		return MetaSuppressed
	}
}

// #endregion meta

// #region word-set

// wordSet lowercases text and returns the set of its words, stripped of
// surrounding punctuation.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		set[strings.Trim(tok, "'")] = true
	}
	return set
}

// #endregion word-set
