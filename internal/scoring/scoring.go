// Package scoring maps an analysis record to per-dimension quality scores
// and an aggregate label. Every dimension is deliberately bimodal: each rule
// yields one of exactly two values, so no dimension ever scores 3.
package scoring

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdunmore/driftgate/internal/analysis"
)

// #region dimensions

// Dimension names one scored quality axis.
type Dimension string

const (
	DimEmotionalStrength Dimension = "emotional_strength"
	DimStoryFlow         Dimension = "story_flow"
	DimCharacterClarity  Dimension = "character_clarity"
	DimDialogueWeight    Dimension = "dialogue_weight"
	DimWordVariety       Dimension = "word_variety"
)

// AllDimensions lists every dimension in reporting order.
var AllDimensions = []Dimension{
	DimEmotionalStrength,
	DimStoryFlow,
	DimCharacterClarity,
	DimDialogueWeight,
	DimWordVariety,
}

// #endregion dimensions

// #region vocab

// emotionTerms are matched as lowercase substrings so inflections count
// ("trembling", "aching").
var emotionTerms = []string{
	"fear", "anger", "fury", "joy", "grief", "longing", "dread",
	"relief", "shame", "sorrow", "despair", "hope", "tears",
	"trembl", "ache", "aching", "laugh", "warmth", "cold sweat",
}

// characterPronouns anchor the passage to a named or pronominal actor.
var characterPronouns = []string{
	"he", "she", "they", "him", "her", "them",
	"his", "hers", "their", "theirs",
}

// #endregion vocab

// #region score-set

// ScoreSet holds one turn's scores. Discarded after the accept decision
// unless retained via the session history.
type ScoreSet struct {
	Dimensions map[Dimension]int
	Aggregate  float64
	Label      string
}

// #endregion score-set

// #region score

// Score computes all five dimensions from the record.
func Score(rec analysis.Record) ScoreSet {
	lower := strings.ToLower(rec.Fragment)

	dims := map[Dimension]int{
		DimEmotionalStrength: pick(containsAny(lower, emotionTerms), 4, 2),
		DimStoryFlow:         pick(!rec.HasContradiction() && !rec.HasDrift(), 5, 1),
		DimCharacterClarity:  pick(containsPronoun(lower), 4, 2),
		DimDialogueWeight:    pick(analysis.ContainsQuote(rec.Fragment) || analysis.ContainsSpeechVerb(rec.Fragment), 4, 2),
		DimWordVariety:       pick(!rec.HasFatigue(), 5, 1),
	}

	var sum int
	for _, v := range dims {
		sum += v
	}
	agg := float64(sum) / float64(len(dims))

	return ScoreSet{
		Dimensions: dims,
		Aggregate:  agg,
		Label:      Label(agg),
	}
}

// Label maps an aggregate to its quality band.
func Label(aggregate float64) string {
	switch {
	case aggregate >= 4:
		return "excellent"
	case aggregate >= 3:
		return "good"
	case aggregate >= 2:
		return "fair"
	default:
		return "poor"
	}
}

// #endregion score

// #region issues

// LeadingIssues summarizes the worst findings for a retry diagnostic,
// capped at max entries.
func LeadingIssues(rec analysis.Record, max int) []string {
	var issues []string
	if rec.HasFatigue() {
		words := topFatigueWords(rec.Fatigue, 3)
		issues = append(issues, "word fatigue: "+strings.Join(words, ", "))
	}
	if rec.HasDrift() {
		issues = append(issues, "ungrounded drift: "+truncate(rec.Drift[0], 60))
	}
	if rec.HasContradiction() {
		issues = append(issues, "temporal contradiction: "+truncate(rec.Contradictions[0], 60))
	}
	if rec.Meta == analysis.MetaActive {
		issues = append(issues, "meta-awareness active")
	}
	if len(issues) > max {
		issues = issues[:max]
	}
	return issues
}

// topFatigueWords returns up to n overused words, highest count first,
// ties broken alphabetically.
func topFatigueWords(fatigue map[string]int, n int) []string {
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

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// #endregion issues

// #region helpers

func pick(cond bool, hi, lo int) int {
	if cond {
		return hi
	}
	return lo
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func containsPronoun(lower string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.Trim(w, "'")] = true
	}
	for _, p := range characterPronouns {
		if set[p] {
			return true
		}
	}
	return false
}

// #endregion helpers
