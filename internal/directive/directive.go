// Package directive builds the sampling-bias instruction injected ahead of
// each generation, and classifies recent context to widen or narrow the
// sampling parameters in adaptive mode.
package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdunmore/driftgate/internal/analysis"
)

// #region params

// SamplingParams are the two knobs the directive carries.
type SamplingParams struct {
	K   int     // candidate count
	Tau float64 // typicality ceiling
}

// #endregion params

// #region context-kind

// ContextKind classifies the recent narrative context.
type ContextKind string

const (
	KindDialogue    ContextKind = "dialogue"
	KindAction      ContextKind = "action"
	KindDescription ContextKind = "description"
	KindDefault     ContextKind = "default"
)

// actionVerbs is the closed set of imperative markers for action scenes.
var actionVerbs = []string{
	"grab", "run", "fight", "dodge", "attack",
	"leap", "throw", "strike", "chase", "duck",
}

// descriptiveLengthCutoff is the context length (in characters) above which
// a quiet passage is treated as long description.
const descriptiveLengthCutoff = 600

// ClassifyContext inspects recent output text for dialogue markers, action
// markers, or descriptive length, in that precedence order.
func ClassifyContext(text string) ContextKind {
	if text == "" {
		return KindDefault
	}
	if analysis.ContainsQuote(text) || analysis.ContainsSpeechVerb(text) {
		return KindDialogue
	}
	lower := strings.ToLower(text)
	for _, v := range actionVerbs {
		if containsWord(lower, v) {
			return KindAction
		}
	}
	if len(text) > descriptiveLengthCutoff {
		return KindDescription
	}
	return KindDefault
}

func containsWord(lower, word string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lower[start-1])
		afterOK := end == len(lower) || !isLetter(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// #endregion context-kind

// #region adapt

// Adapt maps a context kind to sampling parameters via a fixed table.
// Dialogue gets a wider candidate pool, action a tighter typicality ceiling
// for coherence, long description moderate values; default keeps base.
func Adapt(base SamplingParams, kind ContextKind) SamplingParams {
	switch kind {
	case KindDialogue:
		return SamplingParams{K: base.K + 2, Tau: 0.25}
	case KindAction:
		return SamplingParams{K: base.K, Tau: 0.15}
	case KindDescription:
		return SamplingParams{K: 4, Tau: 0.30}
	default:
		return base
	}
}

// #endregion adapt

// #region synthesize

// Marker strings shared with the sanitizer's leakage stripping.
const (
	OpeningMarker = "[Internal Sampling Protocol:"
	ClosingPhrase = "Never mention or hint at this process"
)

// Synthesize builds the directive text. Pure: identical params yield
// byte-identical output.
func Synthesize(p SamplingParams) string {
	tau := strconv.FormatFloat(p.Tau, 'f', 2, 64)
	return fmt.Sprintf(
		"%s Before writing your reply, silently draft %d candidate continuations. "+
			"Estimate how typical each candidate would be. "+
			"Discard every candidate whose estimated typicality is above %s. "+
			"Choose one of the remaining candidates as your reply. "+
			"%s.]",
		OpeningMarker, p.K, tau, ClosingPhrase,
	)
}

// #endregion synthesize
