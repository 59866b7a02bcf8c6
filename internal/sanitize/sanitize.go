// Package sanitize strips directive leakage, markup residue, and inter-turn
// duplication from raw generated text. Step order matters: leaked directive
// text must be gone before the analyzer ever sees the body, so instruction
// fragments cannot be misread as narrative content.
package sanitize

import (
	"regexp"
	"strings"
)

// #region patterns

// Tag-like wrappers the generator sometimes echoes back, balanced or not.
var markupRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9_:-]*(?:\s[^<>\n]*)?/?>`)

// The full directive block, matched to its closing bracket.
var directiveBlockRe = regexp.MustCompile(`(?is)\[internal sampling protocol:[^\[\]]*\]`)

// Fallback when the generator stripped the closing bracket: match through
// the fixed closing phrase instead.
var directiveOpenRe = regexp.MustCompile(`(?is)\[internal sampling protocol:.*?never mention or hint at this process\.?\]?`)

// Line-level directive fragments. The generator may reproduce any one of
// the five instructions on its own, so each is stripped independently.
var fragmentRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)before writing your reply, silently draft \d+ candidate continuations\.?`),
	regexp.MustCompile(`(?i)estimate how typical each candidate would be\.?`),
	regexp.MustCompile(`(?i)discard every candidate whose estimated typicality is above [0-9]*\.?[0-9]+\.?`),
	regexp.MustCompile(`(?i)choose one of the remaining candidates as your reply\.?`),
	regexp.MustCompile(`(?i)never mention or hint at this process\.?`),
}

// trailingArtifact is a stop token the generator is known to append.
const trailingArtifact = "<|im_end|>"

var blankRunsRe = regexp.MustCompile(`\n{3,}`)

// #endregion patterns

// #region dedup-constants

const (
	dedupWindow = 100 // chars of prior-turn tail considered
	dedupMax    = 50  // longest duplicate prefix checked
	dedupMin    = 10  // shortest duplicate prefix checked
)

// #endregion dedup-constants

// #region sanitize

// Placeholder is returned when sanitization leaves nothing behind.
const Placeholder = " "

// Sanitize cleans raw generated text. priorTurnText may be empty when no
// prior turn exists. The emptied flag reports that the result collapsed to
// the placeholder; the caller records it as a non-fatal diagnostic.
func Sanitize(raw, priorTurnText string) (clean string, emptied bool) {
	text := raw

	// 1. residual markup
	text = markupRe.ReplaceAllString(text, "")

	// 2. full directive block
	text = directiveBlockRe.ReplaceAllString(text, "")
	text = directiveOpenRe.ReplaceAllString(text, "")

	// 3. stray directive fragments
	for _, re := range fragmentRes {
		text = re.ReplaceAllString(text, "")
	}

	// 4. trailing artifact token
	text = strings.TrimSpace(text)
	for strings.HasSuffix(text, trailingArtifact) {
		text = strings.TrimSpace(strings.TrimSuffix(text, trailingArtifact))
	}

	// 5. collapse blank runs, trim
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	// 6. drop text duplicated from the prior turn's tail
	if priorTurnText != "" {
		text = stripDuplicatePrefix(text, priorTurnText)
	}

	if strings.TrimSpace(text) == "" {
		return Placeholder, true
	}

	// 7. exactly one leading space
	return " " + text, false
}

// #endregion sanitize

// #region dedup

// stripDuplicatePrefix removes from text the longest prefix (between
// dedupMin and dedupMax runes) that equals a suffix of the prior turn's
// last dedupWindow runes. Longest candidate wins.
func stripDuplicatePrefix(text, prior string) string {
	window := []rune(strings.TrimSpace(prior))
	if len(window) > dedupWindow {
		window = window[len(window)-dedupWindow:]
	}
	for l := dedupMax; l >= dedupMin; l-- {
		if l > len(window) {
			continue
		}
		candidate := string(window[len(window)-l:])
		if strings.HasPrefix(text, candidate) {
			return strings.TrimLeft(text[len(candidate):], " \t\n")
		}
	}
	return text
}

// #endregion dedup
