package analysis

import "strings"

// #region contradiction-vocab

// temporalMarkers flag a segment as time-referential; combined with a
// negation marker the segment reads as contradicting earlier narration.
var temporalMarkers = []string{"already", "still", "again"}

// negationMarkers are checked as whole words within the same segment.
var negationMarkers = []string{"not", "never", "no"}

// #endregion contradiction-vocab

// #region drift-vocab

// systemSpeakTerms mark abstract, self-referential narration that has
// slipped out of the fiction.
var systemSpeakTerms = []string{
	"the system",
	"the simulation",
	"the construct",
	"the protocol",
	"the process",
	"the parameters",
	"the framework",
	"data stream",
	"the algorithm",
	"an entity",
	"the presence",
	"the essence",
	"pure energy",
	"the void",
}

// groundedActionTerms anchor a segment in physical scene business. A
// segment containing any of these is never flagged as drift.
var groundedActionTerms = []string{
	"walk", "step", "run", "reach", "grab", "hold", "take",
	"open", "close", "push", "pull", "turn", "stand", "sit",
	"lean", "look", "glance", "nod", "smile", "frown",
	"door", "hand", "floor", "table", "window", "chair", "wall",
}

// #endregion drift-vocab

// #region meta-vocab

// metaAwarenessTerms are direct breaks of the fourth wall.
var metaAwarenessTerms = []string{
	"as an ai",
	"language model",
	"i cannot continue",
	"this story",
	"this narrative",
	"the reader",
	"this response",
	"this roleplay",
	"fictional scenario",
	"my instructions",
}

// #endregion meta-vocab

// #region speech-vocab

// reportedSpeechVerbs mark dialogue attribution. Shared with the scorer's
// dialogue dimension and the directive classifier.
var reportedSpeechVerbs = []string{
	"said", "asked", "replied", "whispered", "shouted",
	"murmured", "muttered", "answered", "called", "snapped",
}

// ContainsSpeechVerb reports whether any reported-speech verb appears as a
// whole word in text.
func ContainsSpeechVerb(text string) bool {
	words := wordSet(text)
	for _, v := range reportedSpeechVerbs {
		if words[v] {
			return true
		}
	}
	return false
}

// ContainsQuote reports whether text contains a quotation mark.
func ContainsQuote(text string) bool {
	return strings.ContainsAny(text, `"`+"“”")
}

// #endregion speech-vocab
