package language

import "strings"

// detectSampleWords caps how much of a transcript the detector reads.
const detectSampleWords = 400

// detectMaxConfidence keeps detection results below every matcher
// confidence tier; detection is a hint, never an authority.
const detectMaxConfidence = 0.5

// commonWords holds high-frequency function words per language. Small
// on purpose: the detector only has to separate the major transcript
// languages, not classify arbitrary text.
var commonWords = map[string][]string{
	"en": {"the", "and", "is", "of", "to", "in", "that", "it", "was", "for"},
	"es": {"el", "la", "de", "que", "y", "en", "un", "los", "se", "con"},
	"fr": {"le", "la", "de", "et", "les", "des", "une", "est", "dans", "que"},
	"de": {"der", "die", "und", "das", "ist", "nicht", "ein", "mit", "den", "von"},
	"pt": {"de", "que", "do", "da", "em", "um", "para", "com", "uma", "os"},
	"it": {"il", "di", "che", "la", "per", "non", "sono", "con", "una", "del"},
}

// Detect guesses the language of a text from function-word frequency.
// It returns the empty string when the sample is too short or no
// language stands out. The confidence never exceeds 0.5.
func Detect(text string) (string, float64) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 10 {
		return "", 0
	}
	if len(words) > detectSampleWords {
		words = words[:detectSampleWords]
	}

	wordSets := make(map[string]map[string]struct{}, len(commonWords))
	for code, list := range commonWords {
		set := make(map[string]struct{}, len(list))
		for _, w := range list {
			set[w] = struct{}{}
		}
		wordSets[code] = set
	}

	best, bestHits := "", 0
	for code, set := range wordSets {
		hits := 0
		for _, w := range words {
			if _, ok := set[strings.Trim(w, ".,!?;:\"'()")]; ok {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && code < best) {
			best, bestHits = code, hits
		}
	}

	ratio := float64(bestHits) / float64(len(words))
	if best == "" || ratio < 0.05 {
		return "", 0
	}

	confidence := ratio * 2
	if confidence > detectMaxConfidence {
		confidence = detectMaxConfidence
	}
	return best, confidence
}
