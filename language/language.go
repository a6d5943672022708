// Package language resolves a preferred transcript language against
// the caption languages a video actually offers. Matching is pure and
// deterministic so strategy decisions can be previewed without side
// effects.
package language

import "strings"

// MatchKind describes how the selected language relates to the
// caller's preference.
type MatchKind string

const (
	// MatchExact means the preferred code itself is available.
	MatchExact MatchKind = "exact"
	// MatchFamily means a regional variant of the preferred language
	// is available (en vs en-gb).
	MatchFamily MatchKind = "family"
	// MatchPriority means the preference is unavailable and a common
	// language from the priority list was chosen instead.
	MatchPriority MatchKind = "priority"
	// MatchFirstAvailable means nothing better than the first declared
	// caption language could be found.
	MatchFirstAvailable MatchKind = "first_available"
	// MatchNone means the video offers no caption languages at all.
	MatchNone MatchKind = "none"
)

// Match is the result of resolving a preferred language against the
// available set.
type Match struct {
	Language   string    `json:"language"`
	Kind       MatchKind `json:"kind"`
	Confidence float64   `json:"confidence"`
	Alternates []string  `json:"alternates,omitempty"`
}

// Confidence per match kind. The values are ranks for downstream
// gating, not probabilities.
const (
	confidenceExact          = 1.0
	confidenceFamily         = 0.8
	confidencePriority       = 0.6
	confidenceFirstAvailable = 0.3
	confidenceNone           = 0.0
)

// priorityOrder is walked front to back when the preferred language is
// unavailable.
var priorityOrder = []string{
	"en", "es", "fr", "de", "pt", "it", "ja", "ko", "zh", "ru", "ar", "hi",
}

// regionalVariants maps a primary language subtag to its common
// regional codes, the bare code first.
var regionalVariants = map[string][]string{
	"en": {"en", "en-us", "en-gb", "en-ca", "en-au"},
	"es": {"es", "es-es", "es-mx", "es-419"},
	"fr": {"fr", "fr-fr", "fr-ca"},
	"de": {"de", "de-de", "de-at", "de-ch"},
	"pt": {"pt", "pt-br", "pt-pt"},
	"it": {"it", "it-it"},
	"ja": {"ja", "ja-jp"},
	"ko": {"ko", "ko-kr"},
	"zh": {"zh", "zh-hans", "zh-hant", "zh-cn", "zh-tw", "zh-hk"},
	"ru": {"ru", "ru-ru"},
	"ar": {"ar", "ar-sa", "ar-eg"},
	"hi": {"hi", "hi-in"},
}

// extraKnown rounds out the recognized codes beyond the variant table.
var extraKnown = []string{
	"nl", "sv", "no", "da", "fi", "pl", "tr", "cs", "el", "he",
	"id", "ms", "th", "vi", "uk", "ro", "hu", "bn", "ta", "fa",
}

var knownCodes = buildKnownCodes()

func buildKnownCodes() map[string]struct{} {
	known := make(map[string]struct{})
	for _, c := range priorityOrder {
		known[c] = struct{}{}
	}
	for primary, variants := range regionalVariants {
		known[primary] = struct{}{}
		for _, v := range variants {
			known[v] = struct{}{}
		}
	}
	for _, c := range extraKnown {
		known[c] = struct{}{}
	}
	return known
}

// Resolve picks the best caption language for the preference. The
// preference falls through exact match, family match, the priority
// list and finally the first declared language; an empty available set
// yields a MatchNone carrying the preference unchanged.
func Resolve(available []string, preferred string) Match {
	pref := strings.ToLower(strings.TrimSpace(preferred))
	if pref == "" {
		pref = "en"
	}

	avail := cleanCodes(available)
	if len(avail) == 0 {
		return Match{Language: pref, Kind: MatchNone, Confidence: confidenceNone}
	}

	if contains(avail, pref) {
		return Match{
			Language:   pref,
			Kind:       MatchExact,
			Confidence: confidenceExact,
			Alternates: without(avail, pref),
		}
	}

	prefPrimary := PrimarySubtag(pref)
	for _, code := range avail {
		if PrimarySubtag(code) == prefPrimary {
			return Match{
				Language:   code,
				Kind:       MatchFamily,
				Confidence: confidenceFamily,
				Alternates: without(avail, code),
			}
		}
	}

	for _, p := range priorityOrder {
		if contains(avail, p) {
			return Match{
				Language:   p,
				Kind:       MatchPriority,
				Confidence: confidencePriority,
				Alternates: without(avail, p),
			}
		}
	}

	return Match{
		Language:   avail[0],
		Kind:       MatchFirstAvailable,
		Confidence: confidenceFirstAvailable,
		Alternates: without(avail, avail[0]),
	}
}

// Variants expands a language code to its known regional variants,
// itself included. Codes outside the variant table come back as a
// one-element list.
func Variants(code string) []string {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return []string{"en"}
	}
	if variants, ok := regionalVariants[key]; ok {
		out := make([]string, len(variants))
		copy(out, variants)
		return out
	}
	return []string{key}
}

// Normalize lowercases and trims a code, substituting "en" for empty
// or unrecognized input. Use it where a single usable code is needed,
// not for membership tests against an available set.
func Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return "en"
	}
	if _, ok := knownCodes[c]; ok {
		return c
	}
	return "en"
}

// PrimarySubtag returns the part of a code before the first hyphen or
// underscore: "en-GB" and "en_US" both map to "en".
func PrimarySubtag(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(c, "-_"); i >= 0 {
		return c[:i]
	}
	return c
}

func cleanCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		cleaned := strings.ToLower(strings.TrimSpace(c))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func without(codes []string, code string) []string {
	var out []string
	for _, c := range codes {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}
