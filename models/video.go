package models

import "strings"

// VideoMetadata describes a single video as reported by the platform.
// A zero Duration means the length is unknown.
type VideoMetadata struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	Duration         float64  `json:"duration,omitempty"`
	IsLive           bool     `json:"is_live,omitempty"`
	IsUpcoming       bool     `json:"is_upcoming,omitempty"`
	HasCaptions      bool     `json:"has_captions"`
	CaptionLanguages []string `json:"caption_languages,omitempty"`
}

// MinimalMetadata returns the fallback metadata used when the lookup
// fails. Extraction proceeds with conservative strategy defaults.
func MinimalMetadata(id string) VideoMetadata {
	return VideoMetadata{ID: id}
}

// OutputFormat selects how a transcript is rendered in the response.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatSRT  OutputFormat = "srt"
	FormatJSON OutputFormat = "json"
)

func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatSRT, FormatJSON:
		return true
	}
	return false
}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (OutputFormat, bool) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, true
	}
	return f, f.Valid()
}

// Preferences carries the caller's transcript preferences.
type Preferences struct {
	Language       string       `json:"language"`
	Format         OutputFormat `json:"format"`
	SpeechFallback bool         `json:"speech_fallback"`
}

// DefaultPreferences returns the preferences applied when the caller
// leaves a field unset.
func DefaultPreferences() Preferences {
	return Preferences{
		Language:       "en",
		Format:         FormatText,
		SpeechFallback: true,
	}
}

// Normalized fills unset fields with defaults and canonicalizes the
// language code casing. The format is left as-is so callers can reject
// unsupported values instead of silently rewriting them.
func (p Preferences) Normalized() Preferences {
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Format == "" {
		p.Format = FormatText
	}
	return p
}
