package models

import "strings"

// Method identifies one transcript acquisition technique.
type Method string

const (
	// MethodCaptions scrapes the watch page and downloads timed-text
	// caption tracks directly.
	MethodCaptions Method = "captions"
	// MethodPlayer asks the player API for caption tracks, which
	// sometimes succeeds where the watch page does not.
	MethodPlayer Method = "player"
	// MethodSpeech downloads the audio stream and runs it through a
	// speech-to-text model.
	MethodSpeech Method = "speech"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCaptions, MethodPlayer, MethodSpeech:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }

// ParseMethod normalizes a user supplied method name.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// MethodConfig is the per-attempt configuration handed to a backend.
// Exactly one of Captions, Player or Speech is set, matching Method.
type MethodConfig struct {
	Method    Method       `json:"method"`
	Language  string       `json:"language"`
	Fallbacks []string     `json:"fallbacks,omitempty"`
	Format    OutputFormat `json:"format"`

	Captions *CaptionConfig `json:"captions,omitempty"`
	Player   *PlayerConfig  `json:"player,omitempty"`
	Speech   *SpeechConfig  `json:"speech,omitempty"`
}

// CaptionConfig tunes the watch-page caption download.
type CaptionConfig struct {
	// Country is the region hint derived from the selected language.
	Country string `json:"country,omitempty"`
}

// PlayerConfig tunes the player API caption download.
type PlayerConfig struct {
	// Available lists the caption languages the platform reported for
	// the video, in declaration order.
	Available []string `json:"available,omitempty"`
}

// SpeechConfig tunes the audio transcription attempt.
type SpeechConfig struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Model       string  `json:"model"`
	// FormatHint tells the transcriber which response shape the caller
	// needs. Empty means plain text.
	FormatHint string `json:"format_hint,omitempty"`
	// LanguageHint is set only when the language match is confident
	// enough; empty lets the model auto-detect.
	LanguageHint string `json:"language_hint,omitempty"`
}
