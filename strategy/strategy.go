// Package strategy decides which extraction methods to try for a
// video and in what order, and builds the per-method configuration.
// Everything here is a pure function of the metadata and preferences.
package strategy

import (
	"math"

	"github.com/pkg/errors"

	"github.com/avolkoff/ytscript/language"
	"github.com/avolkoff/ytscript/models"
)

const (
	// defaultDurationSeconds stands in for an unknown video length in
	// the cost estimates and the short-video check.
	defaultDurationSeconds = 300

	// shortVideoSeconds is the length below which caption tracks are
	// rarely published, so captions are skipped entirely.
	shortVideoSeconds = 10

	// speechHintMinConfidence gates the language hint handed to the
	// speech-to-text model. Below it the model auto-detects.
	speechHintMinConfidence = 0.7

	// speechModel is the transcription model requested by default.
	speechModel = "whisper-1"
)

// Plan returns the methods to attempt, in order. Live, upcoming and
// very short videos get no caption attempts; videos without declared
// captions skip straight to speech. An empty plan means the video
// cannot be handled with the given preferences.
func Plan(md models.VideoMetadata, prefs models.Preferences) []models.Method {
	var methods []models.Method
	if captionsViable(md) {
		methods = append(methods, models.MethodCaptions, models.MethodPlayer)
	}
	if prefs.SpeechFallback {
		methods = append(methods, models.MethodSpeech)
	}
	return dedupe(methods)
}

// ForcedPlan builds the plan for an explicitly requested method. The
// speech fallback still applies behind a forced caption method.
func ForcedPlan(m models.Method, prefs models.Preferences) []models.Method {
	methods := []models.Method{m}
	if prefs.SpeechFallback && m != models.MethodSpeech {
		methods = append(methods, models.MethodSpeech)
	}
	return dedupe(methods)
}

// Primary returns the first method Plan would attempt.
func Primary(md models.VideoMetadata, prefs models.Preferences) (models.Method, bool) {
	plan := Plan(md, prefs)
	if len(plan) == 0 {
		return "", false
	}
	return plan[0], true
}

func captionsViable(md models.VideoMetadata) bool {
	if md.IsLive || md.IsUpcoming {
		return false
	}
	if md.Duration > 0 && md.Duration < shortVideoSeconds {
		return false
	}
	return md.HasCaptions
}

// MethodConfig builds the configuration for one attempt of m. The
// language match is resolved against the video's caption languages and
// shared by every method; the method-specific section is layered on
// top.
func MethodConfig(m models.Method, md models.VideoMetadata, prefs models.Preferences) (models.MethodConfig, error) {
	match := language.Resolve(md.CaptionLanguages, prefs.Language)
	cfg := models.MethodConfig{
		Method:    m,
		Language:  match.Language,
		Fallbacks: fallbackLanguages(match),
		Format:    prefs.Format,
	}

	switch m {
	case models.MethodCaptions:
		cfg.Captions = &models.CaptionConfig{Country: countryFor(match.Language)}
	case models.MethodPlayer:
		available := make([]string, len(md.CaptionLanguages))
		copy(available, md.CaptionLanguages)
		cfg.Player = &models.PlayerConfig{Available: available}
	case models.MethodSpeech:
		hint := ""
		if match.Confidence > speechHintMinConfidence {
			hint = language.Normalize(match.Language)
		}
		cfg.Speech = &models.SpeechConfig{
			Title:        md.Title,
			Description:  md.Description,
			Duration:     md.Duration,
			Model:        speechModel,
			FormatHint:   formatHint(prefs.Format),
			LanguageHint: hint,
		}
	default:
		return models.MethodConfig{}, errors.Errorf("unknown extraction method %q", m)
	}
	return cfg, nil
}

// fallbackLanguages lists the codes to try after the selected one:
// regional variants first, then the remaining available languages.
func fallbackLanguages(match language.Match) []string {
	seen := map[string]struct{}{match.Language: {}}
	var out []string
	add := func(code string) {
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	for _, v := range language.Variants(match.Language) {
		add(v)
	}
	for _, a := range match.Alternates {
		add(a)
	}
	return out
}

// countryByLanguage provides the region hint sent with watch-page
// caption requests.
var countryByLanguage = map[string]string{
	"en": "US",
	"es": "ES",
	"fr": "FR",
	"de": "DE",
	"pt": "BR",
	"it": "IT",
	"ja": "JP",
	"ko": "KR",
	"zh": "CN",
	"ru": "RU",
	"ar": "SA",
	"hi": "IN",
}

func countryFor(code string) string {
	if country, ok := countryByLanguage[language.PrimarySubtag(code)]; ok {
		return country
	}
	return "US"
}

// formatHint maps the requested output format to the transcriber
// response shape. Timed formats need segment boundaries, so they ask
// for the verbose response.
func formatHint(f models.OutputFormat) string {
	switch f {
	case models.FormatSRT, models.FormatJSON:
		return "verbose_json"
	default:
		return "json"
	}
}

// EstimateSeconds predicts how long one method will take. Caption
// downloads scale mildly with video length and are capped low; speech
// carries a fixed setup cost plus transcription time.
func EstimateSeconds(m models.Method, md models.VideoMetadata) float64 {
	dur := md.Duration
	if dur <= 0 {
		dur = defaultDurationSeconds
	}
	switch m {
	case models.MethodCaptions:
		return math.Min(10, dur*0.02)
	case models.MethodPlayer:
		return math.Min(15, dur*0.03)
	case models.MethodSpeech:
		return math.Min(300, 30+dur*0.1)
	}
	return 0
}

func dedupe(methods []models.Method) []models.Method {
	seen := make(map[models.Method]struct{}, len(methods))
	out := methods[:0]
	for _, m := range methods {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
