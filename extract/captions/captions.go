// Package captions extracts transcripts from the caption tracks
// declared on the public watch page.
package captions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/format"
	"github.com/avolkoff/ytscript/models"
	"github.com/avolkoff/ytscript/youtube"
)

// confidence is fixed for caption tracks; they are authored or at
// least platform-reviewed text.
const confidence = 0.9

// TrackSource lists and downloads watch-page caption tracks.
type TrackSource interface {
	CaptionTracks(ctx context.Context, videoID string) ([]youtube.CaptionTrack, error)
	DownloadTrack(ctx context.Context, track youtube.CaptionTrack) ([]models.Segment, error)
}

// Backend implements the captions extraction method.
type Backend struct {
	source TrackSource
	log    *logrus.Logger
}

func New(source TrackSource, log *logrus.Logger) *Backend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{source: source, log: log}
}

func (b *Backend) Method() models.Method { return models.MethodCaptions }

// Extract downloads the best caption track for the configured language
// chain. Failures come back inside the outcome, never as a panic.
func (b *Backend) Extract(ctx context.Context, videoID string, cfg models.MethodConfig) models.Outcome {
	start := time.Now()

	tracks, err := b.source.CaptionTracks(ctx, videoID)
	if err != nil {
		return failed(models.Fail(models.MethodCaptions, youtube.FailureKind(err),
			"listing caption tracks: %v", err), start)
	}

	langs := attemptLanguages(cfg)
	var problems []string
	for _, lang := range langs {
		track, ok := youtube.FindTrack(tracks, lang)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: no track", lang))
			continue
		}
		segments, err := b.source.DownloadTrack(ctx, track)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", lang, err))
			continue
		}

		b.log.WithFields(logrus.Fields{
			"video_id": videoID,
			"language": track.LanguageCode,
			"segments": len(segments),
			"auto":     track.Generated(),
		}).Debug("Caption track downloaded")

		return models.Outcome{
			OK:         true,
			Method:     models.MethodCaptions,
			Text:       format.JoinSegments(segments),
			Segments:   segments,
			Language:   track.LanguageCode,
			Confidence: confidence,
			Elapsed:    time.Since(start),
		}
	}

	return failed(models.Fail(models.MethodCaptions, models.FailLanguageUnavailable,
		"no usable caption track for languages [%s]: %s",
		strings.Join(langs, ", "), strings.Join(problems, "; ")), start)
}

// attemptLanguages is the ordered language chain: the resolved match
// first, then its configured fallbacks.
func attemptLanguages(cfg models.MethodConfig) []string {
	langs := make([]string, 0, 1+len(cfg.Fallbacks))
	seen := make(map[string]struct{})
	add := func(code string) {
		c := strings.ToLower(strings.TrimSpace(code))
		if c == "" {
			return
		}
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		langs = append(langs, c)
	}
	add(cfg.Language)
	for _, f := range cfg.Fallbacks {
		add(f)
	}
	return langs
}

func failed(o models.Outcome, start time.Time) models.Outcome {
	o.Elapsed = time.Since(start)
	return o
}
