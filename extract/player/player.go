// Package player extracts transcripts through the player API, which
// sometimes serves caption tracks the watch page withholds.
package player

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

const confidence = 0.9

// TrackSource lists and downloads player API caption tracks.
type TrackSource interface {
	PlayerCaptions(ctx context.Context, videoID, hl string) ([]youtube.CaptionTrack, error)
	DownloadTrackJSON3(ctx context.Context, track youtube.CaptionTrack) ([]models.Segment, error)
}

// Backend implements the player extraction method.
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

func (b *Backend) Method() models.Method { return models.MethodPlayer }

func (b *Backend) Extract(ctx context.Context, videoID string, cfg models.MethodConfig) models.Outcome {
	start := time.Now()

	tracks, err := b.source.PlayerCaptions(ctx, videoID, cfg.Language)
	if err != nil {
		return failed(models.Fail(models.MethodPlayer, youtube.FailureKind(err),
			"querying player captions: %v", err), start)
	}

	langs := attemptLanguages(cfg)
	var problems []string
	for _, lang := range langs {
		track, ok := youtube.FindTrack(tracks, lang)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: no track", lang))
			continue
		}
		segments, err := b.source.DownloadTrackJSON3(ctx, track)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", lang, err))
			continue
		}

		b.log.WithFields(logrus.Fields{
			"video_id": videoID,
			"language": track.LanguageCode,
			"segments": len(segments),
		}).Debug("Player captions downloaded")

		return models.Outcome{
			OK:         true,
			Method:     models.MethodPlayer,
			Text:       format.JoinSegments(segments),
			Segments:   segments,
			Language:   track.LanguageCode,
			Confidence: confidence,
			Elapsed:    time.Since(start),
		}
	}

	return failed(models.Fail(models.MethodPlayer, models.FailLanguageUnavailable,
		"no usable player captions for languages [%s]: %s",
		strings.Join(langs, ", "), strings.Join(problems, "; ")), start)
}

// attemptLanguages is the resolved language followed by every language
// the platform declared for the video; the player API sometimes lists
// tracks the watch page does not, so the raw list is worth walking.
func attemptLanguages(cfg models.MethodConfig) []string {
	available := []string(nil)
	if cfg.Player != nil {
		available = cfg.Player.Available
	}
	langs := make([]string, 0, 1+len(available))
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
	for _, a := range available {
		add(a)
	}
	return langs
}

func failed(o models.Outcome, start time.Time) models.Outcome {
	o.Elapsed = time.Since(start)
	return o
}
