package transcript

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/avolkoff/ytscript/errors"
	"github.com/avolkoff/ytscript/extract"
	"github.com/avolkoff/ytscript/format"
	"github.com/avolkoff/ytscript/language"
	"github.com/avolkoff/ytscript/models"
	"github.com/avolkoff/ytscript/strategy"
	"github.com/avolkoff/ytscript/validation"
)

type service struct {
	meta      MetadataProvider
	executor  *extract.Executor
	validator *validation.Validator
	group     singleflight.Group
	log       *logrus.Logger
}

// NewService wires the orchestrator. Identical concurrent requests are
// coalesced into one extraction.
func NewService(meta MetadataProvider, executor *extract.Executor, validator *validation.Validator, log *logrus.Logger) Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		meta:      meta,
		executor:  executor,
		validator: validator,
		log:       log,
	}
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (models.TranscriptResult, error) {
	const op = "TranscriptService.Resolve"

	videoID, err := s.validator.VideoID(req.Video)
	if err != nil {
		return models.TranscriptResult{}, err
	}
	prefs := req.Preferences.Normalized()
	if !prefs.Format.Valid() {
		return models.TranscriptResult{}, apperrors.InvalidInput(op, nil,
			fmt.Sprintf("unsupported output format %q", prefs.Format))
	}
	for _, m := range req.Methods {
		if !m.Valid() {
			return models.TranscriptResult{}, apperrors.InvalidInput(op, nil,
				fmt.Sprintf("unknown extraction method %q", m))
		}
	}

	// The winning caller's context drives the shared extraction, so a
	// joiner canceling does not abort work others are waiting on.
	v, err, shared := s.group.Do(flightKey(videoID, req.Methods, prefs), func() (interface{}, error) {
		return s.resolve(ctx, videoID, req.Methods, prefs)
	})
	if err != nil {
		return models.TranscriptResult{}, err
	}
	if shared {
		s.log.WithField("video_id", videoID).Debug("Joined in-flight extraction")
	}
	return v.(models.TranscriptResult), nil
}

func (s *service) resolve(ctx context.Context, videoID string, methods []models.Method, prefs models.Preferences) (models.TranscriptResult, error) {
	const op = "TranscriptService.resolve"

	md := s.metadata(ctx, videoID)

	var plan []models.Method
	switch {
	case len(methods) == 1:
		plan = strategy.ForcedPlan(methods[0], prefs)
	case len(methods) > 1:
		seen := make(map[models.Method]struct{}, len(methods))
		for _, m := range methods {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			plan = append(plan, m)
		}
	default:
		plan = strategy.Plan(md, prefs)
	}

	if len(plan) == 0 {
		return models.TranscriptResult{
			VideoID: videoID,
			Format:  prefs.Format,
			Error:   "video is unsuitable for caption extraction and speech fallback is disabled",
		}, nil
	}

	configs := make([]models.MethodConfig, 0, len(plan))
	for _, m := range plan {
		cfg, err := strategy.MethodConfig(m, md, prefs)
		if err != nil {
			return models.TranscriptResult{}, apperrors.Internal(op, err, "building method configuration")
		}
		configs = append(configs, cfg)
	}

	outcome, attempts, err := s.executor.Run(ctx, videoID, configs)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"video_id": videoID,
			"attempts": len(attempts),
		}).Warn("All extraction methods failed")
		return models.TranscriptResult{
			VideoID: videoID,
			Format:  prefs.Format,
			Error:   err.Error(),
		}, nil
	}

	if len(attempts) > 0 {
		s.log.WithFields(logrus.Fields{
			"video_id": videoID,
			"method":   outcome.Method,
			"rejected": len(attempts),
		}).Info("Transcript extracted after fallback")
	}
	return format.Result(outcome, md, prefs), nil
}

func (s *service) Plan(ctx context.Context, video string, prefs models.Preferences) (PlanPreview, error) {
	videoID, err := s.validator.VideoID(video)
	if err != nil {
		return PlanPreview{}, err
	}
	prefs = prefs.Normalized()

	md := s.metadata(ctx, videoID)
	match := language.Resolve(md.CaptionLanguages, prefs.Language)

	plan := strategy.Plan(md, prefs)
	methods := make([]PlannedMethod, len(plan))
	for i, m := range plan {
		methods[i] = PlannedMethod{
			Method:           m,
			EstimatedSeconds: strategy.EstimateSeconds(m, md),
		}
	}

	return PlanPreview{
		VideoID:  videoID,
		Title:    md.Title,
		Duration: md.Duration,
		Language: match,
		Methods:  methods,
	}, nil
}

// metadata fetches video metadata, downgrading failures to minimal
// metadata so extraction can still be attempted.
func (s *service) metadata(ctx context.Context, videoID string) models.VideoMetadata {
	md, err := s.meta.Metadata(ctx, videoID)
	if err != nil {
		s.log.WithError(err).WithField("video_id", videoID).
			Warn("Metadata fetch failed, continuing with minimal metadata")
		return models.MinimalMetadata(videoID)
	}
	return md
}

func flightKey(videoID string, methods []models.Method, prefs models.Preferences) string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return strings.Join([]string{
		videoID,
		prefs.Language,
		string(prefs.Format),
		fmt.Sprintf("%t", prefs.SpeechFallback),
		strings.Join(names, ","),
	}, "|")
}
