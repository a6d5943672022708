package speech

import (
	"context"
	"math"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/models"
)

// OpenAITranscriber sends audio to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	client openai.Client
	model  string
	log    *logrus.Logger
}

// OpenAIConfig configures the transcriber.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API origin for proxies and tests.
	BaseURL string
	// Model overrides the model named by the request. Empty keeps the
	// request's choice.
	Model string
}

func NewOpenAITranscriber(cfg OpenAIConfig, log *logrus.Logger) (*OpenAITranscriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAITranscriber{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		log:    log,
	}, nil
}

// Transcribe uploads the audio file and converts the response into
// millisecond segments.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, req Request) (Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "opening audio file")
	}
	defer func() {
		_ = file.Close()
	}()

	model := t.model
	if model == "" {
		model = req.Model
	}
	if model == "" {
		model = "whisper-1"
	}

	params := openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(model),
		ResponseFormat: responseFormat(req.Format),
	}
	if req.Language != "" {
		params.Language = param.NewOpt(req.Language)
	}
	if req.Prompt != "" {
		params.Prompt = param.NewOpt(req.Prompt)
	}

	t.log.WithFields(logrus.Fields{
		"model":    model,
		"format":   string(params.ResponseFormat),
		"language": req.Language,
	}).Debug("Requesting transcription")

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, errors.Wrap(err, "transcription request failed")
	}
	if resp == nil {
		return Result{}, errors.New("transcription response is nil")
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{}, errors.New("transcription response is empty")
	}

	segments := make([]models.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segText := strings.TrimSpace(s.Text)
		if segText == "" {
			continue
		}
		startMS := int64(math.Round(s.Start * 1000))
		endMS := int64(math.Round(s.End * 1000))
		seg := models.Segment{
			Text:       segText,
			StartMS:    startMS,
			DurationMS: endMS - startMS,
		}
		if s.AvgLogprob < 0 {
			seg.Confidence = math.Exp(s.AvgLogprob)
		}
		segments = append(segments, seg)
	}

	return Result{
		Text:     text,
		Language: strings.ToLower(strings.TrimSpace(resp.Language)),
		Duration: resp.Duration,
		Segments: segments,
	}, nil
}

// responseFormat maps the configured hint onto the API enum. Segment
// timing is only present in the verbose response.
func responseFormat(hint string) openai.AudioResponseFormat {
	switch hint {
	case "verbose_json":
		return openai.AudioResponseFormatVerboseJSON
	default:
		return openai.AudioResponseFormatJSON
	}
}
