// Package speech extracts transcripts by downloading the audio stream
// and running it through a speech-to-text model. It is the slowest and
// most expensive method, so it sits last in every plan.
package speech

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/extract"
	"github.com/avolkoff/ytscript/format"
	"github.com/avolkoff/ytscript/language"
	"github.com/avolkoff/ytscript/models"
)

const (
	// confidence is fixed for model transcriptions.
	confidence = 0.95

	// minAudioBytes rejects downloads too small to hold real audio;
	// tiny files are error pages or stubs, not content.
	minAudioBytes = 1_000_000
)

// Downloader fetches a video's audio into dir and returns the file
// path and size.
type Downloader interface {
	Download(ctx context.Context, videoID, dir string) (string, int64, error)
}

// Request carries the transcription parameters for one audio file.
type Request struct {
	Model    string
	Language string
	Prompt   string
	Format   string
}

// Result is a transcriber's output before outcome conversion.
type Result struct {
	Text     string
	Language string
	Duration float64
	Segments []models.Segment
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, req Request) (Result, error)
}

// Backend implements the speech extraction method.
type Backend struct {
	downloader  Downloader
	transcriber Transcriber
	tempRoot    string
	log         *logrus.Logger
}

// Config tunes the speech backend.
type Config struct {
	// TempDir is where per-attempt working directories are created.
	// Empty uses the system default.
	TempDir string
}

// New builds the backend. Either dependency may be nil; extraction
// then fails with an unconfigured outcome instead of at startup, so a
// deployment without speech credentials still serves caption methods.
func New(downloader Downloader, transcriber Transcriber, cfg Config, log *logrus.Logger) *Backend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{
		downloader:  downloader,
		transcriber: transcriber,
		tempRoot:    cfg.TempDir,
		log:         log,
	}
}

func (b *Backend) Method() models.Method { return models.MethodSpeech }

// Extract downloads the audio, gates on size, transcribes, and cleans
// up its working directory on every path out.
func (b *Backend) Extract(ctx context.Context, videoID string, cfg models.MethodConfig) models.Outcome {
	start := time.Now()

	sc := cfg.Speech
	if sc == nil {
		return failed(models.Fail(models.MethodSpeech, models.FailInternal,
			"speech configuration missing"), start)
	}
	if b.downloader == nil {
		return failed(models.Fail(models.MethodSpeech, models.FailUnconfigured,
			"audio downloader is not configured"), start)
	}
	if b.transcriber == nil {
		return failed(models.Fail(models.MethodSpeech, models.FailUnconfigured,
			"speech-to-text is not configured"), start)
	}

	dir, err := os.MkdirTemp(b.tempRoot, "ytscript-audio-*")
	if err != nil {
		return failed(models.Fail(models.MethodSpeech, models.FailInternal,
			"creating working directory: %v", err), start)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			b.log.WithError(err).WithField("dir", dir).Warn("Failed to remove working directory")
		}
	}()

	audioPath, size, err := b.downloader.Download(ctx, videoID, dir)
	if err != nil {
		return failed(models.Fail(models.MethodSpeech,
			extract.ClassifyError(err, models.FailNetwork),
			"downloading audio: %v", err), start)
	}
	if size < minAudioBytes {
		return failed(models.Fail(models.MethodSpeech, models.FailAudioTooSmall,
			"audio download too small (%d bytes, need %d)", size, minAudioBytes), start)
	}

	b.log.WithFields(logrus.Fields{
		"video_id": videoID,
		"bytes":    size,
		"model":    sc.Model,
	}).Debug("Audio downloaded, transcribing")

	res, err := b.transcriber.Transcribe(ctx, audioPath, Request{
		Model:    sc.Model,
		Language: sc.LanguageHint,
		Prompt:   sc.Title,
		Format:   sc.FormatHint,
	})
	if err != nil {
		return failed(models.Fail(models.MethodSpeech,
			extract.ClassifyError(err, models.FailTranscriber),
			"transcribing audio: %v", err), start)
	}

	text := res.Text
	if text == "" {
		text = format.JoinSegments(res.Segments)
	}

	lang := res.Language
	if lang == "" {
		lang, _ = language.Detect(text)
	}
	if lang == "" {
		lang = sc.LanguageHint
	}

	return models.Outcome{
		OK:         true,
		Method:     models.MethodSpeech,
		Text:       text,
		Segments:   res.Segments,
		Language:   lang,
		Confidence: confidence,
		AudioBytes: size,
		Elapsed:    time.Since(start),
	}
}

func failed(o models.Outcome, start time.Time) models.Outcome {
	o.Elapsed = time.Since(start)
	return o
}
