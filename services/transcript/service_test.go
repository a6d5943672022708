package transcript

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avolkoff/ytscript/errors"
	"github.com/avolkoff/ytscript/extract"
	"github.com/avolkoff/ytscript/models"
	"github.com/avolkoff/ytscript/validation"
)

type stubMeta struct {
	md    models.VideoMetadata
	err   error
	calls int
}

func (s *stubMeta) Metadata(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	s.calls++
	return s.md, s.err
}

type stubBackend struct {
	method  models.Method
	outcome models.Outcome
	calls   atomic.Int32
	gate    chan struct{}
}

func (s *stubBackend) Method() models.Method { return s.method }

func (s *stubBackend) Extract(ctx context.Context, videoID string, cfg models.MethodConfig) models.Outcome {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	o := s.outcome
	o.Method = s.method
	return o
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var longText = strings.Repeat("down the rabbit hole we go ", 4)

func okOutcome(m models.Method) models.Outcome {
	return models.Outcome{OK: true, Method: m, Text: longText, Language: "en", Confidence: 0.9}
}

func captionedVideo() models.VideoMetadata {
	return models.VideoMetadata{
		ID:               "dQw4w9WgXcQ",
		Title:            "Test Video",
		Duration:         212,
		HasCaptions:      true,
		CaptionLanguages: []string{"en", "de"},
	}
}

func newService(meta MetadataProvider, backends ...extract.Backend) Service {
	return NewService(meta,
		extract.NewExecutor(quietLogger(), backends...),
		validation.NewValidator(),
		quietLogger())
}

func request(video string) ResolveRequest {
	return ResolveRequest{Video: video, Preferences: models.DefaultPreferences()}
}

func TestResolveCaptionsFirst(t *testing.T) {
	captions := &stubBackend{method: models.MethodCaptions, outcome: okOutcome(models.MethodCaptions)}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	res, err := svc.Resolve(context.Background(), request("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "dQw4w9WgXcQ", res.VideoID)
	assert.Equal(t, models.MethodCaptions, res.Method)
	assert.Equal(t, longText, res.Transcript)
	assert.Empty(t, res.Error)
	assert.Equal(t, int32(1), captions.calls.Load())
	assert.Zero(t, player.calls.Load())
	assert.Zero(t, speech.calls.Load())
}

func TestResolveFallsBackToPlayer(t *testing.T) {
	captions := &stubBackend{
		method:  models.MethodCaptions,
		outcome: models.Fail(models.MethodCaptions, models.FailNoCaptions, "no caption tracks"),
	}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	res, err := svc.Resolve(context.Background(), request("dQw4w9WgXcQ"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.MethodPlayer, res.Method)
	assert.Zero(t, speech.calls.Load())
}

func TestResolveAllMethodsFail(t *testing.T) {
	captions := &stubBackend{
		method:  models.MethodCaptions,
		outcome: models.Fail(models.MethodCaptions, models.FailNoCaptions, "no caption tracks"),
	}
	player := &stubBackend{
		method:  models.MethodPlayer,
		outcome: models.Fail(models.MethodPlayer, models.FailLanguageUnavailable, "no track for en"),
	}
	speech := &stubBackend{
		method:  models.MethodSpeech,
		outcome: models.Fail(models.MethodSpeech, models.FailAudioTooSmall, "audio too small (12 bytes)"),
	}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	res, err := svc.Resolve(context.Background(), request("dQw4w9WgXcQ"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Transcript)

	// Every method is named in attempt order.
	ci := strings.Index(res.Error, "captions: no caption tracks")
	pi := strings.Index(res.Error, "player: no track for en")
	si := strings.Index(res.Error, "speech: audio too small")
	assert.True(t, ci >= 0 && pi > ci && si > pi, "got %q", res.Error)
}

func TestResolveMetadataFailureDowngrades(t *testing.T) {
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	captions := &stubBackend{method: models.MethodCaptions, outcome: okOutcome(models.MethodCaptions)}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	svc := newService(&stubMeta{err: assert.AnError}, captions, player, speech)

	res, err := svc.Resolve(context.Background(), request("dQw4w9WgXcQ"))
	require.NoError(t, err)
	// Minimal metadata declares no captions, so only speech runs.
	assert.True(t, res.Success)
	assert.Equal(t, models.MethodSpeech, res.Method)
	assert.Zero(t, captions.calls.Load())
}

func TestResolveSpeechOnlyUndersizedAudio(t *testing.T) {
	md := captionedVideo()
	md.HasCaptions = false
	md.CaptionLanguages = nil
	captions := &stubBackend{method: models.MethodCaptions, outcome: okOutcome(models.MethodCaptions)}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{
		method:  models.MethodSpeech,
		outcome: models.Fail(models.MethodSpeech, models.FailAudioTooSmall, "audio too small (500000 bytes)"),
	}
	svc := newService(&stubMeta{md: md}, captions, player, speech)

	res, err := svc.Resolve(context.Background(), request("dQw4w9WgXcQ"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "speech: audio too small (500000 bytes)", res.Error)
	assert.Zero(t, captions.calls.Load())
	assert.Zero(t, player.calls.Load())
	assert.Equal(t, int32(1), speech.calls.Load())
}

func TestResolveUnsuitableVideoNoFallback(t *testing.T) {
	md := captionedVideo()
	md.IsLive = true
	svc := newService(&stubMeta{md: md})

	req := request("dQw4w9WgXcQ")
	req.Preferences.SpeechFallback = false
	res, err := svc.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "speech fallback is disabled")
}

func TestResolveForcedMethod(t *testing.T) {
	captions := &stubBackend{method: models.MethodCaptions, outcome: okOutcome(models.MethodCaptions)}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	req := request("dQw4w9WgXcQ")
	req.Methods = []models.Method{models.MethodPlayer}
	res, err := svc.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.MethodPlayer, res.Method)
	assert.Zero(t, captions.calls.Load())
}

func TestResolveInvalidReference(t *testing.T) {
	svc := newService(&stubMeta{md: captionedVideo()})

	_, err := svc.Resolve(context.Background(), request("not a video"))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestResolveInvalidFormat(t *testing.T) {
	svc := newService(&stubMeta{md: captionedVideo()})

	req := request("dQw4w9WgXcQ")
	req.Preferences.Format = models.OutputFormat("yaml")
	_, err := svc.Resolve(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestResolveInvalidMethod(t *testing.T) {
	svc := newService(&stubMeta{md: captionedVideo()})

	req := request("dQw4w9WgXcQ")
	req.Methods = []models.Method{"telepathy"}
	_, err := svc.Resolve(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestResolveCoalescesIdenticalRequests(t *testing.T) {
	gate := make(chan struct{})
	captions := &stubBackend{
		method:  models.MethodCaptions,
		outcome: okOutcome(models.MethodCaptions),
		gate:    gate,
	}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	var wg sync.WaitGroup
	results := make([]models.TranscriptResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Resolve(context.Background(), request("dQw4w9WgXcQ"))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Let both requests reach the flight group before releasing.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), captions.calls.Load())
	assert.Equal(t, results[0], results[1])
}

func TestResolveDistinctPreferencesNotCoalesced(t *testing.T) {
	gate := make(chan struct{})
	captions := &stubBackend{
		method:  models.MethodCaptions,
		outcome: okOutcome(models.MethodCaptions),
		gate:    gate,
	}
	player := &stubBackend{method: models.MethodPlayer, outcome: okOutcome(models.MethodPlayer)}
	speech := &stubBackend{method: models.MethodSpeech, outcome: okOutcome(models.MethodSpeech)}
	svc := newService(&stubMeta{md: captionedVideo()}, captions, player, speech)

	first := request("dQw4w9WgXcQ")
	second := request("dQw4w9WgXcQ")
	second.Preferences.Language = "de"

	var wg sync.WaitGroup
	for _, req := range []ResolveRequest{first, second} {
		wg.Add(1)
		go func(req ResolveRequest) {
			defer wg.Done()
			_, err := svc.Resolve(context.Background(), req)
			assert.NoError(t, err)
		}(req)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	// Different preferences key different flights.
	assert.Equal(t, int32(2), captions.calls.Load())
}

func TestPlanPreview(t *testing.T) {
	svc := newService(&stubMeta{md: captionedVideo()})

	preview, err := svc.Plan(context.Background(), "dQw4w9WgXcQ", models.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", preview.VideoID)
	assert.Equal(t, "Test Video", preview.Title)
	assert.Equal(t, 212.0, preview.Duration)
	assert.Equal(t, "en", preview.Language.Language)
	assert.Equal(t, 1.0, preview.Language.Confidence)

	require.Len(t, preview.Methods, 3)
	assert.Equal(t, models.MethodCaptions, preview.Methods[0].Method)
	assert.Equal(t, models.MethodPlayer, preview.Methods[1].Method)
	assert.Equal(t, models.MethodSpeech, preview.Methods[2].Method)
	// Estimates rise with method cost.
	assert.Less(t, preview.Methods[0].EstimatedSeconds, preview.Methods[1].EstimatedSeconds)
	assert.Less(t, preview.Methods[1].EstimatedSeconds, preview.Methods[2].EstimatedSeconds)
}

func TestPlanPreviewInvalidReference(t *testing.T) {
	svc := newService(&stubMeta{md: captionedVideo()})

	_, err := svc.Plan(context.Background(), "nope", models.DefaultPreferences())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}
