// Package youtube fetches video metadata and caption tracks from the
// platform over two independent surfaces: the public watch page and
// the player API. Both return the same underlying player response, so
// the parsing and failure classification are shared.
package youtube

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/avolkoff/ytscript/models"
)

const defaultBaseURL = "https://www.youtube.com"

// Sentinel errors for the platform failure modes callers branch on.
var (
	ErrNotFound   = errors.New("video not found")
	ErrPrivate    = errors.New("video is private")
	ErrRestricted = errors.New("video is restricted")
	ErrThrottled  = errors.New("too many requests")
	ErrNoCaptions = errors.New("no caption tracks")
	ErrBadStatus  = errors.New("unexpected response status")
)

// Config tunes the platform client.
type Config struct {
	// BaseURL overrides the platform origin, for tests.
	BaseURL string
	// HTTPClient overrides the transport; nil gets a 30s-timeout client.
	HTTPClient *http.Client
	// RequestsPerMinute paces outbound calls to stay under the
	// platform's throttling radar. Zero disables pacing.
	RequestsPerMinute int
}

// Client talks to the platform. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logrus.Logger
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 2)
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		log:        log,
	}
}

// FailureKind maps a platform error onto the attempt failure taxonomy.
func FailureKind(err error) models.FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCaptions):
		return models.FailNoCaptions
	case errors.Is(err, ErrThrottled):
		return models.FailThrottled
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPrivate), errors.Is(err, ErrRestricted):
		return models.FailVideoUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.FailCanceled
	default:
		return models.FailNetwork
	}
}

// get fetches a URL with a browser-looking identity. The User-Agent is
// randomized per request so repeated calls do not share a fingerprint.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("User-Agent", gofakeit.UserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return c.do(req)
}

// postJSON sends a JSON payload with the given headers.
func (c *Client) postJSON(ctx context.Context, url string, payload []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "platform request failed")
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":  req.Method,
		"url":     req.URL.Path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("Platform request")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrThrottled
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrBadStatus, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return body, nil
}

func (c *Client) watchURL(videoID string) string {
	return fmt.Sprintf("%s/watch?v=%s&hl=en", c.baseURL, videoID)
}
