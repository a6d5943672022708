// Package extract defines the extraction backend contract and the
// executor that walks a method plan until one backend produces a
// usable transcript.
package extract

import (
	"context"
	"strings"

	"github.com/avolkoff/ytscript/models"
)

// MinUsableChars is the sufficiency threshold: a transcript at or
// below this length is treated as a failed attempt and the next
// method is tried.
const MinUsableChars = 50

// Backend is one transcript acquisition technique. Extract never
// panics and never returns an error; every failure is reported inside
// the Outcome so the executor can keep walking the plan.
type Backend interface {
	Method() models.Method
	Extract(ctx context.Context, videoID string, cfg models.MethodConfig) models.Outcome
}

// Usable reports whether an outcome clears the sufficiency threshold.
func Usable(o models.Outcome) bool {
	return o.OK && len(o.Text) > MinUsableChars
}

// ClassifyError maps an opaque error from an external tool onto a
// failure kind by message inspection. Only for boundaries where no
// typed error is available; fallback is returned when nothing matches.
func ClassifyError(err error, fallback models.FailureKind) models.FailureKind {
	if err == nil {
		return fallback
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "429", "too many requests", "captcha", "rate limit"):
		return models.FailThrottled
	case containsAny(msg, "private video", "video unavailable", "not available", "removed", "does not exist", "copyright"):
		return models.FailVideoUnavailable
	case containsAny(msg, "context canceled", "context deadline", "deadline exceeded"):
		return models.FailCanceled
	case containsAny(msg, "no captions", "no transcript", "no subtitles"):
		return models.FailNoCaptions
	case containsAny(msg, "connection refused", "no such host", "timeout", "tls", "eof"):
		return models.FailNetwork
	}
	return fallback
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
