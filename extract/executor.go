package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/models"
)

// Attempt records one rejected extraction attempt.
type Attempt struct {
	Method  models.Method      `json:"method"`
	Kind    models.FailureKind `json:"kind"`
	Reason  string             `json:"reason"`
	Elapsed time.Duration      `json:"-"`
}

// ExhaustedError reports that every planned method failed. Its message
// names each method with its failure reason, in attempt order.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no extraction methods were attempted"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Method, a.Reason)
	}
	return strings.Join(parts, "; ")
}

// Executor runs a method plan against registered backends, stopping at
// the first usable outcome.
type Executor struct {
	backends map[models.Method]Backend
	log      *logrus.Logger
}

// NewExecutor registers the given backends. Passing two backends for
// the same method is a programming error and panics.
func NewExecutor(log *logrus.Logger, backends ...Backend) *Executor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Executor{
		backends: make(map[models.Method]Backend, len(backends)),
		log:      log,
	}
	for _, b := range backends {
		m := b.Method()
		if _, dup := e.backends[m]; dup {
			panic(fmt.Sprintf("extract: backend for method %q registered twice", m))
		}
		e.backends[m] = b
	}
	return e
}

// Run attempts each config in order and returns the first usable
// outcome along with the attempts rejected before it. When the whole
// plan fails the error is an *ExhaustedError aggregating every reason.
// A config naming an unregistered method panics; plans are built from
// the same method set the backends are registered under.
func (e *Executor) Run(ctx context.Context, videoID string, configs []models.MethodConfig) (models.Outcome, []Attempt, error) {
	var attempts []Attempt

	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{
				Method: cfg.Method,
				Kind:   models.FailCanceled,
				Reason: fmt.Sprintf("not attempted: %v", err),
			})
			break
		}

		backend, ok := e.backends[cfg.Method]
		if !ok {
			panic(fmt.Sprintf("extract: no backend registered for method %q", cfg.Method))
		}

		start := time.Now()
		outcome := backend.Extract(ctx, videoID, cfg)
		if outcome.Elapsed == 0 {
			outcome.Elapsed = time.Since(start)
		}
		outcome.Method = cfg.Method

		if Usable(outcome) {
			e.log.WithFields(logrus.Fields{
				"video_id": videoID,
				"method":   cfg.Method,
				"language": outcome.Language,
				"chars":    len(outcome.Text),
				"elapsed":  outcome.Elapsed.Round(time.Millisecond).String(),
			}).Info("Transcript extracted")
			return outcome, attempts, nil
		}

		attempt := rejectedAttempt(outcome)
		attempts = append(attempts, attempt)
		e.log.WithFields(logrus.Fields{
			"video_id": videoID,
			"method":   cfg.Method,
			"kind":     attempt.Kind,
			"elapsed":  outcome.Elapsed.Round(time.Millisecond).String(),
		}).Warn(attempt.Reason)
	}

	return models.Outcome{}, attempts, &ExhaustedError{Attempts: attempts}
}

func rejectedAttempt(o models.Outcome) Attempt {
	a := Attempt{Method: o.Method, Elapsed: o.Elapsed}
	switch {
	case o.Failure != nil:
		a.Kind = o.Failure.Kind
		a.Reason = o.Failure.Message
	case o.OK:
		a.Kind = models.FailInsufficient
		a.Reason = fmt.Sprintf("insufficient content (%d chars)", len(o.Text))
	default:
		a.Kind = models.FailInternal
		a.Reason = "extraction failed without a reason"
	}
	return a
}
