package models

import (
	"fmt"
	"time"
)

// Segment is one timed transcript entry. Times are milliseconds from
// the start of the video regardless of what the upstream source used.
type Segment struct {
	Text       string `json:"text"`
	StartMS    int64  `json:"start_ms"`
	DurationMS int64  `json:"duration_ms"`
	// Confidence is set only by sources that score their segments.
	Confidence float64 `json:"confidence,omitempty"`
}

// EndMS returns the segment end in milliseconds.
func (s Segment) EndMS() int64 { return s.StartMS + s.DurationMS }

// FailureKind classifies why an extraction attempt failed.
type FailureKind string

const (
	FailNoCaptions          FailureKind = "no_captions"
	FailLanguageUnavailable FailureKind = "language_unavailable"
	FailVideoUnavailable    FailureKind = "video_unavailable"
	FailThrottled           FailureKind = "throttled"
	FailAudioTooSmall       FailureKind = "audio_too_small"
	FailTranscriber         FailureKind = "transcriber"
	FailUnconfigured        FailureKind = "unconfigured"
	FailNetwork             FailureKind = "network"
	FailParse               FailureKind = "parse"
	FailInsufficient        FailureKind = "insufficient_content"
	FailCanceled            FailureKind = "canceled"
	FailInternal            FailureKind = "internal"
)

// Failure is the structured reason attached to a rejected Outcome.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Message
}

// Outcome is what a single extraction attempt produced. Backends
// report failures through the Failure field instead of error returns
// so that one misbehaving technique never aborts the chain.
type Outcome struct {
	OK         bool          `json:"ok"`
	Method     Method        `json:"method"`
	Text       string        `json:"text,omitempty"`
	Segments   []Segment     `json:"segments,omitempty"`
	Language   string        `json:"language,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	AudioBytes int64         `json:"audio_bytes,omitempty"`
	Elapsed    time.Duration `json:"-"`
	Failure    *Failure      `json:"failure,omitempty"`
}

// Fail builds a rejected Outcome for the given method.
func Fail(m Method, kind FailureKind, format string, args ...interface{}) Outcome {
	return Outcome{
		Method: m,
		Failure: &Failure{
			Kind:    kind,
			Message: fmt.Sprintf(format, args...),
		},
	}
}

// StructuredTranscript is the segment-level payload returned for the
// json output format.
type StructuredTranscript struct {
	Segments []Segment      `json:"segments"`
	Source   Method         `json:"source"`
	Video    *VideoMetadata `json:"video,omitempty"`
}

// TranscriptResult is the final response for one transcript request.
// Success is true only when a technique produced usable text.
type TranscriptResult struct {
	Success      bool                  `json:"success"`
	VideoID      string                `json:"video_id"`
	Format       OutputFormat          `json:"format,omitempty"`
	Transcript   string                `json:"transcript,omitempty"`
	Structured   *StructuredTranscript `json:"structured,omitempty"`
	Language     string                `json:"language,omitempty"`
	Method       Method                `json:"method,omitempty"`
	SegmentCount int                   `json:"segment_count,omitempty"`
	Confidence   float64               `json:"confidence,omitempty"`
	AudioBytes   int64                 `json:"audio_bytes,omitempty"`
	ElapsedMS    int64                 `json:"elapsed_ms,omitempty"`
	Error        string                `json:"error,omitempty"`
}
