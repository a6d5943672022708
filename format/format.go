// Package format renders an accepted extraction outcome into the
// response shape the caller asked for.
package format

import (
	"fmt"
	"strings"

	"github.com/avolkoff/ytscript/models"
)

// Result turns an accepted outcome into the final transcript response.
// The outcome has already cleared the sufficiency threshold; this is
// pure presentation.
func Result(outcome models.Outcome, md models.VideoMetadata, prefs models.Preferences) models.TranscriptResult {
	res := models.TranscriptResult{
		Success:      true,
		VideoID:      md.ID,
		Format:       prefs.Format,
		Language:     outcome.Language,
		Method:       outcome.Method,
		SegmentCount: len(outcome.Segments),
		Confidence:   outcome.Confidence,
		AudioBytes:   outcome.AudioBytes,
		ElapsedMS:    outcome.Elapsed.Milliseconds(),
	}

	switch prefs.Format {
	case models.FormatSRT:
		res.Transcript = SRT(timedSegments(outcome, md))
	case models.FormatJSON:
		res.Transcript = plainText(outcome)
		video := md
		res.Structured = &models.StructuredTranscript{
			Segments: outcome.Segments,
			Source:   outcome.Method,
			Video:    &video,
		}
	default:
		res.Transcript = plainText(outcome)
	}
	return res
}

// JoinSegments flattens segments into plain text, one space between
// entries.
func JoinSegments(segments []models.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// SRT renders segments as SubRip text: a 1-based index line, a
// timestamp range line, the text, and a blank line between blocks.
func SRT(segments []models.Segment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", Timestamp(s.StartMS), Timestamp(s.EndMS()))
		fmt.Fprintf(&b, "%s\n", s.Text)
	}
	return b.String()
}

// Timestamp formats milliseconds as the SubRip HH:MM:SS,mmm form.
// Negative inputs clamp to zero.
func Timestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	rem := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, rem)
}

func plainText(o models.Outcome) string {
	if o.Text != "" {
		return o.Text
	}
	return JoinSegments(o.Segments)
}

// defaultSpanMS is the synthetic segment length when the video
// duration is unknown, matching the default length assumed elsewhere.
const defaultSpanMS = 300000

// timedSegments returns the outcome's segments, or a single synthetic
// segment spanning the whole video when the source had no timing.
func timedSegments(o models.Outcome, md models.VideoMetadata) []models.Segment {
	if len(o.Segments) > 0 {
		return o.Segments
	}
	durMS := int64(md.Duration * 1000)
	if durMS <= 0 {
		durMS = defaultSpanMS
	}
	return []models.Segment{{Text: plainText(o), StartMS: 0, DurationMS: durMS}}
}
