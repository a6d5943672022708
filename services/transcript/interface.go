// Package transcript orchestrates a transcript request end to end:
// validate the reference, fetch metadata, plan the methods, run the
// fallback chain and shape the response.
package transcript

import (
	"context"

	"github.com/avolkoff/ytscript/language"
	"github.com/avolkoff/ytscript/models"
)

// ResolveRequest is one transcript request. Video accepts a raw ID or
// any of the common URL forms. An empty Methods list selects the plan
// automatically.
type ResolveRequest struct {
	Video       string
	Methods     []models.Method
	Preferences models.Preferences
}

// PlannedMethod pairs a method with its cost estimate.
type PlannedMethod struct {
	Method           models.Method `json:"method"`
	EstimatedSeconds float64       `json:"estimated_seconds"`
}

// PlanPreview describes what Resolve would do, without doing it.
type PlanPreview struct {
	VideoID  string          `json:"video_id"`
	Title    string          `json:"title,omitempty"`
	Duration float64         `json:"duration,omitempty"`
	Language language.Match  `json:"language"`
	Methods  []PlannedMethod `json:"methods"`
}

// Service is the transcript orchestration API.
type Service interface {
	Resolve(ctx context.Context, req ResolveRequest) (models.TranscriptResult, error)
	Plan(ctx context.Context, video string, prefs models.Preferences) (PlanPreview, error)
}

// MetadataProvider fetches video metadata. Failures are downgraded to
// minimal metadata rather than aborting the request.
type MetadataProvider interface {
	Metadata(ctx context.Context, videoID string) (models.VideoMetadata, error)
}
