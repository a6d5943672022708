// Package handlers exposes the HTTP surface: transcript resolution,
// strategy previews and the health endpoint.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avolkoff/ytscript/errors"
	"github.com/avolkoff/ytscript/models"
	"github.com/avolkoff/ytscript/services/transcript"
)

type TranscriptHandler struct {
	service transcript.Service
}

func NewTranscriptHandler(service transcript.Service) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// resolveRequest is the POST /api/transcripts body.
type resolveRequest struct {
	Video          string   `json:"video"`
	Language       string   `json:"language"`
	Format         string   `json:"format"`
	Methods        []string `json:"methods"`
	SpeechFallback *bool    `json:"speech_fallback"`
}

func (h *TranscriptHandler) Resolve(c *fiber.Ctx) error {
	var body resolveRequest
	if err := c.BodyParser(&body); err != nil {
		return errors.InvalidInput("handlers.Resolve", err, "Invalid request body")
	}
	if body.Video == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Video reference is required",
		}
	}

	prefs := models.DefaultPreferences()
	if body.Language != "" {
		prefs.Language = body.Language
	}
	if body.Format != "" {
		// Invalid names keep their lowered form so the service can
		// reject them with a proper message.
		f, _ := models.ParseFormat(body.Format)
		prefs.Format = f
	}
	if body.SpeechFallback != nil {
		prefs.SpeechFallback = *body.SpeechFallback
	}

	result, err := h.service.Resolve(c.Context(), transcript.ResolveRequest{
		Video:       body.Video,
		Methods:     parseMethods(body.Methods),
		Preferences: prefs,
	})
	if err != nil {
		return err
	}

	if !result.Success {
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}
	return c.JSON(result)
}

func (h *TranscriptHandler) Strategy(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Video ID is required",
		}
	}

	prefs := models.DefaultPreferences()
	if lang := c.Query("language"); lang != "" {
		prefs.Language = lang
	}
	if f := c.Query("format"); f != "" {
		pf, _ := models.ParseFormat(f)
		prefs.Format = pf
	}
	prefs.SpeechFallback = c.QueryBool("speech_fallback", true)

	preview, err := h.service.Plan(c.Context(), id, prefs)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    preview,
	})
}

// parseMethods turns the raw method names into a forced plan. An empty
// list or the word "auto" selects the plan automatically. Unknown names
// pass through so the service rejects them with a message.
func parseMethods(names []string) []models.Method {
	var methods []models.Method
	for _, name := range names {
		m, _ := models.ParseMethod(name)
		if m == "" {
			continue
		}
		if m == "auto" {
			return nil
		}
		methods = append(methods, m)
	}
	return methods
}
