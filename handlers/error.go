package handlers

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/errors"
)

// NewErrorHandler builds the fiber error handler. Application errors
// keep their status and message; everything else becomes a 500.
func NewErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var appErr *errors.AppError
		var fiberErr *fiber.Error
		switch {
		case stderrors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
		case stderrors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		entry := log.WithFields(logrus.Fields{
			"request_id": c.Get("X-Request-ID"),
			"path":       c.Path(),
			"method":     c.Method(),
			"status":     code,
		}).WithError(err)
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Warn("Request rejected")
		}

		return c.Status(code).JSON(fiber.Map{
			"success":    false,
			"error":      message,
			"request_id": c.Get("X-Request-ID"),
		})
	}
}
