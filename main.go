package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avolkoff/ytscript/config"
	"github.com/avolkoff/ytscript/extract"
	"github.com/avolkoff/ytscript/extract/captions"
	"github.com/avolkoff/ytscript/extract/player"
	"github.com/avolkoff/ytscript/extract/speech"
	"github.com/avolkoff/ytscript/handlers"
	"github.com/avolkoff/ytscript/logger"
	"github.com/avolkoff/ytscript/services/transcript"
	"github.com/avolkoff/ytscript/validation"
	"github.com/avolkoff/ytscript/youtube"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, logConfig, err := logger.Setup(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	yt := youtube.NewClient(youtube.Config{
		HTTPClient:        &http.Client{Timeout: cfg.YouTube.HTTPTimeout},
		RequestsPerMinute: cfg.YouTube.RequestsPerMinute,
	}, appLog)

	executor := extract.NewExecutor(appLog,
		captions.New(yt, appLog),
		player.New(yt, appLog),
		speech.New(
			newDownloader(cfg, appLog),
			newTranscriber(cfg, appLog),
			speech.Config{TempDir: cfg.TempDir},
			appLog,
		),
	)

	service := transcript.NewService(yt, executor, validation.NewValidator(), appLog)

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.NewErrorHandler(appLog),
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "ytscript " + cfg.Version,
	})

	setupMiddleware(app, cfg, logConfig)

	transcriptHandler := handlers.NewTranscriptHandler(service)

	app.Post("/api/transcripts", transcriptHandler.Resolve)
	app.Get("/api/videos/:id/strategy", transcriptHandler.Strategy)
	app.Get("/health", handlers.NewHealthHandler(cfg.Version))

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLog.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			appLog.WithError(err).Error("Server shutdown error")
		}
	}()

	addr := ":" + cfg.ServerPort
	if cfg.Debug {
		appLog.Infof("Server starting on http://localhost%s", addr)
	}

	if err := app.Listen(addr); err != nil && err != http.ErrServerClosed {
		appLog.WithError(err).Fatal("Server error")
	}
}

func newDownloader(cfg *config.Config, log *logrus.Logger) speech.Downloader {
	return speech.NewYTDLPDownloader(speech.YTDLPConfig{Binary: cfg.Speech.YTDLPPath}, log)
}

// newTranscriber returns nil when no API key is configured; the speech
// backend then reports itself unconfigured instead of failing startup.
func newTranscriber(cfg *config.Config, log *logrus.Logger) speech.Transcriber {
	if cfg.Speech.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set; speech transcription disabled")
		return nil
	}
	t, err := speech.NewOpenAITranscriber(speech.OpenAIConfig{
		APIKey:  cfg.Speech.OpenAIAPIKey,
		BaseURL: cfg.Speech.OpenAIBaseURL,
		Model:   cfg.Speech.Model,
	}, log)
	if err != nil {
		log.WithError(err).Warn("Speech transcriber unavailable")
		return nil
	}
	return t
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableTimeout {
		app.Use(timeout.New(func(c *fiber.Ctx) error {
			return c.Next()
		}, cfg.RequestTimeout))
	}

	if cfg.Middleware.EnableCORS && cfg.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}

	if cfg.Middleware.EnableDebugMode && cfg.Debug {
		app.Use(func(c *fiber.Ctx) error {
			c.Set("X-Debug-Mode", "true")
			return c.Next()
		})
	}
}
