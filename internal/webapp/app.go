// Package webapp exposes the sheet-to-decks pipeline over HTTP: a small
// upload form, a generate endpoint that answers with a zip of decks, and
// the usual health and metrics endpoints.
package webapp

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giangph58/Automated-ACB/generator"
	"github.com/giangph58/Automated-ACB/internal/config"
	"github.com/giangph58/Automated-ACB/internal/observability"
)

type Server struct {
	app     *fiber.App
	gen     *generator.Generator
	cfg     *config.AppConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New assembles the Fiber app with middleware and routes. Pass a nil
// metrics to run without instrumentation (tests do this).
func New(cfg *config.AppConfig, gen *generator.Generator, metrics *observability.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		gen:     gen,
		cfg:     cfg,
		metrics: metrics,
		logger:  log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "acbgen-server",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		BodyLimit:             cfg.BodyLimitMiB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	s.app.Use(logger.New())
	s.app.Use(recover.New())

	s.app.Get("/", s.handleIndex)
	s.app.Post("/generate-ppt", s.handleGenerate)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "acbgen-server",
		})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// App exposes the underlying Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP until the app is shut down.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

const indexPage = `<!DOCTYPE html>
<html lang="vi">
<head>
  <meta charset="utf-8">
  <title>ACB - Tạo bản tin dự báo</title>
</head>
<body>
  <h1>Tạo bản tin dự báo thời tiết</h1>
  <form action="/generate-ppt" method="post" enctype="multipart/form-data">
    <label for="file">Tệp Excel dự báo tuần (.xlsx):</label>
    <input type="file" id="file" name="file" accept=".xlsx" required>
    <button type="submit">Tạo PowerPoint</button>
  </form>
</body>
</html>
`

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

// handleGenerate accepts one .xlsx upload, runs the pipeline, and streams
// back a zip of the resulting decks.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	if s.metrics != nil {
		s.metrics.UploadsTotal.Inc()
	}
	started := time.Now()

	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no file uploaded")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
	}

	inputName := filepath.Base(file.Filename)
	inputPath := filepath.Join(s.cfg.UploadDir, inputName)
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return s.generateFailed(c, fmt.Errorf("prepare upload dir: %w", err))
	}
	if err := c.SaveFile(file, inputPath); err != nil {
		return s.generateFailed(c, fmt.Errorf("save upload: %w", err))
	}

	// Decks for each request land in their own directory so concurrent
	// uploads cannot see each other's output.
	deckDir, err := os.MkdirTemp(s.cfg.OutputDir, "decks-")
	if err != nil {
		if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
			return s.generateFailed(c, fmt.Errorf("prepare output dir: %w", err))
		}
		deckDir, err = os.MkdirTemp(s.cfg.OutputDir, "decks-")
		if err != nil {
			return s.generateFailed(c, fmt.Errorf("prepare deck dir: %w", err))
		}
	}
	defer os.RemoveAll(deckDir)

	paths, err := s.gen.Generate(c.Context(), inputPath, deckDir, s.cfg.TemplatePath, s.cfg.IconDir)
	if err != nil {
		s.logger.Error("generation failed", "input", inputName, "error", err)
		return s.generateFailed(c, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error()))
	}

	stem := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	zipName := fmt.Sprintf("ACB_%s.zip", stem)
	zipPath := filepath.Join(s.cfg.OutputDir, zipName)
	if err := zipFiles(zipPath, paths); err != nil {
		return s.generateFailed(c, fmt.Errorf("build archive: %w", err))
	}

	if s.metrics != nil {
		s.metrics.DecksGenerated.Add(float64(len(paths)))
		s.metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.Info("archive ready", "input", inputName, "decks", len(paths), "zip", zipPath)

	return c.Download(zipPath, zipName)
}

func (s *Server) generateFailed(c *fiber.Ctx, err error) error {
	if s.metrics != nil {
		s.metrics.UploadFailures.Inc()
	}
	return err
}

// zipFiles writes the named files into a fresh zip archive, flat, keeping
// only base names.
func zipFiles(zipPath string, paths []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, p := range paths {
		if err := addToZip(zw, p); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
