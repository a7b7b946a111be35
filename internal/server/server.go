// Package server exposes the pipeline and the stored records over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/entity"
	"github.com/alkhaleej/docextract/internal/export"
	"github.com/alkhaleej/docextract/internal/repository"
)

// Processor is the slice of the pipeline the HTTP surface drives.
type Processor interface {
	Process(ctx context.Context, req entity.ProcessingRequest, files []entity.UploadedFile) (*entity.ProcessResponse, error)
}

// Server wires the fiber app, the pipeline and the record store together.
type Server struct {
	app      *fiber.App
	cfg      common.ServerConfig
	pipeline Processor
	store    *repository.Store
	exporter *export.Service
	logger   *slog.Logger
}

// New builds the HTTP server with its middleware and routes.
func New(cfg common.ServerConfig, pipeline Processor, store *repository.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    64 << 20,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		pipeline: pipeline,
		store:    store,
		exporter: export.NewService(logger),
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	s.app.Get("/", s.handleRoot)
	s.app.Get("/health", s.handleHealth)
	s.app.Post("/ocr-processing", s.handleOCRProcessing)

	records := s.app.Group("/records/:collection", s.collectionMiddleware())
	records.Get("/", s.handleListRecords)
	records.Get("/count", s.handleCountRecords)
	records.Get("/export", s.handleExportRecords)
	records.Get("/:id", s.handleGetRecord)
	records.Patch("/:id", s.handleUpdateRecord)
	records.Delete("/:id", s.handleDeleteRecord)
}

// Start begins serving on the configured address.
func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown drains in-flight requests before returning.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
