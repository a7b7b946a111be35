package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/ingest"
	"github.com/alkhaleej/docextract/internal/llm/openai"
	"github.com/alkhaleej/docextract/internal/notify"
	"github.com/alkhaleej/docextract/internal/ocr"
	"github.com/alkhaleej/docextract/internal/pipeline"
	"github.com/alkhaleej/docextract/internal/rasterize"
	"github.com/alkhaleej/docextract/internal/repository"
	"github.com/alkhaleej/docextract/internal/server"
)

func main() {
	// Logger
	zlogger, _ := zap.NewProduction()
	defer zlogger.Sync()
	log := zlogger.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)

	cfg := common.LoadConfig()

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store
	store, err := repository.Open(cfg.Store, slogger)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer store.Close()
	if err := store.Health(); err != nil {
		log.Fatalf("store health failed: %v", err)
	}
	log.Infow("store health OK")

	// External clients
	visionx, err := ocr.NewVisionExtractor(ctx, ocr.Config{
		CredentialsFile: cfg.OCR.CredentialsFile,
		CallTimeout:     cfg.OCR.CallTimeout,
		OverallDeadline: cfg.OCR.OverallDeadline,
	}, slogger)
	if err != nil {
		log.Fatalf("creating vision client: %v", err)
	}
	defer visionx.Close()

	raster := rasterize.NewRasterizer(rasterize.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.RasterDPI,
	}, slogger)

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, slogger)

	whatsapp := notify.NewWhatsAppClient(notify.Config{
		Token:         cfg.WhatsApp.Token,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		BaseURL:       cfg.WhatsApp.BaseURL,
		Timeout:       cfg.WhatsApp.Timeout,
	}, slogger)

	proc := pipeline.NewProcessor(
		raster,
		visionx,
		extractor,
		store.Collection(constants.CollectionQatarID),
		store.Collection(constants.CollectionIstimara),
		whatsapp,
		slogger,
	)

	// Optional hot-folder ingestion
	if cfg.Ingest.WatchDir != "" {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:    []string{cfg.Ingest.WatchDir},
			Debounce: cfg.Ingest.Debounce,
		})
		if err != nil {
			log.Fatalf("starting ingest watcher: %v", err)
		}
		go ingest.NewService(proc, "", slogger).Run(ctx, paths)
		go func() {
			for err := range errs {
				log.Errorw("ingest watcher error", "error", err)
			}
		}()
		log.Infof("watching %s", cfg.Ingest.WatchDir)
	}

	srv := server.New(cfg.Server, proc, store, slogger)
	log.Infof("HTTP serving on %s", cfg.Server.Addr)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Errorw("shutdown", "error", err)
	}
}
