package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/llm/openai"
	"github.com/alkhaleej/docextract/internal/ocr"
	"github.com/alkhaleej/docextract/internal/rasterize"
)

// runextract runs the OCR and extraction stages over local files and
// prints the structured result, without touching the store or sending
// notifications.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage", "cmd", "runextract <file> [file...]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	visionx, err := ocr.NewVisionExtractor(ctx, ocr.Config{
		CredentialsFile: cfg.OCR.CredentialsFile,
		CallTimeout:     cfg.OCR.CallTimeout,
		OverallDeadline: cfg.OCR.OverallDeadline,
	}, logger)
	if err != nil {
		logger.Error("create vision client", "error", err)
		os.Exit(1)
	}
	defer visionx.Close()

	raster := rasterize.NewRasterizer(rasterize.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.RasterDPI,
	}, logger)

	var fileTexts []string
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read file", "path", path, "error", err)
			os.Exit(1)
		}

		var pages [][]byte
		if constants.MapExtToFormat(filepath.Ext(path)) == constants.PDF {
			rendered, err := raster.Pages(ctx, data)
			if err != nil {
				logger.Error("rasterize", "path", path, "error", err)
				os.Exit(1)
			}
			for _, pg := range rendered {
				pages = append(pages, pg.PNG)
			}
		} else {
			pages = [][]byte{data}
		}

		var pageTexts []string
		for i, page := range pages {
			res, err := visionx.Extract(ctx, page)
			if err != nil {
				logger.Error("ocr failed", "path", path, "page", i+1, "error", err)
				os.Exit(1)
			}
			pageTexts = append(pageTexts, res.Text)
		}
		if text := strings.Join(pageTexts, "\n"); text != "" {
			fileTexts = append(fileTexts, text)
		}
	}

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	start := time.Now()
	outcome, err := extractor.ExtractDocuments(ctx, strings.Join(fileTexts, "\n\n"))
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if outcome.Refused() {
		_ = enc.Encode(outcome.Refusal)
		os.Exit(1)
	}
	_ = enc.Encode(outcome.Response)
}
