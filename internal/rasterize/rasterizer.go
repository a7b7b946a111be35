// Package rasterize renders PDF byte streams into ordered page images.
package rasterize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/alkhaleej/docextract/internal/common"
)

// DefaultDPI renders pages at twice the PDF's native 72-point resolution,
// i.e. a 2x linear upscale, before OCR.
const DefaultDPI = 144

// PageImage is one rendered PDF page, losslessly PNG-encoded.
// Index is zero-based and follows document page order.
type PageImage struct {
	Index int
	PNG   []byte
}

// Config for the rasterizer.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // default DefaultDPI
	MaxPages int    // 0 = no limit
}

// Rasterizer shells out to pdftoppm to render pages.
type Rasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRasterizer(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Rasterizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewRasterizerWithRunner is used by tests to stub the external command.
func NewRasterizerWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Rasterizer {
	r := NewRasterizer(cfg, logger)
	r.runner = runner
	return r
}

// Pages renders every page of the PDF stream in page order. A zero-page
// document yields an empty slice and no error. A corrupt or unparsable
// stream yields a decode error wrapping common.ErrDecode; callers that
// batch multiple files are expected to skip that file rather than abort.
func (r *Rasterizer) Pages(ctx context.Context, pdf []byte) ([]PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "docextract-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create raster temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("raster temp dir cleanup failed", "dir", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf stream: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 144 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", in, prefix)
	if err != nil {
		r.logger.Error("pdf rasterization failed", "error", err, "stderr", truncate(string(errb), 2<<10))
		return nil, fmt.Errorf("%w: pdftoppm: %v", common.ErrDecode, err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPages(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}

	pages := make([]PageImage, 0, len(matches))
	for i, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read rendered page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{Index: i, PNG: b})
	}
	r.logger.Debug("pdf rasterized", "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, nil
}

// sortPages orders pdftoppm output names numerically: page-2.png before
// page-10.png. Plain string sort would interleave them.
func sortPages(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return pageNum(paths[i]) < pageNum(paths[j])
	})
}

func pageNum(path string) int {
	base := filepath.Base(path)
	// page-<n>.png
	var n int
	_, err := fmt.Sscanf(base, "page-%d.png", &n)
	if err != nil {
		return 0
	}
	return n
}
