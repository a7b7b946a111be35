// Package pipeline orchestrates a processing request end to end: decode
// the uploaded files, OCR every page, run structured extraction once over
// the combined text, persist the two records, and notify the client.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/entity"
	"github.com/alkhaleej/docextract/internal/llm"
	"github.com/alkhaleej/docextract/internal/notify"
	"github.com/alkhaleej/docextract/internal/ocr"
	"github.com/alkhaleej/docextract/internal/rasterize"
)

// Rasterizer turns a PDF byte stream into ordered page images.
type Rasterizer interface {
	Pages(ctx context.Context, pdf []byte) ([]rasterize.PageImage, error)
}

// RecordStore is the slice of the repository a processing run needs: it
// only ever creates documents.
type RecordStore interface {
	Create(ctx context.Context, data map[string]string) (string, error)
}

// RefusalError is returned when the model declines to process the
// supplied content. Nothing is persisted and no notification goes out.
type RefusalError struct {
	Refusal entity.Refusal
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("extraction refused: %s", e.Refusal.RefusalMessage)
}

// Processor wires the pipeline stages together. All collaborators are
// interfaces so runs can be exercised without external services.
type Processor struct {
	Raster   Rasterizer
	OCR      ocr.TextExtractor
	LLM      llm.FieldExtractor
	QatarIDs RecordStore
	Istimara RecordStore
	Notifier notify.Dispatcher
	Logger   *slog.Logger
}

// NewProcessor builds a Processor. A nil logger falls back to the default.
func NewProcessor(raster Rasterizer, ocrc ocr.TextExtractor, extractor llm.FieldExtractor, qatarIDs, istimara RecordStore, notifier notify.Dispatcher, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Raster:   raster,
		OCR:      ocrc,
		LLM:      extractor,
		QatarIDs: qatarIDs,
		Istimara: istimara,
		Notifier: notifier,
		Logger:   logger,
	}
}

// Process runs one request through the full pipeline and assembles the
// response body. The two persistence writes are independent; a request
// identifier is stamped onto both records for correlation.
func (p *Processor) Process(ctx context.Context, req entity.ProcessingRequest, files []entity.UploadedFile) (*entity.ProcessResponse, error) {
	log := p.Logger.With("request_id", req.RequestID)
	log.Info("pipeline.start", "client", req.ClientName, "files", len(files))

	if len(files) == 0 {
		return nil, common.ErrNoFiles
	}

	var (
		filesInfo []entity.FileInfo
		fileTexts []string
	)
	for _, f := range files {
		pages, err := p.pagesFor(ctx, log, f)
		if err != nil {
			return nil, err
		}

		var pageTexts []string
		for i, page := range pages {
			res, err := p.OCR.Extract(ctx, page)
			if err != nil {
				return nil, fmt.Errorf("ocr %s page %d: %w", f.Name, i+1, err)
			}
			log.Debug("pipeline.page_ocr",
				"file", f.Name,
				"page", i+1,
				"chars", len(res.Text),
				"confidence", res.Confidence)
			pageTexts = append(pageTexts, res.Text)
		}

		text := strings.Join(pageTexts, "\n")
		filesInfo = append(filesInfo, entity.FileInfo{
			FileName:            f.Name,
			FileSize:            f.Size,
			MIMEType:            f.MIMEType,
			PagesProcessed:      len(pages),
			ExtractedTextLength: len(text),
		})
		if text != "" {
			fileTexts = append(fileTexts, text)
		}
	}

	combined := strings.Join(fileTexts, "\n\n")
	log.Info("pipeline.ocr_done", "files", len(filesInfo), "chars", len(combined))

	outcome, err := p.LLM.ExtractDocuments(ctx, combined)
	if err != nil {
		return nil, err
	}
	if outcome.Refused() {
		log.Warn("pipeline.extraction_refused", "message", outcome.Refusal.RefusalMessage)
		return nil, &RefusalError{Refusal: *outcome.Refusal}
	}
	data := *outcome.Response

	qatarID := entity.ToMap(data.QatarID)
	qatarID["request_id"] = req.RequestID
	qatarDocID, err := p.QatarIDs.Create(ctx, qatarID)
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", constants.CollectionQatarID, err)
	}

	istimara := entity.ToMap(data.Istimara)
	istimara["request_id"] = req.RequestID
	istimaraDocID, err := p.Istimara.Create(ctx, istimara)
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", constants.CollectionIstimara, err)
	}
	log.Info("pipeline.persisted", "qatar_id", qatarDocID, "istimara_id", istimaraDocID)

	sent := notify.Result{}
	if p.Notifier != nil {
		sent = p.Notifier.SendText(ctx, req.PhoneNumber, notify.BuildMessage(req, data))
	}

	resp := &entity.ProcessResponse{
		Success:        true,
		RequestID:      req.RequestID,
		ClientName:     req.ClientName,
		PhoneNumber:    req.PhoneNumber,
		FilesProcessed: len(filesInfo),
		FilesInfo:      filesInfo,
		ExtractedData:  data,
		WhatsAppSent:   sent.Sent,
		WhatsAppError:  sent.Error,
	}
	log.Info("pipeline.done", "files", resp.FilesProcessed, "whatsapp_sent", resp.WhatsAppSent)
	return resp, nil
}

// pagesFor turns one uploaded file into the page images to OCR. PDFs are
// rasterized; anything else must decode as a supported raster image. A
// file that cannot be decoded contributes zero pages rather than failing
// the whole request.
func (p *Processor) pagesFor(ctx context.Context, log *slog.Logger, f entity.UploadedFile) ([][]byte, error) {
	format := constants.MapMIMEToFormat(f.MIMEType)
	if format == "" {
		format = constants.MapExtToFormat(filepath.Ext(f.Name))
	}

	if format == constants.PDF {
		pages, err := p.Raster.Pages(ctx, f.Data)
		if errors.Is(err, common.ErrDecode) {
			log.Warn("pipeline.pdf_skipped", "file", f.Name, "error", err)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", f.Name, err)
		}
		out := make([][]byte, 0, len(pages))
		for _, pg := range pages {
			out = append(out, pg.PNG)
		}
		return out, nil
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err != nil {
		log.Warn("pipeline.image_skipped", "file", f.Name, "error", err)
		return nil, nil
	}
	return [][]byte{f.Data}, nil
}
