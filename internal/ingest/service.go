package ingest

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/alkhaleej/docextract/internal/entity"
)

// Runner is the slice of the pipeline the ingest loop drives.
type Runner interface {
	Process(ctx context.Context, req entity.ProcessingRequest, files []entity.UploadedFile) (*entity.ProcessResponse, error)
}

// Service drains watcher events and pushes each discovered file through
// the pipeline. Hot-folder runs carry a generated request identifier and
// no recipient phone, so no notification goes out.
type Service struct {
	Pipeline   Runner
	ClientName string
	Logger     *slog.Logger
}

func NewService(pipeline Runner, clientName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if clientName == "" {
		clientName = "hot-folder"
	}
	return &Service{Pipeline: pipeline, ClientName: clientName, Logger: logger}
}

// Run consumes paths until the channel closes or ctx is cancelled.
// Per-file failures are logged and do not stop the loop.
func (s *Service) Run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			if err := s.IngestPath(ctx, path); err != nil {
				s.Logger.Error("ingest.file_failed", "path", path, "error", err)
			}
		}
	}
}

// IngestPath reads one file and runs it through the pipeline.
func (s *Service) IngestPath(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}

	req := entity.ProcessingRequest{
		RequestID:  uuid.NewString(),
		ClientName: s.ClientName,
	}
	file := entity.UploadedFile{
		Name:     filepath.Base(abs),
		MIMEType: mime.TypeByExtension(filepath.Ext(abs)),
		Size:     int64(len(data)),
		Data:     data,
	}

	resp, err := s.Pipeline.Process(ctx, req, []entity.UploadedFile{file})
	if err != nil {
		return err
	}
	s.Logger.Info("ingest.file_ok",
		"path", abs,
		"request_id", resp.RequestID,
		"pages", resp.FilesInfo[0].PagesProcessed)
	return nil
}
