package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/entity"
	"github.com/alkhaleej/docextract/internal/pipeline"
	"github.com/alkhaleej/docextract/internal/repository"
)

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello, World!"})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.store.Health(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleOCRProcessing accepts a multipart upload and runs it through the
// pipeline. Refusals and internal faults both surface as 500 with a
// detail message; a request without files is a 400.
func (s *Server) handleOCRProcessing(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid multipart form"})
	}

	req := entity.ProcessingRequest{
		RequestID:   c.FormValue("request_id"),
		ClientName:  c.FormValue("client_name"),
		PhoneNumber: c.FormValue("phone_number"),
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "No files provided"})
	}

	files := make([]entity.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": fmt.Sprintf("cannot read file %s", fh.Filename)})
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": fmt.Sprintf("cannot read file %s", fh.Filename)})
		}
		files = append(files, entity.UploadedFile{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Data:     data,
		})
	}

	ctx := common.WithRequestID(c.Context(), req.RequestID)
	resp, err := s.pipeline.Process(ctx, req, files)
	if err != nil {
		var refusal *pipeline.RefusalError
		switch {
		case errors.Is(err, common.ErrNoFiles):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "No files provided"})
		case errors.As(err, &refusal):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": refusal.Error()})
		default:
			s.logger.Error("processing.failed", "request_id", req.RequestID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
		}
	}
	return c.JSON(resp)
}

// collectionMiddleware resolves :collection and rejects anything outside
// the two known record collections.
func (s *Server) collectionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("collection")
		if !constants.KnownCollection(name) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "unknown collection"})
		}
		c.Locals("collection", s.store.Collection(name))
		return c.Next()
	}
}

func collectionFrom(c *fiber.Ctx) *repository.Collection {
	return c.Locals("collection").(*repository.Collection)
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	coll := collectionFrom(c)
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", repository.DefaultPageSize)

	recs, err := coll.GetAll(c.Context(), skip, limit)
	if err != nil {
		return storeError(c, err)
	}
	if recs == nil {
		recs = []map[string]string{}
	}
	return c.JSON(recs)
}

func (s *Server) handleCountRecords(c *fiber.Ctx) error {
	n, err := collectionFrom(c).Count(c.Context(), nil)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	rec, found, err := collectionFrom(c).GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "record not found"})
	}
	return c.JSON(rec)
}

func (s *Server) handleUpdateRecord(c *fiber.Ctx) error {
	var fields map[string]string
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body"})
	}
	modified, err := collectionFrom(c).Update(c.Context(), c.Params("id"), fields)
	if err != nil {
		return storeError(c, err)
	}
	if !modified {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "record not found"})
	}
	return c.JSON(fiber.Map{"modified": true})
}

func (s *Server) handleDeleteRecord(c *fiber.Ctx) error {
	deleted, err := collectionFrom(c).Delete(c.Context(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "record not found"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (s *Server) handleExportRecords(c *fiber.Ctx) error {
	coll := collectionFrom(c)
	out, err := s.exporter.ExportCollectionXLSX(c.Context(), coll)
	if err != nil {
		return storeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.xlsx", coll.Name()))
	return c.Send(out)
}

func storeError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
}
