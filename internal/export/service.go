// Package export produces XLSX workbooks from stored extraction records.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alkhaleej/docextract/constants"
)

// RecordLister is the slice of the repository the exporter needs.
type RecordLister interface {
	Name() string
	GetAll(ctx context.Context, skip, limit int) ([]map[string]string, error)
}

// Service is a tiny façade over a collection that produces XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const fetchPageSize = 500

// ExportCollectionXLSX renders every record of the collection into a
// single-sheet workbook. Columns are the record identifier, the request
// identifier, the collection's fields in canonical order, and the last
// update timestamp.
func (s *Service) ExportCollectionXLSX(ctx context.Context, coll RecordLister) ([]byte, error) {
	start := time.Now()

	fields := constants.FieldsForCollection(coll.Name())
	if fields == nil {
		return nil, fmt.Errorf("unknown collection %q", coll.Name())
	}

	f := excelize.NewFile()
	sheet := coll.Name()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Record ID", "Request ID"}
	for _, fd := range fields {
		headers = append(headers, fd.Label)
	}
	headers = append(headers, "Updated At")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v string) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	row := 2
	total := 0
	for skip := 0; ; skip += fetchPageSize {
		recs, err := coll.GetAll(ctx, skip, fetchPageSize)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
		}
		for _, r := range recs {
			write(1, row, r["_id"])
			write(2, row, r["request_id"])
			for i, fd := range fields {
				write(i+3, row, r[fd.Key])
			}
			write(len(fields)+3, row, r["updated_at"])
			row++
		}
		total += len(recs)
		if len(recs) < fetchPageSize {
			break
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"collection", coll.Name(),
		"rows", total,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
