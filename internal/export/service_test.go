package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alkhaleej/docextract/constants"
)

type fakeLister struct {
	name string
	recs []map[string]string
}

func (f *fakeLister) Name() string { return f.name }

func (f *fakeLister) GetAll(ctx context.Context, skip, limit int) ([]map[string]string, error) {
	if skip >= len(f.recs) {
		return nil, nil
	}
	end := skip + limit
	if end > len(f.recs) {
		end = len(f.recs)
	}
	return f.recs[skip:end], nil
}

func TestExportCollectionXLSX(t *testing.T) {
	coll := &fakeLister{name: constants.CollectionQatarID, recs: []map[string]string{
		{"_id": "a1", "request_id": "req-1", "id_no": "28912345678", "name": "AHMED", "updated_at": "2026-01-02T03:04:05Z"},
		{"_id": "b2", "request_id": "req-2", "id_no": "27700000001", "name": "FATIMA", "updated_at": "2026-01-03T03:04:05Z"},
	}}

	out, err := NewService(nil).ExportCollectionXLSX(context.Background(), coll)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(constants.CollectionQatarID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Record ID", rows[0][0])
	assert.Equal(t, "Request ID", rows[0][1])
	assert.Equal(t, constants.QatarIDFields[0].Label, rows[0][2])
	assert.Equal(t, "Updated At", rows[0][len(constants.QatarIDFields)+2])

	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "req-1", rows[1][1])
	assert.Equal(t, "28912345678", rows[1][2])
	assert.Equal(t, "b2", rows[2][0])
}

func TestExportUnknownCollection(t *testing.T) {
	_, err := NewService(nil).ExportCollectionXLSX(context.Background(), &fakeLister{name: "receipts"})
	assert.Error(t, err)
}

func TestExportEmptyCollection(t *testing.T) {
	out, err := NewService(nil).ExportCollectionXLSX(context.Background(), &fakeLister{name: constants.CollectionIstimara})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(constants.CollectionIstimara)
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
