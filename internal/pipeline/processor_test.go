package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/entity"
	"github.com/alkhaleej/docextract/internal/llm"
	"github.com/alkhaleej/docextract/internal/notify"
	"github.com/alkhaleej/docextract/internal/ocr"
	"github.com/alkhaleej/docextract/internal/rasterize"
)

type fakeRaster struct {
	pages []rasterize.PageImage
	err   error
	calls int
}

func (f *fakeRaster) Pages(ctx context.Context, pdf []byte) ([]rasterize.PageImage, error) {
	f.calls++
	return f.pages, f.err
}

type fakeOCR struct {
	texts []string
	err   error
	calls int
}

func (f *fakeOCR) Extract(ctx context.Context, img []byte) (ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	text := ""
	if len(f.texts) > 0 {
		text = f.texts[0]
		f.texts = f.texts[1:]
	}
	return ocr.Result{Text: text, Confidence: 0.9}, nil
}

type fakeLLM struct {
	outcome llm.Outcome
	err     error
	gotText string
	calls   int
}

func (f *fakeLLM) ExtractDocuments(ctx context.Context, text string) (llm.Outcome, error) {
	f.calls++
	f.gotText = text
	return f.outcome, f.err
}

type fakeStore struct {
	created []map[string]string
	err     error
}

func (f *fakeStore) Create(ctx context.Context, data map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, data)
	return "doc-1", nil
}

type fakeNotifier struct {
	result   notify.Result
	gotPhone string
	gotBody  string
	calls    int
}

func (f *fakeNotifier) SendText(ctx context.Context, phone, body string) notify.Result {
	f.calls++
	f.gotPhone = phone
	f.gotBody = body
	return f.result
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func okOutcome() llm.Outcome {
	return llm.Outcome{Response: &entity.DocumentExtractionResponse{
		QatarID:  entity.QatarID{IDNo: "28912345678", Name: "AHMED HASSAN"},
		Istimara: entity.Istimara{VehicleNumber: "123456"},
	}}
}

func testReq() entity.ProcessingRequest {
	return entity.ProcessingRequest{
		RequestID:   "req-42",
		ClientName:  "Al Khaleej Trading",
		PhoneNumber: "97455512345",
	}
}

func TestProcessEndToEnd(t *testing.T) {
	raster := &fakeRaster{pages: []rasterize.PageImage{
		{Index: 1, PNG: []byte("p1")},
		{Index: 2, PNG: []byte("p2")},
	}}
	ocrc := &fakeOCR{texts: []string{"page one", "page two", "jpeg text"}}
	extractor := &fakeLLM{outcome: okOutcome()}
	qatarIDs := &fakeStore{}
	istimaras := &fakeStore{}
	notifier := &fakeNotifier{result: notify.Result{Sent: true}}

	p := NewProcessor(raster, ocrc, extractor, qatarIDs, istimaras, notifier, nil)
	files := []entity.UploadedFile{
		{Name: "scan.pdf", MIMEType: "application/pdf", Size: 100, Data: []byte("%PDF")},
		{Name: "card.jpg", MIMEType: "image/jpeg", Size: 50, Data: pngBytes(t)},
	}

	resp, err := p.Process(context.Background(), testReq(), files)
	require.NoError(t, err)

	// 2 PDF pages + 1 image = 3 OCR calls; one extraction call over the
	// combined text: pages joined with \n, files with a blank line.
	assert.Equal(t, 3, ocrc.calls)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, "page one\npage two\n\njpeg text", extractor.gotText)

	require.Len(t, resp.FilesInfo, 2)
	assert.Equal(t, 2, resp.FilesInfo[0].PagesProcessed)
	assert.Equal(t, len("page one\npage two"), resp.FilesInfo[0].ExtractedTextLength)
	assert.Equal(t, 1, resp.FilesInfo[1].PagesProcessed)

	require.Len(t, qatarIDs.created, 1)
	require.Len(t, istimaras.created, 1)
	assert.Equal(t, "req-42", qatarIDs.created[0]["request_id"])
	assert.Equal(t, "28912345678", qatarIDs.created[0]["id_no"])
	assert.Equal(t, "req-42", istimaras.created[0]["request_id"])
	assert.Equal(t, "123456", istimaras.created[0]["vehicle_number"])

	assert.True(t, resp.Success)
	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, 2, resp.FilesProcessed)
	assert.True(t, resp.WhatsAppSent)
	assert.Empty(t, resp.WhatsAppError)
	assert.Equal(t, "97455512345", notifier.gotPhone)
	assert.Contains(t, notifier.gotBody, "Request ID: req-42")
}

func TestProcessNoFiles(t *testing.T) {
	p := NewProcessor(&fakeRaster{}, &fakeOCR{}, &fakeLLM{}, &fakeStore{}, &fakeStore{}, &fakeNotifier{}, nil)
	_, err := p.Process(context.Background(), testReq(), nil)
	assert.ErrorIs(t, err, common.ErrNoFiles)
}

func TestProcessCorruptPDFSkipped(t *testing.T) {
	raster := &fakeRaster{err: common.ErrDecode}
	ocrc := &fakeOCR{texts: []string{"image text"}}
	extractor := &fakeLLM{outcome: okOutcome()}

	p := NewProcessor(raster, ocrc, extractor, &fakeStore{}, &fakeStore{}, &fakeNotifier{result: notify.Result{Sent: true}}, nil)
	files := []entity.UploadedFile{
		{Name: "broken.pdf", MIMEType: "application/pdf", Data: []byte("junk")},
		{Name: "good.png", MIMEType: "image/png", Data: pngBytes(t)},
	}

	resp, err := p.Process(context.Background(), testReq(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.FilesInfo[0].PagesProcessed)
	assert.Equal(t, 1, resp.FilesInfo[1].PagesProcessed)
	// the corrupt file contributes nothing to the combined text
	assert.Equal(t, "image text", extractor.gotText)
}

func TestProcessUndecodableImageSkipped(t *testing.T) {
	extractor := &fakeLLM{outcome: okOutcome()}
	p := NewProcessor(&fakeRaster{}, &fakeOCR{}, extractor, &fakeStore{}, &fakeStore{}, &fakeNotifier{}, nil)
	files := []entity.UploadedFile{
		{Name: "noise.jpg", MIMEType: "image/jpeg", Data: []byte("not an image")},
	}

	resp, err := p.Process(context.Background(), testReq(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.FilesInfo[0].PagesProcessed)
	assert.Equal(t, "", extractor.gotText)
}

func TestProcessExtensionFallback(t *testing.T) {
	// octet-stream MIME with a .pdf name still routes through the
	// rasterizer.
	raster := &fakeRaster{pages: []rasterize.PageImage{{Index: 1, PNG: []byte("p")}}}
	p := NewProcessor(raster, &fakeOCR{texts: []string{"t"}}, &fakeLLM{outcome: okOutcome()},
		&fakeStore{}, &fakeStore{}, &fakeNotifier{}, nil)

	_, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "scan.PDF", MIMEType: "application/octet-stream", Data: []byte("%PDF")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, raster.calls)
}

func TestProcessOCRFailurePropagates(t *testing.T) {
	ocrc := &fakeOCR{err: common.ErrOCRService}
	qatarIDs := &fakeStore{}
	p := NewProcessor(&fakeRaster{}, ocrc, &fakeLLM{}, qatarIDs, &fakeStore{}, &fakeNotifier{}, nil)

	_, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})
	assert.ErrorIs(t, err, common.ErrOCRService)
	assert.Empty(t, qatarIDs.created)
}

func TestProcessRefusalAbortsBeforePersistence(t *testing.T) {
	extractor := &fakeLLM{outcome: llm.Outcome{Refusal: &entity.Refusal{
		Error:          "Request was refused",
		RefusalMessage: "cannot process this content",
	}}}
	qatarIDs := &fakeStore{}
	istimaras := &fakeStore{}
	notifier := &fakeNotifier{}

	p := NewProcessor(&fakeRaster{}, &fakeOCR{texts: []string{"text"}}, extractor, qatarIDs, istimaras, notifier, nil)
	_, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})

	var refusal *RefusalError
	require.ErrorAs(t, err, &refusal)
	assert.Equal(t, "cannot process this content", refusal.Refusal.RefusalMessage)
	assert.Empty(t, qatarIDs.created)
	assert.Empty(t, istimaras.created)
	assert.Zero(t, notifier.calls)
}

func TestProcessExtractionErrorPropagates(t *testing.T) {
	extractor := &fakeLLM{err: common.ErrExtractionService}
	qatarIDs := &fakeStore{}
	p := NewProcessor(&fakeRaster{}, &fakeOCR{texts: []string{"text"}}, extractor, qatarIDs, &fakeStore{}, &fakeNotifier{}, nil)

	_, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})
	assert.ErrorIs(t, err, common.ErrExtractionService)
	assert.Empty(t, qatarIDs.created)
}

func TestProcessPersistenceFailure(t *testing.T) {
	istimaras := &fakeStore{err: common.ErrStoreUnavailable}
	notifier := &fakeNotifier{}
	p := NewProcessor(&fakeRaster{}, &fakeOCR{texts: []string{"text"}}, &fakeLLM{outcome: okOutcome()},
		&fakeStore{}, istimaras, notifier, nil)

	_, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Zero(t, notifier.calls)
}

func TestProcessNotificationFailureIsNotFatal(t *testing.T) {
	notifier := &fakeNotifier{result: notify.Result{Sent: false, Error: "provider error: status 401"}}
	p := NewProcessor(&fakeRaster{}, &fakeOCR{texts: []string{"text"}}, &fakeLLM{outcome: okOutcome()},
		&fakeStore{}, &fakeStore{}, notifier, nil)

	resp, err := p.Process(context.Background(), testReq(), []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.WhatsAppSent)
	assert.Equal(t, "provider error: status 401", resp.WhatsAppError)
}

func TestProcessEmptyPhoneStillSucceeds(t *testing.T) {
	notifier := &fakeNotifier{result: notify.Result{Sent: false, Error: "no recipient phone number"}}
	p := NewProcessor(&fakeRaster{}, &fakeOCR{texts: []string{"text"}}, &fakeLLM{outcome: okOutcome()},
		&fakeStore{}, &fakeStore{}, notifier, nil)

	req := testReq()
	req.PhoneNumber = ""
	resp, err := p.Process(context.Background(), req, []entity.UploadedFile{
		{Name: "card.png", MIMEType: "image/png", Data: pngBytes(t)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.WhatsAppSent)
}

func TestRefusalErrorMessage(t *testing.T) {
	err := &RefusalError{Refusal: entity.Refusal{RefusalMessage: "nope"}}
	assert.True(t, strings.Contains(err.Error(), "nope"))
	assert.False(t, errors.Is(err, common.ErrExtractionService))
}
