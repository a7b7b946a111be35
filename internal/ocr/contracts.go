package ocr

import "context"

// Result is the output of text extraction for one image. Confidence is the
// mean of per-token confidences in [0,1]; 0.0 when no tokens are detected.
type Result struct {
	Text       string
	Confidence float64
}

// TextExtractor is the interface the pipeline depends on.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (Result, error)
}
