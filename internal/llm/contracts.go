package llm

import (
	"context"

	"github.com/alkhaleej/docextract/internal/entity"
)

// Outcome is the tagged result of a structured extraction call: exactly one
// of Response or Refusal is set. A refusal is a normal, expected outcome and
// deliberately stays out of the error channel; transport and schema
// failures are returned as errors instead.
type Outcome struct {
	Response *entity.DocumentExtractionResponse
	Refusal  *entity.Refusal
}

// Refused reports whether the model declined to process the content.
func (o Outcome) Refused() bool { return o.Refusal != nil }

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractDocuments(ctx context.Context, text string) (Outcome, error)
}
