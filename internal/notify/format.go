// Package notify renders extraction results into WhatsApp text messages
// and dispatches them through the Meta Graph API.
package notify

import (
	"strings"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/entity"
)

// BuildMessage renders the fixed notification template: request ID, client
// name, then the two labeled sections listing only the non-empty fields of
// each record, in canonical field order.
func BuildMessage(req entity.ProcessingRequest, data entity.DocumentExtractionResponse) string {
	var b strings.Builder
	b.WriteString("Document Extraction Completed\n")
	b.WriteString("Request ID: ")
	b.WriteString(req.RequestID)
	b.WriteString("\nClient: ")
	b.WriteString(req.ClientName)
	b.WriteString("\n")

	writeSection(&b, "*Qatar ID*", constants.QatarIDFields, entity.ToMap(data.QatarID))
	writeSection(&b, "*Istimara*", constants.IstimaraFields, entity.ToMap(data.Istimara))

	return b.String()
}

func writeSection(b *strings.Builder, title string, fields []constants.FieldDef, values map[string]string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	empty := true
	for _, f := range fields {
		v := values[f.Key]
		if v == "" {
			continue
		}
		empty = false
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	if empty {
		b.WriteString("No fields detected\n")
	}
}
