package llm

import "strings"

// systemPrompt is the fixed extraction instruction. Values must match the
// source text exactly; unavailable fields stay empty strings.
const systemPrompt = `You are an expert document information extractor for Qatar documents.
Extract all available information from Qatar ID cards and Istimara (vehicle registration) documents.

Important instructions:
- Extract ALL information that is present in the context
- If a field is not mentioned or cannot be found, leave it as an empty string ""
- Be precise and accurate with dates, numbers, and names
- For names, extract both Arabic and English versions if available
- Ensure all extracted data matches the original context exactly`

// SystemPrompt returns the fixed system instruction.
func SystemPrompt() string { return systemPrompt }

// BuildUserPrompt wraps the concatenated OCR text for the extraction call.
func BuildUserPrompt(context string) string {
	var b strings.Builder
	b.WriteString("Extract Qatar ID and Istimara information from the following context:\n\n")
	b.WriteString(context)
	return b.String()
}
