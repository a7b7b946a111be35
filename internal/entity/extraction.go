package entity

import "encoding/json"

// DocumentExtractionResponse is the fixed two-record output shape of the
// structured extraction call. Both sub-records are always present, possibly
// all-empty; the pair is atomic.
type DocumentExtractionResponse struct {
	QatarID  QatarID  `json:"qatar_id"`
	Istimara Istimara `json:"istimara"`
}

// Refusal is the payload returned when the model declines to process the
// content. It is a normal, expected outcome, not a transport failure, and
// never carries record keys.
type Refusal struct {
	Error          string `json:"error"`
	RefusalMessage string `json:"refusal_message"`
}

// ProcessingRequest carries the caller-supplied correlation identifiers
// end-to-end: they are echoed in the response and in the outbound
// notification.
type ProcessingRequest struct {
	RequestID   string `json:"request_id"`
	ClientName  string `json:"client_name"`
	PhoneNumber string `json:"phone_number"`
}

// UploadedFile is one file part of a processing request. Transient; it
// exists only for the duration of the request.
type UploadedFile struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// FileInfo summarizes the pipeline's handling of one uploaded file.
type FileInfo struct {
	FileName            string `json:"file_name"`
	FileSize            int64  `json:"file_size"`
	MIMEType            string `json:"mime_type"`
	PagesProcessed      int    `json:"pages_processed"`
	ExtractedTextLength int    `json:"extracted_text_length"`
}

// ProcessResponse is the success body of POST /ocr-processing.
type ProcessResponse struct {
	Success        bool                       `json:"success"`
	RequestID      string                     `json:"request_id"`
	ClientName     string                     `json:"client_name"`
	PhoneNumber    string                     `json:"phone_number"`
	FilesProcessed int                        `json:"files_processed"`
	FilesInfo      []FileInfo                 `json:"files_info"`
	ExtractedData  DocumentExtractionResponse `json:"extracted_data"`
	WhatsAppSent   bool                       `json:"whatsapp_sent"`
	WhatsAppError  string                     `json:"whatsapp_error,omitempty"`
}

// ToMap flattens a record struct into a string-keyed map for persistence
// and formatting. Both record types carry only string fields.
func ToMap(record any) map[string]string {
	b, err := json.Marshal(record)
	if err != nil {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]string{}
	}
	return m
}
