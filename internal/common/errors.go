package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. Pipeline stages wrap these so callers can
// classify failures with errors.Is.
var (
	ErrNoFiles           = errors.New("no files supplied")
	ErrNotFound          = errors.New("resource not found")
	ErrDecode            = errors.New("document decode failed")
	ErrOCRService        = errors.New("ocr service failed")
	ErrExtractionService = errors.New("structured extraction failed")
	ErrStoreUnavailable  = errors.New("document store unavailable")
)

// NewAppError builds an AppError with the given code and cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError annotates err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
