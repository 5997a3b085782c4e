// Package errs defines the error taxonomy shared across the ingestion and
// retrieval pipelines. Handlers use [errors.As] to map these onto HTTP
// responses: validation failures become 400s, unsupported formats become
// per-file "rejected-type" results, and provider failures surface the
// upstream message in a 500.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	// Field is the name of the offending request field.
	Field string
	// Reason describes what is wrong with the field.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NewValidation constructs a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// UnsupportedFormatError reports a file extension the extractor has no
// handler for.
type UnsupportedFormatError struct {
	// Ext is the lowercased file extension without the leading dot.
	Ext string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q", e.Ext)
}

// NewUnsupportedFormat constructs an UnsupportedFormatError for ext.
func NewUnsupportedFormat(ext string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Ext: ext}
}

// ProviderError wraps a failure from an upstream provider (embedding, vector
// store, object storage, completion model, OCR, transcription). The upstream
// message is preserved so it can be surfaced to the caller.
type ProviderError struct {
	// Provider names the upstream service ("openai", "qdrant", "storage", ...).
	Provider string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *ProviderError) Unwrap() error { return e.Err }

// NewProvider wraps err as a ProviderError attributed to provider.
func NewProvider(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnsupportedFormat reports whether err is (or wraps) an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}

// IsProvider reports whether err is (or wraps) a ProviderError.
func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
