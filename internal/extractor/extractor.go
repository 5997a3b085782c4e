// Package extractor converts raw uploaded file bytes into plain UTF-8 text.
// Dispatch is by declared file extension: PDFs use the embedded text layer
// with an OCR fallback for scanned documents, DOCX/DOC files are read from
// their document XML, audio files are sent to a speech-to-text provider, and
// plain text passes through unchanged. Extensions outside that set are
// rejected with an UnsupportedFormatError.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// OCRClient recognises text in a scanned document or image. Implementations
// must be safe to call from multiple goroutines.
type OCRClient interface {
	// Recognize returns the text found in data. filename carries the
	// extension the provider uses to pick its decoder.
	Recognize(ctx context.Context, data []byte, filename string) (string, error)
}

// Transcriber converts recorded speech to text. Implementations must be safe
// to call from multiple goroutines.
type Transcriber interface {
	// Transcribe returns the transcript of the audio in data.
	Transcribe(ctx context.Context, data []byte, filename string) (string, error)
}

// Extractor turns file bytes into plain text. Provider clients are injected
// at construction so tests can substitute fakes.
type Extractor struct {
	ocr         OCRClient
	transcriber Transcriber
}

// New constructs an Extractor. ocr may be nil, in which case scanned PDFs
// yield whatever the text layer contained (usually nothing). transcriber may
// be nil, in which case audio files fail with a ProviderError.
func New(ocr OCRClient, transcriber Transcriber) *Extractor {
	return &Extractor{ocr: ocr, transcriber: transcriber}
}

// Ext returns the lowercased extension of filename without the leading dot.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Extract converts data into plain text according to the file's declared
// extension. The extracted text is not cached — each call re-runs extraction.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	switch ext := Ext(filename); ext {
	case "pdf":
		return e.extractPDF(ctx, data, filename)
	case "docx", "doc":
		return extractDOCX(data)
	case "txt":
		return string(data), nil
	case "mp3", "wav", "m4a":
		if e.transcriber == nil {
			return "", errs.NewProvider("transcriber", fmt.Errorf("no transcription provider configured"))
		}
		text, err := e.transcriber.Transcribe(ctx, data, filename)
		if err != nil {
			return "", fmt.Errorf("extractor: transcription of %s failed: %w", filename, err)
		}
		return text, nil
	default:
		return "", errs.NewUnsupportedFormat(ext)
	}
}
