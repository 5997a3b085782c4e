package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the embedded text layer page by page. When the whole
// document yields only whitespace — the signature of a scanned PDF — the raw
// bytes are handed to the OCR provider instead. A page whose text cannot be
// decoded is skipped rather than failing the document.
func (e *Extractor) extractPDF(ctx context.Context, data []byte, filename string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extractor: open pdf %s: %w", filename, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}

	text := sb.String()
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	// No text layer. Scanned PDFs carry their content as page images only.
	if e.ocr == nil {
		return text, nil
	}
	recognized, err := e.ocr.Recognize(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("extractor: ocr fallback for %s failed: %w", filename, err)
	}
	return recognized, nil
}
