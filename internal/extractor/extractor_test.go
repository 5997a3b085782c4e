package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// fakeOCR records whether it was called and returns a fixed result.
type fakeOCR struct {
	called bool
	text   string
	err    error
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte, _ string) (string, error) {
	f.called = true
	return f.text, f.err
}

// fakeTranscriber returns a fixed transcript.
type fakeTranscriber struct {
	called bool
	text   string
	err    error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	f.called = true
	return f.text, f.err
}

// makeDocx builds an in-memory .docx archive containing the given paragraphs.
func makeDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&doc, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := w.Write(doc.Bytes()); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// minimalScannedPDF builds a one-page PDF with an empty content stream —
// a stand-in for a scanned document whose pages carry no text layer.
// Cross-reference offsets are computed from the generated bytes so the file
// is structurally valid.
func minimalScannedPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 5)
	buf.WriteString("%PDF-1.4\n")
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>")
	writeObj(4, "<< /Length 0 >>\nstream\n\nendstream")
	xref := buf.Len()
	buf.WriteString("xref\n0 5\n0000000000 65535 f \n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func Test_Extract_UnsupportedExtensionRejected(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	for _, name := range []string{"payload.exe", "notes.xlsx", "archive.tar.gz", "noext"} {
		_, err := e.Extract(context.Background(), []byte("data"), name)
		if !errs.IsUnsupportedFormat(err) {
			t.Errorf("%s: want UnsupportedFormatError, got %v", name, err)
		}
	}
}

func Test_Extract_TxtPassthrough(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	text, err := e.Extract(context.Background(), []byte("plain contents\n"), "notes.TXT")
	if err != nil {
		t.Fatalf("extract txt: %v", err)
	}
	if text != "plain contents\n" {
		t.Errorf("txt passthrough altered content: %q", text)
	}
}

func Test_Extract_DocxParagraphs(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	data := makeDocx(t, "first paragraph", "second paragraph")
	text, err := e.Extract(context.Background(), data, "report.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "first paragraph\nsecond paragraph"
	if text != want {
		t.Errorf("docx text: want %q, got %q", want, text)
	}
}

func Test_Extract_DocxInvalidArchive(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	if _, err := e.Extract(context.Background(), []byte("not a zip"), "broken.docx"); err == nil {
		t.Error("want error for invalid docx archive, got nil")
	}
}

func Test_Extract_ScannedPDFTriggersOCRFallback(t *testing.T) {
	t.Parallel()
	ocr := &fakeOCR{text: "recognised page text"}
	e := New(ocr, nil)

	text, err := e.Extract(context.Background(), minimalScannedPDF(t), "scan.pdf")
	if err != nil {
		t.Fatalf("extract scanned pdf: %v", err)
	}
	if !ocr.called {
		t.Fatal("OCR fallback was not invoked for a PDF with no text layer")
	}
	if text != "recognised page text" {
		t.Errorf("want OCR text, got %q", text)
	}
}

func Test_Extract_ScannedPDFWithoutOCRYieldsEmpty(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	text, err := e.Extract(context.Background(), minimalScannedPDF(t), "scan.pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Errorf("want blank text without OCR client, got %q", text)
	}
}

func Test_Extract_OCRFailurePropagates(t *testing.T) {
	t.Parallel()
	ocr := &fakeOCR{err: errors.New("quota exceeded")}
	e := New(ocr, nil)

	if _, err := e.Extract(context.Background(), minimalScannedPDF(t), "scan.pdf"); err == nil {
		t.Error("want OCR failure to propagate, got nil")
	}
}

func Test_Extract_InvalidPDFRejected(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	if _, err := e.Extract(context.Background(), []byte("%PDF-garbage"), "broken.pdf"); err == nil {
		t.Error("want error for malformed pdf, got nil")
	}
}

func Test_Extract_AudioUsesTranscriber(t *testing.T) {
	t.Parallel()
	tr := &fakeTranscriber{text: "meeting transcript"}
	e := New(nil, tr)

	for _, name := range []string{"call.mp3", "memo.wav", "note.m4a"} {
		tr.called = false
		text, err := e.Extract(context.Background(), []byte{0x00}, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !tr.called {
			t.Errorf("%s: transcriber not invoked", name)
		}
		if text != "meeting transcript" {
			t.Errorf("%s: want transcript, got %q", name, text)
		}
	}
}

func Test_Extract_AudioWithoutTranscriberFails(t *testing.T) {
	t.Parallel()
	e := New(nil, nil)

	_, err := e.Extract(context.Background(), []byte{0x00}, "call.mp3")
	if !errs.IsProvider(err) {
		t.Errorf("want ProviderError without transcriber, got %v", err)
	}
}
