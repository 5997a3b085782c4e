package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askdocs/askdocs-go/internal/ingestion"
)

// ---------------------------------------------------------------------------
// POST /api/files/upload
// ---------------------------------------------------------------------------

func TestHandleUpload_Success(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{}
	s := newTestServer(t, Deps{Ingester: ing}, nil)

	body, contentType := multipartBody(t, "files",
		map[string][]byte{"report.pdf": []byte("%PDF-")},
		map[string][]string{"index_name": {"contracts"}})
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ing.gotIndex != "contracts" {
		t.Errorf("index name %q, want contracts", ing.gotIndex)
	}
	if len(ing.gotFiles) != 1 || ing.gotFiles[0].Name != "report.pdf" {
		t.Errorf("ingested files %+v", ing.gotFiles)
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Status != ingestion.StatusIndexed {
		t.Errorf("results %+v", resp.Results)
	}
}

// TestHandleUpload_MixedResultsStill200 verifies the batch contract: per-file
// failures are reported inline while the HTTP status stays 200.
func TestHandleUpload_MixedResultsStill200(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{results: []ingestion.FileResult{
		{Filename: "good.pdf", Status: ingestion.StatusIndexed, ChunksIndexed: 3},
		{Filename: "payload.exe", Status: ingestion.StatusRejectedType, Error: `unsupported file format "exe"`},
		{Filename: "broken.docx", Status: ingestion.StatusError, Error: "extraction failed"},
	}}
	s := newTestServer(t, Deps{Ingester: ing}, nil)

	body, contentType := multipartBody(t, "files", map[string][]byte{
		"good.pdf":    []byte("a"),
		"payload.exe": []byte("b"),
		"broken.docx": []byte("c"),
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for mixed results, got %d", w.Code)
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	statuses := map[string]int{}
	for _, r := range resp.Results {
		statuses[r.Status]++
	}
	if statuses[ingestion.StatusIndexed] != 1 || statuses[ingestion.StatusRejectedType] != 1 || statuses[ingestion.StatusError] != 1 {
		t.Errorf("status breakdown %v", statuses)
	}
}

func TestHandleUpload_MissingFilesField(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	body, contentType := multipartBody(t, "files", nil,
		map[string][]string{"index_name": {"general"}})
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleUpload_NotMultipart(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/images/upload and /api/images/caption
// ---------------------------------------------------------------------------

func TestHandleImageUpload_PairsFilesWithCaptions(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{}
	s := newTestServer(t, Deps{Ingester: ing}, nil)

	body, contentType := multipartBody(t, "files",
		map[string][]byte{"chart.png": {0x89}},
		map[string][]string{
			"captions":   {"A bar chart."},
			"index_name": {"photos"},
		})
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ing.gotCaptions) != 1 || ing.gotCaptions[0] != "A bar chart." {
		t.Errorf("captions %v", ing.gotCaptions)
	}
	if ing.gotIndex != "photos" {
		t.Errorf("index %q", ing.gotIndex)
	}
}

func TestHandleImageUpload_CaptionCountMismatch(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	body, contentType := multipartBody(t, "files",
		map[string][]byte{"a.png": {0x00}, "b.png": {0x00}},
		map[string][]string{"captions": {"only one"}})
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for mismatched captions, got %d", w.Code)
	}
}

func TestHandleImageCaption_Success(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{Captioner: &fakeCaptioner{caption: "A whiteboard diagram."}}, nil)

	body, contentType := multipartBody(t, "image",
		map[string][]byte{"board.jpg": {0xff, 0xd8}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/images/caption", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp captionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Filename != "board.jpg" || resp.Caption != "A whiteboard diagram." {
		t.Errorf("response %+v", resp)
	}
}

func TestHandleImageCaption_NotConfigured(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	body, contentType := multipartBody(t, "image",
		map[string][]byte{"board.jpg": {0x00}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/images/caption", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a captioner, got %d", w.Code)
	}
}
