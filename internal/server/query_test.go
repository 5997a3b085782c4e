package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askdocs/askdocs-go/internal/errs"
	"github.com/askdocs/askdocs-go/internal/rag"
	"github.com/askdocs/askdocs-go/internal/retrieval"
)

// ---------------------------------------------------------------------------
// POST /api/retrieve/query
// ---------------------------------------------------------------------------

func TestHandleQuery_Success(t *testing.T) {
	t.Parallel()

	q := &fakeRAGQuerier{result: &retrieval.Result{
		Query:  "What is the refund window?",
		Answer: "30 days.",
		Hits: []rag.Hit{
			{Score: 0.9, Filename: "policy.pdf", FileKey: "general/policy.pdf", Text: "Refunds within 30 days."},
		},
		SignedURLs: []string{"https://signed.example/general/policy.pdf"},
	}}
	s := newTestServer(t, Deps{Querier: q}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"query":"What is the refund window?","index_name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if q.gotIndex != "general" || q.gotQuery != "What is the refund window?" {
		t.Errorf("querier received %q / %q", q.gotIndex, q.gotQuery)
	}

	var resp retrieval.Result
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "30 days." {
		t.Errorf("answer %q", resp.Answer)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].Filename != "policy.pdf" {
		t.Errorf("hits %+v", resp.Hits)
	}
	if len(resp.SignedURLs) != 1 {
		t.Errorf("signed urls %v", resp.SignedURLs)
	}
}

func TestHandleQuery_MissingQueryNamesField(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"index_name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "query") {
		t.Errorf("error body must name the missing field, got %s", w.Body.String())
	}
}

func TestHandleQuery_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleQuery_MissingIndexNameNamesField(t *testing.T) {
	t.Parallel()

	q := &fakeRAGQuerier{result: &retrieval.Result{Answer: "I don't know"}}
	s := newTestServer(t, Deps{Querier: q}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"query":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "index_name") {
		t.Errorf("error body must name the missing field, got %s", w.Body.String())
	}
	if q.gotQuery != "" {
		t.Error("pipeline must not run without an index name")
	}
}

// TestHandleQuery_ProviderFailureSurfacesMessage verifies the all-or-nothing
// contract: a provider failure anywhere in the pipeline becomes a 500 whose
// body carries the upstream message.
func TestHandleQuery_ProviderFailureSurfacesMessage(t *testing.T) {
	t.Parallel()

	q := &fakeRAGQuerier{err: errs.NewProvider("openai embedder", errors.New("insufficient quota"))}
	s := newTestServer(t, Deps{Querier: q}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"query":"q","index_name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "insufficient quota") {
		t.Errorf("body must carry the upstream message, got %s", w.Body.String())
	}
}

// TestHandleQuery_EmptyHitsStayArrays verifies that a query with no
// survivors serializes hits and signed_urls as [] rather than null.
func TestHandleQuery_EmptyHitsStayArrays(t *testing.T) {
	t.Parallel()

	q := &fakeRAGQuerier{result: &retrieval.Result{Query: "q", Answer: "I don't know"}}
	s := newTestServer(t, Deps{Querier: q}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"query":"q","index_name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, `"hits":null`) || strings.Contains(body, `"signed_urls":null`) {
		t.Errorf("empty collections must serialize as [], got %s", body)
	}
}

// TestHandleQuery_NilResultIs500 verifies a querier returning (nil, nil)
// yields a 500 instead of panicking the handler.
func TestHandleQuery_NilResultIs500(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Deps{Querier: &fakeRAGQuerier{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/retrieve/query",
		strings.NewReader(`{"query":"q","index_name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a nil result, got %d", w.Code)
	}
}
