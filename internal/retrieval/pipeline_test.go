package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/askdocs/askdocs-go/internal/rag"
)

type fakeRetriever struct {
	hits []rag.Hit
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _, _ string) ([]rag.Hit, error) {
	return f.hits, f.err
}

type fakeAssembler struct {
	gotHits []rag.Hit
	out     string
}

func (f *fakeAssembler) Assemble(hits []rag.Hit) string {
	f.gotHits = hits
	return f.out
}

type fakeSynthesizer struct {
	gotContext string
	gotQuery   string
	answer     string
	err        error
}

func (f *fakeSynthesizer) Answer(_ context.Context, assembledContext, query string) (string, error) {
	f.gotContext = assembledContext
	f.gotQuery = query
	return f.answer, f.err
}

type fakeLinks struct {
	urls   []string
	err    error
	called bool
}

func (f *fakeLinks) Resolve(_ context.Context, _ []rag.Hit) ([]string, error) {
	f.called = true
	return f.urls, f.err
}

func newTestPipeline(t *testing.T, r *fakeRetriever, a *fakeAssembler, s *fakeSynthesizer, l *fakeLinks) *Pipeline {
	t.Helper()
	p, err := New(r, a, s, l)
	if err != nil {
		t.Fatalf("construct pipeline: %v", err)
	}
	return p
}

func Test_Query_HappyPath(t *testing.T) {
	t.Parallel()
	hits := []rag.Hit{
		{Score: 0.9, Filename: "policy.pdf", FileKey: "general/policy.pdf", Text: "Refunds within 30 days."},
	}
	retr := &fakeRetriever{hits: hits}
	asm := &fakeAssembler{out: "Refunds within 30 days."}
	syn := &fakeSynthesizer{answer: "30 days."}
	links := &fakeLinks{urls: []string{"https://signed.example/general/policy.pdf"}}
	p := newTestPipeline(t, retr, asm, syn, links)

	res, err := p.Query(context.Background(), "general", "What is the refund window?")
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if res.Query != "What is the refund window?" {
		t.Errorf("query echo %q", res.Query)
	}
	if res.Answer != "30 days." {
		t.Errorf("answer %q", res.Answer)
	}
	if len(res.Hits) != 1 || res.Hits[0].Filename != "policy.pdf" {
		t.Errorf("hits %+v", res.Hits)
	}
	if len(res.SignedURLs) != 1 {
		t.Errorf("signed urls %v", res.SignedURLs)
	}
	if syn.gotContext != "Refunds within 30 days." {
		t.Errorf("synthesizer context %q", syn.gotContext)
	}
	if len(asm.gotHits) != 1 {
		t.Errorf("assembler received %d hits", len(asm.gotHits))
	}
}

func Test_Query_NoHitsStillSynthesizes(t *testing.T) {
	t.Parallel()
	syn := &fakeSynthesizer{answer: "I don't know"}
	links := &fakeLinks{urls: []string{}}
	p := newTestPipeline(t, &fakeRetriever{hits: []rag.Hit{}}, &fakeAssembler{out: ""}, syn, links)

	res, err := p.Query(context.Background(), "general", "anything?")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Answer != "I don't know" {
		t.Errorf("answer %q, want the model fallback", res.Answer)
	}
	if syn.gotContext != "" {
		t.Errorf("context %q, want empty", syn.gotContext)
	}
	if len(res.SignedURLs) != 0 {
		t.Errorf("signed urls %v, want none", res.SignedURLs)
	}
}

func Test_Query_StageFailuresAbort(t *testing.T) {
	t.Parallel()

	t.Run("retriever", func(t *testing.T) {
		t.Parallel()
		links := &fakeLinks{}
		p := newTestPipeline(t, &fakeRetriever{err: errors.New("qdrant down")},
			&fakeAssembler{}, &fakeSynthesizer{}, links)
		if _, err := p.Query(context.Background(), "general", "q"); err == nil {
			t.Error("want retriever failure to abort, got nil")
		}
		if links.called {
			t.Error("later stages must not run after a failure")
		}
	})

	t.Run("synthesizer", func(t *testing.T) {
		t.Parallel()
		links := &fakeLinks{}
		p := newTestPipeline(t, &fakeRetriever{hits: []rag.Hit{{Score: 0.9}}},
			&fakeAssembler{out: "ctx"}, &fakeSynthesizer{err: errors.New("rate limited")}, links)
		if _, err := p.Query(context.Background(), "general", "q"); err == nil {
			t.Error("want synthesizer failure to abort, got nil")
		}
		if links.called {
			t.Error("link resolution must not run after a synthesis failure")
		}
	})

	t.Run("links", func(t *testing.T) {
		t.Parallel()
		p := newTestPipeline(t, &fakeRetriever{hits: []rag.Hit{{Score: 0.9}}},
			&fakeAssembler{out: "ctx"}, &fakeSynthesizer{answer: "a"},
			&fakeLinks{err: errors.New("storage down")})
		if _, err := p.Query(context.Background(), "general", "q"); err == nil {
			t.Error("want link failure to abort, got nil")
		}
	})
}
