// Package synthesis turns an assembled retrieval context and a user question
// into a grounded answer via the configured chat model.
package synthesis

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// systemPrompt constrains the model to the retrieved context. The "I don't
// know" fallback is the model's own output, not something generated locally —
// an empty or irrelevant context flows through the same code path.
const systemPrompt = `You are a helpful assistant that answers questions strictly from the provided context.

Rules:
- Answer ONLY using information present in the context below.
- If the context does not contain enough information to answer, reply exactly: "I don't know".
- Do not include information that was not asked for.
- Keep the answer concise.`

// Generation parameters. Answers are short grounded summaries.
const (
	maxAnswerTokens = 500
	temperature     = 0.2
)

// Generator is the slice of the eino chat-model surface the synthesizer
// needs. model.ChatModel satisfies it.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Synthesizer produces answers from context + question pairs.
// It is safe for concurrent use.
type Synthesizer struct {
	generator Generator
}

// New constructs a Synthesizer around the given chat model.
func New(generator Generator) (*Synthesizer, error) {
	if generator == nil {
		return nil, fmt.Errorf("synthesis: generator must not be nil")
	}
	return &Synthesizer{generator: generator}, nil
}

// Answer builds the two-message grounding prompt and calls the model with a
// bounded output length and low temperature. Upstream failures surface as a
// ProviderError; no fallback answer is generated locally.
func (s *Synthesizer) Answer(ctx context.Context, assembledContext, query string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("Context:\n%s\n\nQuestion: %s", assembledContext, query)),
	}

	msg, err := s.generator.Generate(ctx, messages,
		model.WithMaxTokens(maxAnswerTokens),
		model.WithTemperature(temperature),
	)
	if err != nil {
		return "", errs.NewProvider("chat model", err)
	}
	if msg == nil {
		return "", errs.NewProvider("chat model", fmt.Errorf("empty completion"))
	}

	return msg.Content, nil
}
