package rag

import (
	"strings"
)

// DefaultContextBudget is the maximum number of tokens of retrieved text
// handed to the chat model. It leaves room for the system instruction, the
// question, and the answer inside common context windows.
const DefaultContextBudget = 6000

// TokenCounter counts tokens the same way the embedding tokenizer does.
// tokenizer.BPETokenizer satisfies it.
type TokenCounter interface {
	Count(text string) int
}

// Assembler concatenates hit texts into the context block for synthesis,
// separated by blank lines and capped by a token budget. Hits arrive best
// first, so when the budget runs out the weakest hits are the ones dropped.
type Assembler struct {
	counter TokenCounter
	budget  int
}

// NewAssembler constructs an Assembler. budget=0 selects DefaultContextBudget.
func NewAssembler(counter TokenCounter, budget int) *Assembler {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	return &Assembler{counter: counter, budget: budget}
}

// Assemble joins the hit texts with blank lines, including whole hits until
// the next one would push the total past the budget. Returns the empty
// string for no hits.
func (a *Assembler) Assemble(hits []Hit) string {
	var parts []string
	used := 0
	for _, h := range hits {
		cost := a.counter.Count(h.Text)
		if len(parts) > 0 && used+cost > a.budget {
			break
		}
		// The first hit is always included, even when it alone
		// exceeds the budget.
		parts = append(parts, h.Text)
		used += cost
		if used >= a.budget {
			break
		}
	}
	return strings.Join(parts, "\n\n")
}
