package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs-go/internal/embedder"
	"github.com/askdocs/askdocs-go/internal/ingestion"
	"github.com/askdocs/askdocs-go/internal/logging"
	"github.com/askdocs/askdocs-go/internal/provider"
	"github.com/askdocs/askdocs-go/internal/rag"
	"github.com/askdocs/askdocs-go/internal/retrieval"
	"github.com/askdocs/askdocs-go/internal/synthesis"
)

// NewQueryCmd constructs the `askdocs query` command, which answers a single
// question against a knowledge base and prints the answer with source links.
func NewQueryCmd() *cobra.Command {
	var indexName string
	var showSources bool

	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question against a knowledge base",
		Long: `Retrieve the most relevant document chunks for a question, synthesize a
grounded answer, and print time-limited links to the source files.

The answer is based only on indexed content; when the knowledge base holds
nothing relevant the model replies "I don't know".

Examples:
  askdocs query "what is the refund window?"
  askdocs query --index contracts "when does the NDA expire?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("query: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("query: failed to initialise embedder: %w", err)
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("query: failed to initialise model provider: %w", err)
			}
			synthesizer, err := synthesis.New(chatModel)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			index, err := buildIndex()
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer func() { _ = index.Close() }()

			store, err := buildStore()
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			_, tok, err := buildChunker()
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			retriever, err := rag.NewRetriever(emb, index, 0, 0)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			pipeline, err := retrieval.New(
				retriever,
				rag.NewAssembler(tok, 0),
				synthesizer,
				rag.NewLinkResolver(store, 0),
			)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			result, err := pipeline.Query(ctx, indexName, args[0])
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			fmt.Println(result.Answer)

			if showSources && len(result.SignedURLs) > 0 {
				fmt.Println("\nSources:")
				for _, url := range result.SignedURLs {
					fmt.Printf("  %s\n", url)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexName, "index", "i", ingestion.DefaultIndexName, "Knowledge base to query")
	cmd.Flags().BoolVar(&showSources, "sources", true, "Print signed source links after the answer")

	return cmd
}
