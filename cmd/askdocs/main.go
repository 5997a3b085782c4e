// Command askdocs is the entry point for the AskDocs document Q&A service.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// ingestion and retrieval API.
package main

import (
	"fmt"
	"os"

	"github.com/askdocs/askdocs-go/cmd/askdocs/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
