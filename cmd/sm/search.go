package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/scholarmind/scholarmind/internal/embedding"
	"github.com/scholarmind/scholarmind/internal/pdf"
	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/semantic"
	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchPDF      string
	searchAbstract bool
)

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default from config, 15)")
	searchCmd.Flags().StringVar(&searchPDF, "pdf", "", "Use the text of a PDF's first pages as the query")
	searchCmd.Flags().BoolVar(&searchAbstract, "abstract", false, "Include abstracts in JSON output")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find papers by meaning",
	Long: `Rank every paper by cosine similarity between the query and its
title and abstract, and return the best matches.

The query is embedded through Ollama with the same model as the matrix.
With --pdf, the text of the document's first pages becomes the query, so
a draft or a paper you are reading can find its neighbours.

Examples:
  sm search "graph neural networks for molecules"
  sm search -n 5 "protein folding" --human
  sm search --pdf draft.pdf`,
	RunE: runSearch,
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []PaperResult `json:"results"`
	Total   int           `json:"total"`
}

// resolveLimit returns the flag value when set and def otherwise.
func resolveLimit(cmd *cobra.Command, flag string, value, def int) int {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return def
}

// buildQuery joins positional words with the text of pdfPath, if any.
func buildQuery(args []string, pdfPath string) (string, error) {
	query := strings.Join(args, " ")
	if pdfPath != "" {
		text, err := pdf.ExtractText(pdfPath, pdf.DefaultMaxPages)
		if err != nil {
			return "", err
		}
		query = strings.TrimSpace(query + " " + text)
	}
	return pdf.Truncate(query, semantic.MaxQueryLength), nil
}

// rankingExit maps an engine error to an exit code and message.
func rankingExit(err error) (int, string) {
	var statusErr *embedding.StatusError
	switch {
	case errors.Is(err, ranking.ErrInvalidIndex):
		return ExitNotFound, err.Error()
	case errors.As(err, &statusErr) && statusErr.ModelMissing():
		return ExitModelNotFound, err.Error() + "\n\nPull the embedding model with 'ollama pull' first."
	case errors.Is(err, ranking.ErrEmbedding):
		return ExitOllamaUnavailable, err.Error()
	default:
		return ExitError, err.Error()
	}
}

func exitForRankingError(err error) {
	code, msg := rankingExit(err)
	exitWithError(code, "%s", msg)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	query, err := buildQuery(args, searchPDF)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", searchPDF, err)
	}
	if strings.TrimSpace(query) == "" {
		exitWithError(ExitError, "a query or --pdf is required")
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	limit := resolveLimit(cmd, "limit", searchLimit, cfg.SearchLimit)

	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, false)
	engine := mustLoadEngine(repoRoot, provider)

	results, err := engine.SemanticSearch(ctx, query, limit)
	if err != nil {
		exitForRankingError(err)
	}

	if humanOutput {
		if searchPDF != "" {
			fmt.Printf("Papers similar to %s:\n\n", searchPDF)
		} else {
			fmt.Printf("Results for %q:\n\n", query)
		}
		printResultsHuman(os.Stdout, results, nil)
	} else {
		outputJSON(SearchResponse{
			Query:   query,
			Results: buildPaperResults(results, searchAbstract),
			Total:   len(results),
		})
	}
	return nil
}
