package main

import (
	"fmt"
	"os"

	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/scholarmind/scholarmind/internal/corpus"
	"github.com/scholarmind/scholarmind/internal/importer"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/semantic"
	"github.com/scholarmind/scholarmind/internal/storage"
	"github.com/spf13/cobra"
)

// Import formats.
const (
	formatJSONL = "jsonl"
	formatArXiv = "arxiv"
)

var (
	importFormat   string
	importCategory string
	importLimit    int
	importDryRun   bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", formatJSONL, "Input format (jsonl, arxiv)")
	importCmd.Flags().StringVar(&importCategory, "category", "", "arxiv: keep papers whose primary category has this prefix (e.g. cs.)")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "arxiv: stop after this many papers (0 = all)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a paper corpus",
	Long: `Import a paper corpus, replacing the current one.

Supported formats:
  jsonl  - one paper per line with the keys id, title, abstract, authors,
           year, main_category, normalized_popularity and link
  arxiv  - the arXiv metadata snapshot (one JSON record per line);
           popularity comes from an optional citation_count field

Ids must be unique and normalized_popularity must lie in [0, 1]. File order
becomes corpus order.

The catalog is rebuilt. An existing embedding matrix no longer matches and
must be rebuilt or re-imported.

Examples:
  sm import papers.jsonl
  sm import --format arxiv --category cs. --limit 20000 arxiv-metadata.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Status      string   `json:"status"`
	Papers      int      `json:"papers"`
	MatrixStale bool     `json:"matrix_stale"`
	Errors      []string `json:"errors,omitempty"`
}

// readImport parses path according to format, returning skipped-record messages.
func readImport(path, format string) ([]reference.Reference, []string, error) {
	switch format {
	case formatJSONL:
		refs, err := storage.ReadAll(path)
		return refs, nil, err
	case formatArXiv:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()

		refs, recordErrs, err := importer.ParseArXivSnapshot(f, importer.ArXivOptions{
			CategoryPrefix: importCategory,
			Limit:          importLimit,
		})
		msgs := make([]string, 0, len(recordErrs))
		for _, e := range recordErrs {
			msgs = append(msgs, e.Error())
		}
		return refs, msgs, err
	default:
		return nil, nil, fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSONL, formatArXiv)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	refs, skipped, err := readImport(args[0], importFormat)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	c, err := corpus.New(refs)
	if err != nil {
		exitWithError(ExitDataError, "invalid corpus: %v", err)
	}

	if importDryRun {
		if humanOutput {
			fmt.Printf("Would import %d papers (%d records skipped)\n", c.Len(), len(skipped))
			for _, msg := range skipped {
				fmt.Printf("  skipped: %s\n", msg)
			}
		} else {
			outputJSON(ImportResult{Status: "dry-run", Papers: c.Len(), Errors: skipped})
		}
		return nil
	}

	if err := storage.WriteAll(config.PapersPath(repoRoot), refs); err != nil {
		exitWithError(ExitError, "writing papers: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.PapersPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding catalog: %v", err)
	}

	stale := false
	if semantic.Exists(repoRoot) {
		m, err := semantic.Load(repoRoot)
		stale = err != nil || matrixMismatch(c, m) != nil
	}

	if humanOutput {
		fmt.Printf("Imported %d papers\n", n)
		if len(skipped) > 0 {
			fmt.Printf("Skipped %d malformed records (use --dry-run to list them)\n", len(skipped))
		}
		if stale {
			fmt.Println("Embedding matrix is out of date: run 'sm index build' or 'sm index import'")
		}
	} else {
		outputJSON(ImportResult{Status: "imported", Papers: n, MatrixStale: stale, Errors: skipped})
	}
	return nil
}
