package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/storage"
	"github.com/spf13/cobra"
)

var getLimit int

func init() {
	getCmd.Flags().IntVarP(&getLimit, "limit", "n", 0, "Number of recommendations (default from config, 3)")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a paper with its recommendations",
	Long: `Show the full record of a paper together with related papers.

The record comes from papers.jsonl, the same source recommendations use.
If the catalog disagrees with papers.jsonl the response is flagged and
'sm rebuild' brings it back in line.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// GetResponse is the response for the get command.
type GetResponse struct {
	Paper           reference.Reference `json:"paper"`
	Recommendations []PaperResult       `json:"recommendations"`
	CatalogStale    bool                `json:"catalog_stale,omitempty"`
}

// catalogAgrees reports whether the catalog holds id at the given corpus row.
func catalogAgrees(db *storage.DB, id string, row int) bool {
	got, ok, err := db.RowOf(id)
	if err != nil {
		slog.Debug("catalog lookup failed", "id", id, "error", err)
		return false
	}
	return ok && got == row
}

func runGet(cmd *cobra.Command, args []string) error {
	id := args[0]
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	limit := resolveLimit(cmd, "limit", getLimit, cfg.RecommendLimit)

	engine := mustLoadEngine(repoRoot, nil)
	row, ok := engine.Corpus().Row(id)
	if !ok {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}
	ref := engine.Corpus().At(row)

	results, err := engine.RecommendByID(id, limit)
	if err != nil {
		exitForRankingError(err)
	}

	db := mustOpenDatabase(repoRoot)
	stale := !catalogAgrees(db, id, row)
	db.Close()
	if stale {
		fmt.Fprintln(os.Stderr, "Warning: catalog is out of date; run 'sm rebuild'")
	}

	if humanOutput {
		printPaperHuman(os.Stdout, ref, false)
		fmt.Printf("\n%s\n", headerStyle.Render("Related"))
		printResultsHuman(os.Stdout, results, nil)
	} else {
		outputJSON(GetResponse{
			Paper:           ref,
			Recommendations: buildPaperResults(results, false),
			CatalogStale:    stale,
		})
	}
	return nil
}
