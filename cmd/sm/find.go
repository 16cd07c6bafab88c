package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/spf13/cobra"
)

var findLimit int

func init() {
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "Maximum number of results")
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <keywords>",
	Short: "Find papers by keyword",
	Long: `Exact keyword search over titles, abstracts and authors in the catalog.

Use this to look up the id of a paper you already know, then pass it to
'sm recommend' or 'sm get'. For discovery by meaning use 'sm search'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

// FindResponse is the response for the find command.
type FindResponse struct {
	Query   string                `json:"query"`
	Results []reference.Reference `json:"results"`
	Total   int                   `json:"total"`
}

func runFind(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	refs, err := db.Search(query, findLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if refs == nil {
		refs = []reference.Reference{}
	}

	if humanOutput {
		results := make([]ranking.Result, len(refs))
		for i, ref := range refs {
			results[i] = ranking.Result{Paper: ref, Popularity: ref.NormalizedPopularity, Score: ref.NormalizedPopularity}
		}
		fmt.Printf("Papers matching %q:\n\n", query)
		printResultsHuman(os.Stdout, results, nil)
	} else {
		outputJSON(FindResponse{Query: query, Results: refs, Total: len(refs)})
	}
	return nil
}
