package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var recommendLimit int

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "Number of recommendations (default from config, 3)")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <id>",
	Short: "Recommend papers related to a paper",
	Long: `Recommend papers related to the paper with the given id.

The 100 papers most similar to it are re-ranked by
  0.7 * similarity + 0.3 * normalized popularity
and the best are returned. The paper itself is never recommended.
No query is embedded, so Ollama does not need to be running.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

// RecommendResponse is the response for the recommend command.
type RecommendResponse struct {
	SeedID  string        `json:"seed_id"`
	Results []PaperResult `json:"results"`
	Total   int           `json:"total"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	limit := resolveLimit(cmd, "limit", recommendLimit, cfg.RecommendLimit)

	engine := mustLoadEngine(repoRoot, nil)

	results, err := engine.RecommendByID(args[0], limit)
	if err != nil {
		exitForRankingError(err)
	}

	if humanOutput {
		fmt.Printf("Recommended for %s:\n\n", args[0])
		printResultsHuman(os.Stdout, results, nil)
	} else {
		outputJSON(RecommendResponse{
			SeedID:  args[0],
			Results: buildPaperResults(results, false),
			Total:   len(results),
		})
	}
	return nil
}
