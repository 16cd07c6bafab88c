package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/spf13/cobra"
)

var (
	popularLimit int
	popularPool  int
	popularSeed  uint64
	popularTop   bool
)

func init() {
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", ranking.DefaultPopularCount, "Number of papers to show")
	popularCmd.Flags().IntVar(&popularPool, "pool", ranking.DefaultPopularPool, "Sample from this many of the most popular papers")
	popularCmd.Flags().Uint64Var(&popularSeed, "seed", 0, "Random seed (default: clock)")
	popularCmd.Flags().BoolVar(&popularTop, "top", false, "Show the most popular papers in order instead of a sample")
	rootCmd.AddCommand(popularCmd)
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show a sample of popular papers",
	Long: `Show papers drawn at random from the most popular papers in the corpus.
This is the starting feed when there is nothing to search for yet.

Pass --seed to make the sample reproducible, or --top to skip sampling.`,
	Args: cobra.NoArgs,
	RunE: runPopular,
}

// PopularResponse is the response for the popular command.
type PopularResponse struct {
	Pool    int           `json:"pool"`
	Results []PaperResult `json:"results"`
	Total   int           `json:"total"`
}

// popularRand returns the sampling source for the given flags.
func popularRand(cmd *cobra.Command, seed uint64, top bool) *rand.Rand {
	if top {
		return nil
	}
	if !cmd.Flags().Changed("seed") {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func runPopular(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	c := mustLoadCorpus(repoRoot)

	results, err := ranking.Popular(c, popularPool, popularLimit, popularRand(cmd, popularSeed, popularTop))
	if err != nil {
		exitForRankingError(err)
	}

	if humanOutput {
		fmt.Printf("Popular papers:\n\n")
		printResultsHuman(os.Stdout, results, nil)
	} else {
		outputJSON(PopularResponse{
			Pool:    popularPool,
			Results: buildPaperResults(results, false),
			Total:   len(results),
		})
	}
	return nil
}
