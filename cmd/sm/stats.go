package main

import (
	"fmt"
	"time"

	"github.com/scholarmind/scholarmind/internal/semantic"
	"github.com/scholarmind/scholarmind/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the corpus and embedding matrix",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// StatsResponse is the response for the stats command.
type StatsResponse struct {
	Papers        int                     `json:"papers"`
	Categories    []storage.CategoryCount `json:"categories"`
	MatrixPresent bool                    `json:"matrix_present"`
	MatrixModel   string                  `json:"matrix_model,omitempty"`
	MatrixRows    int                     `json:"matrix_rows,omitempty"`
	MatrixCreated string                  `json:"matrix_created,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting papers: %v", err)
	}
	cats, err := db.Categories()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp := StatsResponse{Papers: n, Categories: cats}
	if semantic.Exists(repoRoot) {
		m, err := semantic.Load(repoRoot)
		if err != nil {
			exitWithError(ExitDataError, "loading embedding matrix: %v", err)
		}
		resp.MatrixPresent = true
		resp.MatrixModel = m.ModelName
		resp.MatrixRows = m.Rows()
		resp.MatrixCreated = m.CreatedAt.Format(time.RFC3339)
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	fmt.Printf("%s\n", headerStyle.Render(fmt.Sprintf("%d papers", n)))
	for _, c := range cats {
		name := c.Category
		if name == "" {
			name = "(none)"
		}
		fmt.Printf("  %-20s %d\n", name, c.Count)
	}
	if resp.MatrixPresent {
		fmt.Printf("\nMatrix: %d rows, %s, built %s\n", resp.MatrixRows, resp.MatrixModel, resp.MatrixCreated)
	} else {
		fmt.Println(dimStyle.Render("\nNo embedding matrix yet: run 'sm index build'"))
	}
	return nil
}
