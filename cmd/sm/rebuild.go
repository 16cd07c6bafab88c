package main

import (
	"fmt"

	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog from papers.jsonl",
	Long: `Rebuild the SQLite catalog from the JSONL source file.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.PapersPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding catalog: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt catalog with %d papers\n", n)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Papers: n})
	}
	return nil
}
