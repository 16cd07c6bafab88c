package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new scholarmind repository",
	Long: `Initialize a new scholarmind repository in the current directory.

Creates:
  .scholarmind/
  ├── papers.jsonl    # Empty corpus
  ├── config.json     # Default config
  └── cache/          # Catalog and embedding matrix (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a scholarmind repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .scholarmind directory: %v", err)
	}

	papers, err := os.Create(config.PapersPath(root))
	if err != nil {
		exitWithError(ExitError, "creating papers.jsonl: %v", err)
	}
	papers.Close()

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	gitignore := filepath.Join(config.RepoPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "writing .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized scholarmind repository in %s\n", config.RepoPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.RepoPath(root)})
	}
	return nil
}
