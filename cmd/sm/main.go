// Package main provides the sm CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/scholarmind/scholarmind/internal/config"
	"github.com/scholarmind/scholarmind/internal/corpus"
	"github.com/scholarmind/scholarmind/internal/embedding"
	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/semantic"
	"github.com/scholarmind/scholarmind/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	config.LoadEnv()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sm",
	Short: "Semantic search and recommendations over a paper corpus",
	Long: `sm finds research papers by meaning rather than keywords.

  - Semantic search: rank every paper by cosine similarity to a query
  - Recommendations: neighbours of a paper, re-ranked by popularity
  - Popular feed: a sample of the most popular papers

Papers live in git-versionable JSONL; the SQLite catalog and the embedding
matrix are caches under .scholarmind/cache.
All commands output JSON by default for AI agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getStartingDirectory returns the directory to start searching for a repository.
// SM_ROOT and the global root_path win over the working directory.
func getStartingDirectory() (string, int) {
	if root := config.RootPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite catalog, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig resolves configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Resolve(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadCorpus reads and validates papers.jsonl, exits on error.
func mustLoadCorpus(repoRoot string) *corpus.Corpus {
	start := time.Now()
	refs, err := storage.ReadAll(config.PapersPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading papers: %v", err)
	}
	c, err := corpus.New(refs)
	if err != nil {
		exitWithError(ExitDataError, "loading corpus: %v", err)
	}
	slog.Debug("corpus loaded", "papers", c.Len(), "elapsed", time.Since(start))
	return c
}

// mustLoadMatrix loads the embedding matrix, exits on error.
func mustLoadMatrix(repoRoot string) *semantic.Matrix {
	start := time.Now()
	m, err := semantic.Load(repoRoot)
	if err != nil {
		if errors.Is(err, semantic.ErrIndexNotFound) {
			exitWithError(ExitIndexNotFound, "Embedding matrix not found\n\nRun 'sm index build' or 'sm index import <file.npy>' to create it.")
		}
		exitWithError(ExitError, "loading embedding matrix: %v", err)
	}
	slog.Debug("matrix loaded", "rows", m.Rows(), "dimensions", m.Dimensions, "model", m.ModelName, "elapsed", time.Since(start))
	return m
}

// newProvider builds the Ollama provider from configuration.
func newProvider(cfg *config.Config) *embedding.OllamaProvider {
	return embedding.NewOllamaProvider(
		embedding.WithBaseURL(cfg.OllamaURL),
		embedding.WithModel(cfg.Model),
		embedding.WithDimensions(cfg.Dimensions),
		embedding.WithRateLimit(cfg.EmbedRate),
	)
}

// mustLoadEngine loads corpus and matrix and joins them.
// provider may be nil for commands that never embed a query.
func mustLoadEngine(repoRoot string, provider embedding.Provider) *ranking.Engine {
	c := mustLoadCorpus(repoRoot)
	m := mustLoadMatrix(repoRoot)

	engine, err := ranking.NewEngine(c, m, provider)
	if err != nil {
		exitWithError(ExitIndexStale, "%v\n\nRebuild the matrix with 'sm index build' after changing papers.jsonl.", err)
	}
	return engine
}

// mustValidateOllama checks that Ollama is running and optionally validates the model.
func mustValidateOllama(ctx context.Context, provider *embedding.OllamaProvider, checkModel bool) {
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitOllamaUnavailable, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	if checkModel {
		hasModel, err := provider.HasModel(ctx)
		if err != nil {
			exitWithError(ExitError, "checking model availability: %v", err)
		}
		if !hasModel {
			exitWithError(ExitModelNotFound, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
		}
	}
}
