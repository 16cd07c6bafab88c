package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/scholarmind/scholarmind/internal/corpus"
	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/semantic"
	"github.com/spf13/cobra"
)

var (
	noProgress  bool
	importModel string
)

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexImportCmd)
	indexCmd.AddCommand(indexCheckCmd)

	indexBuildCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Suppress progress output")
	indexImportCmd.Flags().StringVar(&importModel, "model", "", "Model that produced the vectors (default: configured model)")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the embedding matrix",
	Long:  `Commands for building, importing and checking the embedding matrix.`,
}

// IndexBuildResult is the response for index build and index import.
type IndexBuildResult struct {
	Status          string  `json:"status"`
	Source          string  `json:"source"`
	PapersIndexed   int     `json:"papers_indexed"`
	Dimensions      int     `json:"dimensions"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	IndexSizeBytes  int64   `json:"index_size_bytes"`
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild the embedding matrix",
	Long: `Embed the title and abstract of every paper and save the matrix.

Requires Ollama to be running with the embedding model available.
Run 'ollama pull all-minilm:l6-v2' to download the model.`,
	RunE: runIndexBuild,
}

// outputBuildResults outputs the build statistics in the appropriate format.
func outputBuildResults(result IndexBuildResult) {
	if humanOutput {
		fmt.Printf("\nMatrix saved:\n")
		fmt.Printf("  Source: %s\n", result.Source)
		fmt.Printf("  Papers indexed: %d\n", result.PapersIndexed)
		fmt.Printf("  Dimensions: %d\n", result.Dimensions)
		fmt.Printf("  Time elapsed: %s\n", formatDuration(time.Duration(result.DurationSeconds*float64(time.Second))))
		fmt.Printf("  Matrix size: %s\n", formatBytes(result.IndexSizeBytes))
		fmt.Printf("  Model: %s\n", result.Model)
	} else {
		outputJSON(result)
	}
}

// saveMatrix writes m and fills in its on-disk size.
func saveMatrix(repoRoot string, m *semantic.Matrix, result *IndexBuildResult) {
	if err := m.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving matrix: %v", err)
	}
	if size, err := semantic.IndexSize(repoRoot); err == nil {
		result.IndexSizeBytes = size
	} else if humanOutput {
		fmt.Fprintf(os.Stderr, "Warning: could not determine matrix size: %v\n", err)
	}
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	provider := newProvider(cfg)
	mustValidateOllama(ctx, provider, true)

	c := mustLoadCorpus(repoRoot)

	builder := semantic.NewBuilder(provider)
	if !noProgress && humanOutput {
		builder.SetProgressReporter(semantic.ProgressFunc(printProgress))
		fmt.Fprintf(os.Stderr, "Embedding %d papers...\n", c.Len())
	}

	m, stats, err := builder.Build(ctx, c.All())
	if err != nil {
		exitWithError(ExitOllamaUnavailable, "building matrix: %v", err)
	}

	if humanOutput && !noProgress {
		fmt.Fprintf(os.Stderr, "\r%*s\r", progressLineClearWidth, "")
	}

	result := IndexBuildResult{
		Status:          "complete",
		Source:          m.Source,
		PapersIndexed:   stats.PapersIndexed,
		Dimensions:      m.Dimensions,
		DurationSeconds: stats.Duration.Seconds(),
		Model:           provider.ModelName(),
	}
	saveMatrix(repoRoot, m, &result)
	outputBuildResults(result)
	return nil
}

var indexImportCmd = &cobra.Command{
	Use:   "import <embeddings.npy>",
	Short: "Import a precomputed embedding matrix",
	Long: `Import a 2-D float32 or float64 NumPy matrix computed offline.

Row i must be the embedding of line i of papers.jsonl. Queries are still
embedded through Ollama, so the vectors must come from the same model.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexImport,
}

func runIndexImport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	model := importModel
	if model == "" {
		model = cfg.Model
	}

	c := mustLoadCorpus(repoRoot)
	m, err := semantic.ImportNPY(args[0], c.IDs(), model)
	if err != nil {
		exitWithError(ExitDataError, "importing %s: %v", args[0], err)
	}
	if m.Dimensions != cfg.Dimensions {
		fmt.Fprintf(os.Stderr, "Warning: matrix has %d dimensions but %s produces %d; search will fail until they agree\n",
			m.Dimensions, cfg.Model, cfg.Dimensions)
	}
	m.BuildDurationMs = time.Since(start).Milliseconds()

	result := IndexBuildResult{
		Status:          "complete",
		Source:          m.Source,
		PapersIndexed:   m.Rows(),
		Dimensions:      m.Dimensions,
		DurationSeconds: time.Since(start).Seconds(),
		Model:           m.ModelName,
	}
	saveMatrix(repoRoot, m, &result)
	outputBuildResults(result)
	return nil
}

// IndexCheckResult is the response for index check command.
type IndexCheckResult struct {
	Status         string `json:"status"`
	PapersTotal    int    `json:"papers_total"`
	MatrixRows     int    `json:"matrix_rows"`
	Dimensions     int    `json:"dimensions"`
	Model          string `json:"model"`
	Source         string `json:"source"`
	IndexCreated   string `json:"index_created"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
	Problem        string `json:"problem,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

var indexCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the embedding matrix matches the corpus",
	Long:  `Check that every paper has exactly one embedding of the expected width.`,
	RunE:  runIndexCheck,
}

// matrixMismatch reports why m cannot serve c, or nil if it can.
func matrixMismatch(c *corpus.Corpus, m *semantic.Matrix) error {
	_, err := ranking.NewEngine(c, m, nil)
	return err
}

// outputCheckResults outputs the index check results in the appropriate format.
func outputCheckResults(result IndexCheckResult, exitCode int) {
	if humanOutput {
		fmt.Printf("Embedding Matrix Status: %s\n\n", result.Status)
		fmt.Printf("  Papers in corpus: %d\n", result.PapersTotal)
		fmt.Printf("  Matrix rows: %d\n", result.MatrixRows)
		fmt.Printf("  Dimensions: %d\n", result.Dimensions)
		fmt.Printf("  Model: %s (%s)\n", result.Model, result.Source)
		fmt.Printf("  Created: %s\n", result.IndexCreated)
		fmt.Printf("  Size: %s\n", formatBytes(result.IndexSizeBytes))
		if result.Problem != "" {
			fmt.Printf("\n%s\n", result.Problem)
		}
		if result.Recommendation != "" {
			fmt.Printf("%s\n", result.Recommendation)
		}
	} else {
		outputJSON(result)
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
}

func runIndexCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	c := mustLoadCorpus(repoRoot)
	m := mustLoadMatrix(repoRoot)

	var indexSize int64
	if size, err := semantic.IndexSize(repoRoot); err == nil {
		indexSize = size
	}

	result := IndexCheckResult{
		Status:         "healthy",
		PapersTotal:    c.Len(),
		MatrixRows:     m.Rows(),
		Dimensions:     m.Dimensions,
		Model:          m.ModelName,
		Source:         m.Source,
		IndexCreated:   m.CreatedAt.Format(time.RFC3339),
		IndexSizeBytes: indexSize,
	}

	exitCode := ExitSuccess
	if err := matrixMismatch(c, m); err != nil {
		result.Status = "stale"
		result.Problem = err.Error()
		result.Recommendation = "Run 'sm index build' to update the matrix"
		exitCode = ExitIndexStale
	}

	outputCheckResults(result, exitCode)
	return nil
}

const (
	// progressBarWidth is the width in characters for terminal progress display.
	progressBarWidth = 30
	// progressLineClearWidth is wider than the bar plus its counters.
	progressLineClearWidth = 50
)

// buildProgressBar creates a progress bar string of the given width.
// Returns a string like "[=====>    ]" showing progress.
func buildProgressBar(current, total, width int) string {
	if total == 0 {
		return strings.Repeat(" ", width)
	}
	filled := (width * current) / total
	if filled >= width {
		return strings.Repeat("=", width)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", width-filled-1)
}

// printProgress prints a progress bar to stderr.
func printProgress(current, total int) {
	if total == 0 {
		return
	}
	pct := float64(current) / float64(total) * 100
	bar := buildProgressBar(current, total, progressBarWidth)
	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d (%.0f%%)", bar, current, total, pct)
}
