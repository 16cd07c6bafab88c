package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scholarmind/scholarmind/internal/embedding"
	"github.com/scholarmind/scholarmind/internal/reference"
)

// ProgressReporter receives progress updates during matrix building.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// Builder constructs an embedding matrix from corpus papers.
type Builder struct {
	provider embedding.Provider
	progress ProgressReporter
}

// NewBuilder creates a new matrix builder.
func NewBuilder(provider embedding.Provider) *Builder {
	return &Builder{provider: provider}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// Build embeds every paper in order. Every corpus row gets a matrix row,
// so a paper with no usable text is an error rather than a skip.
func (b *Builder) Build(ctx context.Context, refs []reference.Reference) (*Matrix, *BuildStats, error) {
	startTime := time.Now()

	m := NewMatrix(b.provider.ModelName(), b.provider.Dimensions())
	m.Source = "ollama"
	stats := &BuildStats{}

	total := len(refs)
	for i, ref := range refs {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if b.progress != nil {
			b.progress.OnProgress(i+1, total)
		}

		text := ref.EmbeddingText()
		if text == "" {
			return nil, nil, fmt.Errorf("paper %s has neither title nor abstract", ref.ID)
		}

		emb, err := b.provider.Embed(ctx, text)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding paper %s: %w", ref.ID, err)
		}

		if err := m.Append(ref.ID, emb.Vector); err != nil {
			return nil, nil, fmt.Errorf("adding embedding for %s: %w", ref.ID, err)
		}
		stats.PapersIndexed++
	}

	m.BuildDurationMs = time.Since(startTime).Milliseconds()
	stats.Duration = time.Since(startTime)

	slog.Debug("embedding matrix built",
		"rows", m.Rows(),
		"model", m.ModelName,
		"duration", stats.Duration)

	return m, stats, nil
}
