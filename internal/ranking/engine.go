package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/scholarmind/scholarmind/internal/corpus"
	"github.com/scholarmind/scholarmind/internal/embedding"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/semantic"
)

// Errors returned by the engine.
var (
	ErrInvalidIndex  = errors.New("paper not in corpus")
	ErrEmbedding     = errors.New("embedding query failed")
	ErrEmptyQuery    = errors.New("search query cannot be empty")
	ErrNegativeLimit = errors.New("limit cannot be negative")
	ErrMisaligned    = errors.New("embedding matrix does not match corpus")
)

// Result is one ranked paper.
// For search results Score equals Similarity; for recommendations it is the
// hybrid blend of Similarity and Popularity.
type Result struct {
	Paper      reference.Reference `json:"paper"`
	Row        int                 `json:"row"`
	Similarity float64             `json:"similarity"`
	Popularity float64             `json:"popularity"`
	Score      float64             `json:"score"`
}

// Engine ranks a fixed corpus against its embedding matrix.
// It never mutates the corpus or the vectors after construction.
type Engine struct {
	corpus   *corpus.Corpus
	vectors  [][]float32 // vectors[i] is the embedding of corpus row i
	dims     int
	provider embedding.Provider
	weights  HybridWeights
}

// NewEngine joins matrix rows to corpus rows by paper id.
// Every corpus paper needs exactly one matrix row and the matrix may not carry
// extra papers. provider may be nil when only recommendations are needed.
func NewEngine(c *corpus.Corpus, m *semantic.Matrix, provider embedding.Provider) (*Engine, error) {
	if c == nil || m == nil {
		return nil, fmt.Errorf("%w: corpus and matrix are required", ErrMisaligned)
	}
	if m.Rows() != c.Len() {
		return nil, fmt.Errorf("%w: matrix has %d rows, corpus has %d papers", ErrMisaligned, m.Rows(), c.Len())
	}

	rowOf, err := m.RowIndex()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisaligned, err)
	}

	vectors := make([][]float32, c.Len())
	for i := 0; i < c.Len(); i++ {
		id := c.At(i).ID
		mrow, ok := rowOf[id]
		if !ok {
			return nil, fmt.Errorf("%w: no embedding for paper %s", ErrMisaligned, id)
		}
		if len(m.Vectors[mrow]) != m.Dimensions {
			return nil, fmt.Errorf("%w: paper %s has %d dimensions, want %d",
				ErrMisaligned, id, len(m.Vectors[mrow]), m.Dimensions)
		}
		vectors[i] = m.Vectors[mrow]
	}

	if provider != nil && provider.Dimensions() != m.Dimensions {
		return nil, fmt.Errorf("%w: provider %s yields %d dimensions, matrix has %d",
			ErrMisaligned, provider.ModelName(), provider.Dimensions(), m.Dimensions)
	}
	if provider != nil && m.ModelName != "" && provider.ModelName() != m.ModelName {
		slog.Warn("query model differs from matrix model",
			"query_model", provider.ModelName(),
			"matrix_model", m.ModelName)
	}

	slog.Debug("ranking engine ready", "papers", c.Len(), "dimensions", m.Dimensions)

	return &Engine{
		corpus:   c,
		vectors:  vectors,
		dims:     m.Dimensions,
		provider: provider,
		weights:  DefaultHybridWeights,
	}, nil
}

// Corpus returns the engine's corpus.
func (e *Engine) Corpus() *corpus.Corpus {
	return e.corpus
}

// SemanticSearch embeds query and returns the topN most similar papers.
func (e *Engine) SemanticSearch(ctx context.Context, query string, topN int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topN < 0 {
		return nil, ErrNegativeLimit
	}
	if topN == 0 {
		return []Result{}, nil
	}
	if e.provider == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", ErrEmbedding)
	}

	emb, err := e.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	return e.SearchVector(emb.Vector, topN)
}

// SearchVector ranks the corpus against an already computed query vector.
func (e *Engine) SearchVector(query []float32, topN int) ([]Result, error) {
	if topN < 0 {
		return nil, ErrNegativeLimit
	}
	if len(query) != e.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrEmbedding, len(query), e.dims)
	}

	scores := semantic.Similarities(query, e.vectors)
	order := semantic.RankDescending(scores)
	if topN < len(order) {
		order = order[:topN]
	}

	results := make([]Result, 0, len(order))
	for _, row := range order {
		paper := e.corpus.At(row)
		results = append(results, Result{
			Paper:      paper,
			Row:        row,
			Similarity: scores[row],
			Popularity: paper.NormalizedPopularity,
			Score:      scores[row],
		})
	}
	return results, nil
}

// HybridRecommend returns the topN candidates for the paper at seedRow.
// Candidates are the CandidatePoolSize papers most similar to the seed,
// excluding the seed, re-ranked by the hybrid weights.
func (e *Engine) HybridRecommend(seedRow, topN int) ([]Result, error) {
	if !e.corpus.Valid(seedRow) {
		return nil, fmt.Errorf("%w: row %d (corpus has %d papers)", ErrInvalidIndex, seedRow, e.corpus.Len())
	}
	if topN < 0 {
		return nil, ErrNegativeLimit
	}

	sims := semantic.Similarities(e.vectors[seedRow], e.vectors)
	order := semantic.RankDescending(sims)

	pool := make([]Result, 0, min(CandidatePoolSize, len(order)))
	for _, row := range order {
		if row == seedRow {
			continue
		}
		if len(pool) == CandidatePoolSize {
			break
		}
		paper := e.corpus.At(row)
		pool = append(pool, Result{
			Paper:      paper,
			Row:        row,
			Similarity: sims[row],
			Popularity: paper.NormalizedPopularity,
			Score:      e.weights.Score(sims[row], paper.NormalizedPopularity),
		})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	if topN < len(pool) {
		pool = pool[:topN]
	}
	return pool, nil
}

// RecommendByID resolves id to its corpus row and calls HybridRecommend.
func (e *Engine) RecommendByID(id string, topN int) ([]Result, error) {
	row, ok := e.corpus.Row(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIndex, id)
	}
	return e.HybridRecommend(row, topN)
}
