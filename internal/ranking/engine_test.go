package ranking

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/scholarmind/scholarmind/internal/corpus"
	"github.com/scholarmind/scholarmind/internal/embedding"
	"github.com/scholarmind/scholarmind/internal/reference"
	"github.com/scholarmind/scholarmind/internal/semantic"
)

const tolerance = 1e-9

// fixedProvider embeds every query to the same vector.
type fixedProvider struct {
	vector []float32
	err    error
	calls  int
}

func (p *fixedProvider) Embed(ctx context.Context, text string) (embedding.Embedding, error) {
	p.calls++
	if p.err != nil {
		return embedding.Embedding{}, p.err
	}
	return embedding.Embedding{Vector: p.vector}, nil
}

func (p *fixedProvider) ModelName() string { return "fixed" }
func (p *fixedProvider) Dimensions() int   { return len(p.vector) }

// unit returns a 3-d unit vector whose cosine with (1,0,0) is c,
// with the remainder placed on axis.
func unit(c float64, axis int) []float32 {
	v := []float32{float32(c), 0, 0}
	v[axis] = float32(math.Sqrt(1 - c*c))
	return v
}

type paper struct {
	id  string
	pop float64
	vec []float32
}

func newTestEngine(t *testing.T, papers []paper, provider embedding.Provider) *Engine {
	t.Helper()

	refs := make([]reference.Reference, len(papers))
	m := semantic.NewMatrix("fixed", len(papers[0].vec))
	for i, p := range papers {
		refs[i] = reference.Reference{ID: p.id, Title: "Paper " + p.id, NormalizedPopularity: p.pop}
		if err := m.Append(p.id, p.vec); err != nil {
			t.Fatalf("Append(%s) failed: %v", p.id, err)
		}
	}

	c, err := corpus.New(refs)
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	e, err := NewEngine(c, m, provider)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Paper.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSemanticSearch_Scenario(t *testing.T) {
	provider := &fixedProvider{vector: []float32{1, 0, 0}}
	e := newTestEngine(t, []paper{
		{"A", 0.9, unit(0.2, 1)},
		{"B", 0.1, unit(0.9, 1)},
		{"C", 0.5, unit(0.5, 1)},
	}, provider)

	results, err := e.SemanticSearch(context.Background(), "neural networks", 2)
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}

	if got := ids(results); !equalIDs(got, []string{"B", "C"}) {
		t.Errorf("SemanticSearch ids = %v, want [B C]", got)
	}
	if math.Abs(results[0].Similarity-0.9) > 1e-6 {
		t.Errorf("B similarity = %v, want 0.9", results[0].Similarity)
	}
	for _, r := range results {
		if r.Score != r.Similarity {
			t.Errorf("%s: search score %v should equal similarity %v", r.Paper.ID, r.Score, r.Similarity)
		}
	}
	if results[0].Row != 1 || results[1].Row != 2 {
		t.Errorf("rows = %d, %d, want 1, 2", results[0].Row, results[1].Row)
	}
}

func TestSemanticSearch_Limits(t *testing.T) {
	provider := &fixedProvider{vector: []float32{1, 0, 0}}
	e := newTestEngine(t, []paper{
		{"A", 0.9, unit(0.2, 1)},
		{"B", 0.1, unit(0.9, 1)},
		{"C", 0.5, unit(0.5, 2)},
	}, provider)
	ctx := context.Background()

	t.Run("topN larger than corpus returns every paper once", func(t *testing.T) {
		results, err := e.SemanticSearch(ctx, "q", 50)
		if err != nil {
			t.Fatalf("SemanticSearch failed: %v", err)
		}
		if got := ids(results); !equalIDs(got, []string{"B", "C", "A"}) {
			t.Errorf("ids = %v, want [B C A]", got)
		}
	})

	t.Run("results sorted descending", func(t *testing.T) {
		results, _ := e.SemanticSearch(ctx, "q", 3)
		for i := 1; i < len(results); i++ {
			if results[i].Similarity > results[i-1].Similarity {
				t.Errorf("result %d (%v) > result %d (%v)", i, results[i].Similarity, i-1, results[i-1].Similarity)
			}
		}
	})

	t.Run("zero limit returns empty without embedding", func(t *testing.T) {
		before := provider.calls
		results, err := e.SemanticSearch(ctx, "q", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("expected empty non-nil results, got %v", results)
		}
		if provider.calls != before {
			t.Error("embedder should not be called for a zero limit")
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		if _, err := e.SemanticSearch(ctx, "q", -1); err != ErrNegativeLimit {
			t.Errorf("expected ErrNegativeLimit, got %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if _, err := e.SemanticSearch(ctx, "   ", 5); err != ErrEmptyQuery {
			t.Errorf("expected ErrEmptyQuery, got %v", err)
		}
	})
}

func TestSemanticSearch_TiesKeepCorpusOrder(t *testing.T) {
	same := []float32{0, 1, 0}
	e := newTestEngine(t, []paper{
		{"first", 0.1, same},
		{"best", 0.1, []float32{1, 0, 0}},
		{"second", 0.9, same},
		{"third", 0.5, same},
	}, &fixedProvider{vector: []float32{1, 0, 0}})

	results, err := e.SemanticSearch(context.Background(), "q", 4)
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}
	if got := ids(results); !equalIDs(got, []string{"best", "first", "second", "third"}) {
		t.Errorf("ids = %v, want [best first second third]", got)
	}
}

func TestSemanticSearch_EmbeddingErrors(t *testing.T) {
	papers := []paper{{"A", 0.5, []float32{1, 0, 0}}}

	t.Run("provider failure is wrapped", func(t *testing.T) {
		boom := errors.New("connection refused")
		e := newTestEngine(t, papers, &fixedProvider{vector: []float32{1, 0, 0}, err: boom})
		_, err := e.SemanticSearch(context.Background(), "q", 1)
		if !errors.Is(err, ErrEmbedding) || !errors.Is(err, boom) {
			t.Errorf("expected ErrEmbedding wrapping cause, got %v", err)
		}
	})

	t.Run("malformed vector", func(t *testing.T) {
		e := newTestEngine(t, papers, nil)
		_, err := e.SearchVector([]float32{1, 0}, 1)
		if !errors.Is(err, ErrEmbedding) {
			t.Errorf("expected ErrEmbedding, got %v", err)
		}
	})

	t.Run("no provider", func(t *testing.T) {
		e := newTestEngine(t, papers, nil)
		_, err := e.SemanticSearch(context.Background(), "q", 1)
		if !errors.Is(err, ErrEmbedding) {
			t.Errorf("expected ErrEmbedding, got %v", err)
		}
	})
}

func TestHybridRecommend_Scenario(t *testing.T) {
	// simAB = 0.9, simAC = 0.5
	e := newTestEngine(t, []paper{
		{"A", 0.9, []float32{1, 0, 0}},
		{"B", 0.1, unit(0.9, 1)},
		{"C", 0.5, unit(0.5, 2)},
	}, nil)

	results, err := e.HybridRecommend(0, 3)
	if err != nil {
		t.Fatalf("HybridRecommend failed: %v", err)
	}

	if got := ids(results); !equalIDs(got, []string{"B", "C"}) {
		t.Fatalf("ids = %v, want [B C]", got)
	}
	if math.Abs(results[0].Score-0.66) > 1e-6 {
		t.Errorf("score B = %v, want 0.66", results[0].Score)
	}
	if math.Abs(results[1].Score-0.50) > 1e-6 {
		t.Errorf("score C = %v, want 0.50", results[1].Score)
	}
	for _, r := range results {
		want := 0.7*r.Similarity + 0.3*r.Paper.NormalizedPopularity
		if math.Abs(r.Score-want) > tolerance {
			t.Errorf("%s: score %v != 0.7*%v + 0.3*%v", r.Paper.ID, r.Score, r.Similarity, r.Paper.NormalizedPopularity)
		}
		if r.Popularity != r.Paper.NormalizedPopularity {
			t.Errorf("%s: popularity %v, want %v", r.Paper.ID, r.Popularity, r.Paper.NormalizedPopularity)
		}
	}
}

func TestHybridRecommend_PopularityReorders(t *testing.T) {
	e := newTestEngine(t, []paper{
		{"seed", 0.5, []float32{1, 0, 0}},
		{"close", 0.0, unit(0.9, 1)},
		{"popular", 1.0, unit(0.8, 2)},
	}, nil)

	results, err := e.HybridRecommend(0, 2)
	if err != nil {
		t.Fatalf("HybridRecommend failed: %v", err)
	}
	// close: 0.63, popular: 0.56 + 0.3 = 0.86
	if got := ids(results); !equalIDs(got, []string{"popular", "close"}) {
		t.Errorf("ids = %v, want [popular close]", got)
	}
}

func TestHybridRecommend_CandidatePool(t *testing.T) {
	// Row i sits at angle i*0.01 from the seed, so similarity falls with i.
	// The least similar paper is also the most popular; it must stay out of the pool.
	n := CandidatePoolSize + 50
	papers := make([]paper, n)
	for i := 0; i < n; i++ {
		theta := float64(i) * 0.01
		pop := 0.0
		if i == n-1 {
			pop = 1.0
		}
		papers[i] = paper{
			id:  "p" + strconv.Itoa(i),
			pop: pop,
			vec: []float32{float32(math.Cos(theta)), float32(math.Sin(theta)), 0},
		}
	}
	e := newTestEngine(t, papers, nil)

	results, err := e.HybridRecommend(0, n)
	if err != nil {
		t.Fatalf("HybridRecommend failed: %v", err)
	}
	if len(results) != CandidatePoolSize {
		t.Fatalf("len = %d, want %d", len(results), CandidatePoolSize)
	}
	for _, r := range results {
		if r.Row == 0 {
			t.Error("seed must not be recommended")
		}
		if r.Row > CandidatePoolSize {
			t.Errorf("row %d is outside the %d nearest neighbours", r.Row, CandidatePoolSize)
		}
	}
}

func TestHybridRecommend_NeverReturnsSeed(t *testing.T) {
	// Duplicate embeddings tie with the seed; the seed is still excluded by row.
	same := []float32{0, 0, 1}
	papers := []paper{
		{"twin-a", 0.2, same},
		{"twin-b", 0.9, same},
		{"other", 0.4, []float32{1, 0, 0}},
	}
	e := newTestEngine(t, papers, nil)

	for row := range papers {
		results, err := e.HybridRecommend(row, 10)
		if err != nil {
			t.Fatalf("HybridRecommend(%d) failed: %v", row, err)
		}
		if len(results) != 2 {
			t.Errorf("HybridRecommend(%d) returned %d results, want 2", row, len(results))
		}
		for _, r := range results {
			if r.Row == row {
				t.Errorf("HybridRecommend(%d) returned the seed", row)
			}
		}
	}
}

func TestHybridRecommend_Boundaries(t *testing.T) {
	t.Run("single paper corpus", func(t *testing.T) {
		e := newTestEngine(t, []paper{{"only", 0.5, []float32{1, 0}}}, nil)
		results, err := e.HybridRecommend(0, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected empty results, got %v", ids(results))
		}
	})

	e := newTestEngine(t, []paper{
		{"A", 0.9, []float32{1, 0}},
		{"B", 0.1, []float32{0, 1}},
	}, nil)

	t.Run("invalid seed row", func(t *testing.T) {
		for _, row := range []int{-1, 2, 100} {
			if _, err := e.HybridRecommend(row, 3); !errors.Is(err, ErrInvalidIndex) {
				t.Errorf("HybridRecommend(%d) error = %v, want ErrInvalidIndex", row, err)
			}
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		results, err := e.HybridRecommend(0, 0)
		if err != nil || len(results) != 0 {
			t.Errorf("HybridRecommend(0, 0) = %v, %v, want empty, nil", results, err)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		if _, err := e.HybridRecommend(0, -1); err != ErrNegativeLimit {
			t.Errorf("expected ErrNegativeLimit, got %v", err)
		}
	})
}

func TestRecommendByID(t *testing.T) {
	e := newTestEngine(t, []paper{
		{"A", 0.9, []float32{1, 0, 0}},
		{"B", 0.1, unit(0.9, 1)},
		{"C", 0.5, unit(0.5, 2)},
	}, nil)

	byID, err := e.RecommendByID("A", 3)
	if err != nil {
		t.Fatalf("RecommendByID failed: %v", err)
	}
	byRow, _ := e.HybridRecommend(0, 3)
	if !equalIDs(ids(byID), ids(byRow)) {
		t.Errorf("RecommendByID = %v, HybridRecommend = %v", ids(byID), ids(byRow))
	}

	if _, err := e.RecommendByID("missing", 3); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestIdempotence(t *testing.T) {
	provider := &fixedProvider{vector: []float32{0.3, 0.4, 0.5}}
	e := newTestEngine(t, []paper{
		{"A", 0.9, []float32{1, 0, 0}},
		{"B", 0.1, []float32{0.2, 0.9, 0.1}},
		{"C", 0.5, []float32{0.3, 0.3, 0.9}},
		{"D", 0.7, []float32{0.5, 0.5, 0.5}},
	}, provider)
	ctx := context.Background()

	s1, _ := e.SemanticSearch(ctx, "q", 4)
	s2, _ := e.SemanticSearch(ctx, "q", 4)
	if !equalIDs(ids(s1), ids(s2)) {
		t.Errorf("search not idempotent: %v vs %v", ids(s1), ids(s2))
	}

	r1, _ := e.HybridRecommend(2, 3)
	r2, _ := e.HybridRecommend(2, 3)
	if !equalIDs(ids(r1), ids(r2)) {
		t.Errorf("recommend not idempotent: %v vs %v", ids(r1), ids(r2))
	}
}

func TestNewEngine_JoinsByID(t *testing.T) {
	refs := []reference.Reference{
		{ID: "A", NormalizedPopularity: 0.9},
		{ID: "B", NormalizedPopularity: 0.1},
	}
	c, _ := corpus.New(refs)

	// Matrix rows stored in the opposite order of the corpus.
	m := semantic.NewMatrix("fixed", 2)
	m.Append("B", []float32{0, 1})
	m.Append("A", []float32{1, 0})

	e, err := NewEngine(c, m, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	results, err := e.SearchVector([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("SearchVector failed: %v", err)
	}
	if results[0].Paper.ID != "A" || results[0].Row != 0 {
		t.Errorf("top = %s at row %d, want A at row 0", results[0].Paper.ID, results[0].Row)
	}
}

func TestNewEngine_Misaligned(t *testing.T) {
	refs := []reference.Reference{{ID: "A"}, {ID: "B"}}
	c, _ := corpus.New(refs)

	tests := []struct {
		name     string
		build    func() *semantic.Matrix
		provider embedding.Provider
	}{
		{"row count", func() *semantic.Matrix {
			m := semantic.NewMatrix("fixed", 2)
			m.Append("A", []float32{1, 0})
			return m
		}, nil},
		{"unknown id", func() *semantic.Matrix {
			m := semantic.NewMatrix("fixed", 2)
			m.Append("A", []float32{1, 0})
			m.Append("Z", []float32{0, 1})
			return m
		}, nil},
		{"duplicate id", func() *semantic.Matrix {
			m := semantic.NewMatrix("fixed", 2)
			m.Append("A", []float32{1, 0})
			m.Append("A", []float32{0, 1})
			return m
		}, nil},
		{"ragged row", func() *semantic.Matrix {
			m := semantic.NewMatrix("fixed", 2)
			m.Append("A", []float32{1, 0})
			m.Append("B", []float32{0, 1})
			m.Vectors[1] = []float32{0, 1, 0}
			return m
		}, nil},
		{"provider dimensions", func() *semantic.Matrix {
			m := semantic.NewMatrix("fixed", 2)
			m.Append("A", []float32{1, 0})
			m.Append("B", []float32{0, 1})
			return m
		}, &fixedProvider{vector: []float32{1, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(c, tt.build(), tt.provider)
			if !errors.Is(err, ErrMisaligned) {
				t.Errorf("expected ErrMisaligned, got %v", err)
			}
		})
	}
}
