package ranking

import (
	"math/rand/v2"
	"sort"

	"github.com/scholarmind/scholarmind/internal/corpus"
)

const (
	// DefaultPopularPool is how many of the most popular papers the home feed samples from.
	DefaultPopularPool = 50

	// DefaultPopularCount is how many papers the home feed shows.
	DefaultPopularCount = 15
)

// Popular returns n papers sampled from the pool most popular papers.
// A nil rng skips sampling and returns the first n of the pool in
// popularity order, which keeps output reproducible.
func Popular(c *corpus.Corpus, pool, n int, rng *rand.Rand) ([]Result, error) {
	if pool < 0 || n < 0 {
		return nil, ErrNegativeLimit
	}

	order := make([]int, c.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return c.At(order[i]).NormalizedPopularity > c.At(order[j]).NormalizedPopularity
	})

	if pool < len(order) {
		order = order[:pool]
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	if n < len(order) {
		order = order[:n]
	}

	results := make([]Result, 0, len(order))
	for _, row := range order {
		paper := c.At(row)
		results = append(results, Result{
			Paper:      paper,
			Row:        row,
			Popularity: paper.NormalizedPopularity,
			Score:      paper.NormalizedPopularity,
		})
	}
	return results, nil
}
