package ranking

// HybridWeights defines how content similarity and popularity combine into
// a recommendation score.
type HybridWeights struct {
	Content    float64 `json:"content"`    // Weight for embedding cosine similarity (default: 0.7)
	Popularity float64 `json:"popularity"` // Weight for normalized popularity (default: 0.3)
}

// DefaultHybridWeights are the fixed recommendation weights.
//
// Formula: score = (similarity * 0.7) + (normalized_popularity * 0.3)
// The candidate pool is already restricted to the CandidatePoolSize nearest
// neighbours, so popularity only reorders papers that are on topic.
var DefaultHybridWeights = HybridWeights{
	Content:    0.7,
	Popularity: 0.3,
}

// CandidatePoolSize is how many nearest neighbours of the seed are re-ranked.
const CandidatePoolSize = 100

// Score computes the blended score for one candidate.
func (w HybridWeights) Score(similarity, popularity float64) float64 {
	return similarity*w.Content + popularity*w.Popularity
}
