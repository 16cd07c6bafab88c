// Package ranking ranks corpus papers for discovery.
//
// Two operations make up the engine:
//
//   - SemanticSearch embeds a free-text query and orders the whole corpus by
//     cosine similarity to it.
//   - HybridRecommend takes a seed paper, keeps its CandidatePoolSize nearest
//     neighbours (never the seed itself) and re-ranks them by
//     0.7 * similarity + 0.3 * normalized popularity.
//
// Both are pure functions of the corpus, the embedding matrix and their
// arguments. Sorting is stable: equal scores keep corpus order for search and
// candidate-pool order for recommendations. Limits larger than the available
// papers are clamped, a limit of zero yields an empty result and a negative
// limit is rejected with ErrNegativeLimit.
//
// Popular serves the no-query home feed: a sample drawn from the most
// popular papers.
package ranking
