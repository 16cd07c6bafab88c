// Package embedding turns text into dense vectors for semantic ranking.
package embedding

// Embedding is a vector embedding of one piece of text.
type Embedding struct {
	Vector []float32 // e.g. 384 dimensions for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}
