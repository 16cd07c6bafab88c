// Package semantic holds the precomputed embedding matrix and the vector math
// used to rank papers against it.
package semantic

import "time"

// Matrix is a dense embedding matrix with one row per corpus paper.
// IDs[i] names the paper whose embedding is Vectors[i].
type Matrix struct {
	// Version is the format version for compatibility checking.
	// Check against CurrentIndexVersion when loading.
	Version int `json:"version"`

	// Metadata about the matrix
	ModelName       string    `json:"model_name"`        // e.g., "all-minilm:l6-v2"
	Dimensions      int       `json:"dimensions"`        // 384 for all-minilm
	CreatedAt       time.Time `json:"created_at"`        // When the matrix was built or imported
	Source          string    `json:"source"`            // "ollama" or "npy"
	BuildDurationMs int64     `json:"build_duration_ms"` // Time to build in milliseconds

	IDs     []string    `json:"-"`
	Vectors [][]float32 `json:"-"`
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return len(m.Vectors)
}

// BuildStats contains statistics from matrix building.
type BuildStats struct {
	PapersIndexed  int           `json:"papers_indexed"`
	Duration       time.Duration `json:"duration"`
	IndexSizeBytes int64         `json:"index_size_bytes"`
}
