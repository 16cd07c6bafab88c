// Package reference defines the core domain type for corpus papers.
package reference

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Validate.
var (
	ErrMissingID         = errors.New("paper has no id")
	ErrInvalidPopularity = errors.New("normalized popularity out of range")
)

// Reference represents one paper in the corpus.
type Reference struct {
	// Identity
	ID string `json:"id"` // Stable identifier, unique across the corpus

	// Metadata
	Title        string `json:"title"`
	Abstract     string `json:"abstract"`
	Authors      string `json:"authors"` // Free-text author list as published
	Year         int    `json:"year"`
	MainCategory string `json:"main_category"` // e.g. "cs.LG"

	// Ranking signal, rescaled offline to [0, 1]
	NormalizedPopularity float64 `json:"normalized_popularity"`

	Link string `json:"link"`
}

// Validate checks the per-record invariants.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	p := r.NormalizedPopularity
	// NaN fails both comparisons, so test the accepted range directly.
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: %s has %v", ErrInvalidPopularity, r.ID, p)
	}
	return nil
}

// EmbeddingText returns the text embedded for this paper.
// Title and abstract are joined so papers with a short abstract still carry signal.
func (r Reference) EmbeddingText() string {
	title := strings.TrimSpace(r.Title)
	abstract := strings.TrimSpace(r.Abstract)
	switch {
	case title == "":
		return abstract
	case abstract == "":
		return title
	default:
		return title + ". " + abstract
	}
}
