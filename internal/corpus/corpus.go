// Package corpus holds the ordered, read-only paper corpus.
//
// A paper's position in the corpus is its row. Rows are the join key into the
// embedding matrix, so a Corpus never reorders, filters, or mutates its records.
package corpus

import (
	"errors"
	"fmt"

	"github.com/scholarmind/scholarmind/internal/reference"
)

// Errors returned by New and lookups.
var (
	ErrDuplicateID       = errors.New("duplicate paper id")
	ErrInvalidPopularity = reference.ErrInvalidPopularity
	ErrNotFound          = errors.New("paper not found")
)

// Corpus is an immutable ordered sequence of papers with an id index.
type Corpus struct {
	refs []reference.Reference
	rows map[string]int
}

// New validates refs and builds a corpus preserving their order.
// The slice is copied so later changes by the caller do not leak in.
func New(refs []reference.Reference) (*Corpus, error) {
	c := &Corpus{
		refs: make([]reference.Reference, len(refs)),
		rows: make(map[string]int, len(refs)),
	}
	copy(c.refs, refs)

	for i, ref := range c.refs {
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if prev, dup := c.rows[ref.ID]; dup {
			return nil, fmt.Errorf("%w: %s at rows %d and %d", ErrDuplicateID, ref.ID, prev, i)
		}
		c.rows[ref.ID] = i
	}

	return c, nil
}

// Len returns the number of papers.
func (c *Corpus) Len() int {
	return len(c.refs)
}

// At returns the paper at row. It panics if row is out of range,
// like a slice index; callers validate rows first with Valid.
func (c *Corpus) At(row int) reference.Reference {
	return c.refs[row]
}

// Valid reports whether row is a valid row index.
func (c *Corpus) Valid(row int) bool {
	return row >= 0 && row < len(c.refs)
}

// Row returns the row index of the paper with the given id.
func (c *Corpus) Row(id string) (int, bool) {
	row, ok := c.rows[id]
	return row, ok
}

// Lookup returns the paper with the given id.
func (c *Corpus) Lookup(id string) (reference.Reference, error) {
	row, ok := c.rows[id]
	if !ok {
		return reference.Reference{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.refs[row], nil
}

// IDs returns paper ids in row order.
func (c *Corpus) IDs() []string {
	ids := make([]string, len(c.refs))
	for i, ref := range c.refs {
		ids[i] = ref.ID
	}
	return ids
}

// All returns a copy of the papers in row order.
func (c *Corpus) All() []reference.Reference {
	out := make([]reference.Reference, len(c.refs))
	copy(out, c.refs)
	return out
}
