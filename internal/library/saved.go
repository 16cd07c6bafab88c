// Package library holds per-session reading state: the papers a user has
// saved and the paper they are currently looking at.
//
// Nothing here is persisted. A Session lives as long as the process that
// created it.
package library

import "sort"

// Saved is a set of paper ids.
// The zero value is ready to use.
type Saved struct {
	ids map[string]struct{}
}

// Toggle adds id if it is absent and removes it otherwise.
// It reports whether id is saved after the call.
func (s *Saved) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is saved.
func (s *Saved) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of saved papers.
func (s *Saved) Len() int {
	return len(s.ids)
}

// IDs returns the saved ids in lexical order.
func (s *Saved) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
