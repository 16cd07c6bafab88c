package library

import (
	"github.com/google/uuid"
)

// Session is the state of one browsing session.
type Session struct {
	ID    string
	Saved Saved

	selected string
}

// NewSession returns an empty session with a fresh id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Select marks id as the paper being viewed.
func (s *Session) Select(id string) {
	s.selected = id
}

// Selected returns the paper being viewed and whether there is one.
func (s *Session) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// Back clears the selection and returns to the listing.
func (s *Session) Back() {
	s.selected = ""
}
