package library

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestSaved_Toggle(t *testing.T) {
	var s Saved

	if s.Has("2101.00001") {
		t.Error("zero value should be empty")
	}
	if !s.Toggle("2101.00001") {
		t.Error("first Toggle should save")
	}
	if !s.Has("2101.00001") {
		t.Error("Has() = false after save")
	}
	if s.Toggle("2101.00001") {
		t.Error("second Toggle should unsave")
	}
	if s.Has("2101.00001") || s.Len() != 0 {
		t.Errorf("expected empty set, Len() = %d", s.Len())
	}
}

func TestSaved_IDsSorted(t *testing.T) {
	var s Saved
	for _, id := range []string{"c", "a", "b", "d"} {
		s.Toggle(id)
	}
	s.Toggle("d")

	want := []string{"a", "b", "c"}
	if got := s.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSaved_IDsEmpty(t *testing.T) {
	var s Saved
	got := s.IDs()
	if got == nil || len(got) != 0 {
		t.Errorf("IDs() = %#v, want empty slice", got)
	}
}

func TestSession(t *testing.T) {
	s := NewSession()
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("session id %q is not a uuid: %v", s.ID, err)
	}
	if other := NewSession(); other.ID == s.ID {
		t.Error("sessions should have distinct ids")
	}

	if _, ok := s.Selected(); ok {
		t.Error("new session should have no selection")
	}
	s.Select("A")
	if id, ok := s.Selected(); !ok || id != "A" {
		t.Errorf("Selected() = %q, %v, want A, true", id, ok)
	}
	s.Saved.Toggle("A")
	s.Back()
	if _, ok := s.Selected(); ok {
		t.Error("Back() should clear the selection")
	}
	if !s.Saved.Has("A") {
		t.Error("Back() should keep saved papers")
	}
}
