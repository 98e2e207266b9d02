package router

import "maps"

// Entry represents a single entry in the navigation stack: the route that
// was visited and the params it was entered with.
type Entry struct {
	Route  string
	Params Params
}

// Stack holds navigation history. The last entry is the current route.
// Entries are never mutated once pushed.
type Stack struct {
	entries []Entry
}

// NewStack creates a new empty navigation stack.
func NewStack() *Stack {
	return &Stack{
		entries: make([]Entry, 0),
	}
}

// Push adds a new entry to the stack.
func (s *Stack) Push(route string, params Params) Entry {
	entry := Entry{Route: route, Params: params}
	s.entries = append(s.entries, entry)
	return entry
}

// Pop removes and returns the top entry from the stack.
// Returns nil if the stack is empty.
func (s *Stack) Pop() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	entry := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = Entry{}
	s.entries = s.entries[:len(s.entries)-1]
	return &entry
}

// Peek returns the top entry without removing it.
// Returns nil if the stack is empty.
func (s *Stack) Peek() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	entry := s.entries[len(s.entries)-1]
	return &entry
}

// IsEmpty returns true if the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Clear removes all entries from the stack.
func (s *Stack) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// Entries returns a copy of the stack, oldest first. Params maps are copied
// too, so callers cannot alter history.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Route: e.Route, Params: maps.Clone(e.Params)}
	}
	return out
}
