package ui

import (
	"github.com/google/go-cmp/cmp"
)

// Edits tracks unsaved per-row changes against server state. Rows are
// keyed by their server-assigned ID; a row is dirty when its local
// value differs from the server value. Saving or refetching resets
// the row by dropping the local entry.
type Edits[T any] struct {
	local map[int]T
}

// NewEdits returns an empty edit set.
func NewEdits[T any]() *Edits[T] {
	return &Edits[T]{local: make(map[int]T)}
}

// Set records a local value for a row.
func (e *Edits[T]) Set(id int, v T) {
	e.local[id] = v
}

// Get returns the effective value for a row: the local edit when one
// exists, otherwise the server value.
func (e *Edits[T]) Get(id int, server T) T {
	if v, ok := e.local[id]; ok {
		return v
	}
	return server
}

// Dirty reports whether the row's effective value differs from the
// server value.
func (e *Edits[T]) Dirty(id int, server T) bool {
	v, ok := e.local[id]
	if !ok {
		return false
	}
	return !cmp.Equal(v, server)
}

// Reset drops the local edit for a row, reverting it to server state.
func (e *Edits[T]) Reset(id int) {
	delete(e.local, id)
}

// Clear drops all local edits.
func (e *Edits[T]) Clear() {
	e.local = make(map[int]T)
}

// Any reports whether any tracked row is dirty against the given
// server values.
func (e *Edits[T]) Any(server map[int]T) bool {
	for id, v := range e.local {
		s, ok := server[id]
		if !ok || !cmp.Equal(v, s) {
			return true
		}
	}
	return false
}
