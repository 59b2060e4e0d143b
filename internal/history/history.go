// Package history implements a linear, branch-truncating version history
// with a current cursor.
//
// Index 0 is the origin. Appending after an undo discards the undone
// future; undo, redo and reset only move the cursor.
package history

// Store is an indexed sequence of versions plus a cursor.
//
// The zero value is not usable; call New. Store is not safe for concurrent
// use: its owner serialises access.
type Store[T any] struct {
	items  []T
	cursor int
}

// New returns an empty store (cursor -1).
func New[T any]() *Store[T] {
	return &Store[T]{cursor: -1}
}

// ReplaceAll discards every version and starts over from v.
func (s *Store[T]) ReplaceAll(v T) {
	s.items = []T{v}
	s.cursor = 0
}

// Clear empties the store.
func (s *Store[T]) Clear() {
	s.items = nil
	s.cursor = -1
}

// Append truncates everything after the cursor, pushes v and moves the
// cursor onto it. On an empty store v becomes the origin.
func (s *Store[T]) Append(v T) {
	// Copy on truncate so a previously returned Versions slice never sees
	// the new element overwrite a discarded one.
	kept := make([]T, s.cursor+1, s.cursor+2)
	copy(kept, s.items[:s.cursor+1])
	s.items = append(kept, v)
	s.cursor = len(s.items) - 1
}

// Undo moves the cursor back one step. It reports whether it moved.
func (s *Store[T]) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	s.cursor--
	return true
}

// Redo moves the cursor forward one step. It reports whether it moved.
func (s *Store[T]) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	s.cursor++
	return true
}

// Reset moves the cursor to the origin without deleting later versions.
// A following Append truncates from the origin.
func (s *Store[T]) Reset() bool {
	if len(s.items) == 0 {
		return false
	}
	moved := s.cursor != 0
	s.cursor = 0
	return moved
}

// CanUndo reports whether the cursor is past the origin.
func (s *Store[T]) CanUndo() bool {
	return s.cursor > 0
}

// CanRedo reports whether there is a version after the cursor.
func (s *Store[T]) CanRedo() bool {
	return s.cursor < len(s.items)-1
}

// Current returns the version under the cursor.
func (s *Store[T]) Current() (T, bool) {
	return s.At(s.cursor)
}

// Origin returns the first version.
func (s *Store[T]) Origin() (T, bool) {
	return s.At(0)
}

// At returns the version at index i.
func (s *Store[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Len returns the number of versions.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// Cursor returns the current index, or -1 when empty.
func (s *Store[T]) Cursor() int {
	return s.cursor
}

// Versions returns a copy of the sequence.
func (s *Store[T]) Versions() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
