// Package history implements a bounded back/forward navigation history.
package history

import "errors"

// ErrEmpty is returned when navigating an empty history.
var ErrEmpty = errors.New("history is empty")

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 50

// History keeps at most Capacity entries and a cursor on the current one.
// Adding an entry after going back discards the forward entries.
type History[T comparable] struct {
	items    []T
	cursor   int
	capacity int
}

// New creates an empty history.
func New[T comparable](capacity int) *History[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History[T]{cursor: -1, capacity: capacity}
}

// Add records item as the current entry. Adding the current entry again is
// a no-op.
func (h *History[T]) Add(item T) {
	if h.cursor >= 0 && h.items[h.cursor] == item {
		return
	}
	h.items = append(h.items[:h.cursor+1], item)
	if over := len(h.items) - h.capacity; over > 0 {
		h.items = append([]T(nil), h.items[over:]...)
	}
	h.cursor = len(h.items) - 1
}

// Current returns the entry under the cursor.
func (h *History[T]) Current() (T, error) {
	var zero T
	if h.cursor < 0 {
		return zero, ErrEmpty
	}
	return h.items[h.cursor], nil
}

// CanGoBack reports whether Back would move.
func (h *History[T]) CanGoBack() bool {
	return h.cursor > 0
}

// CanGoForward reports whether Forward would move.
func (h *History[T]) CanGoForward() bool {
	return h.cursor >= 0 && h.cursor < len(h.items)-1
}

// Back moves to the previous entry and returns it. At the oldest entry it
// stays put and returns that entry.
func (h *History[T]) Back() (T, error) {
	if h.CanGoBack() {
		h.cursor--
	}
	return h.Current()
}

// Forward moves to the next entry and returns it.
func (h *History[T]) Forward() (T, error) {
	if h.CanGoForward() {
		h.cursor++
	}
	return h.Current()
}

// Items returns all entries, oldest first.
func (h *History[T]) Items() []T {
	return append([]T(nil), h.items...)
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	return len(h.items)
}

// Capacity returns the maximum number of entries.
func (h *History[T]) Capacity() int {
	return h.capacity
}

// Clear drops every entry.
func (h *History[T]) Clear() {
	h.items = nil
	h.cursor = -1
}
