package collections

// IndexList is a list with a selection cursor. The cursor follows the
// selected element across inserts and removals; -1 means nothing is
// selected.
type IndexList[T any] struct {
	items    []T
	selected int
}

// NewIndexList creates a list holding items, with nothing selected.
func NewIndexList[T any](items ...T) *IndexList[T] {
	l := &IndexList[T]{selected: -1}
	l.items = append(l.items, items...)
	return l
}

// Len returns the number of elements.
func (l *IndexList[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the elements.
func (l *IndexList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Get returns the element at i.
func (l *IndexList[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, ErrIndexOutOfRange
	}
	return l.items[i], nil
}

// Set replaces the element at i and returns the previous one.
func (l *IndexList[T]) Set(i int, item T) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, ErrIndexOutOfRange
	}
	old := l.items[i]
	l.items[i] = item
	return old, nil
}

// Add appends item.
func (l *IndexList[T]) Add(item T) {
	l.items = append(l.items, item)
}

// Insert places item at position i, shifting later elements.
func (l *IndexList[T]) Insert(i int, item T) error {
	if i < 0 || i > len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items = append(l.items, item)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item
	if l.selected >= i {
		l.selected++
	}
	return nil
}

// RemoveAt removes and returns the element at i. Removing the selected
// element moves the selection to the element that takes its place, or
// to the new last element.
func (l *IndexList[T]) RemoveAt(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, ErrIndexOutOfRange
	}
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)

	switch {
	case l.selected > i:
		l.selected--
	case l.selected == i && l.selected >= len(l.items):
		l.selected = len(l.items) - 1
	}
	return item, nil
}

// Clear removes all elements and the selection.
func (l *IndexList[T]) Clear() {
	l.items = nil
	l.selected = -1
}

// Select moves the cursor to i; -1 clears the selection.
func (l *IndexList[T]) Select(i int) error {
	if i < -1 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.selected = i
	return nil
}

// SelectedIndex returns the cursor position or -1.
func (l *IndexList[T]) SelectedIndex() int {
	return l.selected
}

// Selected returns the selected element.
func (l *IndexList[T]) Selected() (T, bool) {
	var zero T
	if l.selected < 0 {
		return zero, false
	}
	return l.items[l.selected], true
}

// Next advances the cursor; it reports false at the end of the list.
func (l *IndexList[T]) Next() bool {
	if l.selected+1 >= len(l.items) {
		return false
	}
	l.selected++
	return true
}

// Prev moves the cursor back; it reports false at the start of the list.
func (l *IndexList[T]) Prev() bool {
	if l.selected <= 0 {
		return false
	}
	l.selected--
	return true
}
