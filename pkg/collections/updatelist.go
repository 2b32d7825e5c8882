package collections

// UpdateList is an IndexList that logs inserted and deleted elements
// since the last Baseline. The logs hold net changes: an element inserted
// and then deleted shows up in neither, and neither does a baseline
// element that was deleted and added back.
type UpdateList[T comparable] struct {
	IndexList[T]
	inserted []T
	deleted  []T
}

// NewUpdateList creates a list whose baseline is items.
func NewUpdateList[T comparable](items ...T) *UpdateList[T] {
	l := &UpdateList[T]{IndexList: IndexList[T]{selected: -1}}
	l.items = append(l.items, items...)
	return l
}

// Add appends item and logs the insert.
func (l *UpdateList[T]) Add(item T) {
	l.IndexList.Add(item)
	l.logInsert(item)
}

// Insert places item at i and logs the insert.
func (l *UpdateList[T]) Insert(i int, item T) error {
	if err := l.IndexList.Insert(i, item); err != nil {
		return err
	}
	l.logInsert(item)
	return nil
}

// Set replaces the element at i, logging a delete of the old value and
// an insert of the new one when they differ.
func (l *UpdateList[T]) Set(i int, item T) (T, error) {
	old, err := l.IndexList.Set(i, item)
	if err != nil {
		return old, err
	}
	if old != item {
		l.logDelete(old)
		l.logInsert(item)
	}
	return old, nil
}

// RemoveAt removes the element at i and logs the delete.
func (l *UpdateList[T]) RemoveAt(i int) (T, error) {
	item, err := l.IndexList.RemoveAt(i)
	if err != nil {
		return item, err
	}
	l.logDelete(item)
	return item, nil
}

// Remove removes the first element equal to item.
func (l *UpdateList[T]) Remove(item T) bool {
	i := IndexOf(l.items, item)
	if i < 0 {
		return false
	}
	_, err := l.RemoveAt(i)
	return err == nil
}

// Clear removes every element, logging each delete.
func (l *UpdateList[T]) Clear() {
	for _, item := range l.items {
		l.logDelete(item)
	}
	l.IndexList.Clear()
}

// Inserted returns elements added since the baseline.
func (l *UpdateList[T]) Inserted() []T {
	return append([]T(nil), l.inserted...)
}

// Deleted returns baseline elements removed since the baseline.
func (l *UpdateList[T]) Deleted() []T {
	return append([]T(nil), l.deleted...)
}

// Dirty reports whether there are unbaselined changes.
func (l *UpdateList[T]) Dirty() bool {
	return len(l.inserted) > 0 || len(l.deleted) > 0
}

// Baseline accepts the current contents and clears both logs.
func (l *UpdateList[T]) Baseline() {
	l.inserted = nil
	l.deleted = nil
}

func (l *UpdateList[T]) logInsert(item T) {
	if i := IndexOf(l.deleted, item); i >= 0 {
		l.deleted = append(l.deleted[:i], l.deleted[i+1:]...)
		return
	}
	l.inserted = append(l.inserted, item)
}

func (l *UpdateList[T]) logDelete(item T) {
	if i := IndexOf(l.inserted, item); i >= 0 {
		l.inserted = append(l.inserted[:i], l.inserted[i+1:]...)
		return
	}
	l.deleted = append(l.deleted, item)
}
