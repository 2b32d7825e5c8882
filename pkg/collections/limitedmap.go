package collections

// LimitedMap is an insertion ordered map holding at most Capacity entries.
// Adding a new key to a full map evicts the eldest entry.
type LimitedMap[K comparable, V any] struct {
	entries  *ListHashMap[K, V]
	capacity int

	// AccessOrder makes Get refresh an entry, turning the map into an LRU.
	AccessOrder bool

	// OnEvict, when set, is called for every evicted entry.
	OnEvict func(key K, value V)
}

// NewLimitedMap creates a map bounded to capacity entries (minimum 1).
func NewLimitedMap[K comparable, V any](capacity int) *LimitedMap[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LimitedMap[K, V]{
		entries:  NewListHashMap[K, V](),
		capacity: capacity,
	}
}

// Capacity returns the maximum number of entries.
func (m *LimitedMap[K, V]) Capacity() int {
	return m.capacity
}

// Put stores value, evicting the eldest entries if needed.
func (m *LimitedMap[K, V]) Put(key K, value V) {
	exists := m.entries.Contains(key)
	m.entries.Put(key, value)
	if exists {
		if m.AccessOrder {
			m.entries.moveToBack(key)
		}
		return
	}
	for m.entries.Len() > m.capacity {
		eldest, _ := m.entries.At(0)
		m.entries.Remove(eldest.Key)
		if m.OnEvict != nil {
			m.OnEvict(eldest.Key, eldest.Value)
		}
	}
}

// Get returns the value for key.
func (m *LimitedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries.Get(key)
	if ok && m.AccessOrder {
		m.entries.moveToBack(key)
	}
	return v, ok
}

// Remove deletes key.
func (m *LimitedMap[K, V]) Remove(key K) (V, bool) {
	return m.entries.Remove(key)
}

// Keys returns keys from eldest to newest.
func (m *LimitedMap[K, V]) Keys() []K {
	return m.entries.Keys()
}

// Len returns the number of entries.
func (m *LimitedMap[K, V]) Len() int {
	return m.entries.Len()
}

// Clear removes all entries without calling OnEvict.
func (m *LimitedMap[K, V]) Clear() {
	m.entries.Clear()
}
