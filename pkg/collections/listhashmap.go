package collections

// ListHashMap is a hash map that remembers insertion order.
// The order slice and the index map always describe the same entries.
type ListHashMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewListHashMap creates an empty map.
func NewListHashMap[K comparable, V any]() *ListHashMap[K, V] {
	return &ListHashMap[K, V]{values: make(map[K]V)}
}

// Put stores value under key. An existing key keeps its position.
func (m *ListHashMap[K, V]) Put(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *ListHashMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Contains reports whether key is present.
func (m *ListHashMap[K, V]) Contains(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Remove deletes key and returns its value.
func (m *ListHashMap[K, V]) Remove(key K) (V, bool) {
	v, ok := m.values[key]
	if !ok {
		return v, false
	}
	if i := m.IndexOf(key); i >= 0 {
		m.keys = append(m.keys[:i], m.keys[i+1:]...)
	}
	delete(m.values, key)
	return v, true
}

// At returns the entry at position i in insertion order.
func (m *ListHashMap[K, V]) At(i int) (KeyValue[K, V], error) {
	if i < 0 || i >= len(m.keys) {
		return KeyValue[K, V]{}, ErrIndexOutOfRange
	}
	k := m.keys[i]
	return KeyValue[K, V]{Key: k, Value: m.values[k]}, nil
}

// IndexOf returns the position of key or -1.
func (m *ListHashMap[K, V]) IndexOf(key K) int {
	if _, ok := m.values[key]; !ok {
		return -1
	}
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Keys returns the keys in insertion order.
func (m *ListHashMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in insertion order.
func (m *ListHashMap[K, V]) Values() []V {
	out := make([]V, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}

// Entries returns key/value pairs in insertion order.
func (m *ListHashMap[K, V]) Entries() []KeyValue[K, V] {
	out := make([]KeyValue[K, V], len(m.keys))
	for i, k := range m.keys {
		out[i] = KeyValue[K, V]{Key: k, Value: m.values[k]}
	}
	return out
}

// Each calls fn for every entry in order until fn returns false.
func (m *ListHashMap[K, V]) Each(fn func(key K, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Len returns the number of entries.
func (m *ListHashMap[K, V]) Len() int {
	return len(m.keys)
}

// Clear removes all entries.
func (m *ListHashMap[K, V]) Clear() {
	m.keys = nil
	m.values = make(map[K]V)
}

// moveToBack moves an existing key to the newest position.
func (m *ListHashMap[K, V]) moveToBack(key K) {
	i := m.IndexOf(key)
	if i < 0 || i == len(m.keys)-1 {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.keys = append(m.keys, key)
}
