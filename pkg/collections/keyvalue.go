package collections

import "fmt"

// KeyValue is a typed key/value pair.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// NewKeyValue creates a pair.
func NewKeyValue[K comparable, V any](key K, value V) KeyValue[K, V] {
	return KeyValue[K, V]{Key: key, Value: value}
}

func (kv KeyValue[K, V]) String() string {
	return fmt.Sprintf("%v=%v", kv.Key, kv.Value)
}
