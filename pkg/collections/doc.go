// Package collections provides list and map variants with ordering,
// selection and change tracking semantics, plus small generic slice
// helpers.
//
// The types are not safe for concurrent use; callers that share them
// across goroutines must synchronize access.
package collections

import "errors"

// ErrIndexOutOfRange is returned when a position is outside a list.
var ErrIndexOutOfRange = errors.New("index out of range")
