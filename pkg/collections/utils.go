package collections

import (
	"fmt"
	"strings"
)

// Filter returns the elements of s for which keep returns true.
func Filter[T any](s []T, keep func(T) bool) []T {
	var out []T
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Map applies fn to every element of s.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// IndexOf returns the position of the first element equal to v, or -1.
func IndexOf[T comparable](s []T, v T) int {
	for i, e := range s {
		if e == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is in s.
func Contains[T comparable](s []T, v T) bool {
	return IndexOf(s, v) >= 0
}

// Unique returns s without duplicates, keeping first occurrences.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	var out []T
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Chunk splits s into slices of at most size elements.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 {
		return nil
	}
	var out [][]T
	for size < len(s) {
		out = append(out, s[:size:size])
		s = s[size:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}

// Reverse returns a reversed copy of s.
func Reverse[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// JoinStrings formats every element with %v and joins them with sep.
func JoinStrings[T any](s []T, sep string) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
