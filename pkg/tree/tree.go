// Package tree provides a generic parent-owns-children hierarchy.
//
// A node's parent pointer and its parent's child list are kept mutually
// consistent by every mutating operation: attaching a node that already has
// a parent detaches it first, and cycles are rejected.
package tree

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when a node would become its own descendant.
var ErrCycle = errors.New("node cannot be added below itself")

// Node is a tree node holding a value of type T.
type Node[T any] struct {
	Value    T
	parent   *Node[T]
	children []*Node[T]
}

// New creates a root node.
func New[T any](value T) *Node[T] {
	return &Node[T]{Value: value}
}

// Parent returns the parent node, or nil for a root.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node[T]) Children() []*Node[T] {
	out := make([]*Node[T], len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children.
func (n *Node[T]) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at position i.
func (n *Node[T]) ChildAt(i int) (*Node[T], error) {
	if i < 0 || i >= len(n.children) {
		return nil, fmt.Errorf("child index %d out of range [0,%d)", i, len(n.children))
	}
	return n.children[i], nil
}

// Add creates a node for value, appends it and returns it.
func (n *Node[T]) Add(value T) *Node[T] {
	child := New(value)
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// AddChild appends child, detaching it from its previous parent.
func (n *Node[T]) AddChild(child *Node[T]) error {
	return n.InsertChild(len(n.children), child)
}

// InsertChild places child at position i, detaching it from its previous
// parent first.
func (n *Node[T]) InsertChild(i int, child *Node[T]) error {
	if child == nil {
		return fmt.Errorf("child is nil")
	}
	if child == n || child.IsAncestorOf(n) {
		return ErrCycle
	}
	if i < 0 || i > len(n.children) {
		return fmt.Errorf("child index %d out of range [0,%d]", i, len(n.children))
	}
	child.Detach()
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	return nil
}

// RemoveChild detaches child; it reports false if child is not a direct
// child of n.
func (n *Node[T]) RemoveChild(child *Node[T]) bool {
	if child == nil || child.parent != n {
		return false
	}
	child.Detach()
	return true
}

// Detach removes n from its parent, making it a root.
func (n *Node[T]) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// IsAncestorOf reports whether n is a proper ancestor of other.
func (n *Node[T]) IsAncestorOf(other *Node[T]) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor.
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsRoot reports whether n has no parent.
func (n *Node[T]) IsRoot() bool {
	return n.parent == nil
}

// IsLeaf reports whether n has no children.
func (n *Node[T]) IsLeaf() bool {
	return len(n.children) == 0
}

// Depth returns the number of edges between n and its root.
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the nodes from the root down to n.
func (n *Node[T]) Path() []*Node[T] {
	path := make([]*Node[T], n.Depth()+1)
	i := len(path) - 1
	for c := n; c != nil; c = c.parent {
		path[i] = c
		i--
	}
	return path
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk; Walk reports whether it completed.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order matching pred.
func (n *Node[T]) Find(pred func(*Node[T]) bool) *Node[T] {
	var found *Node[T]
	n.Walk(func(c *Node[T]) bool {
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node[T]) Size() int {
	size := 0
	n.Walk(func(*Node[T]) bool {
		size++
		return true
	})
	return size
}

// Clone deep-copies the subtree rooted at n. The clone is a root and every
// cloned child points at its cloned parent. copyValue may be nil, in which
// case values are copied by assignment.
func (n *Node[T]) Clone(copyValue func(T) T) *Node[T] {
	v := n.Value
	if copyValue != nil {
		v = copyValue(v)
	}
	clone := &Node[T]{Value: v}
	if len(n.children) > 0 {
		clone.children = make([]*Node[T], len(n.children))
		for i, c := range n.children {
			cc := c.Clone(copyValue)
			cc.parent = clone
			clone.children[i] = cc
		}
	}
	return clone
}
