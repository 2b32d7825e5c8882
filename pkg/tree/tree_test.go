package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertConsistent checks that every child points back at its parent.
func assertConsistent[T any](t *testing.T, n *Node[T]) {
	t.Helper()
	n.Walk(func(c *Node[T]) bool {
		for _, child := range c.children {
			assert.Same(t, c, child.parent)
		}
		return true
	})
}

func values(nodes []*Node[string]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value
	}
	return out
}

func buildTree() *Node[string] {
	root := New("db")
	schema := root.Add("public")
	users := schema.Add("users")
	users.Add("id")
	users.Add("name")
	schema.Add("orders")
	return root
}

func TestNode_Structure(t *testing.T) {
	root := buildTree()
	assertConsistent(t, root)

	assert.True(t, root.IsRoot())
	assert.Equal(t, 6, root.Size())

	name := root.Find(func(n *Node[string]) bool { return n.Value == "name" })
	require.NotNil(t, name)
	assert.True(t, name.IsLeaf())
	assert.Equal(t, 3, name.Depth())
	assert.Same(t, root, name.Root())
	assert.Equal(t, []string{"db", "public", "users", "name"}, values(name.Path()))

	assert.Nil(t, root.Find(func(n *Node[string]) bool { return n.Value == "missing" }))
}

func TestNode_WalkPreOrderAndStop(t *testing.T) {
	root := buildTree()
	var seen []string
	completed := root.Walk(func(n *Node[string]) bool {
		seen = append(seen, n.Value)
		return n.Value != "id"
	})
	assert.False(t, completed)
	assert.Equal(t, []string{"db", "public", "users", "id"}, seen)
}

func TestNode_AddChildReparents(t *testing.T) {
	root := buildTree()
	schema, _ := root.ChildAt(0)
	users, _ := schema.ChildAt(0)
	orders, _ := schema.ChildAt(1)

	require.NoError(t, orders.AddChild(users))
	assert.Same(t, orders, users.Parent())
	assert.Equal(t, []string{"orders"}, values(schema.Children()))
	assert.Equal(t, []string{"users"}, values(orders.Children()))
	assertConsistent(t, root)
}

func TestNode_RejectsCycles(t *testing.T) {
	root := buildTree()
	schema, _ := root.ChildAt(0)

	assert.ErrorIs(t, schema.AddChild(root), ErrCycle)
	assert.ErrorIs(t, schema.AddChild(schema), ErrCycle)
	// unchanged after the failed attempts
	assert.Same(t, root, schema.Parent())
	assertConsistent(t, root)
}

func TestNode_InsertAndRemove(t *testing.T) {
	root := New("r")
	a := New("a")
	b := New("b")
	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.InsertChild(0, b))
	assert.Equal(t, []string{"b", "a"}, values(root.Children()))

	assert.Error(t, root.InsertChild(5, New("x")))
	_, err := root.ChildAt(9)
	assert.Error(t, err)

	assert.True(t, root.RemoveChild(b))
	assert.Nil(t, b.Parent())
	assert.False(t, root.RemoveChild(b))
	assert.Equal(t, 1, root.ChildCount())

	a.Detach()
	assert.True(t, root.IsLeaf())
	a.Detach() // no-op for roots
}

func TestNode_Clone(t *testing.T) {
	root := buildTree()
	schema, _ := root.ChildAt(0)

	clone := schema.Clone(func(s string) string { return s + "'" })
	assert.Nil(t, clone.Parent(), "clone is a root")
	assert.Equal(t, schema.Size(), clone.Size())
	assert.Equal(t, "public'", clone.Value)
	assertConsistent(t, clone)

	// mutating the clone leaves the original untouched
	cu, _ := clone.ChildAt(0)
	cu.Add("extra")
	assert.Equal(t, 6, root.Size())

	plain := root.Clone(nil)
	assert.Equal(t, "db", plain.Value)
	pu := plain.Find(func(n *Node[string]) bool { return n.Value == "users" })
	ou := root.Find(func(n *Node[string]) bool { return n.Value == "users" })
	assert.NotSame(t, ou, pu)
}
