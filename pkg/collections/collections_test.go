package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListHashMap_Order(t *testing.T) {
	m := NewListHashMap[string, int]()
	m.Put("b", 2)
	m.Put("a", 1)
	m.Put("c", 3)
	m.Put("a", 10) // existing key keeps its slot

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, []int{2, 10, 3}, m.Values())
	assert.Equal(t, 1, m.IndexOf("a"))
	assert.Equal(t, -1, m.IndexOf("zz"))

	kv, err := m.At(2)
	require.NoError(t, err)
	assert.Equal(t, NewKeyValue("c", 3), kv)
	assert.Equal(t, "c=3", kv.String())

	_, err = m.At(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestListHashMap_RemoveKeepsListAndMapInSync(t *testing.T) {
	m := NewListHashMap[string, int]()
	for i, k := range []string{"x", "y", "z"} {
		m.Put(k, i)
	}

	v, ok := m.Remove("y")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"x", "z"}, m.Keys())
	assert.False(t, m.Contains("y"))
	assert.Equal(t, 2, m.Len())

	_, ok = m.Remove("y")
	assert.False(t, ok)

	var visited []string
	m.Each(func(k string, _ int) bool {
		visited = append(visited, k)
		return false
	})
	assert.Equal(t, []string{"x"}, visited)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Entries())
}

func TestLimitedMap_EvictsEldest(t *testing.T) {
	m := NewLimitedMap[string, int](2)
	var evicted []string
	m.OnEvict = func(k string, _ int) { evicted = append(evicted, k) }

	m.Put("a", 1)
	m.Put("b", 2)
	_, _ = m.Get("a") // insertion order: lookups do not refresh
	m.Put("c", 3)

	assert.Equal(t, []string{"b", "c"}, m.Keys())
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, 2, m.Capacity())
}

func TestLimitedMap_AccessOrder(t *testing.T) {
	m := NewLimitedMap[string, int](2)
	m.AccessOrder = true

	m.Put("a", 1)
	m.Put("b", 2)
	_, ok := m.Get("a")
	require.True(t, ok)
	m.Put("c", 3)

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	_, ok = m.Get("b")
	assert.False(t, ok)
}

func TestLimitedMap_MinimumCapacity(t *testing.T) {
	m := NewLimitedMap[int, int](0)
	m.Put(1, 1)
	m.Put(2, 2)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []int{2}, m.Keys())
}

func TestIndexList_SelectionFollowsElement(t *testing.T) {
	l := NewIndexList("a", "b", "c", "d")
	assert.Equal(t, -1, l.SelectedIndex())

	require.NoError(t, l.Select(2))
	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel)

	require.NoError(t, l.Insert(0, "z"))
	assert.Equal(t, 3, l.SelectedIndex())

	_, err := l.RemoveAt(0)
	require.NoError(t, err)
	assert.Equal(t, 2, l.SelectedIndex())

	// removing the selected element selects its successor
	_, err = l.RemoveAt(2)
	require.NoError(t, err)
	sel, _ = l.Selected()
	assert.Equal(t, "d", sel)

	// removing the last element moves the cursor back
	_, err = l.RemoveAt(2)
	require.NoError(t, err)
	assert.Equal(t, 1, l.SelectedIndex())

	assert.Error(t, l.Select(5))
	assert.NoError(t, l.Select(-1))
	_, ok = l.Selected()
	assert.False(t, ok)
}

func TestIndexList_Navigation(t *testing.T) {
	l := NewIndexList(1, 2, 3)
	assert.False(t, l.Prev())
	assert.True(t, l.Next())
	assert.True(t, l.Next())
	assert.True(t, l.Next())
	assert.False(t, l.Next())
	assert.Equal(t, 2, l.SelectedIndex())
	assert.True(t, l.Prev())
	assert.Equal(t, 1, l.SelectedIndex())

	l.Clear()
	assert.Equal(t, -1, l.SelectedIndex())
	assert.Equal(t, 0, l.Len())
	_, err := l.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, l.Insert(2, 9), ErrIndexOutOfRange)
}

func TestUpdateList_NetChanges(t *testing.T) {
	tests := []struct {
		name         string
		ops          func(l *UpdateList[string])
		wantInserted []string
		wantDeleted  []string
	}{
		{
			name:         "add",
			ops:          func(l *UpdateList[string]) { l.Add("x") },
			wantInserted: []string{"x"},
		},
		{
			name: "add then remove cancels",
			ops: func(l *UpdateList[string]) {
				l.Add("x")
				l.Remove("x")
			},
		},
		{
			name:        "remove baseline element",
			ops:         func(l *UpdateList[string]) { l.Remove("a") },
			wantDeleted: []string{"a"},
		},
		{
			name: "remove then re-add baseline element cancels",
			ops: func(l *UpdateList[string]) {
				l.Remove("b")
				l.Add("b")
			},
		},
		{
			name: "set replaces",
			ops: func(l *UpdateList[string]) {
				_, _ = l.Set(0, "q")
			},
			wantInserted: []string{"q"},
			wantDeleted:  []string{"a"},
		},
		{
			name: "clear",
			ops: func(l *UpdateList[string]) {
				l.Add("x")
				l.Clear()
			},
			wantDeleted: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewUpdateList("a", "b")
			tt.ops(l)
			assert.Equal(t, tt.wantInserted, l.Inserted(), "inserted")
			assert.Equal(t, tt.wantDeleted, l.Deleted(), "deleted")
			assert.Equal(t, len(tt.wantInserted)+len(tt.wantDeleted) > 0, l.Dirty())
		})
	}
}

func TestUpdateList_Baseline(t *testing.T) {
	l := NewUpdateList[int]()
	l.Add(1)
	require.NoError(t, l.Insert(0, 2))
	require.NoError(t, l.Select(1))
	assert.True(t, l.Dirty())

	l.Baseline()
	assert.False(t, l.Dirty())
	assert.Equal(t, []int{2, 1}, l.Items())

	_, err := l.RemoveAt(0)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, l.Deleted())
	assert.Equal(t, 0, l.SelectedIndex())
	assert.False(t, l.Remove(42))
}

func TestSliceHelpers(t *testing.T) {
	nums := []int{1, 2, 3, 4, 5, 2}
	assert.Equal(t, []int{2, 4, 2}, Filter(nums, func(n int) bool { return n%2 == 0 }))
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, func(n int) string { return JoinStrings([]int{n}, "") }))
	assert.True(t, Contains(nums, 5))
	assert.Equal(t, -1, IndexOf(nums, 9))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Unique(nums))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5, 2}}, Chunk(nums, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4}, {5, 2}}, Chunk(nums, 4))
	assert.Nil(t, Chunk(nums, 0))
	assert.Equal(t, []int{2, 5, 4, 3, 2, 1}, Reverse(nums))
	assert.Equal(t, "1-2-3", JoinStrings([]int{1, 2, 3}, "-"))
}
