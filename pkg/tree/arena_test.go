package tree

import (
	"slices"
	"testing"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates root with the given children labels and returns ids by label.
func build(t *testing.T, a *Arena[string], root string, children ...string) map[string]NodeID {
	t.Helper()
	ids := map[string]NodeID{root: a.Insert(root)}
	for _, c := range children {
		ids[c] = a.Insert(c)
		require.NoError(t, a.AppendChild(ids[root], ids[c]))
	}
	return ids
}

func labels(a *Arena[string], seq func(func(NodeID) bool)) []string {
	var out []string
	for id := range seq {
		out = append(out, a.MustGet(id))
	}
	return out
}

func TestInsertGetAndStaleIDs(t *testing.T) {
	a := NewArena[string]()
	id := a.Insert("a")
	v, err := a.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1, a.Len())

	require.NoError(t, a.RemoveSubtree(id, nil))
	_, err = a.Get(id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	reused := a.Insert("b")
	assert.NotEqual(t, id, reused)
	assert.False(t, a.Contains(id))
	assert.True(t, a.Contains(reused))
	assert.False(t, a.Contains(NodeID{}))
	assert.Panics(t, func() { a.MustGet(id) })
}

func TestStructuralEdits(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "c")
	b := a.Insert("b")
	require.NoError(t, a.InsertAfter(ids["a"], b))
	assert.Equal(t, []string{"a", "b", "c"}, labels(a, a.Children(ids["root"])))

	z := a.Insert("z")
	require.NoError(t, a.InsertBefore(ids["a"], z))
	assert.Equal(t, []string{"z", "a", "b", "c"}, labels(a, a.Children(ids["root"])))

	require.NoError(t, a.Detach(b))
	assert.Equal(t, []string{"z", "a", "c"}, labels(a, a.Children(ids["root"])))
	_, hasParent := a.Parent(b)
	assert.False(t, hasParent)
	assert.True(t, a.Contains(b))

	last, _ := a.LastChild(ids["root"])
	assert.Equal(t, ids["c"], last)
	prev, _ := a.PrevSibling(ids["c"])
	assert.Equal(t, ids["a"], prev)
}

func TestAppendChildRejectsCycles(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a")
	err := a.AppendChild(ids["a"], ids["root"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCycle))
	assert.Error(t, a.AppendChild(ids["a"], ids["a"]))
}

func TestRemoveSubtreeVisitsChildrenFirst(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b")
	a1 := a.Insert("a1")
	require.NoError(t, a.AppendChild(ids["a"], a1))

	var removed []string
	require.NoError(t, a.RemoveSubtree(ids["a"], func(_ NodeID, v string) { removed = append(removed, v) }))
	assert.Equal(t, []string{"a1", "a"}, removed)
	assert.False(t, a.Contains(a1))
	assert.Equal(t, []string{"b"}, labels(a, a.Children(ids["root"])))
	assert.Equal(t, 2, a.Len())
}

func TestSwapSiblings(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b", "c")
	a1 := a.Insert("a1")
	require.NoError(t, a.AppendChild(ids["a"], a1))

	require.NoError(t, a.Swap(ids["a"], ids["c"]))
	// The id formerly naming "a" now names "c" and sits where "c" sat.
	assert.Equal(t, "c", a.MustGet(ids["a"]))
	assert.Equal(t, "a", a.MustGet(ids["c"]))
	assert.Equal(t, []string{"a", "b", "c"}, labels(a, a.Children(ids["root"])))
	assert.Equal(t, []NodeID{ids["c"], ids["b"], ids["a"]}, slices.Collect(a.Children(ids["root"])))

	p, _ := a.Parent(a1)
	assert.Equal(t, ids["c"], p)
}

func TestSwapAdjacentAndParentChild(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b")
	require.NoError(t, a.Swap(ids["a"], ids["b"]))
	assert.Equal(t, []string{"a", "b"}, labels(a, a.Children(ids["root"])))
	first, _ := a.FirstChild(ids["root"])
	assert.Equal(t, ids["b"], first)

	child := a.Insert("child")
	require.NoError(t, a.AppendChild(ids["a"], child))
	// ids["a"] currently names "b"; swap parent with its child.
	require.NoError(t, a.Swap(ids["a"], child))
	assert.Equal(t, "child", a.MustGet(ids["a"]))
	p, ok := a.Parent(ids["a"])
	require.True(t, ok)
	assert.Equal(t, child, p)
	assert.Equal(t, "b", a.MustGet(child))
	pp, _ := a.Parent(child)
	assert.Equal(t, ids["root"], pp)
}

func TestSwapWithDetachedNode(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a")
	n := a.Insert("n")
	require.NoError(t, a.Swap(ids["a"], n))
	assert.Equal(t, "n", a.MustGet(ids["a"]))
	_, attached := a.Parent(ids["a"])
	assert.False(t, attached)
	first, _ := a.FirstChild(ids["root"])
	assert.Equal(t, n, first)
	assert.Equal(t, "a", a.MustGet(n))
}

func TestChildrenToleratesRemoval(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b", "c")
	var seen []string
	for id := range a.Children(ids["root"]) {
		seen = append(seen, a.MustGet(id))
		if id == ids["a"] {
			require.NoError(t, a.RemoveSubtree(id, nil))
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	seen = nil
	for id := range a.Children(ids["root"]) {
		seen = append(seen, a.MustGet(id))
		require.NoError(t, a.RemoveSubtree(ids["c"], nil))
	}
	assert.Equal(t, []string{"b"}, seen)
}

func TestDescendantsAndAncestors(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b")
	a1 := a.Insert("a1")
	require.NoError(t, a.AppendChild(ids["a"], a1))

	assert.Equal(t, []string{"root", "a", "a1", "b"}, labels(a, a.Descendants(ids["root"])))
	assert.Equal(t, []string{"a1", "a", "root"}, labels(a, a.Ancestors(a1)))
	assert.Equal(t, 2, a.Depth(a1))
	assert.Equal(t, ids["root"], a.Root(a1))
}

func TestLowestCommonAncestor(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a", "b")
	a1 := a.Insert("a1")
	require.NoError(t, a.AppendChild(ids["a"], a1))

	lca, ok := a.LowestCommonAncestor(a1, ids["b"])
	require.True(t, ok)
	assert.Equal(t, ids["root"], lca)

	lca, ok = a.LowestCommonAncestor(a1, ids["a"])
	require.True(t, ok)
	assert.Equal(t, ids["a"], lca)

	other := a.Insert("other")
	_, ok = a.LowestCommonAncestor(a1, other)
	assert.False(t, ok)
}

func TestSingleChildPanicsOnMany(t *testing.T) {
	a := NewArena[string]()
	ids := build(t, a, "root", "a")
	c, ok := a.SingleChild(ids["root"])
	require.True(t, ok)
	assert.Equal(t, ids["a"], c)

	require.NoError(t, a.AppendChild(ids["root"], a.Insert("b")))
	assert.Panics(t, func() { a.SingleChild(ids["root"]) })
}
