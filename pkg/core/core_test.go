package core

import (
	"slices"
	"testing"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var window = graphics.Size{Width: 800, Height: 600}

// testBox stacks its children vertically and draws its name.
type testBox struct {
	layout.BoxBase
	name string
	size graphics.Size
}

func (b *testBox) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	var y, w float64
	for c := range ctx.Children() {
		s := ctx.PerformChildLayout(c, layout.Loose(clamp.Max))
		ctx.UpdatePosition(c, graphics.Offset{Y: y})
		y += s.Height
		w = max(w, s.Width)
	}
	if b.size != (graphics.Size{}) {
		return b.size
	}
	return graphics.Size{Width: w, Height: y}
}

func (b *testBox) Paint(ctx *layout.PaintContext) {
	ctx.Canvas.DrawText(b.name, graphics.Offset{}, graphics.ColorBlack)
}

func box(name string, children ...Widget) Widget {
	return RenderWidget{Render: &testBox{name: name, size: graphics.Size{Width: 10, Height: 10}}, Children: children}
}

func column(name string, children ...Widget) Widget {
	return RenderWidget{Render: &testBox{name: name}, Children: children}
}

func nameOf(tr *Tree, id tree.NodeID) string {
	if b, ok := Query[*testBox](tr, id); ok {
		return b.name
	}
	if _, ok := Query[VoidRender](tr, id); ok {
		return "void"
	}
	return "?"
}

func childNames(tr *Tree, parent tree.NodeID) []string {
	var out []string
	for c := range tr.Arena().Children(parent) {
		out = append(out, nameOf(tr, c))
	}
	return out
}

func findChild(tr *Tree, parent tree.NodeID, name string) tree.NodeID {
	for c := range tr.Arena().Children(parent) {
		if nameOf(tr, c) == name {
			return c
		}
	}
	return tree.NodeID{}
}

type silentHandler struct{}

func (silentHandler) HandleError(*errors.TreeError)  {}
func (silentHandler) HandlePanic(*errors.PanicError) {}

func counted(n *state.Stateful[int]) func() []Widget {
	return func() []Widget {
		var out []Widget
		for i := range n.Get() {
			out = append(out, box(string(rune('a'+i))))
		}
		return out
	}
}

func TestDynamicKeepsPlaceholderID(t *testing.T) {
	n := state.New(1)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{n}, Build: counted(n)}))
	sign, _ := tr.Arena().FirstChild(root)

	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"a"}, childNames(tr, root))

	n.Set(3)
	assert.True(t, tr.IsDirty())
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"a", "b", "c"}, childNames(tr, root))
	first, _ := tr.Arena().FirstChild(root)
	assert.Equal(t, sign, first)
	for c := range tr.Arena().Children(root) {
		assert.True(t, tr.Store().IsSized(c))
	}
	c := findChild(tr, root, "c")
	assert.Equal(t, graphics.Offset{Y: 20}, tr.Store().Position(c))

	n.Set(0)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"void"}, childNames(tr, root))
	first, _ = tr.Arena().FirstChild(root)
	assert.Equal(t, sign, first)
	assert.Equal(t, 2, tr.Count())
	assert.Equal(t, 3, tr.Stats().Regenerations)
}

func TestDynamicAsRoot(t *testing.T) {
	on := state.New(false)
	tr := New(Options{})
	root := tr.SetRoot(Dynamic{On: []state.Watchable{on}, Build: Single(func() Widget {
		if on.Get() {
			return box("on")
		}
		return box("off")
	})})
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, "off", nameOf(tr, root))

	on.Set(true)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, root, tr.Root())
	assert.Equal(t, "on", nameOf(tr, root))
	size, ok := tr.Store().Size(root)
	require.True(t, ok)
	assert.Equal(t, graphics.Size{Width: 10, Height: 10}, size)
	assert.Equal(t, 1, tr.Count())
}

func TestDynamicWithDeclaredChildren(t *testing.T) {
	deep := state.New(false)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{
		On: []state.Watchable{deep},
		Build: Single(func() Widget {
			if deep.Get() {
				return box("b1", box("b2"))
			}
			return box("a")
		}),
		Children: []Widget{box("static")},
	}))
	sign, _ := tr.Arena().FirstChild(root)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, "a", nameOf(tr, sign))
	static, ok := tr.Arena().FirstChild(sign)
	require.True(t, ok)
	assert.Equal(t, "static", nameOf(tr, static))

	deep.Set(true)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, "b1", nameOf(tr, sign))
	b2, _ := tr.Arena().FirstChild(sign)
	assert.Equal(t, "b2", nameOf(tr, b2))
	parent, _ := tr.Arena().Parent(static)
	assert.Equal(t, b2, parent)
	assert.True(t, tr.IsMounted(static))

	deep.Set(false)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, "a", nameOf(tr, sign))
	parent, _ = tr.Arena().Parent(static)
	assert.Equal(t, sign, parent)
	assert.False(t, tr.Arena().Contains(b2))
	assert.Equal(t, 3, tr.Count())
}

func TestUnkeyedChurnRemountsEverything(t *testing.T) {
	n := state.New(3)
	mounted, disposed := 0, 0
	lc := &Lifecycle{
		OnMounted:  func(*LifecycleContext) { mounted++ },
		OnDisposed: func(*LifecycleContext) { disposed++ },
	}
	tr := New(Options{})
	tr.SetRoot(column("root", Dynamic{On: []state.Watchable{n}, Build: func() []Widget {
		var out []Widget
		for range n.Get() {
			out = append(out, WithLifecycle(box("item"), lc))
		}
		return out
	}}))
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, 3, mounted)
	assert.Equal(t, 0, disposed)

	n.Set(4)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, 7, mounted)
	assert.Equal(t, 3, disposed)
}

type keyedList struct {
	order   *state.Stateful[[]string]
	watched map[string]*state.Stateful[int]
	keys    map[string]*Key[int]
	gen     int

	mounted, disposed, updated int
}

func (l *keyedList) build() []Widget {
	l.gen++
	lc := &Lifecycle{
		OnMounted:  func(*LifecycleContext) { l.mounted++ },
		OnDisposed: func(*LifecycleContext) { l.disposed++ },
		OnUpdated:  func(*LifecycleContext) { l.updated++ },
	}
	var out []Widget
	for _, k := range l.order.Get() {
		key := NewKey(k, l.gen)
		l.keys[k] = key
		out = append(out, WithKey(WithLifecycle(Watch(box(k), l.watched[k]), lc), key))
	}
	return out
}

func newKeyedList(keys ...string) *keyedList {
	l := &keyedList{
		order:   state.New(keys),
		watched: map[string]*state.Stateful[int]{},
		keys:    map[string]*Key[int]{},
	}
	for _, k := range []string{"a", "b", "c", "d"} {
		l.watched[k] = state.New(0)
	}
	return l
}

func TestKeyedReorderKeepsIdentity(t *testing.T) {
	l := newKeyedList("a", "b", "c")
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{l.order}, Build: l.build}))
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, 3, l.mounted)
	assert.True(t, l.keys["a"].IsEntered())
	before := slices.Collect(tr.Arena().Children(root))

	l.order.Set([]string{"c", "a", "b"})
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"c", "a", "b"}, childNames(tr, root))
	assert.Equal(t, 3, l.mounted)
	assert.Equal(t, 0, l.disposed)
	assert.Equal(t, 3, l.updated)

	after := slices.Collect(tr.Arena().Children(root))
	assert.ElementsMatch(t, before, after)
	assert.Equal(t, before[0], after[0])

	a := l.keys["a"]
	assert.Equal(t, KeyUpdated, a.Status())
	prev, ok := a.Before()
	require.True(t, ok)
	assert.Equal(t, 1, prev)
	assert.Equal(t, 2, a.Value())
	assert.True(t, a.IsChanged())
	assert.Equal(t, KeyChange[int]{Before: 1, HasBefore: true, After: 2}, a.Change())
	assert.Equal(t, a, mustKey(t, tr, findChild(tr, root, "a")))
	assert.Equal(t, 4, tr.Store().Len())
}

func mustKey(t *testing.T, tr *Tree, id tree.NodeID) AnyKey {
	t.Helper()
	k, ok := KeyOf(tr, id)
	require.True(t, ok)
	return k
}

func TestKeyedEnterAndLeave(t *testing.T) {
	l := newKeyedList("a", "b")
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{l.order}, Build: l.build}))
	require.NoError(t, tr.Layout(window))
	oldA := l.keys["a"]

	l.order.Set([]string{"b", "c"})
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"b", "c"}, childNames(tr, root))
	assert.True(t, oldA.IsDisposed())
	assert.True(t, l.keys["c"].IsEntered())
	assert.Equal(t, KeyUpdated, l.keys["b"].Status())
	assert.Equal(t, 3, l.mounted)
	assert.Equal(t, 1, l.disposed)
	assert.Equal(t, 1, l.updated)
}

func TestSubscriptionsFollowIdentitySwap(t *testing.T) {
	l := newKeyedList("a", "b", "c")
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{l.order}, Build: l.build}))
	require.NoError(t, tr.Layout(window))

	l.order.Set([]string{"c", "a", "b"})
	require.NoError(t, tr.Layout(window))

	l.watched["a"].Set(1)
	assert.True(t, tr.dirty.Contains(findChild(tr, root, "a")))
	assert.False(t, tr.dirty.Contains(findChild(tr, root, "b")))
	require.NoError(t, tr.Layout(window))

	for _, k := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, l.watched[k].Subscribers(), k)
	}
}

func TestWatchScopes(t *testing.T) {
	s := state.New(0)
	tr := New(Options{})
	root := tr.SetRoot(Watch(box("w"), s))
	require.NoError(t, tr.Layout(window))

	w := s.Silent()
	*w.Value() = 1
	w.Close()
	assert.False(t, tr.IsDirty())

	w = s.Shallow()
	*w.Value() = 2
	w.Close()
	assert.True(t, tr.dirty.Contains(root))

	require.NoError(t, tr.RemoveSubtree(root))
	assert.Equal(t, 0, s.Subscribers())
	assert.True(t, tr.Root().IsZero())
}

func TestDelayDropKeepsPaintingUntilReleased(t *testing.T) {
	items := state.New([]string{"a", "b"})
	holds := map[string]*state.Stateful[bool]{"a": state.New(true), "b": state.New(true)}
	disposed := 0
	lc := &Lifecycle{OnDisposed: func(*LifecycleContext) { disposed++ }}
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{items}, Build: func() []Widget {
		var out []Widget
		for _, k := range items.Get() {
			out = append(out, WithDelayDrop(WithKey(WithLifecycle(box(k), lc), NewKey(k, 0)), holds[k]))
		}
		return out
	}}))
	require.NoError(t, tr.Layout(window))
	sign, _ := tr.Arena().FirstChild(root)
	b := findChild(tr, root, "b")

	items.Set([]string{"a"})
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"a"}, childNames(tr, root))
	assert.Equal(t, []tree.NodeID{b}, tr.Hosted(sign))
	assert.True(t, tr.Arena().Contains(b))
	assert.Equal(t, 1, disposed)
	assert.Equal(t, 1, tr.Stats().Hosted)

	rec := graphics.NewRecorder()
	tr.Paint(rec)
	assert.Contains(t, rec.String(), `text "b" @(0,10)`)

	holds["b"].Set(false)
	assert.True(t, tr.IsDirty())
	require.NoError(t, tr.Layout(window))
	assert.Empty(t, tr.Hosted(sign))
	assert.False(t, tr.Arena().Contains(b))

	rec.Reset()
	tr.Paint(rec)
	assert.NotContains(t, rec.String(), `"b"`)
}

func TestRemovingRegionDropsHostedSubtrees(t *testing.T) {
	items := state.New([]string{"a", "b"})
	hold := state.New(true)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{items}, Build: func() []Widget {
		var out []Widget
		for _, k := range items.Get() {
			out = append(out, WithDelayDrop(box(k), hold))
		}
		return out
	}}))
	require.NoError(t, tr.Layout(window))
	sign, _ := tr.Arena().FirstChild(root)

	items.Set(nil)
	require.NoError(t, tr.Layout(window))
	hosted := tr.Hosted(sign)
	require.Len(t, hosted, 2)

	require.NoError(t, tr.RemoveSubtree(root))
	for _, h := range hosted {
		assert.False(t, tr.Arena().Contains(h))
	}
	assert.Equal(t, 0, tr.Count())
	assert.Equal(t, 0, hold.Subscribers())
}

func TestGeneratorShapeErrorNamesPlaceholder(t *testing.T) {
	errors.SetHandler(silentHandler{})
	defer errors.SetHandler(nil)

	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{
		Build:    func() []Widget { return []Widget{box("x"), box("y")} },
		Children: []Widget{box("static")},
	}))
	sign, _ := tr.Arena().FirstChild(root)
	err := tr.Layout(window)
	require.Error(t, err)
	var te *errors.TreeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, errors.KindStructure, te.Kind)
	assert.Equal(t, sign.String(), te.Node)
}

func TestPerformedLayoutAndWindowChange(t *testing.T) {
	performed := 0
	tr := New(Options{})
	root := tr.SetRoot(WithLifecycle(column("root", box("a")), &Lifecycle{
		OnPerformedLayout: func(*LifecycleContext) { performed++ },
	}))
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, 1, performed)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, 1, performed)

	small := graphics.Size{Width: 400, Height: 300}
	require.NoError(t, tr.Layout(small))
	assert.Equal(t, 2, performed)
	clamp, ok := tr.Store().Clamp(root)
	require.True(t, ok)
	assert.Equal(t, layout.Loose(small), clamp)
}

func TestDisplayTree(t *testing.T) {
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{Build: func() []Widget { return []Widget{WithKey(box("k"), NewKey("k", 1))} }}))
	require.NoError(t, tr.Layout(window))
	out := tr.DisplayTree(root)
	assert.Contains(t, out, "testBox size=10x10")
	assert.Contains(t, out, "Dynamic/Key[int]/testBox")
}

func TestDetachRoot(t *testing.T) {
	tr := New(Options{})
	root := tr.SetRoot(column("root", box("a")))
	a, _ := tr.Arena().FirstChild(root)
	require.NoError(t, tr.Detach(a))
	assert.True(t, tr.dirty.Contains(root))
	assert.True(t, tr.IsMounted(a))

	require.NoError(t, tr.Detach(root))
	assert.True(t, tr.Root().IsZero())
	assert.NoError(t, tr.Layout(window))
}

func TestDuplicateKeysLastWins(t *testing.T) {
	gen := state.New(0)
	k0 := NewKey("a", 0)
	k1, k2 := NewKey("a", 1), NewKey("a", 2)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{gen}, Build: func() []Widget {
		if gen.Get() == 0 {
			return []Widget{WithKey(box("x0"), k0)}
		}
		return []Widget{WithKey(box("x1"), k1), WithKey(box("x2"), k2)}
	}}))
	require.NoError(t, tr.Layout(window))
	first := findChild(tr, root, "x0")

	gen.Set(1)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"x1", "x2"}, childNames(tr, root))
	assert.True(t, k1.IsEntered())
	assert.Equal(t, KeyUpdated, k2.Status())
	assert.False(t, k0.IsDisposed())
	prev, ok := k2.Before()
	assert.True(t, ok)
	assert.Equal(t, 0, prev)
	_, ok = k1.Before()
	assert.False(t, ok)
	// The placeholder id stays on the region head whatever the keys say.
	assert.Equal(t, first, findChild(tr, root, "x1"))
}

func TestDelayDropFirstItemPaints(t *testing.T) {
	items := state.New([]string{"a", "b"})
	hold := state.New(true)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{On: []state.Watchable{items}, Build: func() []Widget {
		var out []Widget
		for _, k := range items.Get() {
			out = append(out, WithDelayDrop(WithKey(box(k), NewKey(k, 0)), hold))
		}
		return out
	}}))
	require.NoError(t, tr.Layout(window))
	sign, _ := tr.Arena().FirstChild(root)

	items.Set([]string{"b"})
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, []string{"b"}, childNames(tr, root))
	hosted := tr.Hosted(sign)
	require.Len(t, hosted, 1)
	assert.Equal(t, "a", nameOf(tr, hosted[0]))

	rec := graphics.NewRecorder()
	tr.Paint(rec)
	assert.Contains(t, rec.String(), `text "a"`)
	assert.Contains(t, rec.String(), `text "b"`)

	hold.Set(false)
	require.NoError(t, tr.Layout(window))
	assert.Empty(t, tr.Hosted(sign))
	rec.Reset()
	tr.Paint(rec)
	assert.NotContains(t, rec.String(), `"a"`)
}

func TestDelayDropDepthContentPaints(t *testing.T) {
	deep := state.New(true)
	hold := state.New(true)
	tr := New(Options{})
	root := tr.SetRoot(column("root", Dynamic{
		On: []state.Watchable{deep},
		Build: Single(func() Widget {
			if deep.Get() {
				return WithDelayDrop(box("old"), hold)
			}
			return box("new")
		}),
		Children: []Widget{box("static")},
	}))
	require.NoError(t, tr.Layout(window))
	sign, _ := tr.Arena().FirstChild(root)

	deep.Set(false)
	require.NoError(t, tr.Layout(window))
	assert.Equal(t, "new", nameOf(tr, sign))
	hosted := tr.Hosted(sign)
	require.Len(t, hosted, 1)
	assert.Equal(t, "old", nameOf(tr, hosted[0]))

	rec := graphics.NewRecorder()
	tr.Paint(rec)
	assert.Contains(t, rec.String(), `text "old"`)
	assert.Contains(t, rec.String(), `text "new"`)
	assert.Contains(t, rec.String(), `text "static"`)

	hold.Set(false)
	require.NoError(t, tr.Layout(window))
	assert.Empty(t, tr.Hosted(sign))
	rec.Reset()
	tr.Paint(rec)
	assert.NotContains(t, rec.String(), `"old"`)
}
