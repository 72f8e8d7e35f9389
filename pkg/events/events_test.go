package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/focus"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placed has a fixed size and puts its children at fixed offsets.
type placed struct {
	layout.BoxBase
	name       string
	size       graphics.Size
	at         []graphics.Offset
	noChildHit bool
}

func (p *placed) PerformLayout(_ layout.BoxClamp, ctx *layout.Context) graphics.Size {
	i := 0
	for c := range ctx.Children() {
		ctx.PerformChildLayout(c, layout.Loose(p.size))
		var pos graphics.Offset
		if i < len(p.at) {
			pos = p.at[i]
		}
		ctx.UpdatePosition(c, pos)
		i++
	}
	return p.size
}

func (p *placed) HitTest(ctx *layout.HitTestContext, local graphics.Offset) layout.HitTest {
	return layout.HitTest{Hit: ctx.Size().Contains(local), CanHitChild: !p.noChildHit}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	t     *testing.T
	tree  *core.Tree
	d     *Dispatcher
	clock *fakeClock
	log   []string
	ids   map[string]tree.NodeID
}

func sz(w, h float64) graphics.Size { return graphics.Size{Width: w, Height: h} }

func at(x, y float64) graphics.Offset { return graphics.Offset{X: x, Y: y} }

// node builds a placed render that logs every event of the listed kinds.
func (h *harness) node(p *placed, kinds []Kind, children ...core.Widget) *Listeners {
	l := Handle(core.RenderWidget{Render: p, Children: children})
	for _, k := range kinds {
		l.OnCapture(k, func(e *Event) { h.record(e) })
		l.On(k, func(e *Event) { h.record(e) })
	}
	return l
}

func (h *harness) name(id tree.NodeID) string {
	p, ok := core.Query[*placed](h.tree, id)
	if !ok {
		return "?"
	}
	return p.name
}

func (h *harness) record(e *Event) {
	h.log = append(h.log, fmt.Sprintf("%s %s %s", e.Kind, e.Phase, h.name(e.Current)))
}

// newHarness builds
//
//	root 200x200
//	  a 100x100 at 0,0
//	    a1 50x50 at 0,0
//	  b 100x100 at 100,0
func newHarness(t *testing.T, kinds ...Kind) *harness {
	t.Helper()
	h := &harness{t: t, tree: core.New(core.Options{}), clock: &fakeClock{now: time.Unix(1000, 0)}}
	h.d = NewDispatcher(h.tree, Options{Clock: h.clock})
	h.tree.SetRoot(h.node(&placed{name: "root", size: sz(200, 200), at: []graphics.Offset{at(0, 0), at(100, 0)}}, kinds,
		h.node(&placed{name: "a", size: sz(100, 100)}, kinds,
			h.node(&placed{name: "a1", size: sz(50, 50)}, kinds)),
		h.node(&placed{name: "b", size: sz(100, 100)}, kinds),
	))
	require.NoError(t, h.tree.Layout(sz(200, 200)))
	h.ids = map[string]tree.NodeID{}
	for id := range h.tree.Arena().Descendants(h.tree.Root()) {
		h.ids[h.name(id)] = id
	}
	return h
}

func (h *harness) send(in Input) {
	h.t.Helper()
	require.NoError(h.t, h.d.Dispatch(in, 1))
}

func (h *harness) moveTo(x, y float64) {
	h.send(CursorMoved{Device: 1, Position: at(x, y)})
}

func (h *harness) tap(x, y float64) {
	h.moveTo(x, y)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	h.send(MouseInput{Device: 1, Button: ButtonPrimary})
}

func (h *harness) take() []string {
	out := h.log
	h.log = nil
	return out
}

func TestHitTestContainment(t *testing.T) {
	h := newHarness(t)
	_, ok := h.d.HitTest(at(250, 10))
	assert.False(t, ok)

	tests := []struct {
		pos  graphics.Offset
		want string
	}{
		{at(10, 10), "a1"},
		{at(60, 60), "a"},
		{at(150, 50), "b"},
		{at(150, 150), "root"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pos), func(t *testing.T) {
			id, ok := h.d.HitTest(tt.pos)
			require.True(t, ok)
			assert.Equal(t, tt.want, h.name(id))
		})
	}
}

func TestHitTestTopmostAndPruned(t *testing.T) {
	tr := core.New(core.Options{})
	root := &placed{name: "root", size: sz(100, 100), at: []graphics.Offset{at(0, 0), at(25, 25)}}
	tr.SetRoot(core.RenderWidget{Render: root, Children: []core.Widget{
		core.RenderWidget{Render: &placed{name: "under", size: sz(50, 50)}},
		core.RenderWidget{Render: &placed{name: "over", size: sz(50, 50)}},
	}})
	require.NoError(t, tr.Layout(sz(100, 100)))

	id, ok := HitTest(tr.Arena(), tr.Store(), tr.Root(), at(30, 30))
	require.True(t, ok)
	p, _ := core.Query[*placed](tr, id)
	assert.Equal(t, "over", p.name)

	root.noChildHit = true
	id, ok = HitTest(tr.Arena(), tr.Store(), tr.Root(), at(30, 30))
	require.True(t, ok)
	assert.Equal(t, tr.Root(), id)
}

func TestCaptureThenBubble(t *testing.T) {
	h := newHarness(t, PointerDown)
	h.moveTo(10, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	assert.Equal(t, []string{
		"pointer-down capture root",
		"pointer-down capture a",
		"pointer-down capture a1",
		"pointer-down bubble a1",
		"pointer-down bubble a",
		"pointer-down bubble root",
	}, h.take())
}

func TestStopPropagationInCapture(t *testing.T) {
	h := &harness{t: t, tree: core.New(core.Options{}), clock: &fakeClock{}}
	h.d = NewDispatcher(h.tree, Options{Clock: h.clock})
	stop := Handle(core.RenderWidget{Render: &placed{name: "mid", size: sz(50, 50)}, Children: []core.Widget{
		h.node(&placed{name: "leaf", size: sz(10, 10)}, []Kind{PointerDown}),
	}}).OnCapture(PointerDown, func(e *Event) {
		h.record(e)
		e.StopPropagation()
	})
	h.tree.SetRoot(h.node(&placed{name: "root", size: sz(100, 100)}, []Kind{PointerDown}, stop))
	require.NoError(t, h.tree.Layout(sz(100, 100)))

	h.moveTo(5, 5)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	assert.Equal(t, []string{"pointer-down capture root", "pointer-down capture mid"}, h.take())
}

func TestTapSynthesis(t *testing.T) {
	h := newHarness(t, PointerUp, Tap)

	h.tap(10, 10)
	assert.Equal(t, []string{
		"pointer-up capture root", "pointer-up capture a", "pointer-up capture a1",
		"pointer-up bubble a1", "pointer-up bubble a", "pointer-up bubble root",
		"tap capture root", "tap capture a", "tap capture a1",
		"tap bubble a1", "tap bubble a", "tap bubble root",
	}, h.take())

	// Released over another subtree: the tap goes to the common ancestor.
	h.moveTo(10, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	h.moveTo(150, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary})
	assert.Equal(t, []string{
		"pointer-up capture root", "pointer-up capture b",
		"pointer-up bubble b", "pointer-up bubble root",
		"tap capture root", "tap bubble root",
	}, h.take())
}

func TestNoTapWhenDownTargetRemoved(t *testing.T) {
	h := newHarness(t, PointerUp, Tap)
	h.moveTo(10, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	require.NoError(t, h.tree.RemoveSubtree(h.ids["a1"]))
	require.NoError(t, h.tree.Layout(sz(200, 200)))
	h.moveTo(150, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary})
	assert.Equal(t, []string{
		"pointer-up capture root", "pointer-up capture b",
		"pointer-up bubble b", "pointer-up bubble root",
	}, h.take())
}

func TestPointerCanceledDropsInteraction(t *testing.T) {
	h := newHarness(t, PointerCancel, PointerUp, Tap)
	h.moveTo(10, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})

	h.send(PointerCanceled{Device: 2})
	assert.Empty(t, h.take())

	h.send(PointerCanceled{Device: 1})
	assert.Equal(t, []string{
		"pointer-cancel capture root", "pointer-cancel capture a", "pointer-cancel capture a1",
		"pointer-cancel bubble a1", "pointer-cancel bubble a", "pointer-cancel bubble root",
	}, h.take())
	buttons, _ := h.d.Buttons()
	assert.Zero(t, buttons)

	h.send(MouseInput{Device: 1, Button: ButtonPrimary})
	assert.Empty(t, h.take())
}

func TestButtonsBoundToFirstDevice(t *testing.T) {
	h := newHarness(t, PointerDown, PointerUp)
	var downs, ups int
	count := func() {
		for _, l := range h.take() {
			switch l {
			case "pointer-down bubble a1":
				downs++
			case "pointer-up bubble a1":
				ups++
			}
		}
	}
	h.moveTo(10, 10)
	h.send(MouseInput{Device: 1, Button: ButtonPrimary, Pressed: true})
	h.send(MouseInput{Device: 2, Button: ButtonSecondary, Pressed: true})
	h.send(MouseInput{Device: 2, Button: ButtonSecondary})
	h.send(MouseInput{Device: 1, Button: ButtonSecondary, Pressed: true})
	count()
	assert.Equal(t, 1, downs)
	assert.Equal(t, 0, ups)
	b, dev := h.d.Buttons()
	assert.Equal(t, ButtonPrimary|ButtonSecondary, b)
	assert.Equal(t, DeviceID(1), dev)

	// Another device still moves the cursor.
	h.send(CursorMoved{Device: 2, Position: at(20, 20)})
	pos, ok := h.d.Cursor()
	require.True(t, ok)
	assert.Equal(t, at(20, 20), pos)

	h.send(MouseInput{Device: 1, Button: ButtonPrimary})
	count()
	assert.Equal(t, 0, ups)
	h.send(MouseInput{Device: 1, Button: ButtonSecondary})
	count()
	assert.Equal(t, 1, ups)
}

func TestEnterLeave(t *testing.T) {
	h := newHarness(t, PointerEnter, PointerLeave)

	h.moveTo(10, 10)
	assert.Equal(t, []string{
		"pointer-enter capture root", "pointer-enter bubble root",
		"pointer-enter capture a", "pointer-enter bubble a",
		"pointer-enter capture a1", "pointer-enter bubble a1",
	}, h.take())

	h.moveTo(20, 20)
	assert.Empty(t, h.take())

	h.moveTo(75, 75)
	assert.Equal(t, []string{"pointer-leave capture a1", "pointer-leave bubble a1"}, h.take())

	h.moveTo(150, 50)
	assert.Equal(t, []string{
		"pointer-leave capture a", "pointer-leave bubble a",
		"pointer-enter capture b", "pointer-enter bubble b",
	}, h.take())

	h.send(CursorLeft{Device: 1})
	assert.Equal(t, []string{
		"pointer-leave capture b", "pointer-leave bubble b",
		"pointer-leave capture root", "pointer-leave bubble root",
	}, h.take())
}

func TestMultiTapWindow(t *testing.T) {
	h := newHarness(t)
	var counts []int
	l := Handle(core.RenderWidget{Render: &placed{name: "target", size: sz(50, 50)}}).
		OnTapTimes(2, func(e *Event) { counts = append(counts, e.TapCount) })
	h.tree.SetRoot(l)
	require.NoError(t, h.tree.Layout(sz(50, 50)))

	h.tap(5, 5)
	h.clock.advance(100 * time.Millisecond)
	h.tap(5, 5)
	assert.Equal(t, []int{2}, counts)

	// The accumulator reset, so one more tap is not a double tap.
	h.clock.advance(100 * time.Millisecond)
	h.tap(5, 5)
	assert.Equal(t, []int{2}, counts)

	// Too slow: the window rolls forward to the second tap.
	h.clock.advance(300 * time.Millisecond)
	h.tap(5, 5)
	assert.Equal(t, []int{2}, counts)
	h.clock.advance(200 * time.Millisecond)
	h.tap(5, 5)
	assert.Equal(t, []int{2, 2}, counts)
}

func TestTripleTapRollsWindow(t *testing.T) {
	tt := &tapTimes{n: 3}
	base := time.Unix(0, 0)
	ms := func(n int) time.Time { return base.Add(time.Duration(n) * time.Millisecond) }
	w := DefaultTapWindow

	assert.False(t, tt.record(1, ms(0), w))
	assert.False(t, tt.record(1, ms(200), w))
	assert.False(t, tt.record(1, ms(300), w))
	assert.True(t, tt.record(1, ms(400), w))

	assert.False(t, tt.record(1, ms(1000), w))
	assert.False(t, tt.record(2, ms(1050), w))
	assert.False(t, tt.record(2, ms(1100), w))
	assert.True(t, tt.record(2, ms(1150), w))
}

func TestWheelDelta(t *testing.T) {
	h := newHarness(t)
	var deltas []graphics.Offset
	h.tree.SetRoot(Handle(core.RenderWidget{Render: &placed{name: "scroll", size: sz(100, 100)}}).
		On(Wheel, func(e *Event) { deltas = append(deltas, e.Delta) }))
	require.NoError(t, h.tree.Layout(sz(100, 100)))

	require.NoError(t, h.d.Dispatch(CursorMoved{Position: at(20, 20)}, 2))
	require.NoError(t, h.d.Dispatch(MouseWheel{Delta: at(0, 2), Lines: true}, 2))
	require.NoError(t, h.d.Dispatch(MouseWheel{Delta: at(0, 10)}, 2))
	assert.Equal(t, []graphics.Offset{at(0, 32), at(0, 5)}, deltas)
}

func TestScaleConvertsCursor(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.d.Dispatch(CursorMoved{Position: at(60, 60)}, 2))
	pos, _ := h.d.Cursor()
	assert.Equal(t, at(30, 30), pos)
	assert.Equal(t, []tree.NodeID{h.ids["a1"], h.ids["a"], h.ids["root"]}, h.d.entered)
}

func focusHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, tree: core.New(core.Options{}), clock: &fakeClock{}}
	h.d = NewDispatcher(h.tree, Options{Clock: h.clock})
	kinds := []Kind{Focus, Blur, FocusIn, FocusOut, KeyDown, Chars}
	first := h.node(&placed{name: "first", size: sz(50, 50)}, kinds)
	second := h.node(&placed{name: "second", size: sz(50, 50)}, kinds)
	h.tree.SetRoot(h.node(&placed{name: "root", size: sz(100, 100), at: []graphics.Offset{at(0, 0), at(50, 0), at(0, 50)}}, kinds,
		focus.Focusable(first, &focus.Node{CanRequestFocus: true}),
		focus.Focusable(second, &focus.Node{CanRequestFocus: true}),
		core.RenderWidget{Render: &placed{name: "plain", size: sz(50, 50)}},
	))
	require.NoError(t, h.tree.Layout(sz(100, 100)))
	h.ids = map[string]tree.NodeID{}
	for id := range h.tree.Arena().Descendants(h.tree.Root()) {
		h.ids[h.name(id)] = id
	}
	return h
}

func TestPressMovesFocus(t *testing.T) {
	h := focusHarness(t)

	h.tap(10, 10)
	assert.Equal(t, []string{
		"focus capture first", "focus bubble first",
		"focus-in capture root", "focus-in capture first",
		"focus-in bubble first", "focus-in bubble root",
	}, h.take())

	h.send(KeyboardInput{Key: "x", Pressed: true})
	h.send(CharsInput{Chars: "x"})
	assert.Equal(t, []string{
		"key-down capture root", "key-down capture first", "key-down bubble first", "key-down bubble root",
		"chars capture root", "chars capture first", "chars bubble first", "chars bubble root",
	}, h.take())

	h.tap(10, 60)
	assert.Equal(t, []string{
		"blur capture first", "blur bubble first",
		"focus-out capture root", "focus-out capture first",
		"focus-out bubble first", "focus-out bubble root",
	}, h.take())
	_, ok := h.d.Focus().Focused()
	assert.False(t, ok)
}

func TestTabTraversal(t *testing.T) {
	h := focusHarness(t)
	tab := func() { h.send(KeyboardInput{Key: KeyTab, Pressed: true}) }

	tab()
	f, _ := h.d.Focus().Focused()
	assert.Equal(t, h.ids["first"], f)
	tab()
	f, _ = h.d.Focus().Focused()
	assert.Equal(t, h.ids["second"], f)

	h.send(ModifiersChanged{Modifiers: ModShift})
	tab()
	f, _ = h.d.Focus().Focused()
	assert.Equal(t, h.ids["first"], f)
}

func TestPreventDefaultKeepsPropagating(t *testing.T) {
	h := &harness{t: t, tree: core.New(core.Options{}), clock: &fakeClock{}}
	h.d = NewDispatcher(h.tree, Options{Clock: h.clock})
	leaf := Handle(core.RenderWidget{Render: &placed{name: "leaf", size: sz(10, 10)}}).
		On(KeyDown, func(e *Event) {
			h.record(e)
			e.PreventDefault()
		})
	h.tree.SetRoot(h.node(&placed{name: "root", size: sz(10, 10)}, []Kind{KeyDown},
		focus.Focusable(leaf, &focus.Node{CanRequestFocus: true}),
	))
	require.NoError(t, h.tree.Layout(sz(10, 10)))
	leafID, _ := h.tree.Arena().FirstChild(h.tree.Root())
	require.True(t, h.d.Focus().Focus(leafID))

	h.send(KeyboardInput{Key: KeyTab, Pressed: true})
	assert.Equal(t, []string{
		"key-down capture root", "key-down bubble leaf", "key-down bubble root",
	}, h.take())
	f, _ := h.d.Focus().Focused()
	assert.Equal(t, leafID, f)
}

func TestHandlerPanicNamesNode(t *testing.T) {
	tr := core.New(core.Options{})
	d := NewDispatcher(tr, Options{})
	id := tr.SetRoot(Handle(core.RenderWidget{Render: &placed{size: sz(10, 10)}}).
		On(PointerMove, func(*Event) { panic("boom") }))
	require.NoError(t, tr.Layout(sz(10, 10)))

	err := d.Dispatch(CursorMoved{Position: at(1, 1)}, 1)
	require.Error(t, err)
	assert.Equal(t, errors.KindEvent, errors.KindOf(err))
	var te *errors.TreeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, id.String(), te.Node)
}

func TestLocalPosition(t *testing.T) {
	var local graphics.Offset
	tr := core.New(core.Options{})
	d := NewDispatcher(tr, Options{})
	tr.SetRoot(core.RenderWidget{Render: &placed{size: sz(100, 100), at: []graphics.Offset{at(40, 30)}}, Children: []core.Widget{
		Handle(core.RenderWidget{Render: &placed{size: sz(20, 20)}}).
			On(PointerMove, func(e *Event) { local = e.LocalPosition() }),
	}})
	require.NoError(t, tr.Layout(sz(100, 100)))
	require.NoError(t, d.Dispatch(CursorMoved{Position: at(45, 35)}, 1))
	assert.Equal(t, at(5, 5), local)
}
