package testing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/engine"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

const (
	// DefaultTestWidth is the default logical width for the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test surface.
	DefaultTestHeight = 600
	// DefaultScale is the default device pixel ratio.
	DefaultScale = 1.0
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

// TestWindow drives a window with a fake clock and a recording canvas.
type TestWindow struct {
	window   *engine.Window
	clock    *FakeClock
	recorder *graphics.Recorder
	size     graphics.Size
	scale    float64
	options  engine.Options
}

// NewTestWindow creates a window with the default test environment.
func NewTestWindow() *TestWindow {
	return NewTestWindowWithOptions(engine.Options{})
}

// NewTestWindowWithOptions creates a window from opts. Size, Scale and Clock
// are replaced by the test defaults.
func NewTestWindowWithOptions(opts engine.Options) *TestWindow {
	clk := NewFakeClock()
	w := &TestWindow{
		clock:    clk,
		recorder: graphics.NewRecorder(),
		size:     graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
		scale:    DefaultScale,
		options:  opts,
	}
	w.options.Clock = clk
	w.reset(nil)
	return w
}

// NewTestWindowWithT creates a window whose tree is torn down via t.Cleanup().
func NewTestWindowWithT(t testing.TB) *TestWindow {
	w := NewTestWindow()
	t.Cleanup(w.Cleanup)
	return w
}

func (w *TestWindow) reset(root core.Widget) {
	opts := w.options
	opts.Size, opts.Scale = w.size, w.scale
	w.window = engine.NewWindow(root, opts)
}

// Cleanup disposes the mounted tree.
func (w *TestWindow) Cleanup() {
	t := w.window.Tree()
	if root := t.Root(); !root.IsZero() {
		_ = t.RemoveSubtree(root)
	}
}

// SetSize sets the logical surface size. The next frame re-lays the tree out.
func (w *TestWindow) SetSize(size graphics.Size) {
	w.size = size
	w.window.Resize(size, w.scale)
}

// SetScale sets the device pixel ratio.
func (w *TestWindow) SetScale(scale float64) {
	w.scale = scale
	w.window.Resize(w.size, scale)
}

// Clock returns the fake clock.
func (w *TestWindow) Clock() *FakeClock { return w.clock }

// Window returns the underlying window.
func (w *TestWindow) Window() *engine.Window { return w.window }

// Tree returns the mounted tree.
func (w *TestWindow) Tree() *core.Tree { return w.window.Tree() }

// Root returns the root node.
func (w *TestWindow) Root() tree.NodeID { return w.window.Tree().Root() }

// PumpWidget mounts widget in a fresh tree and runs one frame.
func (w *TestWindow) PumpWidget(widget core.Widget) error {
	w.Cleanup()
	w.reset(widget)
	return w.Pump()
}

// Pump runs one frame: layout of dirty nodes and a full repaint.
func (w *TestWindow) Pump() error {
	w.recorder.Reset()
	return w.window.DrawFrame(w.recorder)
}

// PumpAndSettle runs frames until no layout work remains or the timeout is
// reached. Each frame advances the fake clock by FrameInterval.
func (w *TestWindow) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		if err := w.Pump(); err != nil {
			return err
		}
		if !w.window.NeedsFrame() {
			return nil
		}
		w.clock.AdvanceFrame()
		elapsed += FrameInterval
	}
	return ErrSettleTimeout
}

// Painted returns the draw operations of the last frame, one per line.
func (w *TestWindow) Painted() string {
	return w.recorder.String()
}

// Recorder returns the canvas of the last frame.
func (w *TestWindow) Recorder() *graphics.Recorder {
	return w.recorder
}

// NodeByPath follows child indexes down from the root.
func (w *TestWindow) NodeByPath(path ...int) (tree.NodeID, error) {
	t := w.Tree()
	id := t.Root()
	if id.IsZero() {
		return tree.NodeID{}, fmt.Errorf("no tree mounted")
	}
	for depth, idx := range path {
		i := 0
		found := false
		for c := range t.Arena().Children(id) {
			if i == idx {
				id, found = c, true
				break
			}
			i++
		}
		if !found {
			return tree.NodeID{}, fmt.Errorf("path %v: node %s has no child %d at depth %d", path, id, idx, depth)
		}
	}
	return id, nil
}

// LayoutInfoByPath returns the layout record of the node at path.
func (w *TestWindow) LayoutInfoByPath(path ...int) (layout.Info, error) {
	id, err := w.NodeByPath(path...)
	if err != nil {
		return layout.Info{}, err
	}
	info, ok := w.Tree().Store().Info(id)
	if !ok {
		return layout.Info{}, fmt.Errorf("path %v: node %s has no layout record", path, id)
	}
	return info, nil
}

// Rect returns the window rectangle of id.
func (w *TestWindow) Rect(id tree.NodeID) (graphics.Rect, bool) {
	t := w.Tree()
	return layout.GlobalRect(t.Arena(), t.Store(), id)
}
