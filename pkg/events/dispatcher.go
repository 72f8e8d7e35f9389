package events

import (
	"log/slog"
	"time"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/focus"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

const (
	// DefaultTapWindow bounds the time from the first to the last tap of a
	// multi-tap.
	DefaultTapWindow = 250 * time.Millisecond
	// DefaultWheelLinePixels converts wheel lines to logical pixels.
	DefaultWheelLinePixels = 16
)

// Clock supplies event timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a Dispatcher. Zero fields take their defaults.
type Options struct {
	TapWindow       time.Duration
	WheelLinePixels float64
	Clock           Clock
	Logger          *slog.Logger
}

// Dispatcher turns platform inputs into events delivered through a tree.
// It is single-threaded like the tree it serves.
type Dispatcher struct {
	tree   *core.Tree
	focus  *focus.Manager
	opts   Options
	logger *slog.Logger

	cursor    graphics.Offset
	hasCursor bool
	modifiers Modifiers

	// Buttons are bound to the device that pressed first until all are released.
	device  DeviceID
	buttons Buttons
	down    tree.NodeID

	entered []tree.NodeID
	current tree.NodeID

	dispatched int
}

// NewDispatcher returns a dispatcher for t with its own focus manager.
func NewDispatcher(t *core.Tree, opts Options) *Dispatcher {
	if opts.TapWindow <= 0 {
		opts.TapWindow = DefaultTapWindow
	}
	if opts.WheelLinePixels <= 0 {
		opts.WheelLinePixels = DefaultWheelLinePixels
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	d := &Dispatcher{
		tree:   t,
		focus:  focus.NewManager(t.Arena()),
		opts:   opts,
		logger: opts.Logger,
	}
	d.focus.OnChange = d.focusChanged
	return d
}

// Focus returns the focus manager.
func (d *Dispatcher) Focus() *focus.Manager {
	return d.focus
}

// Dispatched returns the number of events delivered so far.
func (d *Dispatcher) Dispatched() int {
	return d.dispatched
}

// Cursor returns the last cursor position in logical coordinates.
func (d *Dispatcher) Cursor() (graphics.Offset, bool) {
	return d.cursor, d.hasCursor
}

// Buttons returns the held buttons and the device holding them.
func (d *Dispatcher) Buttons() (Buttons, DeviceID) {
	return d.buttons, d.device
}

// HitTest returns the node under pos, in logical window coordinates.
func (d *Dispatcher) HitTest(pos graphics.Offset) (tree.NodeID, bool) {
	return HitTest(d.tree.Arena(), d.tree.Store(), d.tree.Root(), pos)
}

// Dispatch handles one input. scale converts physical to logical pixels.
// A panicking handler aborts the input and is returned as a KindEvent error
// naming the node whose handler failed.
func (d *Dispatcher) Dispatch(in Input, scale float64) (err error) {
	if scale <= 0 {
		scale = 1
	}
	d.current = tree.NodeID{}
	defer func() {
		if r := recover(); r != nil {
			node := ""
			if !d.current.IsZero() {
				node = d.current.String()
			}
			err = errors.FromPanic("events.Dispatcher.Dispatch", errors.KindEvent, node, r)
		}
	}()

	switch in := in.(type) {
	case CursorMoved:
		d.cursorMoved(in, scale)
	case CursorLeft:
		d.hasCursor = false
		d.hover(tree.NodeID{}, false)
	case MouseInput:
		if in.Pressed {
			d.press(in)
		} else {
			d.release(in)
		}
	case MouseWheel:
		d.wheel(in, scale)
	case KeyboardInput:
		d.keyboard(in)
	case CharsInput:
		if target, ok := d.focus.Focused(); ok {
			e := d.newEvent(Chars, target)
			e.Chars = in.Chars
			d.deliver(e)
		}
	case ModifiersChanged:
		d.modifiers = in.Modifiers
	case PointerCanceled:
		d.cancel(in)
	}
	return nil
}

func (d *Dispatcher) hitCursor() (tree.NodeID, bool) {
	if !d.hasCursor {
		return tree.NodeID{}, false
	}
	return d.HitTest(d.cursor)
}

func (d *Dispatcher) cursorMoved(in CursorMoved, scale float64) {
	d.cursor = in.Position.Scale(scale)
	d.hasCursor = true
	target, ok := d.hitCursor()
	d.hover(target, ok)
	if ok {
		e := d.newEvent(PointerMove, target)
		e.Device = in.Device
		d.deliver(e)
	}
}

func (d *Dispatcher) press(in MouseInput) {
	if d.buttons != 0 {
		if in.Device == d.device {
			d.buttons |= in.Button
		}
		return
	}
	d.device = in.Device
	d.buttons = in.Button

	target, ok := d.hitCursor()
	if !ok {
		d.down = tree.NodeID{}
		d.focus.Blur()
		return
	}
	d.down = target
	if f, ok := d.focus.NearestFocusable(target); ok {
		d.focus.Focus(f)
	} else {
		d.focus.Blur()
	}
	e := d.newEvent(PointerDown, target)
	e.Button = in.Button
	d.deliver(e)
}

func (d *Dispatcher) release(in MouseInput) {
	if d.buttons == 0 || in.Device != d.device {
		return
	}
	d.buttons &^= in.Button
	if d.buttons != 0 {
		return
	}
	down := d.down
	d.down = tree.NodeID{}

	up, ok := d.hitCursor()
	if !ok {
		return
	}
	e := d.newEvent(PointerUp, up)
	e.Button = in.Button
	d.deliver(e)

	arena := d.tree.Arena()
	if down.IsZero() || !arena.Contains(down) || !arena.Contains(up) {
		return
	}
	if lca, ok := arena.LowestCommonAncestor(down, up); ok {
		tap := d.newEvent(Tap, lca)
		tap.Button = in.Button
		d.deliver(tap)
	}
}

func (d *Dispatcher) cancel(in PointerCanceled) {
	if d.buttons != 0 && in.Device != d.device {
		return
	}
	target := d.down
	d.buttons = 0
	d.down = tree.NodeID{}
	if !target.IsZero() && d.tree.Arena().Contains(target) {
		e := d.newEvent(PointerCancel, target)
		e.Device = in.Device
		d.deliver(e)
	}
}

func (d *Dispatcher) wheel(in MouseWheel, scale float64) {
	target, ok := d.hitCursor()
	if !ok {
		return
	}
	delta := in.Delta.Scale(scale)
	if in.Lines {
		delta = graphics.Offset{X: in.Delta.X * d.opts.WheelLinePixels, Y: in.Delta.Y * d.opts.WheelLinePixels}
	}
	e := d.newEvent(Wheel, target)
	e.Device = in.Device
	e.Delta = delta
	d.deliver(e)
}

func (d *Dispatcher) keyboard(in KeyboardInput) {
	kind := KeyUp
	if in.Pressed {
		kind = KeyDown
	}
	prevented := false
	if target, ok := d.focus.Focused(); ok {
		e := d.newEvent(kind, target)
		e.Key = in.Key
		e.Repeat = in.Repeat
		d.deliver(e)
		prevented = e.prevented
	}
	if kind != KeyDown || prevented || in.Key != KeyTab {
		return
	}
	root := d.tree.Root()
	if root.IsZero() {
		return
	}
	if d.modifiers.Has(ModShift) {
		d.focus.Prev(root)
	} else {
		d.focus.Next(root)
	}
}

// hover diffs the entered chain against the chain of target, sending leave
// to nodes that are no longer under the pointer and enter to new ones.
func (d *Dispatcher) hover(target tree.NodeID, ok bool) {
	var chain []tree.NodeID
	if ok {
		for id := range d.tree.Arena().Ancestors(target) {
			chain = append(chain, id)
		}
	}
	old := d.entered
	d.entered = chain

	inOld := make(map[tree.NodeID]bool, len(old))
	for _, id := range old {
		inOld[id] = true
	}
	split := len(chain)
	var common tree.NodeID
	for i, id := range chain {
		if inOld[id] {
			split, common = i, id
			break
		}
	}

	arena := d.tree.Arena()
	for _, id := range old {
		if id == common {
			break
		}
		if arena.Contains(id) {
			d.deliver(d.newEvent(PointerLeave, id))
		}
	}
	for i := split - 1; i >= 0; i-- {
		if arena.Contains(chain[i]) {
			d.deliver(d.newEvent(PointerEnter, chain[i]))
		}
	}
}

func (d *Dispatcher) focusChanged(prev, next tree.NodeID) {
	arena := d.tree.Arena()
	if !prev.IsZero() && arena.Contains(prev) {
		d.deliver(d.newEvent(Blur, prev))
		d.deliver(d.newEvent(FocusOut, prev))
	}
	if !next.IsZero() && arena.Contains(next) {
		d.deliver(d.newEvent(Focus, next))
		d.deliver(d.newEvent(FocusIn, next))
	}
}

func (d *Dispatcher) newEvent(kind Kind, target tree.NodeID) *Event {
	return &Event{
		Kind:      kind,
		Target:    target,
		Position:  d.cursor,
		Device:    d.device,
		Buttons:   d.buttons,
		Modifiers: d.modifiers,
		Timestamp: d.opts.Clock.Now(),
		arena:     d.tree.Arena(),
		store:     d.tree.Store(),
	}
}

// deliver runs the capture phase from the root down to the target, then the
// bubble phase back up, unless a handler stops propagation.
func (d *Dispatcher) deliver(e *Event) {
	arena := d.tree.Arena()
	if !arena.Contains(e.Target) {
		return
	}
	d.dispatched++
	if d.logger != nil {
		d.logger.Debug("dispatch event", "kind", e.Kind, "target", e.Target)
	}

	path := []tree.NodeID{e.Target}
	if !e.Kind.targetOnly() {
		path = path[:0]
		for id := range arena.Ancestors(e.Target) {
			path = append(path, id)
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		d.invoke(e, path[i], PhaseCapture)
		if e.stopped {
			return
		}
	}
	for _, id := range path {
		d.invoke(e, id, PhaseBubble)
		if e.stopped {
			return
		}
	}
}

// invoke runs the handlers of one node. Every handler of the node runs even
// if one of them stops propagation.
func (d *Dispatcher) invoke(e *Event, id tree.NodeID, phase Phase) {
	r, err := d.tree.Arena().Get(id)
	if err != nil {
		return
	}
	e.Current, e.Phase = id, phase
	d.current = id
	layout.QueryEach(r, func(l *Listeners) bool {
		for _, h := range l.handlers(e.Kind, phase) {
			h(e)
		}
		if e.Kind == Tap {
			for _, tt := range l.taps[phase] {
				if tt.record(e.Device, e.Timestamp, d.opts.TapWindow) {
					d.tapTimes(e, tt)
				}
			}
		}
		return true
	})
}

func (d *Dispatcher) tapTimes(tap *Event, tt *tapTimes) {
	e := *tap
	e.Kind = TapTimes
	e.TapCount = tt.n
	tt.handler(&e)
	tap.stopped = tap.stopped || e.stopped
	tap.prevented = tap.prevented || e.prevented
}
