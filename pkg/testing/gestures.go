package testing

import (
	"fmt"

	"github.com/go-drift/arbor/pkg/events"
	"github.com/go-drift/arbor/pkg/graphics"
)

// Mouse is the device used by the gesture helpers.
const Mouse events.DeviceID = 1

func (w *TestWindow) physical(p graphics.Offset) graphics.Offset {
	return graphics.Offset{X: p.X * w.scale, Y: p.Y * w.scale}
}

// MoveTo moves the cursor to the logical position pos.
func (w *TestWindow) MoveTo(pos graphics.Offset) error {
	return w.window.HandleInput(events.CursorMoved{Device: Mouse, Position: w.physical(pos)})
}

// Press presses the primary button at the current cursor.
func (w *TestWindow) Press() error {
	return w.window.HandleInput(events.MouseInput{Device: Mouse, Button: events.ButtonPrimary, Pressed: true})
}

// Release releases the primary button.
func (w *TestWindow) Release() error {
	return w.window.HandleInput(events.MouseInput{Device: Mouse, Button: events.ButtonPrimary})
}

// TapAt moves to pos, then presses and releases the primary button.
func (w *TestWindow) TapAt(pos graphics.Offset) error {
	if err := w.MoveTo(pos); err != nil {
		return err
	}
	if err := w.Press(); err != nil {
		return err
	}
	return w.Release()
}

// Tap taps the centre of the first node matched by f.
func (w *TestWindow) Tap(f Finder) error {
	id, err := w.Find(f).First()
	if err != nil {
		return err
	}
	rect, ok := w.Rect(id)
	if !ok {
		return fmt.Errorf("tap %s: node %s has not been laid out", f.Description(), id)
	}
	return w.TapAt(graphics.Offset{
		X: rect.Left + rect.Width()/2,
		Y: rect.Top + rect.Height()/2,
	})
}

// Scroll sends a pixel wheel delta given in logical pixels.
func (w *TestWindow) Scroll(delta graphics.Offset) error {
	return w.window.HandleInput(events.MouseWheel{Device: Mouse, Delta: w.physical(delta)})
}

// SendKey presses and releases key.
func (w *TestWindow) SendKey(key string) error {
	if err := w.window.HandleInput(events.KeyboardInput{Key: key, Pressed: true}); err != nil {
		return err
	}
	return w.window.HandleInput(events.KeyboardInput{Key: key})
}

// TypeChars sends committed text to the focused node.
func (w *TestWindow) TypeChars(chars string) error {
	return w.window.HandleInput(events.CharsInput{Chars: chars})
}
