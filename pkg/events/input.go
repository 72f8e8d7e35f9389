package events

import "github.com/go-drift/arbor/pkg/graphics"

// Input is a platform event already translated to the canonical form.
// Positions and pixel deltas are physical; the dispatcher divides them by the
// scale factor.
type Input interface {
	isInput()
}

// CursorMoved reports a new cursor position.
type CursorMoved struct {
	Device   DeviceID
	Position graphics.Offset
}

// CursorLeft reports the cursor leaving the window.
type CursorLeft struct {
	Device DeviceID
}

// MouseInput reports a button press or release at the current cursor.
type MouseInput struct {
	Device  DeviceID
	Button  Buttons
	Pressed bool
}

// MouseWheel reports a scroll. Lines selects line units instead of pixels.
type MouseWheel struct {
	Device DeviceID
	Delta  graphics.Offset
	Lines  bool
}

// KeyboardInput reports a key press or release.
type KeyboardInput struct {
	Key     string
	Pressed bool
	Repeat  bool
}

// CharsInput reports committed text.
type CharsInput struct {
	Chars string
}

// ModifiersChanged reports the held modifier keys.
type ModifiersChanged struct {
	Modifiers Modifiers
}

// PointerCanceled aborts the interaction of a device.
type PointerCanceled struct {
	Device DeviceID
}

func (CursorMoved) isInput()      {}
func (CursorLeft) isInput()       {}
func (MouseInput) isInput()       {}
func (MouseWheel) isInput()       {}
func (KeyboardInput) isInput()    {}
func (CharsInput) isInput()       {}
func (ModifiersChanged) isInput() {}
func (PointerCanceled) isInput()  {}
