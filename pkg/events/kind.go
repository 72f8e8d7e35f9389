// Package events delivers pointer, keyboard and focus events through a tree.
package events

// Kind identifies an event.
type Kind int

const (
	PointerDown Kind = iota
	PointerUp
	PointerMove
	PointerCancel
	PointerEnter
	PointerLeave
	Tap
	// TapTimes is delivered to OnTapTimes listeners when a multi-tap completes.
	TapTimes
	Wheel
	KeyDown
	KeyUp
	Chars
	// Focus and Blur reach only the node gaining or losing focus.
	Focus
	Blur
	// FocusIn and FocusOut propagate like pointer events.
	FocusIn
	FocusOut
)

var kindNames = [...]string{
	PointerDown:   "pointer-down",
	PointerUp:     "pointer-up",
	PointerMove:   "pointer-move",
	PointerCancel: "pointer-cancel",
	PointerEnter:  "pointer-enter",
	PointerLeave:  "pointer-leave",
	Tap:           "tap",
	TapTimes:      "tap-times",
	Wheel:         "wheel",
	KeyDown:       "key-down",
	KeyUp:         "key-up",
	Chars:         "chars",
	Focus:         "focus",
	Blur:          "blur",
	FocusIn:       "focus-in",
	FocusOut:      "focus-out",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// targetOnly reports whether k is delivered to its target without propagating.
func (k Kind) targetOnly() bool {
	switch k {
	case Focus, Blur, PointerEnter, PointerLeave:
		return true
	}
	return false
}

// Phase is the propagation phase an event is in.
type Phase int

const (
	// PhaseCapture runs from the root down to the target.
	PhaseCapture Phase = iota
	// PhaseBubble runs from the target up to the root.
	PhaseBubble
)

func (p Phase) String() string {
	if p == PhaseCapture {
		return "capture"
	}
	return "bubble"
}

// Buttons is a set of mouse buttons.
type Buttons uint8

const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonMiddle
	ButtonBack
	ButtonForward
)

// Has reports whether every button in o is in b.
func (b Buttons) Has(o Buttons) bool {
	return b&o == o
}

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether every modifier in o is held.
func (m Modifiers) Has(o Modifiers) bool {
	return m&o == o
}

// Named keys carried by KeyboardInput.Key. Printable keys use their text.
const (
	KeyTab       = "Tab"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
	KeySpace     = " "
)

// DeviceID identifies a pointer device.
type DeviceID int64
