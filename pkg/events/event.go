package events

import (
	"time"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Event is handed to listeners. Handlers may call StopPropagation and
// PreventDefault; other fields are read-only.
type Event struct {
	Kind  Kind
	Phase Phase
	// Target is the node the event was dispatched to.
	Target tree.NodeID
	// Current is the node whose listener is running.
	Current tree.NodeID

	// Position is the pointer position in logical window coordinates.
	Position  graphics.Offset
	Device    DeviceID
	Buttons   Buttons
	Button    Buttons
	Delta     graphics.Offset
	Key       string
	Repeat    bool
	Chars     string
	Modifiers Modifiers
	// TapCount is the number of taps recognized for TapTimes.
	TapCount  int
	Timestamp time.Time

	arena     *layout.Arena
	store     *layout.Store
	stopped   bool
	prevented bool
}

// StopPropagation stops delivery to any further node.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PreventDefault suppresses the dispatcher's default action, if any.
func (e *Event) PreventDefault() {
	e.prevented = true
}

// IsPropagationStopped reports whether StopPropagation was called.
func (e *Event) IsPropagationStopped() bool {
	return e.stopped
}

// IsDefaultPrevented reports whether PreventDefault was called.
func (e *Event) IsDefaultPrevented() bool {
	return e.prevented
}

// LocalPosition returns Position relative to the origin of Current.
func (e *Event) LocalPosition() graphics.Offset {
	if e.arena == nil {
		return e.Position
	}
	return e.Position.Sub(layout.GlobalPosition(e.arena, e.store, e.Current))
}
