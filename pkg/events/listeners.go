package events

import (
	"time"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/tree"
)

// HandlerFunc handles an event.
type HandlerFunc func(e *Event)

type tapTimes struct {
	n       int
	handler HandlerFunc
	stamps  map[DeviceID][]time.Time
}

// record adds a tap and reports whether it completes n taps within window.
func (t *tapTimes) record(device DeviceID, at time.Time, window time.Duration) bool {
	if t.stamps == nil {
		t.stamps = make(map[DeviceID][]time.Time)
	}
	// A tap from another device starts over.
	for d := range t.stamps {
		if d != device {
			delete(t.stamps, d)
		}
	}
	stamps := append(t.stamps[device], at)
	if len(stamps) < t.n {
		t.stamps[device] = stamps
		return false
	}
	if stamps[len(stamps)-1].Sub(stamps[0]) <= window {
		delete(t.stamps, device)
		return true
	}
	t.stamps[device] = stamps[1:]
	return false
}

// Listeners holds the handlers of one node.
type Listeners struct {
	child   core.Widget
	bubble  map[Kind][]HandlerFunc
	capture map[Kind][]HandlerFunc
	taps    [2][]*tapTimes
}

// Handle starts a listener set for child.
//
//	events.Handle(button).
//		On(events.Tap, onTap).
//		OnTapTimes(2, onDoubleTap)
func Handle(child core.Widget) *Listeners {
	return &Listeners{
		child:   child,
		bubble:  make(map[Kind][]HandlerFunc),
		capture: make(map[Kind][]HandlerFunc),
	}
}

// On adds a bubble-phase handler for kind.
func (l *Listeners) On(kind Kind, h HandlerFunc) *Listeners {
	l.bubble[kind] = append(l.bubble[kind], h)
	return l
}

// OnCapture adds a capture-phase handler for kind.
func (l *Listeners) OnCapture(kind Kind, h HandlerFunc) *Listeners {
	l.capture[kind] = append(l.capture[kind], h)
	return l
}

// OnTapTimes calls h in the bubble phase of every nth tap from one device
// within the tap window.
func (l *Listeners) OnTapTimes(n int, h HandlerFunc) *Listeners {
	l.taps[PhaseBubble] = append(l.taps[PhaseBubble], &tapTimes{n: max(n, 1), handler: h})
	return l
}

// OnTapTimesCapture is OnTapTimes for the capture phase.
func (l *Listeners) OnTapTimesCapture(n int, h HandlerFunc) *Listeners {
	l.taps[PhaseCapture] = append(l.taps[PhaseCapture], &tapTimes{n: max(n, 1), handler: h})
	return l
}

// Inflate lowers the child and attaches the listeners to it.
func (l *Listeners) Inflate(t *core.Tree) tree.NodeID {
	return core.Attach{Child: l.child, Data: l}.Inflate(t)
}

func (l *Listeners) handlers(kind Kind, phase Phase) []HandlerFunc {
	if phase == PhaseCapture {
		return l.capture[kind]
	}
	return l.bubble[kind]
}
