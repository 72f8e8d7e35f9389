package graphics

import (
	"fmt"
	"strings"
)

// DrawOp is a single command captured by a Recorder, in absolute coordinates.
type DrawOp struct {
	Kind  string
	Rect  Rect
	Text  string
	Color Color
}

func (op DrawOp) String() string {
	switch op.Kind {
	case "text":
		return fmt.Sprintf("text %q @(%g,%g)", op.Text, op.Rect.Left, op.Rect.Top)
	default:
		return fmt.Sprintf("rect (%g,%g %gx%g)", op.Rect.Left, op.Rect.Top, op.Rect.Width(), op.Rect.Height())
	}
}

// Recorder is a Canvas that records draw commands with the current
// translation applied. It backs paint assertions and the CLI's text dump.
type Recorder struct {
	Ops []DrawOp

	origin Offset
	stack  []Offset
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Save pushes the current origin.
func (r *Recorder) Save() {
	r.stack = append(r.stack, r.origin)
}

// Restore pops the most recent origin. Unbalanced calls are ignored.
func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.origin = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

// Translate moves the origin.
func (r *Recorder) Translate(dx, dy float64) {
	r.origin = r.origin.Add(Offset{X: dx, Y: dy})
}

// DrawRect records a rectangle.
func (r *Recorder) DrawRect(rect Rect, color Color) {
	r.Ops = append(r.Ops, DrawOp{Kind: "rect", Rect: rect.Translate(r.origin), Color: color})
}

// DrawText records a text run.
func (r *Recorder) DrawText(text string, origin Offset, color Color) {
	at := origin.Add(r.origin)
	r.Ops = append(r.Ops, DrawOp{Kind: "text", Rect: Rect{Left: at.X, Top: at.Y, Right: at.X, Bottom: at.Y}, Text: text, Color: color})
}

// Depth returns the number of outstanding saves.
func (r *Recorder) Depth() int {
	return len(r.stack)
}

// Reset clears recorded commands and transform state.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.origin = Offset{}
	r.stack = r.stack[:0]
}

// String renders one command per line.
func (r *Recorder) String() string {
	var sb strings.Builder
	for _, op := range r.Ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
