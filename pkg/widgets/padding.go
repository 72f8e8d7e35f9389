package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// EdgeInsets holds space on each side of a box.
type EdgeInsets struct {
	Left, Top, Right, Bottom float64
}

// EdgeInsetsAll returns equal insets on every side.
func EdgeInsetsAll(v float64) EdgeInsets {
	return EdgeInsets{Left: v, Top: v, Right: v, Bottom: v}
}

// EdgeInsetsSymmetric returns horizontal insets on the left and right and
// vertical insets on the top and bottom.
func EdgeInsetsSymmetric(horizontal, vertical float64) EdgeInsets {
	return EdgeInsets{Left: horizontal, Top: vertical, Right: horizontal, Bottom: vertical}
}

// Horizontal returns Left + Right.
func (e EdgeInsets) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e EdgeInsets) Vertical() float64 { return e.Top + e.Bottom }

// Padding adds empty space around its child widget.
//
// The child is constrained to the remaining space after padding is applied.
// If no child is provided, Padding creates an empty box of the padding size.
//
//	Padding{Padding: EdgeInsetsAll(16), Child: child}
//	Padding{Padding: EdgeInsetsSymmetric(24, 12), Child: child}
type Padding struct {
	Padding EdgeInsets
	Child   core.Widget
}

// Inflate lowers the padding and its child.
func (p Padding) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{Render: &renderPadding{insets: p.Padding}, Children: optional(p.Child)}.Inflate(t)
}

type renderPadding struct {
	layout.BoxBase
	insets EdgeInsets
}

func (r *renderPadding) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	h, v := r.insets.Horizontal(), r.insets.Vertical()
	child, ok := ctx.SingleChild()
	if !ok {
		return clamp.Clamp(graphics.Size{Width: h, Height: v})
	}
	size := ctx.PerformChildLayout(child, clamp.Shrink(h, v))
	ctx.UpdatePosition(child, graphics.Offset{X: r.insets.Left, Y: r.insets.Top})
	return graphics.Size{Width: size.Width + h, Height: size.Height + v}
}
