package widgets

import (
	"math"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Fill takes all the space it is given and paints it with Color.
// An unbounded dimension falls back to the clamp minimum. The child is laid
// out tightly to the fill's size.
type Fill struct {
	Color graphics.Color
	Child core.Widget
}

// Inflate lowers the fill and its child.
func (f Fill) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{Render: &renderFill{color: f.Color}, Children: optional(f.Child)}.Inflate(t)
}

type renderFill struct {
	layout.BoxBase
	color graphics.Color
}

func (r *renderFill) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	size := expand(clamp)
	if child, ok := ctx.SingleChild(); ok {
		ctx.PerformChildLayout(child, layout.Tight(size))
		ctx.UpdatePosition(child, graphics.Offset{})
	}
	return size
}

func (r *renderFill) Paint(ctx *layout.PaintContext) {
	if r.color.Alpha() == 0 {
		return
	}
	size := ctx.Size()
	ctx.Canvas.DrawRect(graphics.RectFromLTWH(0, 0, size.Width, size.Height), r.color)
}

func (r *renderFill) OnlySizedByParent() bool { return true }

// expand returns the largest finite size the clamp admits.
func expand(clamp layout.BoxClamp) graphics.Size {
	size := clamp.Max
	if math.IsInf(size.Width, 0) {
		size.Width = clamp.Min.Width
	}
	if math.IsInf(size.Height, 0) {
		size.Height = clamp.Min.Height
	}
	return size
}
