package widgets

import (
	"math"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Center positions its child at the center of the available space.
//
// Center expands to fill the space it is given, then centers the child
// within that space. In an unbounded dimension it shrinks to the child.
type Center struct {
	Child core.Widget
}

// Inflate lowers the center and its child.
func (c Center) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{Render: &renderCenter{}, Children: optional(c.Child)}.Inflate(t)
}

type renderCenter struct {
	layout.BoxBase
}

func (r *renderCenter) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	child, ok := ctx.SingleChild()
	if !ok {
		return expand(clamp)
	}
	childSize := ctx.PerformChildLayout(child, clamp.Loosen())
	size := clamp.Max
	if math.IsInf(size.Width, 0) {
		size.Width = childSize.Width
	}
	if math.IsInf(size.Height, 0) {
		size.Height = childSize.Height
	}
	size = clamp.Clamp(size)
	ctx.UpdatePosition(child, graphics.Offset{
		X: (size.Width - childSize.Width) / 2,
		Y: (size.Height - childSize.Height) / 2,
	})
	return size
}
