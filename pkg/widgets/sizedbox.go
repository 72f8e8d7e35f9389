package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// SizedBox constrains its child to a specific width and/or height.
//
// When both Width and Height are set, SizedBox forces those exact dimensions
// (constrained by parent). When only one dimension is set, the other uses
// the child's size.
//
//	// Fixed-size box
//	SizedBox{Width: 100, Height: 50, Child: child}
//
//	// Vertical spacer in a Column
//	SizedBox{Height: 24}
type SizedBox struct {
	Width  float64
	Height float64
	Child  core.Widget
}

// Inflate lowers the box and its child.
func (s SizedBox) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{
		Render:   &renderSizedBox{width: s.Width, height: s.Height},
		Children: optional(s.Child),
	}.Inflate(t)
}

// HSpace returns a horizontal spacer.
func HSpace(width float64) SizedBox {
	return SizedBox{Width: width}
}

// VSpace returns a vertical spacer.
func VSpace(height float64) SizedBox {
	return SizedBox{Height: height}
}

type renderSizedBox struct {
	layout.BoxBase
	width  float64
	height float64
}

func (r *renderSizedBox) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	constrained := clamp.Clamp(graphics.Size{Width: r.width, Height: r.height})
	child, ok := ctx.SingleChild()
	if !ok {
		return constrained
	}

	// Tighten only the explicit dimensions.
	childClamp := clamp
	if r.width > 0 {
		childClamp.Min.Width, childClamp.Max.Width = constrained.Width, constrained.Width
	}
	if r.height > 0 {
		childClamp.Min.Height, childClamp.Max.Height = constrained.Height, constrained.Height
	}
	size := ctx.PerformChildLayout(child, childClamp)
	ctx.UpdatePosition(child, graphics.Offset{})
	if r.width > 0 {
		size.Width = constrained.Width
	}
	if r.height > 0 {
		size.Height = constrained.Height
	}
	return size
}

func (r *renderSizedBox) OnlySizedByParent() bool {
	return r.width > 0 && r.height > 0
}

func optional(w core.Widget) []core.Widget {
	if w == nil {
		return nil
	}
	return []core.Widget{w}
}
