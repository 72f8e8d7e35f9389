package widgets

import (
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// StackFit controls how non-positioned children are sized.
type StackFit int

const (
	// StackFitLoose lets children take any size up to the stack's maximum.
	StackFitLoose StackFit = iota
	// StackFitExpand forces children to the stack's maximum.
	StackFitExpand
)

// Stack overlays its children. Later children paint on top and are hit
// tested first.
//
// Non-positioned children are placed at the origin and determine the stack's
// size. Wrap a child in [Positioned] to place it at a fixed offset without
// affecting the size.
type Stack struct {
	Fit      StackFit
	Children []core.Widget
}

// Inflate lowers the stack and its children.
func (s Stack) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{Render: &renderStack{fit: s.Fit}, Children: s.Children}.Inflate(t)
}

// Positioned places a stack child at Offset. Zero Width or Height leaves that
// dimension loose.
type Positioned struct {
	Offset graphics.Offset
	Width  float64
	Height float64
	Child  core.Widget
}

type positionData struct {
	offset        graphics.Offset
	width, height float64
}

// Inflate lowers the child and tags it with its position.
func (p Positioned) Inflate(t *core.Tree) tree.NodeID {
	return core.Attach{Child: p.Child, Data: &positionData{offset: p.Offset, width: p.Width, height: p.Height}}.Inflate(t)
}

type renderStack struct {
	layout.BoxBase
	fit StackFit
}

func (r *renderStack) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	childClamp := clamp.Loosen()
	if r.fit == StackFitExpand {
		childClamp = layout.Tight(expand(clamp))
	}

	size := clamp.Min
	var positioned []tree.NodeID
	for child := range ctx.Children() {
		if _, ok := layout.QueryFirst[*positionData](ctx.Arena().MustGet(child)); ok {
			positioned = append(positioned, child)
			continue
		}
		s := ctx.PerformChildLayout(child, childClamp)
		ctx.UpdatePosition(child, graphics.Offset{})
		size.Width = max(size.Width, s.Width)
		size.Height = max(size.Height, s.Height)
	}
	size = clamp.Clamp(size)

	for _, child := range positioned {
		pd, _ := layout.QueryFirst[*positionData](ctx.Arena().MustGet(child))
		c := layout.Unbounded()
		if pd.width > 0 {
			c.Min.Width, c.Max.Width = pd.width, pd.width
		}
		if pd.height > 0 {
			c.Min.Height, c.Max.Height = pd.height, pd.height
		}
		ctx.PerformChildLayout(child, c)
		ctx.UpdatePosition(child, pd.offset)
	}
	return size
}
