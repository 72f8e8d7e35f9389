package layout

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/tree"
)

// Arena is the node arena of a retained tree.
type Arena = tree.Arena[Render]

// Render is the capability every node payload implements.
type Render interface {
	// PerformLayout computes the node's size under clamp, laying out and
	// positioning children through ctx. The engine clamps the result.
	PerformLayout(clamp BoxClamp, ctx *Context) graphics.Size
	// Paint draws the node itself. Children are painted by the traversal.
	Paint(ctx *PaintContext)
	// OnlySizedByParent reports whether the node's size depends only on the
	// incoming clamp, letting relayout stop below it. Renders that place
	// children by child size must return false.
	OnlySizedByParent() bool
	// HitTest reports whether local, relative to the node's origin, hits it.
	HitTest(ctx *HitTestContext, local graphics.Offset) HitTest
}

// HitTest is the result of Render.HitTest.
type HitTest struct {
	// Hit reports the node itself was hit.
	Hit bool
	// CanHitChild allows the walk to descend into children.
	CanHitChild bool
}

// BoxBase supplies default Render behavior. Embed it and override what differs.
type BoxBase struct{}

// PerformLayout lays out every child with clamp at the origin and takes the
// largest child size, or the clamp minimum with no children.
func (BoxBase) PerformLayout(clamp BoxClamp, ctx *Context) graphics.Size {
	size := clamp.Min
	for child := range ctx.Children() {
		s := ctx.PerformChildLayout(child, clamp)
		ctx.UpdatePosition(child, graphics.Offset{})
		size.Width = max(size.Width, s.Width)
		size.Height = max(size.Height, s.Height)
	}
	return size
}

// Paint draws nothing.
func (BoxBase) Paint(*PaintContext) {}

// OnlySizedByParent returns false.
func (BoxBase) OnlySizedByParent() bool { return false }

// HitTest hits when local lies within the node's size.
func (BoxBase) HitTest(ctx *HitTestContext, local graphics.Offset) HitTest {
	return HitTest{Hit: ctx.Size().Contains(local), CanHitChild: true}
}

// Wrapper is implemented by renders that decorate another render.
type Wrapper interface {
	Inner() Render
}

// DataRender attaches a value to a render. Layout, paint and hit testing are
// delegated to the wrapped render.
type DataRender struct {
	Render
	Data any
}

// WithData wraps inner so that queries for data's type find it.
func WithData(inner Render, data any) *DataRender {
	return &DataRender{Render: inner, Data: data}
}

// Inner returns the wrapped render.
func (d *DataRender) Inner() Render {
	return d.Render
}

// QueryEach calls fn for every value of type T found on r, outermost first:
// the render itself, the data it carries, then whatever it wraps.
func QueryEach[T any](r Render, fn func(T) bool) {
	for r != nil {
		if v, ok := r.(T); ok {
			if !fn(v) {
				return
			}
		}
		if d, ok := r.(*DataRender); ok {
			if v, ok := d.Data.(T); ok {
				if !fn(v) {
					return
				}
			}
		}
		w, ok := r.(Wrapper)
		if !ok {
			return
		}
		r = w.Inner()
	}
}

// QueryFirst returns the outermost value of type T found on r.
func QueryFirst[T any](r Render) (T, bool) {
	var (
		out   T
		found bool
	)
	QueryEach(r, func(v T) bool {
		out, found = v, true
		return false
	})
	return out, found
}

// Unwrap strips every Wrapper layer from r.
func Unwrap(r Render) Render {
	for {
		w, ok := r.(Wrapper)
		if !ok {
			return r
		}
		r = w.Inner()
	}
}
