package core

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Widget describes a piece of UI. Inflate lowers it into a detached subtree
// and returns the subtree's root.
type Widget interface {
	Inflate(t *Tree) tree.NodeID
}

// WidgetFunc adapts a function to Widget.
type WidgetFunc func(t *Tree) tree.NodeID

// Inflate calls f.
func (f WidgetFunc) Inflate(t *Tree) tree.NodeID {
	return f(t)
}

// RenderWidget lowers a render with its declared children.
type RenderWidget struct {
	Render   layout.Render
	Children []Widget
}

// Inflate inserts the render and appends the children in order.
func (w RenderWidget) Inflate(t *Tree) tree.NodeID {
	id := t.Insert(w.Render)
	for _, c := range w.Children {
		if c != nil {
			t.Append(id, c)
		}
	}
	return id
}

// Attach wraps the payload of Child with Data.
type Attach struct {
	Child Widget
	Data  any
}

// Inflate lowers Child and wraps its root payload.
func (a Attach) Inflate(t *Tree) tree.NodeID {
	id := a.Child.Inflate(t)
	r := t.arena.MustGet(id)
	if err := t.arena.Set(id, layout.WithData(r, a.Data)); err != nil {
		panic(err)
	}
	return id
}

// VoidRender takes the smallest size it is allowed and draws nothing.
type VoidRender struct{ layout.BoxBase }

// PerformLayout returns the clamp minimum.
func (VoidRender) PerformLayout(clamp layout.BoxClamp, _ *layout.Context) graphics.Size {
	return clamp.Min
}

// OnlySizedByParent returns true.
func (VoidRender) OnlySizedByParent() bool { return true }

// HitTest never hits.
func (VoidRender) HitTest(*layout.HitTestContext, graphics.Offset) layout.HitTest {
	return layout.HitTest{}
}

// Void is an invisible, empty widget.
type Void struct{}

// Inflate inserts a VoidRender node.
func (Void) Inflate(t *Tree) tree.NodeID {
	return t.Insert(VoidRender{})
}
