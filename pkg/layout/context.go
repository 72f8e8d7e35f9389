package layout

import (
	"iter"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/tree"
)

// Context is handed to Render.PerformLayout for the node being laid out.
type Context struct {
	id  tree.NodeID
	eng *Engine
}

// ID returns the node being laid out.
func (c *Context) ID() tree.NodeID {
	return c.id
}

// Arena returns the tree's arena.
func (c *Context) Arena() *Arena {
	return c.eng.arena
}

// Store returns the tree's layout store.
func (c *Context) Store() *Store {
	return c.eng.store
}

// Children yields the node's children.
func (c *Context) Children() iter.Seq[tree.NodeID] {
	return c.eng.arena.Children(c.id)
}

// HasChild reports whether the node has any child.
func (c *Context) HasChild() bool {
	_, ok := c.eng.arena.FirstChild(c.id)
	return ok
}

// SingleChild returns the node's only child. It panics when there are several.
func (c *Context) SingleChild() (tree.NodeID, bool) {
	return c.eng.arena.SingleChild(c.id)
}

// PerformChildLayout lays out child under clamp and returns its size.
// A child already sized under the same clamp is not laid out again.
func (c *Context) PerformChildLayout(child tree.NodeID, clamp BoxClamp) graphics.Size {
	return c.eng.layoutNode(child, clamp)
}

// UpdatePosition places child at pos within the node.
func (c *Context) UpdatePosition(child tree.NodeID, pos graphics.Offset) {
	c.eng.store.SetPosition(child, pos)
}

// MarkDirty schedules id for the next batch of the running pass.
func (c *Context) MarkDirty(id tree.NodeID) {
	c.eng.dirty.Mark(id)
}
