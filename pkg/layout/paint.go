package layout

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/tree"
)

// PaintContext is handed to Render.Paint. The canvas origin is the node's
// top-left corner.
type PaintContext struct {
	Canvas graphics.Canvas

	arena *tree.Arena[Render]
	store *Store
	id    tree.NodeID
}

// ID returns the node being painted.
func (p *PaintContext) ID() tree.NodeID {
	return p.id
}

// Size returns the laid out size of the node being painted.
func (p *PaintContext) Size() graphics.Size {
	s, _ := p.store.Size(p.id)
	return s
}

// Store returns the tree's layout store.
func (p *PaintContext) Store() *Store {
	return p.store
}

// PaintSubtree paints id and its descendants at offset from the current
// origin, plus id's own recorded position. It is used for nodes the regular
// traversal does not reach.
func (p *PaintContext) PaintSubtree(id tree.NodeID, offset graphics.Offset) {
	p.Canvas.Save()
	p.Canvas.Translate(offset.X, offset.Y)
	paintNode(p.Canvas, p.arena, p.store, id)
	p.Canvas.Restore()
}

// Paint paints the tree rooted at root onto canvas in pre-order: each node is
// translated to its position, painted, then its children are painted.
// Nodes without a valid size are skipped with their subtree.
func Paint(arena *Arena, store *Store, root tree.NodeID, canvas graphics.Canvas) {
	paintNode(canvas, arena, store, root)
}

func paintNode(canvas graphics.Canvas, arena *Arena, store *Store, id tree.NodeID) {
	r, err := arena.Get(id)
	if err != nil || !store.IsSized(id) {
		return
	}
	pos := store.Position(id)
	canvas.Save()
	canvas.Translate(pos.X, pos.Y)
	r.Paint(&PaintContext{Canvas: canvas, arena: arena, store: store, id: id})
	for child := range arena.Children(id) {
		paintNode(canvas, arena, store, child)
	}
	canvas.Restore()
}

// HitTestContext is handed to Render.HitTest.
type HitTestContext struct {
	arena *tree.Arena[Render]
	store *Store
	id    tree.NodeID
}

// NewHitTestContext returns the context for hit testing id.
func NewHitTestContext(arena *Arena, store *Store, id tree.NodeID) *HitTestContext {
	return &HitTestContext{arena: arena, store: store, id: id}
}

// ID returns the node being tested.
func (h *HitTestContext) ID() tree.NodeID {
	return h.id
}

// Size returns the laid out size of the node being tested.
func (h *HitTestContext) Size() graphics.Size {
	s, _ := h.store.Size(h.id)
	return s
}
