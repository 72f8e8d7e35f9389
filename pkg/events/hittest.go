package events

import (
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// HitTest returns the deepest node under pos, in window coordinates, below
// root. Later children are tested first since they paint on top.
func HitTest(arena *layout.Arena, store *layout.Store, root tree.NodeID, pos graphics.Offset) (tree.NodeID, bool) {
	if root.IsZero() || !arena.Contains(root) {
		return tree.NodeID{}, false
	}
	return hitNode(arena, store, root, pos.Sub(store.Position(root)))
}

func hitNode(arena *layout.Arena, store *layout.Store, id tree.NodeID, local graphics.Offset) (tree.NodeID, bool) {
	if !store.IsSized(id) {
		return tree.NodeID{}, false
	}
	r := arena.MustGet(id)
	res := r.HitTest(layout.NewHitTestContext(arena, store, id), local)
	if res.CanHitChild {
		for c, ok := arena.LastChild(id); ok; c, ok = arena.PrevSibling(c) {
			if hit, ok := hitNode(arena, store, c, local.Sub(store.Position(c))); ok {
				return hit, true
			}
		}
	}
	if res.Hit {
		return id, true
	}
	return tree.NodeID{}, false
}
