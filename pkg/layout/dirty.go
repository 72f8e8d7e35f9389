package layout

import "github.com/go-drift/arbor/pkg/tree"

// DirtySet collects nodes that need layout. Draining hands out the current
// batch; nodes marked afterwards land in the next one.
type DirtySet struct {
	order []tree.NodeID
	set   map[tree.NodeID]struct{}
}

// NewDirtySet returns an empty set.
func NewDirtySet() *DirtySet {
	return &DirtySet{set: make(map[tree.NodeID]struct{})}
}

// Mark adds id. It reports whether id was newly added.
func (d *DirtySet) Mark(id tree.NodeID) bool {
	if _, ok := d.set[id]; ok {
		return false
	}
	d.set[id] = struct{}{}
	d.order = append(d.order, id)
	return true
}

// Contains reports whether id is pending.
func (d *DirtySet) Contains(id tree.NodeID) bool {
	_, ok := d.set[id]
	return ok
}

// Len returns the number of pending nodes.
func (d *DirtySet) Len() int {
	return len(d.order)
}

// Drain returns the pending nodes in mark order and empties the set.
func (d *DirtySet) Drain() []tree.NodeID {
	batch := d.order
	d.order = nil
	clear(d.set)
	return batch
}
