package tree

import (
	"fmt"

	"github.com/go-drift/arbor/pkg/errors"
)

// Arena owns nodes carrying a payload of type T and the edges between them.
// It is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []int
	count int
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Len returns the number of live nodes.
func (a *Arena[T]) Len() int {
	return a.count
}

// Insert adds a detached node with the given payload.
func (a *Arena[T]) Insert(payload T) NodeID {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = len(a.slots)
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.gen++
	s.live = true
	s.payload = payload
	s.unlink()
	a.count++
	return NodeID{index: uint32(idx), gen: s.gen}
}

// Contains reports whether id names a live node.
func (a *Arena[T]) Contains(id NodeID) bool {
	_, ok := a.lookup(id)
	return ok
}

func (a *Arena[T]) lookup(id NodeID) (int, bool) {
	if id.IsZero() || int(id.index) >= len(a.slots) {
		return none, false
	}
	s := &a.slots[id.index]
	if !s.live || s.gen != id.gen {
		return none, false
	}
	return int(id.index), true
}

func (a *Arena[T]) idOf(idx int) NodeID {
	return NodeID{index: uint32(idx), gen: a.slots[idx].gen}
}

func (a *Arena[T]) link(idx int) (NodeID, bool) {
	if idx == none {
		return NodeID{}, false
	}
	return a.idOf(idx), true
}

func notFound(op string, id NodeID) *errors.TreeError {
	return &errors.TreeError{Op: op, Kind: errors.KindNotFound, Node: id.String(), Err: errors.ErrNotFound}
}

// Get returns the payload of id.
func (a *Arena[T]) Get(id NodeID) (T, error) {
	idx, ok := a.lookup(id)
	if !ok {
		var zero T
		return zero, notFound("tree.Arena.Get", id)
	}
	return a.slots[idx].payload, nil
}

// MustGet returns the payload of id and panics if id is stale.
func (a *Arena[T]) MustGet(id NodeID) T {
	v, err := a.Get(id)
	if err != nil {
		panic(err)
	}
	return v
}

// Set replaces the payload of id.
func (a *Arena[T]) Set(id NodeID, payload T) error {
	idx, ok := a.lookup(id)
	if !ok {
		return notFound("tree.Arena.Set", id)
	}
	a.slots[idx].payload = payload
	return nil
}

// Parent returns the parent of id.
func (a *Arena[T]) Parent(id NodeID) (NodeID, bool) {
	idx, ok := a.lookup(id)
	if !ok {
		return NodeID{}, false
	}
	return a.link(a.slots[idx].parent)
}

// FirstChild returns the first child of id.
func (a *Arena[T]) FirstChild(id NodeID) (NodeID, bool) {
	idx, ok := a.lookup(id)
	if !ok {
		return NodeID{}, false
	}
	return a.link(a.slots[idx].first)
}

// LastChild returns the last child of id.
func (a *Arena[T]) LastChild(id NodeID) (NodeID, bool) {
	idx, ok := a.lookup(id)
	if !ok {
		return NodeID{}, false
	}
	return a.link(a.slots[idx].last)
}

// NextSibling returns the sibling after id.
func (a *Arena[T]) NextSibling(id NodeID) (NodeID, bool) {
	idx, ok := a.lookup(id)
	if !ok {
		return NodeID{}, false
	}
	return a.link(a.slots[idx].next)
}

// PrevSibling returns the sibling before id.
func (a *Arena[T]) PrevSibling(id NodeID) (NodeID, bool) {
	idx, ok := a.lookup(id)
	if !ok {
		return NodeID{}, false
	}
	return a.link(a.slots[idx].prev)
}

// IsAncestor reports whether anc is id or one of its ancestors.
func (a *Arena[T]) IsAncestor(anc, id NodeID) bool {
	for n := range a.Ancestors(id) {
		if n == anc {
			return true
		}
	}
	return false
}

func (a *Arena[T]) detach(idx int) {
	s := &a.slots[idx]
	if s.prev != none {
		a.slots[s.prev].next = s.next
	} else if s.parent != none {
		a.slots[s.parent].first = s.next
	}
	if s.next != none {
		a.slots[s.next].prev = s.prev
	} else if s.parent != none {
		a.slots[s.parent].last = s.prev
	}
	s.parent, s.prev, s.next = none, none, none
}

// Detach unlinks id from its parent and siblings. The node and its
// descendants stay live.
func (a *Arena[T]) Detach(id NodeID) error {
	idx, ok := a.lookup(id)
	if !ok {
		return notFound("tree.Arena.Detach", id)
	}
	a.detach(idx)
	return nil
}

func (a *Arena[T]) checkEdit(op string, anchor, node NodeID) (int, int, error) {
	ai, ok := a.lookup(anchor)
	if !ok {
		return none, none, notFound(op, anchor)
	}
	ni, ok := a.lookup(node)
	if !ok {
		return none, none, notFound(op, node)
	}
	if a.IsAncestor(node, anchor) {
		return none, none, &errors.TreeError{Op: op, Kind: errors.KindStructure, Node: node.String(), Err: errors.ErrCycle}
	}
	return ai, ni, nil
}

// AppendChild makes child the last child of parent, detaching it first.
func (a *Arena[T]) AppendChild(parent, child NodeID) error {
	pi, ci, err := a.checkEdit("tree.Arena.AppendChild", parent, child)
	if err != nil {
		return err
	}
	a.detach(ci)
	p := &a.slots[pi]
	c := &a.slots[ci]
	c.parent = pi
	c.prev = p.last
	if p.last != none {
		a.slots[p.last].next = ci
	} else {
		p.first = ci
	}
	p.last = ci
	return nil
}

// InsertAfter places node right after anchor, detaching it first.
func (a *Arena[T]) InsertAfter(anchor, node NodeID) error {
	ai, ni, err := a.checkEdit("tree.Arena.InsertAfter", anchor, node)
	if err != nil {
		return err
	}
	a.detach(ni)
	an := &a.slots[ai]
	n := &a.slots[ni]
	n.parent = an.parent
	n.prev = ai
	n.next = an.next
	if an.next != none {
		a.slots[an.next].prev = ni
	} else if an.parent != none {
		a.slots[an.parent].last = ni
	}
	an.next = ni
	return nil
}

// InsertBefore places node right before anchor, detaching it first.
func (a *Arena[T]) InsertBefore(anchor, node NodeID) error {
	ai, ni, err := a.checkEdit("tree.Arena.InsertBefore", anchor, node)
	if err != nil {
		return err
	}
	a.detach(ni)
	an := &a.slots[ai]
	n := &a.slots[ni]
	n.parent = an.parent
	n.next = ai
	n.prev = an.prev
	if an.prev != none {
		a.slots[an.prev].next = ni
	} else if an.parent != none {
		a.slots[an.parent].first = ni
	}
	an.prev = ni
	return nil
}

// RemoveSubtree detaches id and frees it with all of its descendants.
// onRemove, if non-nil, sees every removed node, children before parents,
// while its payload is still readable.
func (a *Arena[T]) RemoveSubtree(id NodeID, onRemove func(NodeID, T)) error {
	idx, ok := a.lookup(id)
	if !ok {
		return notFound("tree.Arena.RemoveSubtree", id)
	}
	a.detach(idx)
	var order []NodeID
	for n := range a.Descendants(id) {
		order = append(order, n)
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		ni, ok := a.lookup(n)
		if !ok {
			continue
		}
		if onRemove != nil {
			onRemove(n, a.slots[ni].payload)
		}
		a.release(ni)
	}
	return nil
}

func (a *Arena[T]) release(idx int) {
	s := &a.slots[idx]
	var zero T
	s.payload = zero
	s.live = false
	s.unlink()
	a.free = append(a.free, idx)
	a.count--
}

// Swap exchanges the identities of a and b: afterwards a names the payload,
// position and children b had, and b names what a had. Neighbour edges are
// rewritten so the tree shape is otherwise unchanged.
func (a *Arena[T]) Swap(x, y NodeID) error {
	xi, ok := a.lookup(x)
	if !ok {
		return notFound("tree.Arena.Swap", x)
	}
	yi, ok := a.lookup(y)
	if !ok {
		return notFound("tree.Arena.Swap", y)
	}
	if xi == yi {
		return nil
	}

	affected := map[int]struct{}{xi: {}, yi: {}}
	for _, idx := range [2]int{xi, yi} {
		s := &a.slots[idx]
		for _, n := range [3]int{s.parent, s.prev, s.next} {
			if n != none {
				affected[n] = struct{}{}
			}
		}
		for c := s.first; c != none; c = a.slots[c].next {
			affected[c] = struct{}{}
		}
	}

	sx, sy := &a.slots[xi], &a.slots[yi]
	sx.payload, sy.payload = sy.payload, sx.payload
	sx.parent, sy.parent = sy.parent, sx.parent
	sx.first, sy.first = sy.first, sx.first
	sx.last, sy.last = sy.last, sx.last
	sx.prev, sy.prev = sy.prev, sx.prev
	sx.next, sy.next = sy.next, sx.next

	remap := func(v int) int {
		switch v {
		case xi:
			return yi
		case yi:
			return xi
		}
		return v
	}
	for idx := range affected {
		s := &a.slots[idx]
		s.parent = remap(s.parent)
		s.first = remap(s.first)
		s.last = remap(s.last)
		s.prev = remap(s.prev)
		s.next = remap(s.next)
	}
	return nil
}

// ChildCount returns the number of children of id.
func (a *Arena[T]) ChildCount(id NodeID) int {
	n := 0
	for range a.Children(id) {
		n++
	}
	return n
}

// SingleChild returns the only child of id. It panics with a structure
// error when id has more than one child.
func (a *Arena[T]) SingleChild(id NodeID) (NodeID, bool) {
	first, ok := a.FirstChild(id)
	if !ok {
		return NodeID{}, false
	}
	if _, more := a.NextSibling(first); more {
		panic(&errors.TreeError{
			Op:   "tree.Arena.SingleChild",
			Kind: errors.KindStructure,
			Node: id.String(),
			Err:  fmt.Errorf("expected at most one child, found %d", a.ChildCount(id)),
		})
	}
	return first, true
}

// Depth returns the number of ancestors of id. Roots have depth 0.
func (a *Arena[T]) Depth(id NodeID) int {
	d := -1
	for range a.Ancestors(id) {
		d++
	}
	return d
}

// Root returns the topmost ancestor of id.
func (a *Arena[T]) Root(id NodeID) NodeID {
	root := id
	for n := range a.Ancestors(id) {
		root = n
	}
	return root
}

// LowestCommonAncestor returns the deepest node that is an ancestor of both
// a and b (either may be the answer itself). ok is false when the nodes
// live in disjoint trees or either id is stale.
func (a *Arena[T]) LowestCommonAncestor(x, y NodeID) (NodeID, bool) {
	if !a.Contains(x) || !a.Contains(y) {
		return NodeID{}, false
	}
	seen := make(map[NodeID]struct{})
	for n := range a.Ancestors(x) {
		seen[n] = struct{}{}
	}
	for n := range a.Ancestors(y) {
		if _, ok := seen[n]; ok {
			return n, true
		}
	}
	return NodeID{}, false
}
