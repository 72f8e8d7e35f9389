package tree

import "iter"

// Children yields the children of id in order.
//
// The walk tolerates edits made by the caller between steps: if the current
// child is still attached to id, the walk continues from its current next
// sibling; otherwise it continues from the sibling recorded before the yield,
// provided that node is still a child of id.
func (a *Arena[T]) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		cur, ok := a.FirstChild(id)
		for ok {
			next, hasNext := a.NextSibling(cur)
			if !yield(cur) {
				return
			}
			if !a.Contains(id) {
				return
			}
			if p, pok := a.Parent(cur); pok && p == id {
				next, hasNext = a.NextSibling(cur)
			} else if hasNext {
				if p, pok := a.Parent(next); !pok || p != id {
					return
				}
			}
			cur, ok = next, hasNext
		}
	}
}

// Ancestors yields id followed by each of its ancestors up to the root.
func (a *Arena[T]) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !a.Contains(id) {
			return
		}
		cur, ok := id, true
		for ok {
			if !yield(cur) {
				return
			}
			cur, ok = a.Parent(cur)
		}
	}
}

// Descendants yields id and every node below it in pre-order. Nodes removed
// or moved out from under their recorded parent before being reached are
// skipped.
func (a *Arena[T]) Descendants(id NodeID) iter.Seq[NodeID] {
	type frame struct {
		node   NodeID
		parent NodeID
	}
	return func(yield func(NodeID) bool) {
		if !a.Contains(id) {
			return
		}
		stack := []frame{{node: id}}
		var buf []NodeID
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !a.Contains(f.node) {
				continue
			}
			if !f.parent.IsZero() {
				if p, ok := a.Parent(f.node); !ok || p != f.parent {
					continue
				}
			}
			if !yield(f.node) {
				return
			}
			buf = buf[:0]
			for c := range a.Children(f.node) {
				buf = append(buf, c)
			}
			for i := len(buf) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: buf[i], parent: f.node})
			}
		}
	}
}
