// Package tree provides the generation-checked node arena that backs the
// retained tree.
//
// Nodes are addressed by NodeID values. A NodeID stays valid until its node is
// removed; after that every lookup fails with errors.ErrNotFound, even if the
// slot has been reused by a later insertion.
package tree

import (
	"cmp"
	"fmt"
)

// NodeID names a node in an Arena. The zero value names no node.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool {
	return id.gen == 0
}

func (id NodeID) String() string {
	if id.IsZero() {
		return "<nil>"
	}
	return fmt.Sprintf("%dv%d", id.index, id.gen)
}

// Compare orders ids by slot then generation. The order carries no
// structural meaning.
func (id NodeID) Compare(other NodeID) int {
	if c := cmp.Compare(id.index, other.index); c != 0 {
		return c
	}
	return cmp.Compare(id.gen, other.gen)
}

const none = -1

type slot[T any] struct {
	gen     uint32
	live    bool
	payload T

	parent int
	first  int
	last   int
	prev   int
	next   int
}

func (s *slot[T]) unlink() {
	s.parent, s.first, s.last, s.prev, s.next = none, none, none, none, none
}
