// Package focus tracks keyboard focus within a tree.
package focus

import (
	"iter"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Node marks a tree node as focusable.
type Node struct {
	// CanRequestFocus allows the node to take focus.
	CanRequestFocus bool
	// SkipTraversal keeps the node out of tab order. It can still be focused
	// by a pointer press.
	SkipTraversal bool
	DebugLabel    string

	// OnFocusChange is called when the node gains or loses focus.
	OnFocusChange func(hasFocus bool)

	hasFocus bool
}

// HasFocus reports whether this node has focus.
func (n *Node) HasFocus() bool {
	return n.hasFocus
}

func (n *Node) canReceiveFocus() bool {
	return n != nil && n.CanRequestFocus
}

func (n *Node) traversable() bool {
	return n.canReceiveFocus() && !n.SkipTraversal
}

// Focusable attaches n to child.
func Focusable(child core.Widget, n *Node) core.Widget {
	return core.Attach{Child: child, Data: n}
}

// Manager holds the focused node of one tree.
type Manager struct {
	arena   *layout.Arena
	focused tree.NodeID

	// OnChange is called after focus moves. Either id may be zero.
	OnChange func(prev, next tree.NodeID)
}

// NewManager returns a manager with nothing focused.
func NewManager(arena *layout.Arena) *Manager {
	return &Manager{arena: arena}
}

func (m *Manager) nodeOf(id tree.NodeID) *Node {
	r, err := m.arena.Get(id)
	if err != nil {
		return nil
	}
	n, _ := layout.QueryFirst[*Node](r)
	return n
}

// Focused returns the focused node. A node removed from the arena loses focus.
func (m *Manager) Focused() (tree.NodeID, bool) {
	if m.focused.IsZero() {
		return tree.NodeID{}, false
	}
	if !m.arena.Contains(m.focused) {
		m.focused = tree.NodeID{}
		return tree.NodeID{}, false
	}
	return m.focused, true
}

// CanFocus reports whether id may take focus.
func (m *Manager) CanFocus(id tree.NodeID) bool {
	return m.nodeOf(id).canReceiveFocus()
}

// NearestFocusable returns id or its closest ancestor that can take focus.
func (m *Manager) NearestFocusable(id tree.NodeID) (tree.NodeID, bool) {
	for n := range m.arena.Ancestors(id) {
		if m.CanFocus(n) {
			return n, true
		}
	}
	return tree.NodeID{}, false
}

// Focus moves focus to id. It reports false when id cannot take focus.
func (m *Manager) Focus(id tree.NodeID) bool {
	if !m.CanFocus(id) {
		return false
	}
	m.set(id)
	return true
}

// Blur clears focus.
func (m *Manager) Blur() {
	m.set(tree.NodeID{})
}

func (m *Manager) set(id tree.NodeID) {
	old, _ := m.Focused()
	if old == id {
		return
	}
	m.focused = id
	if n := m.nodeOf(old); n != nil {
		n.hasFocus = false
		if n.OnFocusChange != nil {
			n.OnFocusChange(false)
		}
	}
	if n := m.nodeOf(id); n != nil {
		n.hasFocus = true
		if n.OnFocusChange != nil {
			n.OnFocusChange(true)
		}
	}
	if m.OnChange != nil {
		m.OnChange(old, id)
	}
}

func (m *Manager) order(root tree.NodeID) iter.Seq[tree.NodeID] {
	return func(yield func(tree.NodeID) bool) {
		for id := range m.arena.Descendants(root) {
			if m.nodeOf(id).traversable() && !yield(id) {
				return
			}
		}
	}
}

// Next moves focus to the next node in tab order under root, wrapping
// around. It reports whether focus moved.
func (m *Manager) Next(root tree.NodeID) bool {
	return m.step(root, 1)
}

// Prev moves focus to the previous node in tab order under root.
func (m *Manager) Prev(root tree.NodeID) bool {
	return m.step(root, -1)
}

func (m *Manager) step(root tree.NodeID, dir int) bool {
	var nodes []tree.NodeID
	for id := range m.order(root) {
		nodes = append(nodes, id)
	}
	if len(nodes) == 0 {
		return false
	}
	cur, ok := m.Focused()
	idx := -1
	if ok {
		for i, id := range nodes {
			if id == cur {
				idx = i
				break
			}
		}
	}
	var next int
	switch {
	case idx < 0 && dir > 0:
		next = 0
	case idx < 0:
		next = len(nodes) - 1
	default:
		next = (idx + dir + len(nodes)) % len(nodes)
	}
	if nodes[next] == cur {
		return false
	}
	m.set(nodes[next])
	return true
}
