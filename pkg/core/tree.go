package core

import (
	"log/slog"

	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/tree"
)

// Options configures a Tree.
type Options struct {
	// Logger receives debug records. Nil disables logging.
	Logger *slog.Logger
	// MaxPasses bounds the layout batches per Layout call.
	MaxPasses int
}

// Stats counts tree work since creation.
type Stats struct {
	Layout        layout.Stats
	Regenerations int
	Hosted        int
}

type nodeState struct {
	mounted bool
	subs    []*state.Subscription
}

func (ns *nodeState) unsubscribe() {
	for _, s := range ns.subs {
		s.Unsubscribe()
	}
	ns.subs = nil
}

// Tree is a retained UI tree: the arena, its layout records, the dirty set
// and the bookkeeping that ties nodes to state.
//
// Tree is single-threaded. All methods must be called from the goroutine
// that drives frames.
type Tree struct {
	arena  *layout.Arena
	store  *layout.Store
	dirty  *layout.DirtySet
	engine *layout.Engine
	logger *slog.Logger

	root   tree.NodeID
	window graphics.Size
	nodes  map[tree.NodeID]*nodeState

	regenerations int
}

// New returns an empty tree.
func New(opts Options) *Tree {
	t := &Tree{
		arena:  tree.NewArena[layout.Render](),
		store:  layout.NewStore(),
		dirty:  layout.NewDirtySet(),
		logger: opts.Logger,
		nodes:  make(map[tree.NodeID]*nodeState),
	}
	t.engine = layout.NewEngine(t.arena, t.store, t.dirty)
	t.engine.MaxPasses = opts.MaxPasses
	t.engine.Logger = opts.Logger
	t.engine.Performed = t.firePerformedLayout
	return t
}

// Arena returns the node arena.
func (t *Tree) Arena() *layout.Arena { return t.arena }

// Store returns the layout store.
func (t *Tree) Store() *layout.Store { return t.store }

// Root returns the root node, or the zero id when the tree is empty.
func (t *Tree) Root() tree.NodeID { return t.root }

// Window returns the window size of the last layout.
func (t *Tree) Window() graphics.Size { return t.window }

// Stats returns the accumulated counters.
func (t *Tree) Stats() Stats {
	return Stats{Layout: t.engine.Stats(), Regenerations: t.regenerations, Hosted: t.hostedCount()}
}

// Count returns the number of live nodes, including detached ones.
func (t *Tree) Count() int {
	return t.arena.Len()
}

// Insert adds a detached node. Widgets use it while lowering themselves.
func (t *Tree) Insert(r layout.Render) tree.NodeID {
	id := t.arena.Insert(r)
	t.nodes[id] = &nodeState{}
	return id
}

// Append lowers w and appends it under parent.
func (t *Tree) Append(parent tree.NodeID, w Widget) tree.NodeID {
	child := w.Inflate(t)
	if err := t.arena.AppendChild(parent, child); err != nil {
		panic(err)
	}
	return child
}

// SetRoot replaces the whole tree with w.
func (t *Tree) SetRoot(w Widget) tree.NodeID {
	if !t.root.IsZero() && t.arena.Contains(t.root) {
		t.disposeSubtree(t.root, false)
		t.removeSubtree(t.root)
	}
	t.root = w.Inflate(t)
	t.mountSubtree(t.root, false)
	t.MarkDirty(t.root)
	return t.root
}

// MarkDirty schedules id for layout.
func (t *Tree) MarkDirty(id tree.NodeID) {
	if t.arena.Contains(id) {
		t.dirty.Mark(id)
	}
}

// IsDirty reports whether any node awaits layout.
func (t *Tree) IsDirty() bool {
	return t.dirty.Len() > 0
}

// DirtyCount returns the number of nodes awaiting layout.
func (t *Tree) DirtyCount() int {
	return t.dirty.Len()
}

// IsMounted reports whether id is live and mounted.
func (t *Tree) IsMounted(id tree.NodeID) bool {
	ns, ok := t.nodes[id]
	return ok && ns.mounted && t.arena.Contains(id)
}

// Layout brings every dirty node up to date. A window change re-lays the
// whole tree out from the root.
func (t *Tree) Layout(window graphics.Size) error {
	if t.root.IsZero() {
		return nil
	}
	if window != t.window {
		t.window = window
		t.store.ForgetClamp(t.root)
		t.MarkDirty(t.root)
	}
	return t.engine.Layout(window)
}

// Paint paints the tree onto canvas.
func (t *Tree) Paint(canvas graphics.Canvas) {
	if t.root.IsZero() {
		return
	}
	layout.Paint(t.arena, t.store, t.root, canvas)
}

// Detach unlinks id from its parent, keeping the subtree alive and mounted.
// Detaching the root leaves the tree without one.
func (t *Tree) Detach(id tree.NodeID) error {
	parent, hasParent := t.arena.Parent(id)
	if err := t.arena.Detach(id); err != nil {
		return err
	}
	if id == t.root {
		t.root = tree.NodeID{}
	}
	if hasParent {
		t.MarkDirty(parent)
	}
	return nil
}

// RemoveSubtree disposes and removes id with its descendants.
func (t *Tree) RemoveSubtree(id tree.NodeID) error {
	if !t.arena.Contains(id) {
		_, err := t.arena.Get(id)
		return err
	}
	if parent, ok := t.arena.Parent(id); ok {
		t.MarkDirty(parent)
	}
	t.disposeSubtree(id, false)
	t.removeSubtree(id)
	if id == t.root {
		t.root = tree.NodeID{}
	}
	return nil
}

// removeSubtree frees id and its descendants, along with any subtrees they
// host for delayed dropping.
func (t *Tree) removeSubtree(id tree.NodeID) {
	var hosted []tree.NodeID
	_ = t.arena.RemoveSubtree(id, func(n tree.NodeID, r layout.Render) {
		if ns, ok := t.nodes[n]; ok {
			ns.unsubscribe()
			delete(t.nodes, n)
		}
		t.store.Remove(n)
		layout.QueryEach(r, func(d *dynRender) bool {
			hosted = append(hosted, d.releaseHosts()...)
			return true
		})
	})
	for _, h := range hosted {
		if t.arena.Contains(h) {
			t.removeSubtree(h)
		}
	}
}

// swapIdentity exchanges the identities of a and b, together with their
// layout records and subscriptions.
func (t *Tree) swapIdentity(a, b tree.NodeID) {
	if err := t.arena.Swap(a, b); err != nil {
		panic(err)
	}
	t.store.Swap(a, b)
	t.nodes[a], t.nodes[b] = t.nodes[b], t.nodes[a]
	t.resubscribe(a)
	t.resubscribe(b)
}

func (t *Tree) state(id tree.NodeID) *nodeState {
	ns, ok := t.nodes[id]
	if !ok {
		ns = &nodeState{}
		t.nodes[id] = ns
	}
	return ns
}

// Query returns the outermost attachment of type T on id.
func Query[T any](t *Tree, id tree.NodeID) (T, bool) {
	r, err := t.arena.Get(id)
	if err != nil {
		var zero T
		return zero, false
	}
	return layout.QueryFirst[T](r)
}
