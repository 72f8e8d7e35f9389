package layout

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/tree"
)

// DefaultMaxPasses bounds the number of batches one Layout call may run.
const DefaultMaxPasses = 64

// Stats counts layout work since the engine was created.
type Stats struct {
	// Passes is the number of batches drained.
	Passes int
	// Roots is the number of relayout roots laid out.
	Roots int
	// LaidOut is the number of PerformLayout calls.
	LaidOut int
	// MemoHits is the number of child layouts answered from the cache.
	MemoHits int
}

// Engine recomputes layout for the nodes in a DirtySet.
//
// A pass drains the dirty set, promotes every dirty node to its relayout
// root, lays the roots out parents first and repeats until no node is dirty.
type Engine struct {
	arena *tree.Arena[Render]
	store *Store
	dirty *DirtySet

	// MaxPasses bounds the batches per Layout call. Zero uses DefaultMaxPasses.
	MaxPasses int
	// Performed, if set, is called after a successful Layout for every node
	// that ran PerformLayout and is still live, in layout order.
	Performed func(id tree.NodeID)
	// Logger receives debug records. Nil disables logging.
	Logger *slog.Logger

	stats     Stats
	current   tree.NodeID
	performed []tree.NodeID
}

// NewEngine returns an engine over the given tree state.
func NewEngine(arena *Arena, store *Store, dirty *DirtySet) *Engine {
	return &Engine{arena: arena, store: store, dirty: dirty}
}

// Stats returns the accumulated counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

type pending struct {
	id    tree.NodeID
	depth int
}

// Layout runs passes until the dirty set is empty. Roots without a recorded
// clamp are laid out loosely within window.
//
// A panic raised by a Render aborts the pass. It is reported to the global
// error handler and returned as a *errors.TreeError naming the node that was
// being laid out.
func (e *Engine) Layout(window graphics.Size) (err error) {
	e.performed = e.performed[:0]
	defer func() {
		if r := recover(); r != nil {
			te := errors.FromPanic("layout.Engine.Layout", errors.KindLayout, e.current.String(), r)
			errors.Report(te)
			err = te
		}
		e.current = tree.NodeID{}
	}()

	maxPasses := e.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	passes := 0
	for e.dirty.Len() > 0 {
		if passes >= maxPasses {
			te := &errors.TreeError{
				Op:   "layout.Engine.Layout",
				Kind: errors.KindLayout,
				Err:  fmt.Errorf("layout did not settle after %d passes", passes),
			}
			errors.Report(te)
			return te
		}
		passes++
		e.stats.Passes++
		e.runPass(window)
	}

	if e.Performed != nil {
		for _, id := range e.performed {
			if e.arena.Contains(id) {
				e.Performed(id)
			}
		}
	}
	return nil
}

func (e *Engine) runPass(window graphics.Size) {
	batch := e.dirty.Drain()
	roots := make([]pending, 0, len(batch))
	for _, id := range batch {
		if !e.arena.Contains(id) {
			continue
		}
		root := e.promote(id)
		roots = append(roots, pending{id: root, depth: e.arena.Depth(root)})
	}
	slices.SortStableFunc(roots, func(a, b pending) int {
		return cmp.Compare(a.depth, b.depth)
	})
	roots = slices.CompactFunc(roots, func(a, b pending) bool { return a.id == b.id })

	if e.Logger != nil {
		e.Logger.Debug("layout pass", slog.Int("dirty", len(batch)), slog.Int("roots", len(roots)))
	}
	for _, r := range roots {
		// An earlier root may have laid this one out already, or removed it.
		if !e.arena.Contains(r.id) || e.store.IsSized(r.id) {
			continue
		}
		clamp, ok := e.store.Clamp(r.id)
		if !ok {
			clamp = Loose(window)
		}
		e.stats.Roots++
		e.layoutNode(r.id, clamp)
	}
}

// promote invalidates id and every ancestor whose size depends on it and
// returns the highest such ancestor. The walk stops below an ancestor that is
// only sized by its parent or has never been laid out.
//
// Stopping there never re-runs the ancestor's PerformLayout, so child
// offsets it derived from child sizes go stale. A render that positions
// children by their size must not report OnlySizedByParent.
func (e *Engine) promote(id tree.NodeID) tree.NodeID {
	e.store.InvalidateSize(id)
	root := id
	first := true
	for p := range e.arena.Ancestors(id) {
		if first {
			first = false
			continue
		}
		if !e.store.IsSized(p) || e.arena.MustGet(p).OnlySizedByParent() {
			break
		}
		e.store.InvalidateSize(p)
		root = p
	}
	return root
}

func (e *Engine) layoutNode(id tree.NodeID, clamp BoxClamp) graphics.Size {
	if info, ok := e.store.infos[id]; ok && info.Sized && info.HasClamp && info.Clamp == clamp {
		e.stats.MemoHits++
		return info.Size
	}
	r := e.arena.MustGet(id)

	prev := e.current
	e.current = id
	size := clamp.Clamp(r.PerformLayout(clamp, &Context{id: id, eng: e}))
	e.current = prev

	e.store.record(id, clamp, size)
	e.stats.LaidOut++
	e.performed = append(e.performed, id)
	return size
}
