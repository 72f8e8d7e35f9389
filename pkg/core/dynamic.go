package core

import (
	"fmt"
	"slices"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/tree"
)

// Dynamic is a region of the tree regenerated from Build whenever one of the
// states in On changes.
//
// Without Children, Build may yield any number of widgets and they replace
// the previous generation as siblings. With Children, Build must yield a
// single widget, which may only nest single-child nodes; the declared
// Children are kept across regenerations and re-parented under its leaf.
//
// Build runs lazily, the first time layout reaches the region after a change.
type Dynamic struct {
	Build    func() []Widget
	On       []state.Watchable
	Children []Widget
}

// Single adapts a one-widget generator to Dynamic.Build.
func Single(build func() Widget) func() []Widget {
	return func() []Widget {
		return []Widget{build()}
	}
}

// Inflate inserts the placeholder node and the declared children.
func (dw Dynamic) Inflate(t *Tree) tree.NodeID {
	d := &dynRender{tree: t, build: dw.Build, on: dw.On, inner: VoidRender{}, pending: true}
	id := t.Insert(d)
	for _, c := range dw.Children {
		if c != nil {
			t.Append(id, c)
		}
	}
	return id
}

type genKind int

const (
	genNone genKind = iota
	// genDepth: one chain of count single-child nodes above the declared children.
	genDepth
	// genSiblings: count sibling subtrees starting at the placeholder.
	genSiblings
)

// dynRender sits on the placeholder node and wraps the render of the
// current generation's head.
type dynRender struct {
	tree    *Tree
	build   func() []Widget
	on      []state.Watchable
	inner   layout.Render
	pending bool
	kind    genKind
	count   int
	hosts   []*hostEntry
}

func (d *dynRender) Inner() layout.Render { return d.inner }

func (d *dynRender) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	d.tree.sweepHosts(d)
	if d.pending {
		d.tree.regenerate(ctx.ID(), d)
	}
	return d.inner.PerformLayout(clamp, ctx)
}

func (d *dynRender) Paint(ctx *layout.PaintContext) {
	d.inner.Paint(ctx)
	if len(d.hosts) == 0 {
		return
	}
	// Hosted subtrees keep positions relative to the placeholder's parent.
	pos := ctx.Store().Position(ctx.ID())
	back := graphics.Offset{X: -pos.X, Y: -pos.Y}
	for _, h := range d.hosts {
		ctx.PaintSubtree(h.id, back)
	}
}

func (d *dynRender) OnlySizedByParent() bool {
	return d.inner.OnlySizedByParent()
}

func (d *dynRender) HitTest(ctx *layout.HitTestContext, local graphics.Offset) layout.HitTest {
	return d.inner.HitTest(ctx, local)
}

func (d *dynRender) releaseHosts() []tree.NodeID {
	ids := make([]tree.NodeID, 0, len(d.hosts))
	for _, h := range d.hosts {
		h.unsubscribe()
		ids = append(ids, h.id)
	}
	d.hosts = nil
	return ids
}

func structureError(sign tree.NodeID, format string, args ...any) *errors.TreeError {
	return &errors.TreeError{
		Op:   "core.Dynamic.regenerate",
		Kind: errors.KindStructure,
		Node: sign.String(),
		Err:  fmt.Errorf(format, args...),
	}
}

// regenerate replaces the current generation of the region at sign with a
// fresh one from its builder. sign keeps naming the region's head.
func (t *Tree) regenerate(sign tree.NodeID, d *dynRender) {
	d.pending = false
	t.regenerations++

	var widgets []Widget
	if d.build != nil {
		widgets = slices.DeleteFunc(d.build(), func(w Widget) bool { return w == nil })
	}
	if d.kind == genNone {
		d.count = 1
		if _, ok := t.arena.FirstChild(sign); ok {
			d.kind = genDepth
		} else {
			d.kind = genSiblings
		}
	}
	if d.kind == genDepth && len(widgets) > 1 {
		panic(structureError(sign, "region with declared children must generate one widget, got %d", len(widgets)))
	}

	heads := make([]tree.NodeID, 0, max(1, len(widgets)))
	for _, w := range widgets {
		heads = append(heads, w.Inflate(t))
	}
	if len(heads) == 0 {
		heads = append(heads, Void{}.Inflate(t))
	}
	old := t.oldHeads(sign, d)
	oldCount := len(old)

	// Put the previous head's own render back on sign while edges move.
	pos := t.store.Position(sign)
	outer := t.arena.MustGet(sign)
	_ = t.arena.Set(sign, d.inner)

	relabel := func(a, b tree.NodeID) {
		for _, ids := range [2][]tree.NodeID{heads, old} {
			for i, id := range ids {
				switch id {
				case a:
					ids[i] = b
				case b:
					ids[i] = a
				}
			}
		}
	}
	swap := func(a, b tree.NodeID) {
		t.swapIdentity(a, b)
		relabel(a, b)
	}

	pairs := t.reconcileKeys(old, heads)
	for _, p := range pairs {
		swap(old[p.old], heads[p.new])
	}
	if heads[0] != sign {
		swap(sign, heads[0])
	}
	keptNew := make(map[tree.NodeID]bool, len(pairs))
	keptOld := make(map[tree.NodeID]bool, len(pairs))
	for _, p := range pairs {
		keptNew[heads[p.new]] = true
		keptOld[old[p.old]] = true
	}

	switch d.kind {
	case genDepth:
		oh := old[0]
		chain := t.chain(oh, d.count)
		leaf, down := t.downToLeaf(sign)
		if len(chain) == d.count {
			for c := range t.arena.Children(chain[len(chain)-1]) {
				if err := t.arena.AppendChild(leaf, c); err != nil {
					panic(err)
				}
			}
		}
		if err := t.arena.InsertAfter(oh, sign); err != nil {
			panic(err)
		}
		for i, n := range chain {
			t.disposeNode(n, !(i == 0 && keptOld[oh]))
		}
		t.dropOld(sign, d, oh, keptOld[oh])
		d.count = down + 1
	case genSiblings:
		anchor := old[len(old)-1]
		for _, h := range heads {
			if err := t.arena.InsertAfter(anchor, h); err != nil {
				panic(err)
			}
			anchor = h
		}
		for _, o := range old {
			t.disposeSubtree(o, keptOld[o])
			t.dropOld(sign, d, o, keptOld[o])
		}
		d.count = len(heads)
		if len(heads) > 1 || oldCount > 1 {
			// Siblings other than sign are only reached through the parent.
			if parent, ok := t.arena.Parent(sign); ok {
				t.MarkDirty(parent)
			}
		}
	}

	t.store.SetPosition(sign, pos)
	d.inner = t.arena.MustGet(sign)
	_ = t.arena.Set(sign, outer)
	t.resubscribe(sign)

	for _, h := range heads {
		t.mountSubtree(h, keptNew[h])
		if keptNew[h] {
			t.fire(h, func(lc *Lifecycle) func(*LifecycleContext) { return lc.OnUpdated })
		}
	}

	if t.logger != nil {
		t.logger.Debug("regenerate",
			"sign", sign.String(),
			"old", oldCount,
			"new", len(heads),
			"kept", len(pairs),
			"hosted", len(d.hosts))
	}
}

func (t *Tree) oldHeads(sign tree.NodeID, d *dynRender) []tree.NodeID {
	if d.kind == genDepth {
		return []tree.NodeID{sign}
	}
	old := make([]tree.NodeID, 0, d.count)
	cur, ok := sign, true
	for i := 0; i < d.count && ok; i++ {
		old = append(old, cur)
		cur, ok = t.arena.NextSibling(cur)
	}
	return old
}

// chain returns id followed by its single-child descendants, at most n nodes.
func (t *Tree) chain(id tree.NodeID, n int) []tree.NodeID {
	out := []tree.NodeID{id}
	for len(out) < n {
		c, ok := t.arena.SingleChild(out[len(out)-1])
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func (t *Tree) downToLeaf(id tree.NodeID) (tree.NodeID, int) {
	leaf, depth := id, 0
	for {
		c, ok := t.arena.SingleChild(leaf)
		if !ok {
			return leaf, depth
		}
		leaf = c
		depth++
	}
}

// dropOld removes a subtree of the previous generation, or hosts it when it
// carries an active delay-drop condition.
func (t *Tree) dropOld(sign tree.NodeID, d *dynRender, id tree.NodeID, kept bool) {
	if !kept {
		if dd, ok := Query[*DelayDrop](t, id); ok && dd.While != nil && dd.While.Get() {
			t.host(sign, d, id, dd.While)
			return
		}
	}
	t.removeSubtree(id)
}
