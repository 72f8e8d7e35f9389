package core

import (
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/tree"
)

// LifecycleContext is passed to lifecycle callbacks.
type LifecycleContext struct {
	Tree *Tree
	ID   tree.NodeID
}

// Lifecycle holds optional callbacks for a node.
type Lifecycle struct {
	// OnMounted runs when the node joins the live tree.
	OnMounted func(ctx *LifecycleContext)
	// OnDisposed runs when the node leaves the live tree.
	OnDisposed func(ctx *LifecycleContext)
	// OnUpdated runs when a regeneration keeps the node through a key match.
	OnUpdated func(ctx *LifecycleContext)
	// OnPerformedLayout runs after a layout pass that laid the node out.
	OnPerformedLayout func(ctx *LifecycleContext)
}

// WithLifecycle attaches lc to child.
func WithLifecycle(child Widget, lc *Lifecycle) Widget {
	return Attach{Child: child, Data: lc}
}

// WatchData lists the states a node depends on.
type WatchData struct {
	States []state.Watchable
}

// Watch marks child dirty whenever one of states changes in a way the tree
// must react to.
func Watch(child Widget, states ...state.Watchable) Widget {
	return Attach{Child: child, Data: &WatchData{States: states}}
}

func (t *Tree) fire(id tree.NodeID, pick func(*Lifecycle) func(*LifecycleContext)) {
	r, err := t.arena.Get(id)
	if err != nil {
		return
	}
	layout.QueryEach(r, func(lc *Lifecycle) bool {
		if fn := pick(lc); fn != nil {
			fn(&LifecycleContext{Tree: t, ID: id})
		}
		return true
	})
}

func (t *Tree) firePerformedLayout(id tree.NodeID) {
	t.fire(id, func(lc *Lifecycle) func(*LifecycleContext) { return lc.OnPerformedLayout })
}

// subscribe registers the state watches carried by id's payload.
func (t *Tree) subscribe(id tree.NodeID) []*state.Subscription {
	r, err := t.arena.Get(id)
	if err != nil {
		return nil
	}
	var subs []*state.Subscription
	layout.QueryEach(r, func(w *WatchData) bool {
		for _, s := range w.States {
			subs = append(subs, s.Subscribe(func(scope state.ModifyScope) {
				if scope.Intersects(state.ScopeFramework) {
					t.MarkDirty(id)
				}
			}))
		}
		return true
	})
	layout.QueryEach(r, func(d *dynRender) bool {
		for _, s := range d.on {
			subs = append(subs, s.Subscribe(func(scope state.ModifyScope) {
				if scope.Intersects(state.ScopeFramework) {
					d.pending = true
					t.MarkDirty(id)
				}
			}))
		}
		return true
	})
	return subs
}

// resubscribe refreshes the subscriptions of a mounted node so that they
// follow its current payload and id.
func (t *Tree) resubscribe(id tree.NodeID) {
	ns, ok := t.nodes[id]
	if !ok || !ns.mounted {
		return
	}
	ns.unsubscribe()
	ns.subs = t.subscribe(id)
}

func (t *Tree) mountNode(id tree.NodeID, notify bool) {
	ns := t.state(id)
	if ns.mounted {
		return
	}
	ns.mounted = true
	ns.subs = t.subscribe(id)
	if notify {
		t.fire(id, func(lc *Lifecycle) func(*LifecycleContext) { return lc.OnMounted })
	}
}

func (t *Tree) disposeNode(id tree.NodeID, notify bool) {
	ns, ok := t.nodes[id]
	if !ok || !ns.mounted {
		return
	}
	ns.mounted = false
	ns.unsubscribe()
	if notify {
		t.fire(id, func(lc *Lifecycle) func(*LifecycleContext) { return lc.OnDisposed })
	}
}

// mountSubtree mounts every unmounted node under id. With skipHead, id
// itself is mounted without OnMounted.
func (t *Tree) mountSubtree(id tree.NodeID, skipHead bool) {
	for n := range t.arena.Descendants(id) {
		t.mountNode(n, !(skipHead && n == id))
	}
}

// disposeSubtree disposes every mounted node under id. With skipHead, id
// itself is unsubscribed without OnDisposed.
func (t *Tree) disposeSubtree(id tree.NodeID, skipHead bool) {
	for n := range t.arena.Descendants(id) {
		t.disposeNode(n, !(skipHead && n == id))
	}
}
