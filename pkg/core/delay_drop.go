package core

import (
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/tree"
)

// DelayDrop keeps a node painted after a regeneration removed it, for as
// long as While holds true.
type DelayDrop struct {
	While *state.Stateful[bool]
}

// WithDelayDrop attaches a delay-drop condition to child.
func WithDelayDrop(child Widget, while *state.Stateful[bool]) Widget {
	return Attach{Child: child, Data: &DelayDrop{While: while}}
}

type hostEntry struct {
	id   tree.NodeID
	hold *state.Stateful[bool]
	subs []*state.Subscription
}

func (h *hostEntry) unsubscribe() {
	for _, s := range h.subs {
		s.Unsubscribe()
	}
	h.subs = nil
}

// host detaches id and keeps it painted by the dynamic region at sign until
// hold turns false.
func (t *Tree) host(sign tree.NodeID, d *dynRender, id tree.NodeID, hold *state.Stateful[bool]) {
	_ = t.arena.Detach(id)
	// Detached roots are laid out on their own; paint skips unsized nodes.
	t.MarkDirty(id)
	e := &hostEntry{id: id, hold: hold}
	e.subs = append(e.subs, hold.Subscribe(func(scope state.ModifyScope) {
		if scope.Intersects(state.ScopeFramework) && !hold.Get() {
			t.MarkDirty(sign)
		}
	}))
	// Hosted nodes still relayout on their own state changes.
	for n := range t.arena.Descendants(id) {
		r := t.arena.MustGet(n)
		layout.QueryEach(r, func(w *WatchData) bool {
			for _, s := range w.States {
				e.subs = append(e.subs, s.Subscribe(func(scope state.ModifyScope) {
					if scope.Intersects(state.ScopeFramework) {
						t.MarkDirty(n)
					}
				}))
			}
			return true
		})
	}
	d.hosts = append(d.hosts, e)
	if t.logger != nil {
		t.logger.Debug("delay drop", "sign", sign.String(), "node", id.String())
	}
}

// sweepHosts removes hosted subtrees whose hold was released.
func (t *Tree) sweepHosts(d *dynRender) {
	if len(d.hosts) == 0 {
		return
	}
	kept := d.hosts[:0]
	for _, h := range d.hosts {
		switch {
		case !t.arena.Contains(h.id):
			h.unsubscribe()
		case !h.hold.Get():
			h.unsubscribe()
			t.removeSubtree(h.id)
			if t.logger != nil {
				t.logger.Debug("drop hosted", "node", h.id.String())
			}
		default:
			kept = append(kept, h)
		}
	}
	clear(d.hosts[len(kept):])
	d.hosts = kept
}

// Hosted returns the subtrees kept alive by the dynamic region at id.
func (t *Tree) Hosted(id tree.NodeID) []tree.NodeID {
	d, ok := Query[*dynRender](t, id)
	if !ok {
		return nil
	}
	out := make([]tree.NodeID, 0, len(d.hosts))
	for _, h := range d.hosts {
		out = append(out, h.id)
	}
	return out
}

func (t *Tree) hostedCount() int {
	n := 0
	for id := range t.nodes {
		r, err := t.arena.Get(id)
		if err != nil {
			continue
		}
		layout.QueryEach(r, func(d *dynRender) bool {
			n += len(d.hosts)
			return true
		})
	}
	return n
}
