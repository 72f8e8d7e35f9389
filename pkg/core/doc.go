// Package core owns the retained tree: node lowering, lifecycle, state
// subscriptions and the reconciliation of dynamically generated regions.
//
// # Widgets
//
// A Widget is a description that lowers itself into arena nodes:
//
//	root := core.RenderWidget{
//	    Render:   &widgets.FlexRender{Axis: widgets.Vertical},
//	    Children: []core.Widget{header, body},
//	}
//	t := core.New(core.Options{})
//	t.SetRoot(root)
//	t.Layout(graphics.Size{Width: 800, Height: 600})
//
// # Attachments
//
// Behavior is attached to a node by wrapping its payload rather than by
// subclassing. Lifecycle callbacks, identity keys, delay-drop conditions,
// event listeners and state watches are all attachments:
//
//	core.WithLifecycle(child, &core.Lifecycle{OnMounted: onMounted})
//	core.WithKey(child, core.NewKey("row-3", row))
//	core.Watch(child, counter)
//
// # Dynamic regions
//
// Dynamic regenerates part of the tree when a watched state changes. The
// region is rebuilt lazily, the next time layout reaches it:
//
//	core.Dynamic{
//	    On: []state.Watchable{items},
//	    Build: func() []core.Widget {
//	        return rows(items.Get())
//	    },
//	}
//
// The placeholder node keeps its NodeID across regenerations. Keyed children
// are matched against the previous generation and keep their ids.
package core
