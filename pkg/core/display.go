package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// DisplayTree renders the subtree at id as indented text, one node per line,
// with the render type, size and position of each node.
func (t *Tree) DisplayTree(id tree.NodeID) string {
	var sb strings.Builder
	t.display(&sb, id, 0)
	return sb.String()
}

func (t *Tree) display(sb *strings.Builder, id tree.NodeID, depth int) {
	r, err := t.arena.Get(id)
	if err != nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "%s %s", id, renderName(r))
	if info, ok := t.store.Info(id); ok {
		if info.Sized {
			fmt.Fprintf(sb, " size=%gx%g", info.Size.Width, info.Size.Height)
		}
		if info.Position.X != 0 || info.Position.Y != 0 {
			fmt.Fprintf(sb, " pos=%g,%g", info.Position.X, info.Position.Y)
		}
	}
	if hosted := t.Hosted(id); len(hosted) > 0 {
		fmt.Fprintf(sb, " hosted=%d", len(hosted))
	}
	sb.WriteByte('\n')
	for c := range t.arena.Children(id) {
		t.display(sb, c, depth+1)
	}
}

func renderName(r layout.Render) string {
	var names []string
	for r != nil {
		switch v := r.(type) {
		case *dynRender:
			names = append(names, "Dynamic")
		case *layout.DataRender:
			names = append(names, typeName(v.Data))
		default:
			names = append(names, typeName(v))
		}
		w, ok := r.(layout.Wrapper)
		if !ok {
			break
		}
		r = w.Inner()
	}
	return strings.Join(names, "/")
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "nil"
	}
	return t.Name()
}
