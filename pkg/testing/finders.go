package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Finder locates nodes in a mounted tree.
type Finder interface {
	// Evaluate returns the matching nodes in pre-order.
	Evaluate(t *core.Tree) []tree.NodeID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult holds the outcome of a Find call.
type FinderResult struct {
	finder Finder
	nodes  []tree.NodeID
}

// Find evaluates f against the mounted tree.
func (w *TestWindow) Find(f Finder) FinderResult {
	return FinderResult{finder: f, nodes: f.Evaluate(w.Tree())}
}

// First returns the first match or an error naming the finder.
func (r FinderResult) First() (tree.NodeID, error) {
	if len(r.nodes) == 0 {
		return tree.NodeID{}, fmt.Errorf("no node found matching %s", r.finder.Description())
	}
	return r.nodes[0], nil
}

// At returns the i-th match.
func (r FinderResult) At(i int) (tree.NodeID, error) {
	if i < 0 || i >= len(r.nodes) {
		return tree.NodeID{}, fmt.Errorf("index %d out of range for %s (%d matches)", i, r.finder.Description(), len(r.nodes))
	}
	return r.nodes[i], nil
}

// All returns every match.
func (r FinderResult) All() []tree.NodeID { return r.nodes }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.nodes) }

// Exists reports whether anything matched.
func (r FinderResult) Exists() bool { return len(r.nodes) > 0 }

type predicateFinder struct {
	desc  string
	match func(t *core.Tree, id tree.NodeID, r layout.Render) bool
}

func (f predicateFinder) Evaluate(t *core.Tree) []tree.NodeID {
	root := t.Root()
	if root.IsZero() {
		return nil
	}
	var out []tree.NodeID
	for id := range t.Arena().Descendants(root) {
		r, err := t.Arena().Get(id)
		if err != nil {
			continue
		}
		if f.match(t, id, r) {
			out = append(out, id)
		}
	}
	return out
}

func (f predicateFinder) Description() string { return f.desc }

// ByType finds nodes carrying a value of type T, either as their render or
// as attached data.
func ByType[T any]() Finder {
	name := reflect.TypeFor[T]().String()
	return predicateFinder{
		desc: "ByType(" + name + ")",
		match: func(_ *core.Tree, _ tree.NodeID, r layout.Render) bool {
			_, ok := layout.QueryFirst[T](r)
			return ok
		},
	}
}

// ByKey finds nodes whose outermost key has the given identity.
func ByKey(identity any) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("ByKey(%v)", identity),
		match: func(t *core.Tree, id tree.NodeID, _ layout.Render) bool {
			k, ok := core.KeyOf(t, id)
			return ok && k.Identity() == identity
		},
	}
}

type textContent interface {
	Text() string
}

// ByText finds text nodes whose content equals text.
func ByText(text string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("ByText(%q)", text),
		match: func(_ *core.Tree, _ tree.NodeID, r layout.Render) bool {
			tc, ok := layout.Unwrap(r).(textContent)
			return ok && tc.Text() == text
		},
	}
}

// ByTextContaining finds text nodes whose content contains substr.
func ByTextContaining(substr string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("ByTextContaining(%q)", substr),
		match: func(_ *core.Tree, _ tree.NodeID, r layout.Render) bool {
			tc, ok := layout.Unwrap(r).(textContent)
			return ok && strings.Contains(tc.Text(), substr)
		},
	}
}

// ByPredicate finds nodes for which fn returns true.
func ByPredicate(desc string, fn func(t *core.Tree, id tree.NodeID) bool) Finder {
	return predicateFinder{
		desc: "ByPredicate(" + desc + ")",
		match: func(t *core.Tree, id tree.NodeID, _ layout.Render) bool {
			return fn(t, id)
		},
	}
}
