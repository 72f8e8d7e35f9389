// Package widgets provides the basic node kinds built on the tree core:
// sizing, padding, alignment, flex and stack layout, fills and text.
//
// Every widget here lowers to one render node plus its children:
//
//	widgets.Column(
//		widgets.Padding{Padding: widgets.EdgeInsetsAll(8), Child: widgets.Text{Content: "hello"}},
//		widgets.Expanded{Flex: 1, Child: widgets.Fill{Color: graphics.ColorBlue}},
//	)
package widgets

import "github.com/go-drift/arbor/pkg/core"

// Void takes the smallest size allowed and draws nothing.
type Void = core.Void
