package widgets

import (
	"fmt"
	"math"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// Axis represents the layout direction.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// String returns a human-readable representation of the axis.
func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// MainAxisAlignment controls how children are positioned along the main axis
// (horizontal for [Row], vertical for [Column]).
type MainAxisAlignment int

const (
	// MainAxisAlignmentStart places children at the start (left for Row, top for Column).
	MainAxisAlignmentStart MainAxisAlignment = iota
	// MainAxisAlignmentEnd places children at the end.
	MainAxisAlignmentEnd
	// MainAxisAlignmentCenter centers children along the main axis.
	MainAxisAlignmentCenter
	// MainAxisAlignmentSpaceBetween distributes free space evenly between children.
	MainAxisAlignmentSpaceBetween
)

// CrossAxisAlignment controls how children are positioned along the cross axis.
type CrossAxisAlignment int

const (
	CrossAxisAlignmentStart CrossAxisAlignment = iota
	CrossAxisAlignmentEnd
	CrossAxisAlignmentCenter
	// CrossAxisAlignmentStretch forces children to fill the cross axis.
	CrossAxisAlignmentStretch
)

// MainAxisSize controls how much main-axis space a flex takes.
type MainAxisSize int

const (
	// MainAxisSizeMax takes all the space the clamp allows, when bounded.
	MainAxisSizeMax MainAxisSize = iota
	// MainAxisSizeMin shrinks to the children.
	MainAxisSizeMin
)

// Flex lays its children out in a line along Direction.
type Flex struct {
	Direction          Axis
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
	Children           []core.Widget
}

// Row returns a horizontal flex.
func Row(children ...core.Widget) Flex {
	return Flex{Direction: AxisHorizontal, Children: children}
}

// Column returns a vertical flex.
func Column(children ...core.Widget) Flex {
	return Flex{Direction: AxisVertical, Children: children}
}

// Inflate lowers the flex and its children.
func (f Flex) Inflate(t *core.Tree) tree.NodeID {
	return core.RenderWidget{
		Render: &renderFlex{
			direction: f.Direction,
			main:      f.MainAxisAlignment,
			cross:     f.CrossAxisAlignment,
			size:      f.MainAxisSize,
		},
		Children: f.Children,
	}.Inflate(t)
}

// Expanded makes a flex child share the free main-axis space by Flex weight.
type Expanded struct {
	Flex  int
	Child core.Widget
}

type flexData struct {
	flex int
}

// Inflate lowers the child and tags it with its flex weight.
func (e Expanded) Inflate(t *core.Tree) tree.NodeID {
	return core.Attach{Child: e.Child, Data: &flexData{flex: max(e.Flex, 1)}}.Inflate(t)
}

type renderFlex struct {
	layout.BoxBase
	direction Axis
	main      MainAxisAlignment
	cross     CrossAxisAlignment
	size      MainAxisSize
}

// split returns (main, cross) components of s.
func (r *renderFlex) split(s graphics.Size) (float64, float64) {
	if r.direction == AxisHorizontal {
		return s.Width, s.Height
	}
	return s.Height, s.Width
}

func (r *renderFlex) join(main, cross float64) graphics.Size {
	if r.direction == AxisHorizontal {
		return graphics.Size{Width: main, Height: cross}
	}
	return graphics.Size{Width: cross, Height: main}
}

func (r *renderFlex) offset(main, cross float64) graphics.Offset {
	if r.direction == AxisHorizontal {
		return graphics.Offset{X: main, Y: cross}
	}
	return graphics.Offset{X: cross, Y: main}
}

func (r *renderFlex) childClamp(minMain, maxMain, maxCross float64) layout.BoxClamp {
	minCross := 0.0
	if r.cross == CrossAxisAlignmentStretch && !math.IsInf(maxCross, 0) {
		minCross = maxCross
	}
	return layout.BoxClamp{Min: r.join(minMain, minCross), Max: r.join(maxMain, maxCross)}
}

func (r *renderFlex) PerformLayout(clamp layout.BoxClamp, ctx *layout.Context) graphics.Size {
	maxMain, maxCross := r.split(clamp.Max)
	_, minCross := r.split(clamp.Min)

	var (
		children  []tree.NodeID
		sizes     = map[tree.NodeID]graphics.Size{}
		flexes    = map[tree.NodeID]int{}
		totalFlex int
		used      float64
		cross     = minCross
	)
	for child := range ctx.Children() {
		children = append(children, child)
		if fd, ok := layout.QueryFirst[*flexData](ctx.Arena().MustGet(child)); ok {
			flexes[child] = fd.flex
			totalFlex += fd.flex
			continue
		}
		s := ctx.PerformChildLayout(child, r.childClamp(0, math.Inf(1), maxCross))
		sizes[child] = s
		m, c := r.split(s)
		used += m
		cross = max(cross, c)
	}

	free := 0.0
	if totalFlex > 0 && !math.IsInf(maxMain, 0) {
		free = max(0, maxMain-used)
	}
	for _, child := range children {
		f, ok := flexes[child]
		if !ok {
			continue
		}
		share := free * float64(f) / float64(totalFlex)
		s := ctx.PerformChildLayout(child, r.childClamp(share, share, maxCross))
		sizes[child] = s
		m, c := r.split(s)
		used += m
		cross = max(cross, c)
	}

	mainSize := used
	if r.size == MainAxisSizeMax && !math.IsInf(maxMain, 0) {
		mainSize = maxMain
	}
	size := clamp.Clamp(r.join(mainSize, cross))
	mainSize, cross = r.split(size)

	leading, between := 0.0, 0.0
	remaining := max(0, mainSize-used)
	switch r.main {
	case MainAxisAlignmentEnd:
		leading = remaining
	case MainAxisAlignmentCenter:
		leading = remaining / 2
	case MainAxisAlignmentSpaceBetween:
		if len(children) > 1 {
			between = remaining / float64(len(children)-1)
		}
	}

	pos := leading
	for _, child := range children {
		m, c := r.split(sizes[child])
		var crossPos float64
		switch r.cross {
		case CrossAxisAlignmentEnd:
			crossPos = cross - c
		case CrossAxisAlignmentCenter:
			crossPos = (cross - c) / 2
		}
		ctx.UpdatePosition(child, r.offset(pos, crossPos))
		pos += m + between
	}
	return size
}
