// Package layout holds the layout side of the retained tree: constraints,
// the per-node layout store, the dirty set and the incremental layout engine.
package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/arbor/pkg/graphics"
)

// BoxClamp bounds the size a node may take.
type BoxClamp struct {
	Min graphics.Size
	Max graphics.Size
}

// Tight returns a clamp that only admits size.
func Tight(size graphics.Size) BoxClamp {
	return BoxClamp{Min: size, Max: size}
}

// Loose returns a clamp from zero up to max.
func Loose(max graphics.Size) BoxClamp {
	return BoxClamp{Max: max}
}

// Unbounded returns a clamp with no upper bound.
func Unbounded() BoxClamp {
	return BoxClamp{Max: graphics.Infinite}
}

// Clamp returns size constrained to the clamp.
func (c BoxClamp) Clamp(size graphics.Size) graphics.Size {
	return graphics.Size{
		Width:  clampFloat(size.Width, c.Min.Width, c.Max.Width),
		Height: clampFloat(size.Height, c.Min.Height, c.Max.Height),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// IsTight reports whether the clamp admits exactly one size.
func (c BoxClamp) IsTight() bool {
	return c.Min == c.Max
}

// Loosen drops the minimum.
func (c BoxClamp) Loosen() BoxClamp {
	return BoxClamp{Max: c.Max}
}

// Shrink reduces both bounds by the given amounts, never below zero.
func (c BoxClamp) Shrink(dw, dh float64) BoxClamp {
	return BoxClamp{
		Min: graphics.Size{Width: math.Max(0, c.Min.Width-dw), Height: math.Max(0, c.Min.Height-dh)},
		Max: graphics.Size{Width: math.Max(0, c.Max.Width-dw), Height: math.Max(0, c.Max.Height-dh)},
	}
}

func (c BoxClamp) String() string {
	return fmt.Sprintf("BoxClamp(%gx%g..%gx%g)", c.Min.Width, c.Min.Height, c.Max.Width, c.Max.Height)
}
