package widgets

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// TextLayout is the result of measuring a string.
type TextLayout struct {
	Lines      []string
	LineHeight float64
	Size       graphics.Size
}

// TextMeasurer breaks text into lines no wider than maxWidth, where possible,
// and measures the result. Implementations must be synchronous.
type TextMeasurer interface {
	Measure(text string, maxWidth float64) TextLayout
}

// FontMeasurer measures text with a font face.
type FontMeasurer struct {
	Face font.Face
}

// DefaultMeasurer uses the 7x13 bitmap face.
var DefaultMeasurer TextMeasurer = &FontMeasurer{Face: basicfont.Face7x13}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func (m *FontMeasurer) width(s string) float64 {
	return fixedToFloat(font.MeasureString(m.Face, s))
}

// Measure wraps at word boundaries. A word wider than maxWidth gets a line
// of its own.
func (m *FontMeasurer) Measure(text string, maxWidth float64) TextLayout {
	out := TextLayout{LineHeight: fixedToFloat(m.Face.Metrics().Height)}
	for _, para := range strings.Split(text, "\n") {
		if math.IsInf(maxWidth, 1) || m.width(para) <= maxWidth {
			out.Lines = append(out.Lines, para)
			continue
		}
		line := ""
		for _, word := range strings.Fields(para) {
			next := word
			if line != "" {
				next = line + " " + word
			}
			if line != "" && m.width(next) > maxWidth {
				out.Lines = append(out.Lines, line)
				next = word
			}
			line = next
		}
		out.Lines = append(out.Lines, line)
	}
	for _, l := range out.Lines {
		out.Size.Width = max(out.Size.Width, m.width(l))
	}
	out.Size.Height = out.LineHeight * float64(len(out.Lines))
	return out
}

// Text displays a string with a single color.
//
//   - Wrap=false (default): each line of Content renders on one line and may
//     overflow the clamp.
//   - Wrap=true: lines wrap at the clamp's maximum width.
//   - MaxLines limits the visible lines. Zero means no limit.
type Text struct {
	Content  string
	Color    graphics.Color
	Wrap     bool
	MaxLines int
	// Measurer defaults to DefaultMeasurer.
	Measurer TextMeasurer
}

// Inflate lowers the text into a leaf node.
func (t Text) Inflate(tr *core.Tree) tree.NodeID {
	m := t.Measurer
	if m == nil {
		m = DefaultMeasurer
	}
	color := t.Color
	if color == 0 {
		color = graphics.ColorBlack
	}
	return tr.Insert(&renderText{content: t.Content, color: color, wrap: t.Wrap, maxLines: t.MaxLines, measurer: m})
}

type renderText struct {
	layout.BoxBase
	content  string
	color    graphics.Color
	wrap     bool
	maxLines int
	measurer TextMeasurer

	lines      []string
	lineHeight float64
}

func (r *renderText) PerformLayout(clamp layout.BoxClamp, _ *layout.Context) graphics.Size {
	maxWidth := math.Inf(1)
	if r.wrap {
		maxWidth = clamp.Max.Width
	}
	tl := r.measurer.Measure(r.content, maxWidth)
	size := tl.Size
	if r.maxLines > 0 && len(tl.Lines) > r.maxLines {
		tl.Lines = tl.Lines[:r.maxLines]
		size.Height = tl.LineHeight * float64(r.maxLines)
	}
	r.lines, r.lineHeight = tl.Lines, tl.LineHeight
	return size
}

func (r *renderText) Paint(ctx *layout.PaintContext) {
	for i, line := range r.lines {
		ctx.Canvas.DrawText(line, graphics.Offset{Y: float64(i) * r.lineHeight}, r.color)
	}
}

// Text returns the content, for finders and debugging.
func (r *renderText) Text() string {
	return r.content
}
