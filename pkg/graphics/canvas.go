package graphics

// Canvas records drawing commands into a backing surface.
//
// The tree core only needs save/restore, translation and a couple of
// primitives. Backends implement the rest of their drawing surface on top.
type Canvas interface {
	// Save pushes the current transform onto the stack.
	Save()
	// Restore pops the most recent transform.
	Restore()
	// Translate moves the origin by (dx, dy).
	Translate(dx, dy float64)
	// DrawRect fills rect with color.
	DrawRect(rect Rect, color Color)
	// DrawText draws text with its top-left corner at origin.
	DrawText(text string, origin Offset, color Color)
}
