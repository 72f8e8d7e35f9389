package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContainsExclusiveEdges(t *testing.T) {
	r := RectFromLTWH(10, 10, 20, 20)
	assert.True(t, r.Contains(Offset{X: 10, Y: 10}))
	assert.True(t, r.Contains(Offset{X: 29.9, Y: 29.9}))
	assert.False(t, r.Contains(Offset{X: 30, Y: 15}))
	assert.False(t, r.Contains(Offset{X: 9, Y: 15}))
}

func TestOffsetScale(t *testing.T) {
	assert.Equal(t, Offset{X: 5, Y: 10}, Offset{X: 10, Y: 20}.Scale(2))
	assert.Equal(t, Offset{X: 10, Y: 20}, Offset{X: 10, Y: 20}.Scale(0))
}

func TestRecorderAppliesTranslation(t *testing.T) {
	r := NewRecorder()
	r.Save()
	r.Translate(5, 5)
	r.DrawRect(RectFromLTWH(0, 0, 10, 10), ColorRed)
	r.Save()
	r.Translate(1, 2)
	r.DrawText("hi", Offset{}, ColorBlack)
	r.Restore()
	r.Restore()
	r.DrawRect(RectFromLTWH(0, 0, 1, 1), ColorBlue)

	assert.Equal(t, 0, r.Depth())
	assert.Equal(t, "rect (5,5 10x10)\ntext \"hi\" @(6,7)\nrect (0,0 1x1)\n", r.String())
}
