package testing

import (
	"sync"
	"time"
)

// FrameInterval is the time that passes between two frames of PumpAndSettle.
const FrameInterval = 16 * time.Millisecond

// FakeClock is the time source of a TestWindow. Only frames and explicit
// calls move it. It satisfies events.Clock.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	frames int
}

// NewFakeClock returns a clock stopped at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceFrame moves the clock by one FrameInterval and counts the frame.
func (c *FakeClock) AdvanceFrame() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	c.now = c.now.Add(FrameInterval)
	return c.now
}

// Frames returns the number of frames counted by AdvanceFrame.
func (c *FakeClock) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// ExpireTapWindow moves the clock just past window, so the next tap starts a
// new multi-tap sequence.
func (c *FakeClock) ExpireTapWindow(window time.Duration) time.Time {
	return c.Advance(window + time.Millisecond)
}
