package engine

import (
	"cmp"
	"sync"
	"time"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FramePhaseTimings captures time spent in each frame phase (ms).
type FramePhaseTimings struct {
	LayoutMs float64 `json:"layoutMs"`
	PaintMs  float64 `json:"paintMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	DirtyLayout   int `json:"dirtyLayout"`
	NodeCount     int `json:"nodeCount"`
	Passes        int `json:"passes"`
	LaidOut       int `json:"laidOut"`
	MemoHits      int `json:"memoHits"`
	Regenerations int `json:"regenerations"`
	Hosted        int `json:"hosted"`
	Events        int `json:"events"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Timestamp int64             `json:"ts"`
	FrameMs   float64           `json:"frameMs"`
	Phases    FramePhaseTimings `json:"phases"`
	Counts    FrameCounts       `json:"counts"`
	Error     string            `json:"error,omitempty"`
}

// FrameTimeline is a chronological view of recent frames.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer keeps the most recent frame samples and counts frames
// slower than a threshold. It is safe for concurrent use.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	ring      []FrameSample
	next      int
	full      bool
	slow      int
	threshold time.Duration
}

// NewFrameTraceBuffer returns a buffer holding capacity samples. Non-positive
// arguments select 240 samples and a 60Hz frame budget.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	return &FrameTraceBuffer{
		ring:      make([]FrameSample, cmp.Or(max(capacity, 0), frameTraceSamplesDefault)),
		threshold: cmp.Or(max(threshold, 0), defaultFrameTraceThreshold),
	}
}

// Capacity returns the number of samples kept.
func (b *FrameTraceBuffer) Capacity() int {
	return len(b.ring)
}

// Threshold returns the duration above which a frame counts as dropped.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	return b.threshold
}

// Add stores sample, evicting the oldest one when full.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring[b.next] = sample
	b.next++
	if b.next == len(b.ring) {
		b.next, b.full = 0, true
	}
	if frameDuration > b.threshold {
		b.slow++
	}
}

// Snapshot returns the stored samples oldest first.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tl := FrameTimeline{
		DroppedFrames: b.slow,
		ThresholdMs:   durationToMillis(b.threshold),
	}
	if b.full {
		tl.Samples = append(tl.Samples, b.ring[b.next:]...)
	}
	tl.Samples = append(tl.Samples, b.ring[:b.next]...)
	return tl
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
