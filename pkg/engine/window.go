package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-drift/arbor/pkg/config"
	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/errors"
	"github.com/go-drift/arbor/pkg/events"
	"github.com/go-drift/arbor/pkg/graphics"
)

// Options configures a Window. Zero fields take their defaults.
type Options struct {
	// Size is the window size in logical pixels.
	Size graphics.Size
	// Scale is the physical pixels per logical pixel.
	Scale           float64
	MaxPasses       int
	TapWindow       time.Duration
	WheelLinePixels float64
	Clock           events.Clock
	Logger          *slog.Logger
	Metrics         *Metrics
	TraceCapacity   int
	TraceThreshold  time.Duration
}

// OptionsFromConfig maps resolved configuration onto window options.
func OptionsFromConfig(r *config.Resolved) Options {
	return Options{
		Size:            r.Window,
		Scale:           r.Scale,
		MaxPasses:       r.MaxPasses,
		TapWindow:       r.TapWindow,
		WheelLinePixels: r.WheelLinePixels,
	}
}

// Window owns a tree and its dispatcher and draws frames on request.
type Window struct {
	mu         sync.Mutex
	tree       *core.Tree
	dispatcher *events.Dispatcher
	size       graphics.Size
	scale      float64

	logger  *slog.Logger
	metrics *Metrics
	trace   *FrameTraceBuffer

	last       core.Stats
	lastEvents int
	frames     int
}

// NewWindow mounts root in a new tree.
func NewWindow(root core.Widget, opts Options) *Window {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	t := core.New(core.Options{Logger: opts.Logger, MaxPasses: opts.MaxPasses})
	w := &Window{
		tree: t,
		dispatcher: events.NewDispatcher(t, events.Options{
			TapWindow:       opts.TapWindow,
			WheelLinePixels: opts.WheelLinePixels,
			Clock:           opts.Clock,
			Logger:          opts.Logger,
		}),
		size:    opts.Size,
		scale:   opts.Scale,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		trace:   NewFrameTraceBuffer(opts.TraceCapacity, opts.TraceThreshold),
	}
	if root != nil {
		t.SetRoot(root)
	}
	return w
}

// Tree returns the window's tree. Callers must not use it concurrently
// with frame work.
func (w *Window) Tree() *core.Tree { return w.tree }

// Dispatcher returns the window's event dispatcher.
func (w *Window) Dispatcher() *events.Dispatcher { return w.dispatcher }

// Size returns the logical size and the scale factor.
func (w *Window) Size() (graphics.Size, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size, w.scale
}

// Resize changes the window. The next frame lays the whole tree out again.
func (w *Window) Resize(size graphics.Size, scale float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size = size
	if scale > 0 {
		w.scale = scale
	}
}

// SetRoot replaces the mounted widget.
func (w *Window) SetRoot(root core.Widget) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tree.SetRoot(root)
}

// NeedsFrame reports whether a frame would do layout work.
func (w *Window) NeedsFrame() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.IsDirty() || w.tree.Window() != w.size
}

// HandleInput dispatches one platform input. A failing handler is reported
// to the global error handler and returned.
func (w *Window) HandleInput(in events.Input) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := w.dispatcher.Dispatched()
	err := w.dispatcher.Dispatch(in, w.scale)
	w.metrics.observeEvents(w.dispatcher.Dispatched() - before)
	if err != nil {
		w.metrics.observeError("events")
		var te *errors.TreeError
		if errors.As(err, &te) {
			errors.Report(te)
		}
	}
	return err
}

// DrawFrame lays out dirty nodes and paints the tree onto canvas. A layout
// failure skips painting; the error is returned after it has been reported.
// A nil canvas only lays out.
func (w *Window) DrawFrame(canvas graphics.Canvas) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	dirty := w.tree.DirtyCount()
	err := w.tree.Layout(w.size)
	laidOut := time.Now()
	if err == nil && canvas != nil {
		w.tree.Paint(canvas)
	}
	end := time.Now()

	stats := w.tree.Stats()
	dispatched := w.dispatcher.Dispatched()
	counts := FrameCounts{
		DirtyLayout:   dirty,
		NodeCount:     w.tree.Count(),
		Passes:        stats.Layout.Passes - w.last.Layout.Passes,
		LaidOut:       stats.Layout.LaidOut - w.last.Layout.LaidOut,
		MemoHits:      stats.Layout.MemoHits - w.last.Layout.MemoHits,
		Regenerations: stats.Regenerations - w.last.Regenerations,
		Hosted:        stats.Hosted,
		Events:        dispatched - w.lastEvents,
	}
	w.last, w.lastEvents = stats, dispatched
	w.frames++

	sample := FrameSample{
		Timestamp: start.UnixMilli(),
		FrameMs:   durationToMillis(end.Sub(start)),
		Phases: FramePhaseTimings{
			LayoutMs: durationToMillis(laidOut.Sub(start)),
			PaintMs:  durationToMillis(end.Sub(laidOut)),
		},
		Counts: counts,
	}
	if err != nil {
		sample.Error = err.Error()
		w.metrics.observeError("layout")
	}
	w.trace.Add(sample, end.Sub(start))
	w.metrics.observeFrame(counts, end.Sub(start))

	if w.logger != nil {
		w.logger.Debug("frame", "n", w.frames, "ms", sample.FrameMs, "laidOut", counts.LaidOut, "passes", counts.Passes)
	}
	return err
}

// FrameCount returns the number of frames drawn.
func (w *Window) FrameCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Frames returns the recent frame trace.
func (w *Window) Frames() FrameTimeline {
	return w.trace.Snapshot()
}

// DisplayTree renders the mounted tree for debugging.
func (w *Window) DisplayTree() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tree.Root().IsZero() {
		return ""
	}
	return w.tree.DisplayTree(w.tree.Root())
}

// withFrameLock runs fn between frames.
func (w *Window) withFrameLock(fn func(t *core.Tree)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.tree)
}
