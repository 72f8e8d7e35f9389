package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/engine"
	"github.com/go-drift/arbor/pkg/events"
	"github.com/go-drift/arbor/pkg/focus"
	"github.com/go-drift/arbor/pkg/graphics"
	"github.com/go-drift/arbor/pkg/state"
	"github.com/go-drift/arbor/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run the counter demo headless",
		Long: `Mount a counter, tap its button and print the laid-out tree and the
painted frame.

With --debug, a debug server keeps running after the taps and serves
/tree, /layout, /frames and /metrics until interrupted.`,
		Usage: "arbor demo [--taps N] [--interval DURATION] [--debug ADDR] [--paint]",
		Run:   runDemo,
	})
}

type demoOptions struct {
	taps     int
	interval time.Duration
	debug    string
	paint    bool
}

func parseDemoArgs(args []string) (demoOptions, error) {
	opts := demoOptions{}
	fs := pflag.NewFlagSet("demo", pflag.ContinueOnError)
	fs.IntVar(&opts.taps, "taps", 1, "number of taps on the counter button")
	fs.DurationVar(&opts.interval, "interval", 300*time.Millisecond, "simulated time between taps")
	fs.StringVar(&opts.debug, "debug", "", "address for the debug server, e.g. :9090")
	fs.BoolVar(&opts.paint, "paint", false, "print the draw operations of the last frame")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.taps < 0 {
		return opts, fmt.Errorf("--taps must not be negative")
	}
	return opts, nil
}

// demoClock advances only when the demo says so, so tap bursts are
// reproducible.
type demoClock struct{ now time.Time }

func (c *demoClock) Now() time.Time { return c.now }

var demoButton = graphics.Rect{Left: 20, Top: 20, Right: 140, Bottom: 60}

func counterApp(background graphics.Color, count *state.Stateful[int], doubles *state.Stateful[int]) core.Widget {
	button := events.Handle(widgets.Fill{
		Color: graphics.RGB(0x33, 0x66, 0x99),
		Child: widgets.Center{Child: widgets.Text{Content: "+1", Color: graphics.ColorWhite}},
	}).
		On(events.Tap, func(*events.Event) {
			count.Update(func(v *int) { *v++ })
		}).
		OnTapTimes(2, func(*events.Event) {
			doubles.Update(func(v *int) { *v++ })
		})

	label := core.Dynamic{
		On: []state.Watchable{count, doubles},
		Build: core.Single(func() core.Widget {
			return widgets.Text{Content: "count " + strconv.Itoa(count.Get()) + ", double taps " + strconv.Itoa(doubles.Get())}
		}),
	}

	return widgets.Fill{Color: background, Child: widgets.Stack{
		Fit: widgets.StackFitExpand,
		Children: []core.Widget{
			widgets.Positioned{
				Offset: graphics.Offset{X: demoButton.Left, Y: demoButton.Top},
				Width:  demoButton.Width(),
				Height: demoButton.Height(),
				Child:  focus.Focusable(button, &focus.Node{CanRequestFocus: true, DebugLabel: "counter"}),
			},
			widgets.Positioned{
				Offset: graphics.Offset{X: demoButton.Left, Y: demoButton.Bottom + 10},
				Child:  label,
			},
		},
	}}
}

func runDemo(env *Env, args []string) error {
	opts, err := parseDemoArgs(args)
	if err != nil {
		return err
	}
	cfg, err := env.Config()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(env.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	clock := &demoClock{now: time.Unix(0, 0)}
	wopts := engine.OptionsFromConfig(cfg)
	wopts.Logger = logger
	wopts.Metrics = engine.NewMetrics(reg)
	wopts.Clock = clock

	count, doubles := state.New(0), state.New(0)
	w := engine.NewWindow(counterApp(cfg.Background, count, doubles), wopts)
	rec := graphics.NewRecorder()
	if err := w.DrawFrame(rec); err != nil {
		return err
	}

	center := graphics.Offset{
		X: (demoButton.Left + demoButton.Width()/2) * cfg.Scale,
		Y: (demoButton.Top + demoButton.Height()/2) * cfg.Scale,
	}
	if err := w.HandleInput(events.CursorMoved{Device: 1, Position: center}); err != nil {
		return err
	}
	for i := 0; i < opts.taps; i++ {
		if i > 0 {
			clock.now = clock.now.Add(opts.interval)
		}
		for _, pressed := range []bool{true, false} {
			if err := w.HandleInput(events.MouseInput{Device: 1, Button: events.ButtonPrimary, Pressed: pressed}); err != nil {
				return err
			}
		}
		rec.Reset()
		if err := w.DrawFrame(rec); err != nil {
			return err
		}
	}
	logger.Info("demo finished", "app", cfg.AppName, "taps", opts.taps, "count", count.Get(), "doubleTaps", doubles.Get(), "frames", w.FrameCount())

	fmt.Fprint(env.Stdout, w.DisplayTree())
	if opts.paint {
		fmt.Fprintln(env.Stdout)
		fmt.Fprint(env.Stdout, rec.String())
	}

	if opts.debug == "" {
		return nil
	}
	srv := engine.NewDebugServer(w, reg)
	addr, err := srv.Start(opts.debug)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "debug server listening on http://%s (Ctrl+C to stop)\n", addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdown)
}
