package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/arbor/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show the resolved configuration",
		Long: `Load arbor.yaml from the project directory, apply defaults and print
the result as YAML. Invalid files are reported with the offending field.

With --watch, the configuration is printed again each time arbor.yaml
changes, until interrupted.`,
		Usage: "arbor config [--watch]",
		Run:   runConfig,
	})
}

type resolvedView struct {
	Root       string  `yaml:"root"`
	Module     string  `yaml:"module,omitempty"`
	App        string  `yaml:"app"`
	Version    string  `yaml:"version"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Scale      float64 `yaml:"scale"`
	Background string  `yaml:"background"`
	MaxPasses  int     `yaml:"max_passes"`
	TapWindow  string  `yaml:"tap_window"`
	WheelLine  float64 `yaml:"wheel_line_pixels"`
	LogLevel   string  `yaml:"log_level"`
	LogVerbose bool    `yaml:"log_verbose"`
}

func runConfig(env *Env, args []string) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	watch := fs.Bool("watch", false, "print again whenever arbor.yaml changes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("config takes no arguments")
	}
	if !*watch {
		r, err := env.Config()
		if err != nil {
			return err
		}
		return printResolved(env, r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return config.Watch(ctx, env.Dir, func(r *config.Resolved, err error) {
		if err != nil {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(env.Stdout, "---")
		if err := printResolved(env, r); err != nil {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		}
	})
}

func printResolved(env *Env, r *config.Resolved) error {
	out, err := yaml.Marshal(resolvedView{
		Root:       r.Root,
		Module:     r.ModulePath,
		App:        r.AppName,
		Version:    r.Version,
		Width:      r.Window.Width,
		Height:     r.Window.Height,
		Scale:      r.Scale,
		Background: fmt.Sprintf("#%06x", uint32(r.Background)&0xFFFFFF),
		MaxPasses:  r.MaxPasses,
		TapWindow:  r.TapWindow.String(),
		WheelLine:  r.WheelLinePixels,
		LogLevel:   r.LogLevel.String(),
		LogVerbose: r.Verbose,
	})
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
