// Package config loads the optional arbor.yaml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/arbor/pkg/graphics"
)

// FileName is the configuration file looked up in a project directory.
const FileName = "arbor.yaml"

// CurrentVersion is the newest configuration schema this build understands.
const CurrentVersion = "v1.1.0"

// Defaults applied by Resolve.
const (
	DefaultWidth           = 800
	DefaultHeight          = 600
	DefaultScale           = 1
	DefaultMaxPasses       = 64
	DefaultTapWindow       = 250 * time.Millisecond
	DefaultWheelLinePixels = 16
)

// Config represents the optional arbor.yaml configuration.
type Config struct {
	Version string       `yaml:"version,omitempty"`
	App     AppConfig    `yaml:"app"`
	Window  WindowConfig `yaml:"window"`
	Layout  LayoutConfig `yaml:"layout"`
	Events  EventsConfig `yaml:"events"`
	Log     LogConfig    `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// WindowConfig sets the initial window.
type WindowConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	// Scale is the physical pixels per logical pixel.
	Scale float64 `yaml:"scale,omitempty"`
	// Background is a hex color such as "#336699".
	Background string `yaml:"background,omitempty"`
}

// LayoutConfig tunes the layout engine.
type LayoutConfig struct {
	MaxPasses int `yaml:"max_passes,omitempty"`
}

// EventsConfig tunes event dispatch.
type EventsConfig struct {
	// TapWindow is a Go duration string, such as "300ms".
	TapWindow       string  `yaml:"tap_window,omitempty"`
	WheelLinePixels float64 `yaml:"wheel_line_pixels,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root            string
	ModulePath      string
	AppName         string
	Version         string
	Window          graphics.Size
	Scale           float64
	Background      graphics.Color
	MaxPasses       int
	TapWindow       time.Duration
	WheelLinePixels float64
	LogLevel        slog.Level
	Verbose         bool
}

// Parse decodes configuration data. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// LoadOptional reads arbor.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Resolve loads arbor.yaml (if present) and resolves defaults. go.mod is
// optional; when present it names the application.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir, modulePath(dir))
}

// Resolve validates cfg and fills in defaults.
func (cfg *Config) Resolve(dir, modulePath string) (*Resolved, error) {
	version, err := checkVersion(cfg.Version)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:            dir,
		ModulePath:      modulePath,
		AppName:         strings.TrimSpace(cfg.App.Name),
		Version:         version,
		Window:          graphics.Size{Width: orDefault(cfg.Window.Width, DefaultWidth), Height: orDefault(cfg.Window.Height, DefaultHeight)},
		Scale:           orDefault(cfg.Window.Scale, DefaultScale),
		Background:      graphics.ColorWhite,
		MaxPasses:       cfg.Layout.MaxPasses,
		TapWindow:       DefaultTapWindow,
		WheelLinePixels: orDefault(cfg.Events.WheelLinePixels, DefaultWheelLinePixels),
		Verbose:         cfg.Log.Verbose,
	}
	if r.AppName == "" {
		r.AppName = defaultAppName(modulePath, dir)
	}
	if r.MaxPasses <= 0 {
		r.MaxPasses = DefaultMaxPasses
	}
	if r.Window.Width < 0 || r.Window.Height < 0 || r.Scale < 0 {
		return nil, fmt.Errorf("window size and scale must not be negative")
	}
	if s := strings.TrimSpace(cfg.Window.Background); s != "" {
		c, err := parseColor(s)
		if err != nil {
			return nil, err
		}
		r.Background = c
	}
	if s := strings.TrimSpace(cfg.Events.TapWindow); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid events.tap_window %q: %w", s, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("events.tap_window must be positive, got %s", d)
		}
		r.TapWindow = d
	}
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		if err := r.LogLevel.UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", s, err)
		}
	}
	return r, nil
}

// NewLogger returns a text logger writing to w at the resolved level.
func (r *Resolved) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: r.LogLevel}))
}

// checkVersion accepts versions with or without the leading "v" and rejects
// schemas from a different major version or newer than CurrentVersion.
func checkVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return CurrentVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid config version %q", v)
	}
	v = semver.Canonical(v)
	if semver.Major(v) != semver.Major(CurrentVersion) || semver.Compare(v, CurrentVersion) > 0 {
		return "", fmt.Errorf("unsupported config version %s (this build reads up to %s)", v, CurrentVersion)
	}
	return v, nil
}

func parseColor(s string) (graphics.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window.background %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return graphics.RGB(r, g, b), nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "arbor_app"
	}
	return base
}
