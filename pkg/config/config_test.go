package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/arbor/pkg/graphics"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "go.mod", "module example.com/demo/v2\n\ngo 1.24\n")

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/demo/v2", r.ModulePath)
	assert.Equal(t, "demo", r.AppName)
	assert.Equal(t, CurrentVersion, r.Version)
	assert.Equal(t, graphics.Size{Width: DefaultWidth, Height: DefaultHeight}, r.Window)
	assert.Equal(t, 1.0, r.Scale)
	assert.Equal(t, graphics.ColorWhite, r.Background)
	assert.Equal(t, DefaultMaxPasses, r.MaxPasses)
	assert.Equal(t, DefaultTapWindow, r.TapWindow)
	assert.Equal(t, 16.0, r.WheelLinePixels)
	assert.Equal(t, slog.LevelInfo, r.LogLevel)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, `
version: "1.0"
app:
  name: gallery
window:
  width: 320
  height: 240
  scale: 2
  background: "#336699"
layout:
  max_passes: 8
events:
  tap_window: 300ms
  wheel_line_pixels: 20
log:
  level: debug
  verbose: true
`)
	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "", r.ModulePath)
	assert.Equal(t, "gallery", r.AppName)
	assert.Equal(t, "v1.0.0", r.Version)
	assert.Equal(t, graphics.Size{Width: 320, Height: 240}, r.Window)
	assert.Equal(t, 2.0, r.Scale)
	assert.Equal(t, graphics.RGB(0x33, 0x66, 0x99), r.Background)
	assert.Equal(t, 8, r.MaxPasses)
	assert.Equal(t, 300*time.Millisecond, r.TapWindow)
	assert.Equal(t, 20.0, r.WheelLinePixels)
	assert.Equal(t, slog.LevelDebug, r.LogLevel)
	assert.True(t, r.Verbose)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "window: [", "failed to parse"},
		{"unknown field", "colour: red\n", "failed to parse"},
		{"bad version", "version: banana\n", "invalid config version"},
		{"newer major", "version: v2.0.0\n", "unsupported config version"},
		{"newer minor", "version: v1.9.0\n", "unsupported config version"},
		{"bad duration", "events:\n  tap_window: soon\n", "invalid events.tap_window"},
		{"zero duration", "events:\n  tap_window: 0s\n", "must be positive"},
		{"bad level", "log:\n  level: loud\n", "invalid log.level"},
		{"bad color", "window:\n  background: teal\n", "invalid window.background"},
		{"negative size", "window:\n  width: -1\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, FileName, tt.yaml)
			_, err := Resolve(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOptionalMissing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	r := &Resolved{LogLevel: slog.LevelWarn}
	log := r.NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown k=1")
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, "app:\n  name: first\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	names := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(r *Resolved, err error) {
			if err != nil {
				names <- "error"
				return
			}
			names <- r.AppName
		})
	}()

	require.Equal(t, "first", <-names)
	write(t, dir, FileName, "app:\n  name: second\n")
	require.Eventually(t, func() bool {
		for {
			select {
			case n := <-names:
				if n == "second" {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
