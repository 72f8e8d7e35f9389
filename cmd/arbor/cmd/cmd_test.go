package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &Env{Dir: dir, Stdout: &stdout, Stderr: &stderr}
	err := execute(env, args)
	return stdout.String(), err
}

func TestHelpAndVersion(t *testing.T) {
	out, err := run(t, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "demo")

	out, err = run(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "arbor version "+Version)

	out, err = run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "config schema")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, t.TempDir(), "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arbor.yaml"), []byte("app:\n  name: shelf\nwindow:\n  background: \"#102030\"\n"), 0o644))

	out, err := run(t, "", "--dir", dir, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "app: shelf")
	assert.Contains(t, out, "#102030")
	assert.Contains(t, out, "tap_window: 250ms")

	_, err = run(t, "", "--dir="+dir, "config", "extra")
	assert.Error(t, err)
}

func TestDemoCountsTaps(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "demo", "--taps", "3", "--interval", "100ms", "--paint")
	require.NoError(t, err)
	assert.Contains(t, out, "renderStack")
	assert.Contains(t, out, `text "count 3, double taps 1"`)
}

func TestDemoArgs(t *testing.T) {
	opts, err := parseDemoArgs([]string{"--taps=2", "--debug", ":0"})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.taps)
	assert.Equal(t, ":0", opts.debug)

	_, err = parseDemoArgs([]string{"--taps", "-1"})
	assert.Error(t, err)
	_, err = parseDemoArgs([]string{"stray"})
	assert.Error(t, err)
}
