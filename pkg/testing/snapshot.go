package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/go-drift/arbor/pkg/core"
	"github.com/go-drift/arbor/pkg/layout"
	"github.com/go-drift/arbor/pkg/tree"
)

// UpdateSnapshotsEnv names the variable that makes MatchesFile rewrite
// golden files instead of comparing.
const UpdateSnapshotsEnv = "ARBOR_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the laid-out tree and the last frame's paint.
type Snapshot struct {
	Tree  *SnapshotNode `json:"tree,omitempty"`
	Paint []string      `json:"paint,omitempty"`
}

// SnapshotNode is one node of a captured tree.
type SnapshotNode struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Size     [2]float64      `json:"size"`
	Offset   [2]float64      `json:"offset"`
	Text     string          `json:"text,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// CaptureSnapshot captures the mounted tree and the last painted frame.
func (w *TestWindow) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	t := w.Tree()
	if root := t.Root(); !root.IsZero() {
		snap.Tree = captureNode(t, root, map[string]int{})
	}
	for _, op := range w.recorder.Ops {
		snap.Paint = append(snap.Paint, op.String())
	}
	return snap
}

func captureNode(t *core.Tree, id tree.NodeID, counts map[string]int) *SnapshotNode {
	r := t.Arena().MustGet(id)
	inner := layout.Unwrap(r)
	name := typeName(inner)
	n := &SnapshotNode{
		ID:   fmt.Sprintf("%s#%d", name, counts[name]),
		Type: name,
	}
	counts[name]++
	if info, ok := t.Store().Info(id); ok {
		n.Size = [2]float64{round2(info.Size.Width), round2(info.Size.Height)}
		n.Offset = [2]float64{round2(info.Position.X), round2(info.Position.Y)}
	}
	if tc, ok := inner.(textContent); ok {
		n.Text = tc.Text()
	}
	for c := range t.Arena().Children(id) {
		n.Children = append(n.Children, captureNode(t, c, counts))
	}
	return n
}

func typeName(v any) string {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return "nil"
	}
	return rt.Name()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff. When ARBOR_UPDATE_SNAPSHOTS=1 is set, the file is
// rewritten instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a unified diff from other to s, or "" when they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(b)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}
