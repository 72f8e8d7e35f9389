// Package testing provides a harness for driving arbor trees in tests.
//
// Mount a widget, pump frames, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    w := arbortest.NewTestWindowWithT(t)
//	    require.NoError(t, w.PumpWidget(Counter{}))
//
//	    require.NoError(t, w.Tap(arbortest.ByText("+")))
//	    require.NoError(t, w.Pump())
//
//	    assert.True(t, w.Find(arbortest.ByText("1")).Exists())
//	}
//
// # Snapshot Testing
//
// Capture and compare layout and paint snapshots:
//
//	w.CaptureSnapshot().MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	ARBOR_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Time
//
// Multi-tap recognition reads the window's clock, which is a FakeClock:
//
//	w.Clock().Advance(100 * time.Millisecond)
//	w.Clock().ExpireTapWindow(events.DefaultTapWindow)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import arbortest "github.com/go-drift/arbor/pkg/testing"
package testing
