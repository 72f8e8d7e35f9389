// Package engine drives frames for a tree: it feeds platform input to the
// event dispatcher, lays out and paints, and records per-frame traces and
// metrics.
//
// A Window is driven from a single goroutine. The debug server reads it
// concurrently under the window's frame lock.
package engine
