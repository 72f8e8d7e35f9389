// Package errors provides structured error handling for the arbor tree core.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindNotFound indicates a stale or foreign node id.
	KindNotFound
	// KindStructure indicates an invalid structural edit, such as a cycle.
	KindStructure
	// KindLayout indicates a failed layout pass.
	KindLayout
	// KindReconcile indicates a failed regeneration of a dynamic region.
	KindReconcile
	// KindBorrow indicates a state cell written while a read guard was held.
	KindBorrow
	// KindEvent indicates a failure while dispatching an event.
	KindEvent
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindStructure:
		return "structure"
	case KindLayout:
		return "layout"
	case KindReconcile:
		return "reconcile"
	case KindBorrow:
		return "borrow"
	case KindEvent:
		return "event"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is returned when a node id no longer names a live node.
	ErrNotFound = stderrors.New("node not found")
	// ErrCycle is returned when an edit would make a node its own ancestor.
	ErrCycle = stderrors.New("edit would create a cycle")
	// ErrBorrowed is the cause of a write attempted under an outstanding read.
	ErrBorrowed = stderrors.New("state is borrowed for reading")
)

// TreeError represents a structured error raised by the tree core.
type TreeError struct {
	// Op is the operation that failed (e.g., "layout.Engine.Layout").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Node identifies the offending node, if any.
	Node string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *TreeError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [%s] node=%s: %v", e.Op, e.Kind, e.Node, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

// New builds a TreeError for op with the given kind and cause.
func New(op string, kind ErrorKind, err error) *TreeError {
	return &TreeError{Op: op, Kind: kind, Err: err}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "events.Dispatcher.Dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// KindOf reports the kind of the first TreeError in err's chain.
func KindOf(err error) ErrorKind {
	var te *TreeError
	if stderrors.As(err, &te) {
		return te.Kind
	}
	var pe *PanicError
	if stderrors.As(err, &pe) {
		return KindPanic
	}
	return KindUnknown
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ErrorHandler receives errors reported by the tree core.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *TreeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
