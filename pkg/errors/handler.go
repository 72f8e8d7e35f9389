package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handlerBox lets atomic.Pointer hold an interface value.
type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// SetHandler installs the handler shared by every tree in the process.
// Pass nil to go back to a LogHandler on slog.Default().
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerBox{h: h})
}

// Handler returns the installed handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report hands err to the installed handler, stamping it first if needed.
func Report(err *TreeError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic hands a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Recover reports a panic in progress instead of letting it unwind further.
// It must be deferred directly:
//
//	defer errors.Recover("config.Watch")
func Recover(op string) {
	r := recover()
	if r == nil {
		return
	}
	ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
}

// FromPanic converts a recovered value into a TreeError of the given kind.
// A recovered *TreeError keeps its own kind and node but gains a stack.
func FromPanic(op string, kind ErrorKind, node string, r any) *TreeError {
	if te, ok := r.(*TreeError); ok {
		if te.StackTrace == "" {
			te.StackTrace = CaptureStack()
		}
		if te.Node == "" {
			te.Node = node
		}
		return te
	}
	now := time.Now()
	return &TreeError{
		Op:         op,
		Kind:       kind,
		Node:       node,
		Err:        &PanicError{Op: op, Value: r, Timestamp: now},
		StackTrace: CaptureStack(),
		Timestamp:  now,
	}
}

// CaptureStack formats the caller's stack, one "function file:line" entry per
// frame, without the CaptureStack frame itself.
func CaptureStack() string {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(3, pcs)]
	if len(pcs) == 0 {
		return ""
	}
	var lines []string
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
