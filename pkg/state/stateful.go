package state

import (
	"fmt"

	"github.com/go-drift/arbor/pkg/errors"
)

// Stateful is a value cell with borrow-checked access. Writes go through a
// WriteRef and notify subscribers with the write's scope when the ref is
// closed.
//
// Stateful is not safe for concurrent use.
type Stateful[T any] struct {
	value    T
	readers  int
	writing  bool
	notifier Notifier
}

// New creates a cell holding v.
func New[T any](v T) *Stateful[T] {
	return &Stateful[T]{value: v}
}

func borrowPanic(op, detail string) {
	panic(&errors.TreeError{
		Op:   op,
		Kind: errors.KindBorrow,
		Err:  fmt.Errorf("%w: %s", errors.ErrBorrowed, detail),
	})
}

// Get returns a copy of the current value.
func (s *Stateful[T]) Get() T {
	if s.writing {
		borrowPanic("state.Stateful.Get", "read while a write is in progress")
	}
	return s.value
}

// ReadRef is a read guard. Writes panic while any guard is outstanding.
type ReadRef[T any] struct {
	s        *Stateful[T]
	released bool
}

// Value returns the guarded value.
func (r *ReadRef[T]) Value() T {
	return r.s.value
}

// Release drops the guard.
func (r *ReadRef[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.s.readers--
}

// Read acquires a read guard.
func (s *Stateful[T]) Read() *ReadRef[T] {
	if s.writing {
		borrowPanic("state.Stateful.Read", "read while a write is in progress")
	}
	s.readers++
	return &ReadRef[T]{s: s}
}

// WriteRef is a write guard. Closing it notifies subscribers.
type WriteRef[T any] struct {
	s      *Stateful[T]
	scope  ModifyScope
	closed bool
}

// Value returns a pointer to the guarded value, valid until Close.
func (w *WriteRef[T]) Value() *T {
	return &w.s.value
}

// Close ends the write and notifies subscribers.
func (w *WriteRef[T]) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.s.writing = false
	w.s.notifier.Notify(w.scope)
}

func (s *Stateful[T]) write(op string, scope ModifyScope) *WriteRef[T] {
	if s.readers > 0 {
		borrowPanic(op, fmt.Sprintf("%d read guard(s) outstanding", s.readers))
	}
	if s.writing {
		borrowPanic(op, "write already in progress")
	}
	s.writing = true
	return &WriteRef[T]{s: s, scope: scope}
}

// Write acquires a write guard whose change is visible to everyone.
func (s *Stateful[T]) Write() *WriteRef[T] {
	return s.write("state.Stateful.Write", ScopeBoth)
}

// Silent acquires a write guard whose change is visible to data observers only.
// The tree does not react to silent writes.
func (s *Stateful[T]) Silent() *WriteRef[T] {
	return s.write("state.Stateful.Silent", ScopeData)
}

// Shallow acquires a write guard whose change only the tree reacts to.
func (s *Stateful[T]) Shallow() *WriteRef[T] {
	return s.write("state.Stateful.Shallow", ScopeFramework)
}

// Set replaces the value and notifies with ScopeBoth.
func (s *Stateful[T]) Set(v T) {
	w := s.Write()
	*w.Value() = v
	w.Close()
}

// Update mutates the value in place and notifies with ScopeBoth.
func (s *Stateful[T]) Update(fn func(*T)) {
	s.Modify(ScopeBoth, fn)
}

// Modify mutates the value in place and notifies with scope.
func (s *Stateful[T]) Modify(scope ModifyScope, fn func(*T)) {
	w := s.write("state.Stateful.Modify", scope)
	defer w.Close()
	fn(w.Value())
}

// Subscribe registers fn for modification notifications.
func (s *Stateful[T]) Subscribe(fn func(ModifyScope)) *Subscription {
	return s.notifier.Subscribe(fn)
}

// Subscribers returns the number of live subscriptions.
func (s *Stateful[T]) Subscribers() int {
	return s.notifier.Len()
}
