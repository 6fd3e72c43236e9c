// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// Events is a double-buffered queue of events of type T.
//
// Events sent during a tick stay readable through the end of the
// following tick. Update rotates the buffers and is called by the world at
// the start of every tick, so events older than that are dropped.
type Events[T any] struct {
	prev      []T
	cur       []T
	prevStart uint64
	curStart  uint64
	count     uint64
}

// Send appends an event.
func (e *Events[T]) Send(v T) {
	e.cur = append(e.cur, v)
	e.count++
}

// Update drops the older buffer and starts a new one.
func (e *Events[T]) Update() {
	e.prev = e.cur
	e.prevStart = e.curStart
	e.cur = nil
	e.curStart = e.count
}

// Len returns the number of events in both buffers.
func (e *Events[T]) Len() int {
	return len(e.prev) + len(e.cur)
}

type eventUpdater interface {
	Update()
}

// Reader tracks which events of type T a consumer has already seen.
// Each system or condition holds its own Reader.
type Reader[T any] struct {
	last uint64
}

// Read returns the events sent since the previous Read, oldest first.
func (r *Reader[T]) Read(e *Events[T]) []T {
	if e == nil {
		return nil
	}
	var out []T
	for i, v := range e.prev {
		if e.prevStart+uint64(i) >= r.last {
			out = append(out, v)
		}
	}
	for i, v := range e.cur {
		if e.curStart+uint64(i) >= r.last {
			out = append(out, v)
		}
	}
	r.last = e.count
	return out
}

// Clear marks every current event as read.
func (r *Reader[T]) Clear(e *Events[T]) {
	if e != nil {
		r.last = e.count
	}
}

// AddEvent registers an event queue of type T in w. Registering twice is
// a no-op.
func AddEvent[T any](w *World) *Events[T] {
	if e, ok := Get[*Events[T]](w); ok {
		return e
	}
	e := &Events[T]{}
	Insert(w, e)
	w.events = append(w.events, e)
	return e
}

// Send sends an event of type T, registering the queue on first use.
func Send[T any](w *World, v T) {
	AddEvent[T](w).Send(v)
}

// ReadEvents reads the unseen events of type T using r.
func ReadEvents[T any](w *World, r *Reader[T]) []T {
	e, _ := Get[*Events[T]](w)
	return r.Read(e)
}

// OnEvent returns a condition that is true when at least one event of
// type T was sent since the condition last ran. The condition consumes
// the events it observes.
func OnEvent[T any]() Condition {
	var r Reader[T]
	return func(w *World) bool {
		e, ok := Get[*Events[T]](w)
		if !ok {
			return false
		}
		seen := max(r.last, e.prevStart) < e.count
		r.Clear(e)
		return seen
	}
}
