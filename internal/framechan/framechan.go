// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framechan carries per-frame timing values from the goroutine
// that blocks on the runtime's frame throttle to the render loop.
//
// The channel is a bounded single-producer single-consumer queue. The
// producer blocks with adaptive backoff when the queue is full; the
// consumer never blocks and must poll. Closing the channel marks the
// producer as gone: once drained, the consumer observes ErrDisconnected.
package framechan

import (
	"context"
	"errors"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// DefaultCapacity bounds the number of frames the producer may run ahead.
const DefaultCapacity = 4

var (
	// ErrEmpty is returned by TryRecv when no value is queued yet.
	ErrEmpty = iox.ErrWouldBlock

	// ErrDisconnected is returned once the producer has closed the channel
	// and every queued value has been received.
	ErrDisconnected = errors.New("framechan: producer disconnected")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("framechan: send on closed channel")
)

// Chan is a bounded SPSC channel of T.
type Chan[T any] struct {
	q      lfq.SPSC[T]
	mu     raceLock
	closed atomic.Bool
}

// New returns an open channel with the given capacity.
// A non-positive capacity selects DefaultCapacity.
func New[T any](capacity int) *Chan[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Chan[T]{}
	c.q.Init(capacity)
	return c
}

// Send enqueues v, waiting with adaptive backoff while the queue is full.
// It returns ErrClosed after Close and ctx.Err() on cancellation.
func (c *Chan[T]) Send(ctx context.Context, v T) error {
	var bo iox.Backoff
	for {
		if c.closed.Load() {
			return ErrClosed
		}
		err := c.enqueue(&v)
		if err == nil {
			return nil
		}
		if !iox.IsWouldBlock(err) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		bo.Wait()
	}
}

// TryRecv dequeues one value without blocking.
//
// Queued values are delivered even after Close; ErrDisconnected is only
// reported when the queue is empty and closed.
func (c *Chan[T]) TryRecv() (T, error) {
	v, err := c.dequeue()
	if err == nil {
		return v, nil
	}
	var zero T
	if !iox.IsWouldBlock(err) {
		return zero, err
	}
	if c.closed.Load() {
		// Close may race with a final Enqueue.
		if v, err := c.dequeue(); err == nil {
			return v, nil
		}
		return zero, ErrDisconnected
	}
	return zero, ErrEmpty
}

func (c *Chan[T]) enqueue(v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Enqueue(v)
}

func (c *Chan[T]) dequeue() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Dequeue()
}

// Close marks the producer side as gone. It is safe to call more than once.
func (c *Chan[T]) Close() {
	c.closed.Store(true)
}

// Closed reports whether Close has been called.
func (c *Chan[T]) Closed() bool {
	return c.closed.Load()
}
