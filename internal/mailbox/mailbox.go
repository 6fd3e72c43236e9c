// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mailbox provides a single-slot ownership-transfer cell.
//
// A value put into a Mailbox can be taken out exactly once. Take empties
// the slot, so a bundle handed from one loop to another is never observed
// by both sides at the same time.
package mailbox

import (
	"errors"
	"sync"
)

// ErrFull is returned by Put when the slot already holds a value.
var ErrFull = errors.New("mailbox: slot is full")

// Mailbox is a mutex-guarded slot with take semantics.
// The zero value is an empty mailbox ready for use.
type Mailbox[T any] struct {
	mu   sync.Mutex
	val  T
	full bool
}

// New returns a mailbox holding v.
func New[T any](v T) *Mailbox[T] {
	return &Mailbox[T]{val: v, full: true}
}

// Put stores v. It fails with ErrFull if a previous value was not taken.
func (m *Mailbox[T]) Put(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return ErrFull
	}
	m.val = v
	m.full = true
	return nil
}

// Take removes and returns the stored value.
// The second result is false when the slot was empty.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.val
	m.val = zero
	m.full = false
	return v, true
}

// Full reports whether a value is waiting to be taken.
func (m *Mailbox[T]) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.full
}
