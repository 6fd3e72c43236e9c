// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mailbox

import (
	"errors"
	"sync"
	"testing"
)

func TestMailbox_TakeOnce(t *testing.T) {
	m := New("bundle")

	v, ok := m.Take()
	if !ok || v != "bundle" {
		t.Fatalf("Take() = %q, %v, want %q, true", v, ok, "bundle")
	}
	v, ok = m.Take()
	if ok || v != "" {
		t.Errorf("second Take() = %q, %v, want empty, false", v, ok)
	}
}

func TestMailbox_PutFull(t *testing.T) {
	var m Mailbox[int]
	if m.Full() {
		t.Fatal("zero Mailbox is full")
	}
	if err := m.Put(1); err != nil {
		t.Fatalf("Put(1) error = %v", err)
	}
	if err := m.Put(2); !errors.Is(err, ErrFull) {
		t.Errorf("Put(2) error = %v, want %v", err, ErrFull)
	}
	if v, _ := m.Take(); v != 1 {
		t.Errorf("Take() = %d, want 1", v)
	}
	if err := m.Put(3); err != nil {
		t.Errorf("Put after Take error = %v", err)
	}
}

func TestMailbox_ConcurrentTakers(t *testing.T) {
	m := New(42)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Take(); ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if taken != 1 {
		t.Errorf("value taken %d times, want 1", taken)
	}
}
