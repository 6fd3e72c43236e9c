// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/atomix"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/internal/framechan"
	"github.com/gogpu/xr/internal/metrics"
)

// FrameWaiter runs the runtime's blocking frame throttle on a dedicated
// goroutine and feeds the frame states to the render world.
//
// Wait on the runtime blocks until the compositor wants the next frame,
// so the render loop never calls it directly: it polls the channel the
// goroutine sends on.
type FrameWaiter struct {
	session *Session
	rt      RuntimeFrameWaiter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// frameSerial numbers frame states across every session of the process.
var frameSerial atomix.Uint32

func newFrameWaiter(s *Session, rt RuntimeFrameWaiter) *FrameWaiter {
	return &FrameWaiter{session: s, rt: rt}
}

// Start launches the waiter goroutine. It runs until ctx is canceled, the
// session stops running, or the runtime reports an error. Starting a
// waiter that is already running does nothing.
func (fw *FrameWaiter) Start(ctx context.Context, capacity int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.done != nil {
		select {
		case <-fw.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := framechan.New[FrameState](capacity)
	fw.session.frames.Store(ch)
	fw.cancel = cancel
	fw.done = make(chan struct{})
	go fw.loop(ctx, ch, fw.done)
}

func (fw *FrameWaiter) loop(ctx context.Context, ch *framechan.Chan[FrameState], done chan struct{}) {
	defer close(done)
	defer ch.Close()

	log := xr.Logger().With("session", fw.session.ID)
	for ctx.Err() == nil && fw.session.Running() {
		start := time.Now()
		fs, err := fw.rt.Wait()
		if err != nil {
			if fw.session.Running() {
				log.Error("oxr: wait frame", "err", err)
			}
			return
		}
		metrics.ObserveFrameWait(backendLabel, time.Since(start).Seconds())
		fs.Frame = frameSerial.Add(1)
		if err := ch.Send(ctx, fs); err != nil {
			return
		}
	}
}

// Stop asks the goroutine to exit. It does not wait: the goroutine may
// still be blocked inside the runtime until the session ends.
func (fw *FrameWaiter) Stop() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.cancel != nil {
		fw.cancel()
	}
}

// Wait blocks until the goroutine exited or ctx is done.
func (fw *FrameWaiter) Wait(ctx context.Context) error {
	fw.mu.Lock()
	done := fw.done
	fw.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
