// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wxr

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/internal/metrics"
)

// Runner drives App updates from browser animation frames. While a
// session exists its frame loop schedules updates; otherwise the page's
// canvas does.
type Runner struct {
	App    *engine.App
	Canvas Canvas
}

// Source returns the frame loop that schedules the next update.
func (r *Runner) Source() FrameLoopSource {
	if _, ok := engine.Get[*ActiveSession](r.App.Main); ok {
		return SourceSession
	}
	return SourceCanvas
}

// Step waits for the next animation frame and runs one update.
func (r *Runner) Step(ctx context.Context) error {
	m := r.App.Main
	if a, ok := engine.Get[*ActiveSession](m); ok {
		f, err := a.Session.RequestAnimationFrame(ctx)
		switch {
		case err == nil:
			engine.Remove[CanvasFrame](m)
			engine.Insert(m, f)
			if a.Visibility == Hidden {
				metrics.RecordFrame(backendLabel, metrics.FrameSkipped)
			} else {
				metrics.RecordFrame(backendLabel, metrics.FrameSubmitted)
			}
			return r.App.Update(ctx)
		case errors.Is(err, ErrSessionEnded):
			// The end event is still queued; fall back to the canvas for
			// this frame.
			xr.Logger().Debug("wxr: session frame loop ended")
		default:
			return fmt.Errorf("wxr: session animation frame: %w", err)
		}
	}

	t, err := r.Canvas.RequestAnimationFrame(ctx)
	if err != nil {
		return fmt.Errorf("wxr: canvas animation frame: %w", err)
	}
	engine.Remove[Frame](m)
	engine.Insert(m, CanvasFrame{Time: t})
	return r.App.Update(ctx)
}

// Run steps until ctx is done, an update fails, or frames steps have run.
// A non-positive frames runs until ctx is done.
func (r *Runner) Run(ctx context.Context, frames int) error {
	for i := 0; frames <= 0 || i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}
