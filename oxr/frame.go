// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/internal/framechan"
	"github.com/gogpu/xr/internal/metrics"
)

// FrameReceived holds while the render world has a frame state for the
// current frame.
func FrameReceived(w *engine.World) bool {
	return engine.Has[FrameState](w)
}

// ShouldRender holds when the current frame will be displayed.
func ShouldRender(w *engine.World) bool {
	fs, ok := engine.Get[FrameState](w)
	return ok && fs.ShouldRender
}

// ExtractSession moves the session from the main world into the render
// world and mirrors the per-tick session flags.
//
// The handoff is taken only while the render world is not running a
// session, so a bundle is never replaced under an active frame cycle.
func ExtractSession(main, render *engine.World) error {
	started, _ := engine.Get[SessionStarted](main)
	engine.Insert(render, started)
	cleanup, _ := engine.Get[CleanupSession](main)
	engine.Insert(render, cleanup)
	if p, ok := engine.Get[FramePolicy](main); ok {
		engine.Insert(render, p)
	}

	if cleanup {
		return nil
	}
	if st, _ := xr.StatusOf(render); st == xr.StatusRunning && engine.Has[*Session](render) {
		return nil
	}
	hand, ok := engine.Get[*Handoff](main)
	if !ok {
		return nil
	}
	res, ok := hand.Take()
	if !ok {
		return nil
	}
	engine.Remove[*Handoff](main)

	engine.Insert(render, res.Session)
	engine.Insert(render, res.Stream)
	engine.Insert(render, res.Swapchain)
	engine.Insert(render, res.Images)
	engine.Insert(render, res.Info)
	if res.Passthrough != nil {
		engine.Insert(render, res.Passthrough)
	}
	xr.Logger().Debug("oxr: session handed to render world", "session", res.Session.ID)
	return nil
}

// frameError decides the fate of a failed frame step. While the session
// is still running the error is returned; during teardown the runtime is
// expected to refuse frame calls and the frame is dropped.
func frameError(w *engine.World, s *Session, step string, err error) error {
	if s.Running() {
		return err
	}
	xr.Logger().Warn("oxr: frame dropped", "step", step, "err", err)
	metrics.RecordFrame(backendLabel, metrics.FrameDropped)
	if fs, ok := engine.Get[FrameState](w); ok {
		// The frame stream may already have begun and must still be ended.
		fs.ShouldRender = false
		engine.Insert(w, fs)
	}
	return nil
}

// WaitFrame receives the frame state produced by the waiter goroutine.
// It polls with a constant backoff. A waiter that disconnected while the
// session runs is fatal; after the session stopped it skips the frame.
func WaitFrame(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	ch := s.frameChan()
	if ch == nil {
		return nil
	}
	policy, ok := engine.Get[FramePolicy](w)
	if !ok {
		policy = DefaultFramePolicy()
	}

	var fs FrameState
	recv := func() error {
		v, err := ch.TryRecv()
		switch {
		case err == nil:
			fs = v
			return nil
		case errors.Is(err, framechan.ErrDisconnected):
			return backoff.Permanent(err)
		default:
			return err
		}
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(policy.PollInterval)
	if policy.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, policy.MaxRetries)
	}
	err := backoff.Retry(recv, backoff.WithContext(b, w.Context()))
	switch {
	case err == nil:
		engine.Insert(w, fs)
		return nil
	case errors.Is(err, framechan.ErrDisconnected):
		if s.Running() {
			return ErrFrameChannelDisconnected
		}
		return nil
	case errors.Is(err, framechan.ErrEmpty):
		if s.Running() {
			waitWarn.Do(func() {
				xr.Logger().Warn("oxr: no frame state", "err", ErrNoFrameState, "retries", policy.MaxRetries)
			})
		}
		return nil
	default:
		return err
	}
}

var (
	waitWarn   = everySecond()
	locateWarn = everySecond()
	viewsWarn  = everySecond()
)

// LocateViews locates both eyes at the predicted display time. On failure
// the previous views are kept.
func LocateViews(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	fs := engine.MustGet[FrameState](w)
	views, err := s.rt.LocateViews(PrimaryStereo, fs.PredictedDisplayTime, s.space)
	if err != nil {
		locateWarn.Do(func() {
			xr.Logger().Warn("oxr: locate views", "err", err)
		})
		return nil
	}
	engine.Insert(w, Views(views))
	return nil
}

// BeginFrame begins the frame on the runtime's frame stream.
func BeginFrame(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	stream := engine.MustGet[*FrameStream](w)
	if err := stream.Begin(); err != nil {
		return frameError(w, s, "begin", err)
	}
	return nil
}

// AcquireImage acquires the next swapchain image and waits until it can
// be rendered to. The renderer draws into Swapchain.Index() next.
func AcquireImage(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	sc := engine.MustGet[*Swapchain](w)
	policy, ok := engine.Get[FramePolicy](w)
	if !ok {
		policy = DefaultFramePolicy()
	}
	if _, err := sc.Acquire(); err != nil {
		return frameError(w, s, "acquire", err)
	}
	if err := sc.Wait(policy.ImageWaitTimeout); err != nil {
		return frameError(w, s, "wait_image", err)
	}
	return nil
}

// EndFrame releases the rendered image and ends the frame. A frame the
// runtime will not display is ended with no layers.
func EndFrame(w *engine.World) (err error) {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	fs, _ := engine.Remove[FrameState](w)
	stream := engine.MustGet[*FrameStream](w)
	if !stream.InFrame() {
		return nil
	}
	_, span := startSpan(w.Context(), "oxr.end_frame",
		attribute.Int64("xr.frame", int64(fs.Frame)),
		attribute.Bool("xr.should_render", fs.ShouldRender))
	defer func() { endSpan(span, err) }()
	sc := engine.MustGet[*Swapchain](w)
	info := engine.MustGet[GraphicsInfo](w)

	var layers []CompositionLayer
	if fs.ShouldRender {
		if err := sc.Release(); err != nil {
			return frameError(w, s, "release", err)
		}
		views, _ := engine.Get[Views](w)
		pt, _ := engine.Get[*Passthrough](w)
		layers = frameLayers(s, sc, info.Resolution, views, pt)
	} else if err := sc.Discard(); err != nil {
		xr.Logger().Debug("oxr: held image not returned", "err", err)
	}

	if err := stream.End(fs.PredictedDisplayTime, info.BlendMode, layers); err != nil {
		return frameError(w, s, "end", err)
	}
	if len(layers) > 0 {
		metrics.RecordFrame(backendLabel, metrics.FrameSubmitted)
	} else {
		metrics.RecordFrame(backendLabel, metrics.FrameSkipped)
	}
	return nil
}

// frameLayers builds the composition layers of a displayed frame. With
// passthrough the camera layer goes first so the projection is blended
// over it.
func frameLayers(s *Session, sc *Swapchain, res Resolution, views Views, pt *Passthrough) []CompositionLayer {
	if len(views) != 2 {
		viewsWarn.Do(func() {
			xr.Logger().Warn("oxr: frame has no located views", "views", len(views))
		})
		return nil
	}
	rect := Rect{Width: int32(res.Width), Height: int32(res.Height)}
	proj := ProjectionLayer{
		Space: s.space,
		Views: make([]ProjectionView, len(views)),
	}
	for i, v := range views {
		proj.Views[i] = ProjectionView{
			Pose: v.Pose,
			Fov:  v.Fov,
			SubImage: SwapchainSubImage{
				Swapchain:  sc.Handle(),
				Rect:       rect,
				ArrayIndex: uint32(i),
			},
		}
	}
	if pt == nil {
		return []CompositionLayer{proj}
	}
	proj.Flags = LayerUnpremultipliedAlpha
	return []CompositionLayer{pt.Layer(), proj}
}

// DestroyRenderSession tears down the render-world session resources.
// It runs RenderSessionEnding before the session itself is destroyed.
func DestroyRenderSession(w *engine.World) error {
	var errs []error
	engine.Remove[FrameState](w)
	engine.Remove[Views](w)
	engine.Remove[*FrameStream](w)
	engine.Remove[*SwapchainImages](w)
	engine.Remove[GraphicsInfo](w)
	if pt, ok := engine.Remove[*Passthrough](w); ok {
		errs = append(errs, pt.Destroy())
	}
	if sc, ok := engine.Remove[*Swapchain](w); ok {
		errs = append(errs, sc.Destroy())
	}
	errs = append(errs, w.RunSchedule(xr.RenderSessionEnding))
	if s, ok := engine.Remove[*Session](w); ok {
		errs = append(errs, s.Destroy())
	}
	engine.Insert(w, SessionStarted(false))
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("oxr: destroy render session: %w", err)
	}
	return nil
}

// destroyRenderResources releases a bundle the render world never took.
func destroyRenderResources(res RenderResources) []error {
	var errs []error
	if res.Passthrough != nil {
		errs = append(errs, res.Passthrough.Destroy())
	}
	if res.Swapchain != nil {
		errs = append(errs, res.Swapchain.Destroy())
	}
	if res.Session != nil {
		errs = append(errs, res.Session.Destroy())
	}
	return errs
}
