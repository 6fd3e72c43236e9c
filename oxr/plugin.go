// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"context"
	"errors"
	"time"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/internal/metrics"
)

// Plugin initializes OpenXR and installs the session lifecycle and the
// frame cycle into an App. The xr.SessionPlugin must be added first.
//
// When the runtime cannot be initialized the plugin logs a warning, lets
// the host renderer create its own device and reports StatusUnavailable.
type Plugin struct {
	Entry   Entry
	Options Options
}

// Build implements engine.Plugin.
func (p Plugin) Build(app *engine.App) error {
	opts := p.Options
	if opts.Frame == (FramePolicy{}) {
		opts.Frame = DefaultFramePolicy()
	}

	res, err := Init(app.Main.Context(), p.Entry, opts)
	if err != nil {
		xr.Logger().Warn("oxr: failed to initialize, rendering without XR", "err", err)
		if err := app.InitRenderer(engine.RenderCreation{
			SynchronousPipelineCompilation: opts.SynchronousPipelineCompilation,
		}); err != nil {
			return err
		}
		xr.SetStatus(app.Main, xr.StatusUnavailable)
		metrics.SetStatus(backendLabel, xr.StatusUnavailable.String(), int(xr.StatusUnavailable))
		return nil
	}

	if err := app.InitRenderer(engine.RenderCreation{
		Device:                         res.Device,
		SynchronousPipelineCompilation: opts.SynchronousPipelineCompilation,
		Continuous:                     true,
	}); err != nil {
		_ = res.Instance.Destroy()
		return err
	}

	m := app.Main
	engine.Insert(m, res.Instance)
	engine.Insert(m, res.System)
	engine.Insert(m, res.Extensions)
	engine.Insert(m, res.Config)
	engine.Insert(m, opts.Frame)
	engine.Insert(m, SessionStarted(false))
	engine.Insert(m, CleanupSession(false))
	xr.RegisterEvents(m)
	xr.SetStatus(m, xr.StatusAvailable)
	metrics.SetStatus(backendLabel, xr.StatusAvailable.String(), int(xr.StatusAvailable))
	if err := m.InsertPhaseAfter(engine.Last, xr.Last); err != nil {
		return err
	}

	m.AddSystem(engine.First, "oxr.reset_cleanup", ResetCleanup)
	m.AddSystem(xr.Last, "oxr.poll_events", PollEvents)
	m.AddSystem(xr.Last, "oxr.create_session", CreateSessionSystem,
		engine.OnEvent[xr.CreateSession](), xr.StatusEquals(xr.StatusAvailable))
	m.AddSystem(xr.Last, "oxr.begin_session", BeginSessionSystem,
		engine.OnEvent[xr.BeginSession](), xr.StatusEquals(xr.StatusReady))
	m.AddSystem(xr.Last, "oxr.end_session", EndSessionSystem,
		engine.OnEvent[xr.EndSession](), xr.StatusEquals(xr.StatusRunning))
	m.AddSystem(xr.Last, "oxr.stop_session", StopSessionSystem,
		xr.StatusEquals(xr.StatusStopping), IsSessionStarted)
	m.AddSystem(xr.Last, "oxr.destroy_session", DestroySessionSystem,
		engine.OnEvent[xr.DestroySession](), xr.StatusEquals(xr.StatusExiting))
	m.AddSystem(xr.SessionEnding, "oxr.clean_session", CleanSession)

	r := app.Render
	engine.Insert(r, opts.Frame)
	r.AddSystem(engine.Prepare, "oxr.wait_frame", WaitFrame, IsSessionStarted)
	r.AddSystem(engine.Prepare, "oxr.locate_views", LocateViews, FrameReceived)
	r.AddSystem(engine.Prepare, "oxr.begin_frame", BeginFrame, FrameReceived)
	r.AddSystem(engine.Prepare, "oxr.acquire_image", AcquireImage, FrameReceived, ShouldRender)
	r.AddSystem(engine.Cleanup, "oxr.end_frame", EndFrame, FrameReceived)
	r.AddSystem(engine.PostCleanup, "oxr.destroy_render_session", DestroyRenderSession,
		engine.ResourceEquals(CleanupSession(true)))

	app.AddExtract("oxr.session", ExtractSession)
	return nil
}

// shutdownWait bounds how long Shutdown waits for the frame waiter.
const shutdownWait = time.Second

// Shutdown destroys whatever session is still alive in either world and
// then the instance. It is safe to call on an App whose plugin failed to
// initialize.
func Shutdown(ctx context.Context, app *engine.App) error {
	var errs []error
	fw, hasWaiter := engine.Get[*FrameWaiter](app.Main)
	if s, ok := engine.Get[*Session](app.Main); ok {
		s.running.Store(false)
	}
	if s, ok := engine.Get[*Session](app.Render); ok {
		s.running.Store(false)
	}
	errs = append(errs, CleanSession(app.Main))
	errs = append(errs, DestroyRenderSession(app.Render))
	if hasWaiter {
		wctx, cancel := context.WithTimeout(ctx, shutdownWait)
		errs = append(errs, fw.Wait(wctx))
		cancel()
	}
	if inst, ok := engine.Remove[Instance](app.Main); ok {
		errs = append(errs, inst.Destroy())
	}
	return errors.Join(errs...)
}
