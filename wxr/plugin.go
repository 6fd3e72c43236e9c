// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wxr

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/internal/metrics"
)

const backendLabel = "webxr"

// Options configures the WebXR plugin.
type Options struct {
	// Mode is the session mode requested on CreateSession.
	Mode SessionMode

	Required FeatureSet
	Optional FeatureSet

	// ReferenceSpace is requested when the session begins.
	ReferenceSpace ReferenceSpaceType

	// Alpha gives the base layer an alpha channel.
	Alpha bool
}

// DefaultOptions requests an immersive VR session in the local-floor
// space with an alpha base layer.
func DefaultOptions() Options {
	return Options{
		Mode:           ImmersiveVR,
		Optional:       FeatureSet{LocalFloor},
		ReferenceSpace: SpaceLocalFloor,
		Alpha:          true,
	}
}

// ActiveSession is the main-world resource of a created session.
type ActiveSession struct {
	Session    Session
	Mode       SessionMode
	Layer      Layer
	Space      ReferenceSpace
	HasSpace   bool
	Visibility Visibility
}

type sessionResult struct {
	session Session
	mode    SessionMode
	err     error
}

type spaceResult struct {
	session Session
	space   ReferenceSpace
	err     error
}

// requests tracks the browser promises in flight. Results are delivered
// to the main world through buffered channels and drained in First.
type requests struct {
	g        errgroup.Group
	sessions chan sessionResult
	spaces   chan spaceResult

	// main world only
	pending bool
}

func newRequests() *requests {
	return &requests{
		sessions: make(chan sessionResult, 1),
		spaces:   make(chan spaceResult, 1),
	}
}

// DetectModes asks the browser which session modes it supports. A failed
// query counts as unsupported.
func DetectModes(ctx context.Context, sys System) EnterButtons {
	var (
		mu      sync.Mutex
		buttons EnterButtons
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range Modes {
		g.Go(func() error {
			ok, err := sys.IsSessionSupported(gctx, m)
			if err != nil {
				xr.Logger().Warn("wxr: session support query failed", "mode", m.String(), "err", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			switch m {
			case ImmersiveVR:
				buttons.VR = ok
			case ImmersiveAR:
				buttons.AR = ok
			case Inline:
				buttons.Inline = ok
			}
			return nil
		})
	}
	_ = g.Wait()
	return buttons
}

// Plugin connects the application to the browser's WebXR system. The
// xr.SessionPlugin must be added first.
type Plugin struct {
	// System is navigator.xr; nil when the page has none.
	System  System
	Options Options
}

// Build implements engine.Plugin.
func (p Plugin) Build(app *engine.App) error {
	m := app.Main
	// The browser owns the WebGL context; the renderer never gets a
	// runtime device here.
	if err := app.InitRenderer(engine.RenderCreation{}); err != nil {
		return err
	}

	if p.System == nil {
		xr.Logger().Warn("wxr: browser has no WebXR support")
		engine.Insert(m, EnterButtons{})
		setStatus(m, xr.StatusUnavailable)
		return nil
	}
	buttons := DetectModes(m.Context(), p.System)
	engine.Insert(m, buttons)
	if !buttons.Supports(p.Options.Mode) {
		xr.Logger().Warn("wxr: requested session mode not supported", "mode", p.Options.Mode.String(),
			"err", ErrModeUnsupported)
		setStatus(m, xr.StatusUnavailable)
		return nil
	}

	engine.Insert(m, p.System)
	engine.Insert(m, p.Options)
	engine.Insert(m, newRequests())
	xr.RegisterEvents(m)
	setStatus(m, xr.StatusAvailable)
	if err := m.InsertPhaseAfter(engine.Last, xr.Last); err != nil {
		return err
	}

	m.AddSystem(engine.First, "wxr.insert_session", InsertSession)
	m.AddSystem(engine.First, "wxr.insert_reference_space", InsertReferenceSpace)
	m.AddSystem(xr.Last, "wxr.poll_events", PollEvents, engine.ResourceExists[*ActiveSession]())
	m.AddSystem(xr.Last, "wxr.create_session", CreateSessionSystem,
		engine.OnEvent[xr.CreateSession](), xr.StatusEquals(xr.StatusAvailable))
	m.AddSystem(xr.Last, "wxr.begin_session", BeginSessionSystem,
		engine.OnEvent[xr.BeginSession](), xr.StatusEquals(xr.StatusReady))
	m.AddSystem(xr.Last, "wxr.end_session", EndSessionSystem,
		engine.OnEvent[xr.EndSession](), xr.StatusEquals(xr.StatusRunning))
	m.AddSystem(xr.Last, "wxr.destroy_session", DestroySessionSystem,
		engine.OnEvent[xr.DestroySession](), xr.StatusEquals(xr.StatusExiting))
	m.AddSystem(xr.SessionEnding, "wxr.clean_session", CleanSession)
	return nil
}

func setStatus(w *engine.World, st xr.Status) {
	xr.SetStatus(w, st)
	metrics.SetStatus(backendLabel, st.String(), int(st))
}

// CreateSessionSystem requests a session. The browser resolves the
// request asynchronously; InsertSession picks up the result.
func CreateSessionSystem(w *engine.World) error {
	r := engine.MustGet[*requests](w)
	if r.pending || engine.Has[*ActiveSession](w) {
		return nil
	}
	sys := engine.MustGet[System](w)
	opts := engine.MustGet[Options](w)
	req := SessionInit{Required: opts.Required.Strings(), Optional: opts.Optional.Strings()}
	ctx := context.WithoutCancel(w.Context())

	r.pending = true
	r.g.Go(func() error {
		s, err := sys.RequestSession(ctx, opts.Mode, req)
		r.sessions <- sessionResult{session: s, mode: opts.Mode, err: err}
		return nil
	})
	return nil
}

// InsertSession installs a resolved session and configures its base
// layer. The status moves through Idle to Ready.
func InsertSession(w *engine.World) error {
	r := engine.MustGet[*requests](w)
	for {
		var res sessionResult
		select {
		case res = <-r.sessions:
		default:
			return nil
		}
		r.pending = false
		metrics.RecordSessionCreated(backendLabel, res.err)
		if res.err != nil {
			xr.Logger().Error("wxr: failed to create session", "mode", res.mode.String(), "err", res.err)
			continue
		}

		a := &ActiveSession{Session: res.session, Mode: res.mode}
		engine.Insert(w, a)
		xr.Logger().Info("wxr: session created", "mode", res.mode.String())
		setStatus(w, xr.StatusIdle)
		engine.Send(w, xr.SessionCreated)

		opts := engine.MustGet[Options](w)
		if err := configureSession(a, opts); err != nil {
			xr.Logger().Error("wxr: failed to configure session", "err", err)
			// The browser answers with an end event.
			_ = a.Session.End()
			continue
		}
		setStatus(w, xr.StatusReady)
	}
}

func configureSession(a *ActiveSession, opts Options) error {
	layer, err := a.Session.CreateLayer(LayerInit{Alpha: opts.Alpha})
	if err != nil {
		return fmt.Errorf("wxr: create layer: %w", err)
	}
	if err := a.Session.UpdateRenderState(layer); err != nil {
		return fmt.Errorf("wxr: update render state: %w", err)
	}
	a.Layer = layer
	return nil
}

// BeginSessionSystem requests the reference space. The session runs once
// the space resolves.
func BeginSessionSystem(w *engine.World) error {
	a, ok := engine.Get[*ActiveSession](w)
	if !ok {
		return nil
	}
	r := engine.MustGet[*requests](w)
	t := engine.MustGet[Options](w).ReferenceSpace
	ctx := context.WithoutCancel(w.Context())
	s := a.Session
	r.g.Go(func() error {
		space, err := s.RequestReferenceSpace(ctx, t)
		r.spaces <- spaceResult{session: s, space: space, err: err}
		return nil
	})
	return nil
}

// InsertReferenceSpace installs a resolved reference space and marks the
// session Running. A space for a session that is gone is dropped.
func InsertReferenceSpace(w *engine.World) error {
	r := engine.MustGet[*requests](w)
	for {
		var res spaceResult
		select {
		case res = <-r.spaces:
		default:
			return nil
		}
		a, ok := engine.Get[*ActiveSession](w)
		if !ok || a.Session != res.session {
			continue
		}
		if res.err != nil {
			xr.Logger().Error("wxr: failed to get reference space", "err", res.err)
			_ = a.Session.End()
			continue
		}
		a.Space, a.HasSpace = res.space, true
		setStatus(w, xr.StatusRunning)
	}
}

// MapSessionEvent maps a browser session event to a status change.
// ok is false when the event does not change the status.
func MapSessionEvent(ev SessionEvent, cur xr.Status) (st xr.Status, ending, ok bool) {
	switch ev.(type) {
	case Ended:
		if cur == xr.StatusExiting || cur == xr.StatusAvailable {
			return cur, false, false
		}
		return xr.StatusExiting, true, true
	default:
		return cur, false, false
	}
}

// PollEvents drains the session's event queue.
func PollEvents(w *engine.World) error {
	a := engine.MustGet[*ActiveSession](w)
	for ev := a.Session.PollEvent(); ev != nil; ev = a.Session.PollEvent() {
		if v, ok := ev.(VisibilityChanged); ok {
			a.Visibility = v.State
			xr.Logger().Debug("wxr: visibility changed", "state", v.State.String())
			continue
		}
		cur, _ := xr.StatusOf(w)
		st, ending, ok := MapSessionEvent(ev, cur)
		if !ok {
			continue
		}
		setStatus(w, st)
		if ending {
			engine.Send(w, xr.SessionAboutToBeDestroyed)
		}
	}
	return nil
}

// EndSessionSystem ends the session. The browser fires Ended afterwards.
func EndSessionSystem(w *engine.World) error {
	a, ok := engine.Get[*ActiveSession](w)
	if !ok {
		return nil
	}
	if err := a.Session.End(); err != nil {
		return fmt.Errorf("wxr: end session: %w", err)
	}
	return nil
}

// DestroySessionSystem drops the ended session and returns to Available.
func DestroySessionSystem(w *engine.World) error {
	if err := CleanSession(w); err != nil {
		return err
	}
	setStatus(w, xr.StatusAvailable)
	return nil
}

// CleanSession removes the session resources. It may run more than once.
func CleanSession(w *engine.World) error {
	engine.Remove[*ActiveSession](w)
	engine.Remove[Frame](w)
	return nil
}

// ShouldRender holds while a session frame is current and the session is
// not hidden.
func ShouldRender(w *engine.World) bool {
	if !engine.Has[Frame](w) {
		return false
	}
	a, ok := engine.Get[*ActiveSession](w)
	return ok && a.Visibility != Hidden
}

// Shutdown ends any active session and waits for browser requests in
// flight to settle.
func Shutdown(ctx context.Context, app *engine.App) error {
	var endErr error
	if a, ok := engine.Get[*ActiveSession](app.Main); ok {
		endErr = a.Session.End()
	}
	_ = CleanSession(app.Main)
	r, ok := engine.Get[*requests](app.Main)
	if !ok {
		return endErr
	}
	done := make(chan struct{})
	go func() {
		_ = r.g.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return endErr
		case res := <-r.sessions:
			// Resolved after shutdown began; nobody will use it.
			if res.err == nil {
				_ = res.session.End()
			}
		case <-r.spaces:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
