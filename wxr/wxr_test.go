// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wxr_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/wxr"
)

type fakeSystem struct {
	supported map[wxr.SessionMode]bool
	failMode  wxr.SessionMode
	failQuery bool
	failSpace bool

	mu       sync.Mutex
	requests []wxr.SessionInit
	session  *fakeSession
}

func (s *fakeSystem) IsSessionSupported(_ context.Context, m wxr.SessionMode) (bool, error) {
	if s.failQuery && m == s.failMode {
		return false, errors.New("support query failed")
	}
	return s.supported[m], nil
}

func (s *fakeSystem) RequestSession(_ context.Context, m wxr.SessionMode, init wxr.SessionInit) (wxr.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, init)
	if !s.supported[m] {
		return nil, wxr.ErrModeUnsupported
	}
	s.session = &fakeSession{failSpace: s.failSpace}
	return s.session, nil
}

func (s *fakeSystem) last() *fakeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

type fakeSession struct {
	failSpace bool

	mu     sync.Mutex
	events []wxr.SessionEvent
	ended  bool
	frames int
	layer  wxr.LayerInit
}

func (s *fakeSession) CreateLayer(init wxr.LayerInit) (wxr.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layer = init
	return 7, nil
}

func (s *fakeSession) UpdateRenderState(wxr.Layer) error { return nil }

func (s *fakeSession) RequestReferenceSpace(context.Context, wxr.ReferenceSpaceType) (wxr.ReferenceSpace, error) {
	if s.failSpace {
		return 0, errors.New("space refused")
	}
	return 3, nil
}

func (s *fakeSession) RequestAnimationFrame(context.Context) (wxr.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return wxr.Frame{}, wxr.ErrSessionEnded
	}
	s.frames++
	return wxr.Frame{Time: time.Duration(s.frames) * 11 * time.Millisecond, Views: make([]wxr.View, 2)}, nil
}

func (s *fakeSession) PollEvent() wxr.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev
}

func (s *fakeSession) push(ev wxr.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeSession) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.ended = true
		s.events = append(s.events, wxr.Ended{})
	}
	return nil
}

func (s *fakeSession) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

type fakeCanvas struct{ n int }

func (c *fakeCanvas) RequestAnimationFrame(context.Context) (time.Duration, error) {
	c.n++
	return time.Duration(c.n) * 16 * time.Millisecond, nil
}

func allModes() map[wxr.SessionMode]bool {
	return map[wxr.SessionMode]bool{wxr.Inline: true, wxr.ImmersiveVR: true, wxr.ImmersiveAR: true}
}

func newApp(t *testing.T, sys wxr.System, opts wxr.Options) (*engine.App, *wxr.Runner) {
	t.Helper()
	app := engine.New()
	if err := app.AddPlugins(xr.SessionPlugin{}, wxr.Plugin{System: sys, Options: opts}); err != nil {
		t.Fatalf("AddPlugins() error = %v", err)
	}
	return app, &wxr.Runner{App: app, Canvas: &fakeCanvas{}}
}

func status(app *engine.App) xr.Status {
	st, _ := xr.StatusOf(app.Main)
	return st
}

func stepUntil(t *testing.T, r *wxr.Runner, cond func() bool) {
	t.Helper()
	for range 200 {
		if cond() {
			return
		}
		if err := r.Step(context.Background()); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached, status %v", status(r.App))
}

func TestFeatureSet(t *testing.T) {
	s := wxr.FeatureSet{}.Enable(wxr.HandTracking).Enable(wxr.LocalFloor).Enable(wxr.HandTracking).Enable("")
	if diff := cmp.Diff([]string{"hand-tracking", "local-floor"}, s.Strings()); diff != "" {
		t.Errorf("Strings() mismatch (-want +got):\n%s", diff)
	}
	if !s.Has(wxr.LocalFloor) || s.Has(wxr.HitTest) {
		t.Errorf("Has() wrong for %v", s)
	}
	if !wxr.DOMOverlay.Known() || wxr.Feature("plane-detection").Known() {
		t.Error("Known() wrong")
	}
}

func TestParseSessionMode(t *testing.T) {
	tests := []struct {
		in      string
		want    wxr.SessionMode
		wantErr bool
	}{
		{"inline", wxr.Inline, false},
		{"immersive-vr", wxr.ImmersiveVR, false},
		{"vr", wxr.ImmersiveVR, false},
		{"immersive-ar", wxr.ImmersiveAR, false},
		{"mr", wxr.ImmersiveAR, false},
		{"desktop", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := wxr.ParseSessionMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSessionMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, wxr.ErrUnknownSessionMode) {
					t.Errorf("error = %v, want ErrUnknownSessionMode", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSessionMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.in == got.String() {
				return
			}
			if back, _ := wxr.ParseSessionMode(got.String()); back != got {
				t.Errorf("round trip of %v = %v", got, back)
			}
		})
	}
}

func TestParseReferenceSpace(t *testing.T) {
	for _, want := range []wxr.ReferenceSpaceType{wxr.SpaceLocalFloor, wxr.SpaceLocal, wxr.SpaceViewer, wxr.SpaceUnbounded, wxr.SpaceBoundedFloor} {
		got, err := wxr.ParseReferenceSpace(want.String())
		if err != nil || got != want {
			t.Errorf("ParseReferenceSpace(%q) = %v, %v", want.String(), got, err)
		}
	}
	if _, err := wxr.ParseReferenceSpace("stage"); !errors.Is(err, wxr.ErrUnknownReferenceSpace) {
		t.Errorf("ParseReferenceSpace(stage) error = %v", err)
	}
}

func TestDetectModes(t *testing.T) {
	sys := &fakeSystem{
		supported: map[wxr.SessionMode]bool{wxr.Inline: true, wxr.ImmersiveVR: true},
		failQuery: true,
		failMode:  wxr.ImmersiveVR,
	}
	got := wxr.DetectModes(context.Background(), sys)
	want := wxr.EnterButtons{Inline: true}
	if got != want {
		t.Errorf("DetectModes() = %+v, want %+v", got, want)
	}
}

func TestPlugin_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		sys  wxr.System
	}{
		{name: "no webxr", sys: nil},
		{name: "mode unsupported", sys: &fakeSystem{supported: map[wxr.SessionMode]bool{wxr.Inline: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, r := newApp(t, tt.sys, wxr.DefaultOptions())
			if got := status(app); got != xr.StatusUnavailable {
				t.Errorf("status = %v, want Unavailable", got)
			}
			if !engine.MustGet[engine.RenderCreation](app.Render).Automatic() {
				t.Error("renderer not automatic")
			}
			if err := r.Run(context.Background(), 3); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if r.Source() != wxr.SourceCanvas {
				t.Errorf("Source() = %v, want canvas", r.Source())
			}
			if !engine.Has[wxr.CanvasFrame](app.Main) {
				t.Error("no canvas frame inserted")
			}
		})
	}
}

func TestLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sys := &fakeSystem{supported: allModes()}
	opts := wxr.DefaultOptions()
	opts.Required = opts.Required.Enable(wxr.HandTracking)
	app, r := newApp(t, sys, opts)

	if got := status(app); got != xr.StatusAvailable {
		t.Fatalf("status = %v, want Available", got)
	}
	if got := engine.MustGet[wxr.EnterButtons](app.Main); got != (wxr.EnterButtons{VR: true, AR: true, Inline: true}) {
		t.Errorf("EnterButtons = %+v", got)
	}

	stepUntil(t, r, func() bool { return status(app) == xr.StatusRunning })
	a := engine.MustGet[*wxr.ActiveSession](app.Main)
	if a.Mode != wxr.ImmersiveVR || !a.HasSpace || a.Layer != 7 {
		t.Errorf("ActiveSession = %+v", a)
	}
	if r.Source() != wxr.SourceSession {
		t.Errorf("Source() = %v, want session", r.Source())
	}
	want := []wxr.SessionInit{{Required: []string{"hand-tracking"}, Optional: []string{"local-floor"}}}
	if diff := cmp.Diff(want, sys.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if !sys.last().layer.Alpha {
		t.Error("base layer created without alpha")
	}

	if err := r.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !wxr.ShouldRender(app.Main) {
		t.Error("ShouldRender() = false while visible")
	}
	sys.last().push(wxr.VisibilityChanged{State: wxr.Hidden})
	if err := r.Run(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if wxr.ShouldRender(app.Main) {
		t.Error("ShouldRender() = true while hidden")
	}

	engine.Send(app.Main, xr.EndSession{})
	stepUntil(t, r, func() bool {
		return status(app) == xr.StatusAvailable && !engine.Has[*wxr.ActiveSession](app.Main)
	})
	if !sys.last().Ended() {
		t.Error("session not ended")
	}
	if r.Source() != wxr.SourceCanvas {
		t.Errorf("Source() = %v after end, want canvas", r.Source())
	}
	// Not recreated automatically.
	if err := r.Run(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if n := len(sys.requests); n != 1 {
		t.Errorf("session requests = %d, want 1", n)
	}
	if err := wxr.Shutdown(context.Background(), app); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestLifecycle_ReferenceSpaceFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	sys := &fakeSystem{supported: allModes(), failSpace: true}
	app, r := newApp(t, sys, wxr.DefaultOptions())

	stepUntil(t, r, func() bool { s := sys.last(); return s != nil && s.Ended() })
	stepUntil(t, r, func() bool { return status(app) == xr.StatusAvailable && !engine.Has[*wxr.ActiveSession](app.Main) })
	if err := wxr.Shutdown(context.Background(), app); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestMapSessionEvent(t *testing.T) {
	tests := []struct {
		name   string
		ev     wxr.SessionEvent
		cur    xr.Status
		want   xr.Status
		ending bool
		ok     bool
	}{
		{"end while running", wxr.Ended{}, xr.StatusRunning, xr.StatusExiting, true, true},
		{"end while ready", wxr.Ended{}, xr.StatusReady, xr.StatusExiting, true, true},
		{"end twice", wxr.Ended{}, xr.StatusExiting, xr.StatusExiting, false, false},
		{"visibility", wxr.VisibilityChanged{State: wxr.Hidden}, xr.StatusRunning, xr.StatusRunning, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ending, ok := wxr.MapSessionEvent(tt.ev, tt.cur)
			if got != tt.want || ending != tt.ending || ok != tt.ok {
				t.Errorf("MapSessionEvent() = %v, %v, %v, want %v, %v, %v", got, ending, ok, tt.want, tt.ending, tt.ok)
			}
		})
	}
}
