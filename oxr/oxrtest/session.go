// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxrtest

import (
	"slices"
	"time"

	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/oxr"
)

// SubmittedFrame is one EndFrame call as the compositor saw it.
type SubmittedFrame struct {
	DisplayTime oxr.Time
	BlendMode   oxr.BlendMode
	Layers      []oxr.CompositionLayer
}

// Session is a simulated session. Every method is safe for concurrent use.
type Session struct {
	inst   *Instance
	handle oxr.SessionHandle

	// guarded by inst.rt.mu
	running     bool
	destroyed   bool
	waits       int
	frameBegins int
	submitted   []SubmittedFrame
	swapchains  []*Swapchain
	spaces      int
	passthrough int
}

var _ oxr.RuntimeSession = (*Session)(nil)

func (s *Session) rt() *Runtime { return s.inst.rt }

// Handle returns the handle carried by the session's state events.
func (s *Session) Handle() oxr.SessionHandle { return s.handle }

// Running reports whether the session is between Begin and End.
func (s *Session) Running() bool {
	s.rt().mu.Lock()
	defer s.rt().mu.Unlock()
	return s.running
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool {
	s.rt().mu.Lock()
	defer s.rt().mu.Unlock()
	return s.destroyed
}

// Submitted returns every frame ended so far.
func (s *Session) Submitted() []SubmittedFrame {
	s.rt().mu.Lock()
	defer s.rt().mu.Unlock()
	return slices.Clone(s.submitted)
}

// Swapchains returns the swapchains created by the session.
func (s *Session) Swapchains() []*Swapchain {
	s.rt().mu.Lock()
	defer s.rt().mu.Unlock()
	return slices.Clone(s.swapchains)
}

// LivePassthrough returns the number of passthrough handles not yet
// destroyed.
func (s *Session) LivePassthrough() int {
	s.rt().mu.Lock()
	defer s.rt().mu.Unlock()
	return s.passthrough
}

// Begin starts the session and queues SYNCHRONIZED, VISIBLE and FOCUSED.
func (s *Session) Begin(oxr.ViewConfigurationType) error {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("BeginSession"); err != nil {
		return err
	}
	s.running = true
	s.inst.pushStates(s.handle, oxr.SessionStateSynchronized, oxr.SessionStateVisible, oxr.SessionStateFocused)
	r.cond.Broadcast()
	return nil
}

// End stops the session and queues IDLE then EXITING. A blocked frame
// wait returns ErrSessionNotRunning.
func (s *Session) End() error {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("EndSession"); err != nil {
		return err
	}
	s.running = false
	s.inst.pushStates(s.handle, oxr.SessionStateIdle, oxr.SessionStateExiting)
	r.cond.Broadcast()
	return nil
}

// RequestExit queues STOPPING.
func (s *Session) RequestExit() error {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("RequestExitSession"); err != nil {
		return err
	}
	s.inst.pushStates(s.handle, oxr.SessionStateStopping)
	return nil
}

func (s *Session) EnumerateSwapchainFormats() ([]int64, error) {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("EnumerateSwapchainFormats"); err != nil {
		return nil, err
	}
	return slices.Clone(r.cfg.Formats), nil
}

func (s *Session) CreateSwapchain(native int64, info graphics.SwapchainCreateInfo) (oxr.RuntimeSwapchain, error) {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateSwapchain"); err != nil {
		return nil, err
	}
	sc := &Swapchain{sess: s, Native: native, Info: info, count: max(r.cfg.Images, 1), next: 0}
	s.swapchains = append(s.swapchains, sc)
	return sc, nil
}

func (s *Session) CreateReferenceSpace(oxr.ReferenceSpaceType, oxr.Pose) (oxr.Space, error) {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateReferenceSpace"); err != nil {
		return 0, err
	}
	s.spaces++
	return oxr.Space(s.spaces), nil
}

// LocateViews returns both eyes 64mm apart at head height.
func (s *Session) LocateViews(_ oxr.ViewConfigurationType, _ oxr.Time, _ oxr.Space) ([]oxr.View, error) {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("LocateViews"); err != nil {
		return nil, err
	}
	fov := oxr.Fov{AngleLeft: -0.8, AngleRight: 0.8, AngleUp: 0.8, AngleDown: -0.8}
	left := oxr.IdentityPose
	left.Position = oxr.Vec3{X: -0.032, Y: 1.6}
	right := oxr.IdentityPose
	right.Position = oxr.Vec3{X: 0.032, Y: 1.6}
	return []oxr.View{{Pose: left, Fov: fov}, {Pose: right, Fov: fov}}, nil
}

// Destroy destroys the session and discards its queued state changes.
func (s *Session) Destroy() error {
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	s.destroyed = true
	s.running = false
	s.inst.dropStates(s.handle)
	r.cond.Broadcast()
	return r.record("DestroySession")
}

// passthroughSession adds XR_FB_passthrough to a session.
type passthroughSession struct {
	*Session
}

var _ oxr.PassthroughSession = passthroughSession{}

func (p passthroughSession) CreatePassthrough(bool) (oxr.PassthroughHandle, error) {
	r := p.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreatePassthrough"); err != nil {
		return 0, err
	}
	p.passthrough++
	return oxr.PassthroughHandle(100 + p.passthrough), nil
}

func (p passthroughSession) CreatePassthroughLayer(oxr.PassthroughHandle, bool) (oxr.PassthroughHandle, error) {
	r := p.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreatePassthroughLayer"); err != nil {
		return 0, err
	}
	p.passthrough++
	return oxr.PassthroughHandle(200 + p.passthrough), nil
}

func (p passthroughSession) DestroyPassthrough(oxr.PassthroughHandle) error {
	r := p.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	p.passthrough--
	return r.record("DestroyPassthrough")
}

type frameWaiter struct{ s *Session }

// Wait lets the application run at most one frame ahead of the last
// begun frame. It returns ErrSessionNotRunning once the session ends.
func (fw frameWaiter) Wait() (oxr.FrameState, error) {
	s := fw.s
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("WaitFrame"); err != nil {
		return oxr.FrameState{}, err
	}
	for s.running && s.waits > s.frameBegins+1 {
		r.cond.Wait()
	}
	if !s.running {
		return oxr.FrameState{}, ErrSessionNotRunning
	}
	s.waits++
	render := true
	if r.cfg.ShouldRender != nil {
		render = r.cfg.ShouldRender(s.waits)
	}
	return oxr.FrameState{
		PredictedDisplayTime:   oxr.Time(time.Duration(s.waits) * r.cfg.FramePeriod),
		PredictedDisplayPeriod: r.cfg.FramePeriod,
		ShouldRender:           render,
	}, nil
}

type frameStream struct{ s *Session }

func (fs frameStream) Begin() error {
	s := fs.s
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("BeginFrame"); err != nil {
		return err
	}
	if !s.running {
		return ErrSessionNotRunning
	}
	s.frameBegins++
	r.cond.Broadcast()
	return nil
}

func (fs frameStream) End(t oxr.Time, blend oxr.BlendMode, layers []oxr.CompositionLayer) error {
	s := fs.s
	r := s.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("EndFrame"); err != nil {
		return err
	}
	if !s.running {
		return ErrSessionNotRunning
	}
	s.submitted = append(s.submitted, SubmittedFrame{DisplayTime: t, BlendMode: blend, Layers: slices.Clone(layers)})
	return nil
}

// Swapchain is a simulated swapchain whose images are acquired round-robin.
type Swapchain struct {
	sess *Session

	Native int64
	Info   graphics.SwapchainCreateInfo

	// guarded by rt.mu
	count     int
	next      int
	destroyed bool
}

var _ oxr.RuntimeSwapchain = (*Swapchain)(nil)

// Destroyed reports whether Destroy was called.
func (sc *Swapchain) Destroyed() bool {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	return sc.destroyed
}

func (sc *Swapchain) EnumerateImages() ([]uint64, error) {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("EnumerateSwapchainImages"); err != nil {
		return nil, err
	}
	out := make([]uint64, sc.count)
	for i := range out {
		out[i] = 0x1000 + uint64(i)
	}
	return out, nil
}

func (sc *Swapchain) AcquireImage() (uint32, error) {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("AcquireImage"); err != nil {
		return 0, err
	}
	i := sc.next
	sc.next = (sc.next + 1) % sc.count
	return uint32(i), nil
}

func (sc *Swapchain) WaitImage(time.Duration) error {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record("WaitImage")
}

func (sc *Swapchain) ReleaseImage() error {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record("ReleaseImage")
}

func (sc *Swapchain) Destroy() error {
	r := sc.sess.rt()
	r.mu.Lock()
	defer r.mu.Unlock()
	sc.destroyed = true
	return r.record("DestroySwapchain")
}
