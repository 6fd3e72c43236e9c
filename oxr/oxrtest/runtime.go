// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package oxrtest provides an in-process OpenXR runtime for tests and
// demos. It follows the session state machine a conformant runtime
// reports and records every call it receives.
package oxrtest

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/oxr"
)

// ErrSessionNotRunning is returned by frame calls outside a running session.
var ErrSessionNotRunning = errors.New("oxrtest: session not running")

// ErrInjected is wrapped by every failure configured through Config.Fail.
var ErrInjected = errors.New("oxrtest: injected failure")

// Config describes the simulated runtime and headset.
type Config struct {
	RuntimeName string
	SystemName  string

	Extensions         oxr.Extensions
	ViewConfigurations []oxr.ViewConfigurationType
	Views              []oxr.ViewConfigurationView
	BlendModes         []oxr.BlendMode

	// Formats are native Vulkan format codes in runtime preference order.
	Formats []int64

	// Images is the number of images per swapchain.
	Images int

	// VulkanMin and VulkanMax bound the supported Vulkan versions.
	VulkanMin oxr.Version
	VulkanMax oxr.Version

	// FramePeriod is the predicted display period. Wait never sleeps.
	FramePeriod time.Duration

	// ShouldRender decides the flag per frame, numbered from 1.
	// Nil renders every frame.
	ShouldRender func(frame int) bool

	// Fail makes the named call return an error wrapping ErrInjected.
	// Names are the method names, e.g. "CreateSession" or "LocateViews".
	Fail map[string]bool

	// NoPassthrough makes sessions not implement oxr.PassthroughSession.
	NoPassthrough bool
}

// DefaultConfig is a stereo headset with Vulkan, passthrough and hand
// tracking, 1832x1920 per eye and three swapchain images.
func DefaultConfig() Config {
	view := oxr.ViewConfigurationView{
		RecommendedWidth:       1832,
		RecommendedHeight:      1920,
		MaxWidth:               4096,
		MaxHeight:              4096,
		RecommendedSampleCount: 1,
		MaxSampleCount:         4,
	}
	return Config{
		RuntimeName:        "oxrtest",
		SystemName:         "Simulated HMD",
		Extensions:         oxr.Extensions{graphics.Vulkan.Extension(), oxr.ExtFBPassthrough, oxr.ExtHandTracking},
		ViewConfigurations: []oxr.ViewConfigurationType{oxr.PrimaryStereo, oxr.PrimaryMono},
		Views:              []oxr.ViewConfigurationView{view, view},
		BlendModes:         []oxr.BlendMode{oxr.BlendOpaque, oxr.BlendAlphaBlend},
		Formats:            []int64{43, 37, 44},
		Images:             3,
		VulkanMin:          oxr.NewVersion(1, 0, 0),
		VulkanMax:          oxr.NewVersion(1, 3, 0),
		FramePeriod:        11 * time.Millisecond,
	}
}

// Runtime is a simulated runtime entry point.
type Runtime struct {
	cfg Config

	mu    sync.Mutex
	cond  *sync.Cond
	calls []string

	instance *Instance
	session  *Session
	sessions oxr.SessionHandle
}

// New returns a runtime behaving as cfg describes.
func New(cfg Config) *Runtime {
	r := &Runtime{cfg: cfg}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// record appends a call and returns the injected error for it, if any.
// r.mu must be held.
func (r *Runtime) record(name string) error {
	r.calls = append(r.calls, name)
	if r.cfg.Fail[name] {
		return fmt.Errorf("%w: %s", ErrInjected, name)
	}
	return nil
}

// Calls returns every recorded call in order.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Count returns how often the named call was made.
func (r *Runtime) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Instance returns the most recently created instance.
func (r *Runtime) Instance() *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instance
}

// Session returns the most recently created session.
func (r *Runtime) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// EnumerateExtensions implements oxr.Entry.
func (r *Runtime) EnumerateExtensions() (oxr.Extensions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("EnumerateExtensions"); err != nil {
		return nil, err
	}
	return slices.Clone(r.cfg.Extensions), nil
}

// CreateInstance implements oxr.Entry.
func (r *Runtime) CreateInstance(app oxr.AppInfo, exts oxr.Extensions, _ []string) (oxr.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateInstance"); err != nil {
		return nil, err
	}
	for _, e := range exts {
		if !r.cfg.Extensions.Has(e) {
			return nil, fmt.Errorf("oxrtest: extension %q not supported", e)
		}
	}
	r.instance = &Instance{rt: r, App: app, Enabled: slices.Clone(exts)}
	return r.instance, nil
}

// Instance is a simulated instance. It implements oxr.Instance and
// oxr.VulkanInstance.
type Instance struct {
	rt *Runtime

	App     oxr.AppInfo
	Enabled oxr.Extensions

	// guarded by rt.mu
	events    []oxr.Event
	destroyed bool
}

var (
	_ oxr.Instance       = (*Instance)(nil)
	_ oxr.VulkanInstance = (*Instance)(nil)
)

const systemID oxr.SystemID = 1

// PushEvent queues an event for PollEvent.
func (i *Instance) PushEvent(ev oxr.Event) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	i.events = append(i.events, ev)
}

// pushStates queues state changes of session h. rt.mu must be held.
func (i *Instance) pushStates(h oxr.SessionHandle, states ...oxr.SessionState) {
	for _, s := range states {
		i.events = append(i.events, oxr.SessionStateChanged{Session: h, State: s})
	}
}

// dropStates removes the queued state changes of session h. rt.mu must
// be held.
func (i *Instance) dropStates(h oxr.SessionHandle) {
	i.events = slices.DeleteFunc(i.events, func(ev oxr.Event) bool {
		sc, ok := ev.(oxr.SessionStateChanged)
		return ok && sc.Session == h
	})
}

// Destroyed reports whether Destroy was called.
func (i *Instance) Destroyed() bool {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	return i.destroyed
}

func (i *Instance) Properties() (oxr.InstanceProperties, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("Properties"); err != nil {
		return oxr.InstanceProperties{}, err
	}
	return oxr.InstanceProperties{
		RuntimeName:    i.rt.cfg.RuntimeName,
		RuntimeVersion: oxr.NewVersion(1, 0, 0),
	}, nil
}

func (i *Instance) System(ff oxr.FormFactor) (oxr.SystemID, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("System"); err != nil {
		return 0, err
	}
	if ff != oxr.HeadMountedDisplay {
		return 0, fmt.Errorf("oxrtest: form factor %d not supported", ff)
	}
	return systemID, nil
}

func (i *Instance) SystemProperties(oxr.SystemID) (oxr.SystemProperties, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("SystemProperties"); err != nil {
		return oxr.SystemProperties{}, err
	}
	return oxr.SystemProperties{SystemName: i.rt.cfg.SystemName}, nil
}

func (i *Instance) EnumerateViewConfigurations(oxr.SystemID) ([]oxr.ViewConfigurationType, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("EnumerateViewConfigurations"); err != nil {
		return nil, err
	}
	return slices.Clone(i.rt.cfg.ViewConfigurations), nil
}

func (i *Instance) EnumerateViewConfigurationViews(_ oxr.SystemID, vc oxr.ViewConfigurationType) ([]oxr.ViewConfigurationView, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("EnumerateViewConfigurationViews"); err != nil {
		return nil, err
	}
	if vc != oxr.PrimaryStereo {
		return i.rt.cfg.Views[:min(1, len(i.rt.cfg.Views))], nil
	}
	return slices.Clone(i.rt.cfg.Views), nil
}

func (i *Instance) EnumerateEnvironmentBlendModes(oxr.SystemID, oxr.ViewConfigurationType) ([]oxr.BlendMode, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("EnumerateEnvironmentBlendModes"); err != nil {
		return nil, err
	}
	return slices.Clone(i.rt.cfg.BlendModes), nil
}

func (i *Instance) VulkanGraphicsRequirements(oxr.SystemID) (oxr.Version, oxr.Version, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("VulkanGraphicsRequirements"); err != nil {
		return 0, 0, err
	}
	return i.rt.cfg.VulkanMin, i.rt.cfg.VulkanMax, nil
}

func (i *Instance) CreateVulkanDevice(_ oxr.SystemID, _ oxr.VulkanDeviceInfo) (oxr.VulkanBinding, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if err := i.rt.record("CreateVulkanDevice"); err != nil {
		return oxr.VulkanBinding{}, err
	}
	return oxr.VulkanBinding{Instance: 1, PhysicalDevice: 2, Device: 3}, nil
}

// CreateSession creates a session and queues IDLE then READY.
func (i *Instance) CreateSession(oxr.SystemID, oxr.GraphicsBinding) (oxr.RuntimeSession, oxr.RuntimeFrameWaiter, oxr.RuntimeFrameStream, error) {
	r := i.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateSession"); err != nil {
		return nil, nil, nil, err
	}
	r.sessions++
	s := &Session{inst: i, handle: r.sessions}
	r.session = s
	i.pushStates(s.handle, oxr.SessionStateIdle, oxr.SessionStateReady)

	var rs oxr.RuntimeSession = s
	if !r.cfg.NoPassthrough {
		rs = &passthroughSession{s}
	}
	return rs, &frameWaiter{s}, &frameStream{s}, nil
}

func (i *Instance) PollEvent() (oxr.Event, error) {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	if len(i.events) == 0 {
		return nil, nil
	}
	ev := i.events[0]
	i.events = i.events[1:]
	return ev, nil
}

func (i *Instance) Destroy() error {
	i.rt.mu.Lock()
	defer i.rt.mu.Unlock()
	i.destroyed = true
	return i.rt.record("DestroyInstance")
}
