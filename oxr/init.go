// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gputypes"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/internal/framechan"
)

// FramePolicy tunes the render side of the frame cycle.
type FramePolicy struct {
	// PollInterval is the sleep between attempts to receive a frame state.
	PollInterval time.Duration

	// MaxRetries bounds the receive attempts per frame. Zero polls until a
	// frame state arrives or the waiter disconnects.
	MaxRetries uint64

	// ImageWaitTimeout bounds the wait on an acquired swapchain image.
	// InfiniteTimeout leaves it to the runtime.
	ImageWaitTimeout time.Duration

	// QueueCapacity is the number of frame states the waiter may run ahead.
	QueueCapacity int
}

// DefaultFramePolicy polls every millisecond without a retry limit and
// waits on images without a timeout.
func DefaultFramePolicy() FramePolicy {
	return FramePolicy{
		PollInterval:     time.Millisecond,
		MaxRetries:       0,
		ImageWaitTimeout: InfiniteTimeout,
		QueueCapacity:    framechan.DefaultCapacity,
	}
}

// Options configures the OpenXR plugin. Every preference list is
// optional: an empty list picks the first entry the runtime reports.
type Options struct {
	// App identifies the application to the runtime.
	App AppInfo

	// Extensions requested. Unavailable ones are dropped with a warning.
	Extensions Extensions

	// BlendModes in order of preference.
	BlendModes []BlendMode

	// Backends in order of preference.
	Backends []graphics.Backend

	// Formats in order of preference.
	Formats []gputypes.TextureFormat

	// Resolutions in order of preference.
	Resolutions []Resolution

	// ReferenceSpace views are located and layers submitted in.
	ReferenceSpace ReferenceSpaceType

	// SynchronousPipelineCompilation is passed to the host renderer.
	SynchronousPipelineCompilation bool

	// Frame tunes frame pacing.
	Frame FramePolicy
}

// DefaultOptions requests passthrough and hand tracking, prefers
// RGBA8Unorm swapchains and uses the stage space.
func DefaultOptions() Options {
	return Options{
		App:            AppInfo{Name: "gogpu-xr", Version: 1},
		Extensions:     DefaultExtensions(),
		Formats:        []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
		ReferenceSpace: SpaceStage,
		Frame:          DefaultFramePolicy(),
	}
}

// SessionConfigInfo holds the choices made at initialization that every
// session of the instance is created with. It is not modified afterwards.
type SessionConfigInfo struct {
	BlendModes     []BlendMode
	Formats        []gputypes.TextureFormat
	Resolutions    []Resolution
	ReferenceSpace ReferenceSpaceType
	Binding        GraphicsBinding
	Graphics       GraphicsExt

	// Passthrough is set when XR_FB_passthrough was enabled.
	Passthrough bool
}

// InitResult is the outcome of a successful Init.
type InitResult struct {
	Instance   Instance
	System     SystemID
	Backend    graphics.Backend
	Device     graphics.DeviceHandle
	Extensions Extensions
	Config     SessionConfigInfo

	RuntimeProperties InstanceProperties
	SystemProperties  SystemProperties
}

// Init loads the runtime and prepares everything sessions are created
// from: extensions, graphics backend, instance, head-mounted system and
// GPU device. On error nothing is left allocated and the caller renders
// without XR.
func Init(ctx context.Context, entry Entry, opts Options) (_ *InitResult, err error) {
	_, span := startSpan(ctx, "oxr.init")
	defer func() { endSpan(span, err) }()

	if entry == nil {
		return nil, ErrNoRuntime
	}
	available, err := entry.EnumerateExtensions()
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate extensions: %w", err)
	}
	enabled, _ := ResolveExtensions(opts.Extensions, available)

	backend, err := SelectBackend(opts.Backends, available)
	if err != nil {
		return nil, err
	}
	gfx, err := LookupGraphics(backend)
	if err != nil {
		return nil, err
	}
	enabled = enabled.With(backend.Extension())
	xr.Logger().Debug("oxr: runtime extensions", "available", []string(available), "enabled", []string(enabled))

	inst, err := entry.CreateInstance(opts.App, enabled, nil)
	if err != nil {
		return nil, fmt.Errorf("oxr: create instance: %w", err)
	}
	defer func() {
		if err != nil {
			_ = inst.Destroy()
		}
	}()

	props, err := inst.Properties()
	if err != nil {
		return nil, fmt.Errorf("oxr: instance properties: %w", err)
	}
	xr.Logger().Info("oxr: loaded runtime", "runtime", props.RuntimeName, "version", props.RuntimeVersion.String())

	system, err := inst.System(HeadMountedDisplay)
	if err != nil {
		return nil, fmt.Errorf("oxr: get system: %w", err)
	}
	sysProps, err := inst.SystemProperties(system)
	if err != nil {
		return nil, fmt.Errorf("oxr: system properties: %w", err)
	}
	name := sysProps.SystemName
	if name == "" {
		name = "<unnamed>"
	}
	xr.Logger().Info("oxr: using system", "system", name)

	binding, device, err := gfx.InitGraphics(inst, system, opts.App)
	if err != nil {
		return nil, fmt.Errorf("oxr: init graphics: %w", err)
	}
	span.SetAttributes(
		attribute.String("xr.runtime", props.RuntimeName),
		attribute.String("xr.backend", backend.String()),
	)

	space := opts.ReferenceSpace
	if space == 0 {
		space = SpaceStage
	}
	return &InitResult{
		Instance:   inst,
		System:     system,
		Backend:    backend,
		Device:     device,
		Extensions: enabled,
		Config: SessionConfigInfo{
			BlendModes:     slices.Clone(opts.BlendModes),
			Formats:        slices.Clone(opts.Formats),
			Resolutions:    slices.Clone(opts.Resolutions),
			ReferenceSpace: space,
			Binding:        binding,
			Graphics:       gfx,
			Passthrough:    enabled.Has(ExtFBPassthrough),
		},
		RuntimeProperties: props,
		SystemProperties:  sysProps,
	}, nil
}
