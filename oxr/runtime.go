// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"time"

	"github.com/gogpu/xr/graphics"
)

// InfiniteTimeout waits on a swapchain image until the runtime returns.
const InfiniteTimeout time.Duration = -1

// Entry is the loaded runtime library.
type Entry interface {
	// EnumerateExtensions lists the extensions the runtime supports.
	EnumerateExtensions() (Extensions, error)

	// CreateInstance creates an instance with the given extensions enabled.
	CreateInstance(app AppInfo, exts Extensions, layers []string) (Instance, error)
}

// Instance is a runtime instance.
//
// Instance methods may be called from the main and render goroutines.
type Instance interface {
	Properties() (InstanceProperties, error)
	System(ff FormFactor) (SystemID, error)
	SystemProperties(system SystemID) (SystemProperties, error)

	EnumerateViewConfigurations(system SystemID) ([]ViewConfigurationType, error)
	EnumerateViewConfigurationViews(system SystemID, vc ViewConfigurationType) ([]ViewConfigurationView, error)
	EnumerateEnvironmentBlendModes(system SystemID, vc ViewConfigurationType) ([]BlendMode, error)

	// CreateSession creates a session bound to the graphics binding
	// produced by the backend's InitGraphics.
	CreateSession(system SystemID, binding GraphicsBinding) (RuntimeSession, RuntimeFrameWaiter, RuntimeFrameStream, error)

	// PollEvent returns the next queued event, or nil when the queue is
	// empty. It never blocks.
	PollEvent() (Event, error)

	Destroy() error
}

// GraphicsBinding is the backend-specific structure a session is created
// with. Native holds the backend's own binding type.
type GraphicsBinding struct {
	Backend graphics.Backend
	Native  any
}

// RuntimeSession is a runtime session handle. It is shared by the main
// and render worlds and must be safe for concurrent use.
type RuntimeSession interface {
	// Handle is the value the runtime reports in SessionStateChanged.
	Handle() SessionHandle

	Begin(vc ViewConfigurationType) error
	End() error
	RequestExit() error

	// EnumerateSwapchainFormats lists native format codes in runtime
	// preference order.
	EnumerateSwapchainFormats() ([]int64, error)
	CreateSwapchain(nativeFormat int64, info graphics.SwapchainCreateInfo) (RuntimeSwapchain, error)

	CreateReferenceSpace(t ReferenceSpaceType, pose Pose) (Space, error)
	LocateViews(vc ViewConfigurationType, at Time, space Space) ([]View, error)

	Destroy() error
}

// RuntimeFrameWaiter throttles the application to the display rate.
type RuntimeFrameWaiter interface {
	// Wait blocks until the runtime wants the next frame.
	Wait() (FrameState, error)
}

// RuntimeFrameStream brackets the rendering of one frame.
type RuntimeFrameStream interface {
	Begin() error
	End(displayTime Time, blend BlendMode, layers []CompositionLayer) error
}

// RuntimeSwapchain is a runtime swapchain handle.
type RuntimeSwapchain interface {
	// EnumerateImages returns the native image handles.
	EnumerateImages() ([]uint64, error)
	AcquireImage() (uint32, error)
	WaitImage(timeout time.Duration) error
	ReleaseImage() error
	Destroy() error
}

// PassthroughHandle is a passthrough feature or layer handle.
type PassthroughHandle uint64

// PassthroughSession is implemented by sessions that support
// XR_FB_passthrough.
type PassthroughSession interface {
	CreatePassthrough(runningAtCreation bool) (PassthroughHandle, error)
	CreatePassthroughLayer(p PassthroughHandle, runningAtCreation bool) (PassthroughHandle, error)
	DestroyPassthrough(h PassthroughHandle) error
}
