// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"fmt"
	"slices"
	"time"
)

// Well-known extension names.
const (
	ExtFBPassthrough = "XR_FB_passthrough"
	ExtHandTracking  = "XR_EXT_hand_tracking"
)

// Extensions is an ordered set of runtime extension names.
type Extensions []string

// DefaultExtensions enables passthrough and hand tracking.
func DefaultExtensions() Extensions {
	return Extensions{ExtFBPassthrough, ExtHandTracking}
}

// Has reports whether name is in the set.
func (e Extensions) Has(name string) bool {
	return slices.Contains(e, name)
}

// With returns a copy of e with names appended, skipping duplicates.
func (e Extensions) With(names ...string) Extensions {
	out := slices.Clone(e)
	for _, n := range names {
		if n != "" && !out.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// AppInfo identifies the application to the runtime.
type AppInfo struct {
	Name    string
	Version uint32
}

// Version is a packed major.minor.patch runtime version.
type Version uint64

// NewVersion packs a version the way the runtime reports it.
func NewVersion(major, minor, patch uint32) Version {
	return Version(uint64(major)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

// Major returns the major component.
func (v Version) Major() uint32 { return uint32(v >> 48) }

// Minor returns the minor component.
func (v Version) Minor() uint32 { return uint32(v>>32) & 0xffff }

// Patch returns the patch component.
func (v Version) Patch() uint32 { return uint32(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// InstanceProperties describes the loaded runtime.
type InstanceProperties struct {
	RuntimeName    string
	RuntimeVersion Version
}

// FormFactor selects the kind of device a system represents.
type FormFactor uint32

const (
	HeadMountedDisplay FormFactor = 1
	HandheldDisplay    FormFactor = 2
)

// SystemID identifies a runtime system (a headset).
type SystemID uint64

// SystemProperties describes a system.
type SystemProperties struct {
	SystemName string
	VendorID   uint32
}

// ViewConfigurationType is the arrangement of views a session renders.
type ViewConfigurationType uint32

const (
	PrimaryMono   ViewConfigurationType = 1
	PrimaryStereo ViewConfigurationType = 2
)

// ViewConfigurationView holds the image limits of one view.
type ViewConfigurationView struct {
	RecommendedWidth       uint32
	RecommendedHeight      uint32
	MaxWidth               uint32
	MaxHeight              uint32
	RecommendedSampleCount uint32
	MaxSampleCount         uint32
}

// Resolution is a per-eye image size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

func (r Resolution) String() string { return fmt.Sprintf("%dx%d", r.Width, r.Height) }

// BlendMode is how rendered content composites with the real world.
type BlendMode uint32

const (
	BlendOpaque     BlendMode = 1
	BlendAdditive   BlendMode = 2
	BlendAlphaBlend BlendMode = 3
)

func (b BlendMode) String() string {
	switch b {
	case BlendOpaque:
		return "opaque"
	case BlendAdditive:
		return "additive"
	case BlendAlphaBlend:
		return "alpha_blend"
	default:
		return fmt.Sprintf("BlendMode(%d)", b)
	}
}

// ReferenceSpaceType names a coordinate frame poses are reported in.
type ReferenceSpaceType uint32

const (
	SpaceView  ReferenceSpaceType = 1
	SpaceLocal ReferenceSpaceType = 2
	SpaceStage ReferenceSpaceType = 3
)

// Space is a runtime space handle.
type Space uint64

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Vec3 is a position in meters.
type Vec3 struct{ X, Y, Z float32 }

// Quat is a unit orientation quaternion.
type Quat struct{ X, Y, Z, W float32 }

// Pose is a position and orientation.
type Pose struct {
	Orientation Quat
	Position    Vec3
}

// IdentityPose has no rotation and sits at the origin.
var IdentityPose = Pose{Orientation: Quat{W: 1}}

// Fov holds the four half-angles of a view frustum in radians.
type Fov struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// View is the pose and field of view of one eye.
type View struct {
	Pose Pose
	Fov  Fov
}

// Views holds one View per eye, replaced every frame.
type Views []View

// FrameState is the timing of one frame as predicted by the runtime.
// A FrameState belongs to exactly one frame cycle.
type FrameState struct {
	// Frame is a process-wide serial assigned when the state was received
	// from the runtime.
	Frame uint32

	PredictedDisplayTime   Time
	PredictedDisplayPeriod time.Duration

	// ShouldRender is false when the runtime will not show this frame.
	// The frame must still be ended, with no layers.
	ShouldRender bool
}

// SessionState is a runtime session state.
type SessionState int32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

var sessionStateNames = map[SessionState]string{
	SessionStateUnknown:      "UNKNOWN",
	SessionStateIdle:         "IDLE",
	SessionStateReady:        "READY",
	SessionStateSynchronized: "SYNCHRONIZED",
	SessionStateVisible:      "VISIBLE",
	SessionStateFocused:      "FOCUSED",
	SessionStateStopping:     "STOPPING",
	SessionStateLossPending:  "LOSS_PENDING",
	SessionStateExiting:      "EXITING",
}

func (s SessionState) String() string {
	if n, ok := sessionStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// Event is a runtime event returned by Instance.PollEvent.
type Event interface {
	event()
}

// SessionHandle identifies a runtime session in events.
type SessionHandle uint64

// SessionStateChanged reports a new state of the session Session.
type SessionStateChanged struct {
	Session SessionHandle
	State   SessionState
	Time    Time
}

// EventsLost reports that the runtime's event queue overflowed.
type EventsLost struct {
	Count uint32
}

// InstanceLossPending reports that the runtime is going away.
type InstanceLossPending struct {
	LossTime Time
}

// ReferenceSpaceChangePending reports a recentered reference space.
type ReferenceSpaceChangePending struct {
	Space ReferenceSpaceType
}

func (SessionStateChanged) event()         {}
func (EventsLost) event()                  {}
func (InstanceLossPending) event()         {}
func (ReferenceSpaceChangePending) event() {}

// LayerFlags modify how a composition layer is blended.
type LayerFlags uint32

const (
	LayerBlendTextureSourceAlpha LayerFlags = 1 << 1
	LayerUnpremultipliedAlpha    LayerFlags = 1 << 2
)

// Rect is an image region in pixels.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// SwapchainSubImage selects the part of a swapchain image a view uses.
type SwapchainSubImage struct {
	Swapchain  RuntimeSwapchain
	Rect       Rect
	ArrayIndex uint32
}

// ProjectionView is one eye of a projection layer.
type ProjectionView struct {
	Pose     Pose
	Fov      Fov
	SubImage SwapchainSubImage
}

// CompositionLayer is a unit of frame submission.
type CompositionLayer interface {
	layer()
}

// ProjectionLayer presents one rendered image per eye.
type ProjectionLayer struct {
	Flags LayerFlags
	Space Space
	Views []ProjectionView
}

// PassthroughLayer presents the camera feed of a passthrough layer.
type PassthroughLayer struct {
	Flags LayerFlags
	Layer PassthroughHandle
}

func (ProjectionLayer) layer()  {}
func (PassthroughLayer) layer() {}
