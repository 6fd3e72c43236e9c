// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wxr

import (
	"fmt"
	"slices"
	"time"
)

// Feature is a WebXR session feature descriptor. Listing a feature only
// asks the browser for it; nothing in this package acts on most of them.
type Feature string

// Known features.
const (
	Anchors         Feature = "anchors"
	BoundedFloor    Feature = "bounded-floor"
	DepthSensing    Feature = "depth-sensing"
	DOMOverlay      Feature = "dom-overlay"
	HandTracking    Feature = "hand-tracking"
	HitTest         Feature = "hit-test"
	Layers          Feature = "layers"
	LightEstimation Feature = "light-estimation"
	LocalFloor      Feature = "local-floor"
	SecondaryViews  Feature = "secondary-views"
	Unbounded       Feature = "unbounded"
	Viewer          Feature = "viewer"
)

var knownFeatures = []Feature{
	Anchors, BoundedFloor, DepthSensing, DOMOverlay, HandTracking, HitTest,
	Layers, LightEstimation, LocalFloor, SecondaryViews, Unbounded, Viewer,
}

// Known reports whether f is one of the named features. Other strings are
// passed to the browser unchanged.
func (f Feature) Known() bool {
	return slices.Contains(knownFeatures, f)
}

// FeatureSet is an ordered set of features.
type FeatureSet []Feature

// Enable returns the set with f added.
func (s FeatureSet) Enable(f Feature) FeatureSet {
	if f == "" || s.Has(f) {
		return s
	}
	return append(slices.Clip(s), f)
}

// Has reports whether f is enabled.
func (s FeatureSet) Has(f Feature) bool {
	return slices.Contains(s, f)
}

// Strings returns the descriptors as the browser expects them.
func (s FeatureSet) Strings() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = string(f)
	}
	return out
}

// SessionMode is the kind of session to request.
type SessionMode uint8

const (
	// Inline renders into the page.
	Inline SessionMode = iota
	// ImmersiveVR takes over the headset display.
	ImmersiveVR
	// ImmersiveAR blends with the real world.
	ImmersiveAR
)

var modeNames = [...]string{
	Inline:      "inline",
	ImmersiveVR: "immersive-vr",
	ImmersiveAR: "immersive-ar",
}

// Modes lists every session mode.
var Modes = []SessionMode{Inline, ImmersiveVR, ImmersiveAR}

// String returns the WebXR mode name.
func (m SessionMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("SessionMode(%d)", m)
}

// ParseSessionMode parses a WebXR mode name. "vr" and "ar" are accepted
// as short forms.
func ParseSessionMode(s string) (SessionMode, error) {
	switch s {
	case "inline":
		return Inline, nil
	case "immersive-vr", "vr":
		return ImmersiveVR, nil
	case "immersive-ar", "ar", "mr":
		return ImmersiveAR, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSessionMode, s)
}

// ReferenceSpaceType is the coordinate system views are reported in.
type ReferenceSpaceType uint8

const (
	SpaceLocalFloor ReferenceSpaceType = iota
	SpaceLocal
	SpaceViewer
	SpaceUnbounded
	SpaceBoundedFloor
)

var spaceNames = [...]string{
	SpaceLocalFloor:   "local-floor",
	SpaceLocal:        "local",
	SpaceViewer:       "viewer",
	SpaceUnbounded:    "unbounded",
	SpaceBoundedFloor: "bounded-floor",
}

func (t ReferenceSpaceType) String() string {
	if int(t) < len(spaceNames) {
		return spaceNames[t]
	}
	return fmt.Sprintf("ReferenceSpaceType(%d)", t)
}

// ParseReferenceSpace parses a WebXR reference space name.
func ParseReferenceSpace(s string) (ReferenceSpaceType, error) {
	for i, n := range spaceNames {
		if n == s {
			return ReferenceSpaceType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownReferenceSpace, s)
}

// EnterButtons records which session modes the page may offer.
type EnterButtons struct {
	VR     bool
	AR     bool
	Inline bool
}

// Supports reports whether mode was reported as supported.
func (b EnterButtons) Supports(m SessionMode) bool {
	switch m {
	case ImmersiveVR:
		return b.VR
	case ImmersiveAR:
		return b.AR
	case Inline:
		return b.Inline
	}
	return false
}

// Visibility is the browser's visibility state of a session.
type Visibility uint8

const (
	Visible Visibility = iota
	VisibleBlurred
	Hidden
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case VisibleBlurred:
		return "visible-blurred"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("Visibility(%d)", v)
}

// View is one eye, or the single inline view, of an animation frame.
type View struct {
	Position    [3]float32
	Orientation [4]float32
	Projection  [16]float32
}

// Frame is the animation frame delivered by the session frame loop.
type Frame struct {
	Time  time.Duration
	Views []View
}

// CanvasFrame is the animation frame delivered by the page while no
// session drives the loop.
type CanvasFrame struct {
	Time time.Duration
}

// FrameLoopSource selects who schedules application updates.
type FrameLoopSource uint8

const (
	// SourceCanvas is the page's requestAnimationFrame.
	SourceCanvas FrameLoopSource = iota
	// SourceSession is the XR session's requestAnimationFrame.
	SourceSession
)

func (s FrameLoopSource) String() string {
	if s == SourceSession {
		return "session"
	}
	return "canvas"
}
