// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wxr

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupported is returned when the browser has no WebXR system.
	ErrUnsupported = errors.New("wxr: WebXR not supported")

	// ErrModeUnsupported is returned when the requested session mode is
	// not supported.
	ErrModeUnsupported = errors.New("wxr: session mode not supported")

	// ErrUnknownSessionMode is returned by ParseSessionMode.
	ErrUnknownSessionMode = errors.New("wxr: unknown session mode")

	// ErrUnknownReferenceSpace is returned by ParseReferenceSpace.
	ErrUnknownReferenceSpace = errors.New("wxr: unknown reference space")

	// ErrSessionEnded is returned by frame requests on an ended session.
	ErrSessionEnded = errors.New("wxr: session ended")
)

// SessionInit lists the features a session is requested with.
type SessionInit struct {
	Required []string
	Optional []string
}

// LayerInit configures the WebGL base layer.
type LayerInit struct {
	Alpha bool
}

// Layer is a browser layer handle.
type Layer uint64

// ReferenceSpace is a browser reference space handle.
type ReferenceSpace uint64

// System is navigator.xr.
//
// Both methods resolve browser promises and may block; the plugin calls
// them from their own goroutines.
type System interface {
	IsSessionSupported(ctx context.Context, mode SessionMode) (bool, error)
	RequestSession(ctx context.Context, mode SessionMode, init SessionInit) (Session, error)
}

// SessionEvent is an event fired by a browser session.
type SessionEvent interface {
	sessionEvent()
}

// VisibilityChanged is fired on visibilitychange.
type VisibilityChanged struct {
	State Visibility
}

// Ended is fired once the session has ended, whether the application
// or the user agent ended it.
type Ended struct{}

func (VisibilityChanged) sessionEvent() {}
func (Ended) sessionEvent()             {}

// Session is an XRSession.
type Session interface {
	CreateLayer(init LayerInit) (Layer, error)
	UpdateRenderState(base Layer) error
	RequestReferenceSpace(ctx context.Context, t ReferenceSpaceType) (ReferenceSpace, error)

	// RequestAnimationFrame blocks until the session's next frame.
	RequestAnimationFrame(ctx context.Context) (Frame, error)

	// PollEvent returns the next queued event, or nil.
	PollEvent() SessionEvent

	End() error
}

// Canvas is the page's animation frame source.
type Canvas interface {
	RequestAnimationFrame(ctx context.Context) (time.Duration, error)
}
