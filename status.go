// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/xr/engine"
)

// Status is the lifecycle state of the XR session.
type Status uint8

const (
	// StatusUnavailable means no XR runtime could be initialized.
	StatusUnavailable Status = iota

	// StatusAvailable means a session can be created with CreateSession.
	StatusAvailable

	// StatusIdle means a session exists but is not ready to begin.
	StatusIdle

	// StatusReady means the session can be started with BeginSession.
	StatusReady

	// StatusRunning means frames are being submitted. EndSession stops it.
	StatusRunning

	// StatusStopping means the runtime asked the session to stop.
	StatusStopping

	// StatusExiting means the session is about to be destroyed.
	StatusExiting
)

var statusNames = [...]string{
	StatusUnavailable: "Unavailable",
	StatusAvailable:   "Available",
	StatusIdle:        "Idle",
	StatusReady:       "Ready",
	StatusRunning:     "Running",
	StatusStopping:    "Stopping",
	StatusExiting:     "Exiting",
}

// String returns the status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// SharedStatus is the single authoritative session status of an
// application. It is inserted into the main world as a *SharedStatus and
// may be read from any goroutine.
type SharedStatus struct {
	v atomic.Uint32
}

// NewSharedStatus returns a status cell holding s.
func NewSharedStatus(s Status) *SharedStatus {
	st := &SharedStatus{}
	st.v.Store(uint32(s))
	return st
}

// Get returns the current status.
func (s *SharedStatus) Get() Status {
	return Status(s.v.Load())
}

// Set stores a new status and returns the previous one.
// Only backend state machines call Set.
func (s *SharedStatus) Set(st Status) Status {
	return Status(s.v.Swap(uint32(st)))
}

// StatusOf returns the status visible in w. The main world holds a
// *SharedStatus; the render world holds the Status value mirrored at
// extraction.
func StatusOf(w *engine.World) (Status, bool) {
	if s, ok := engine.Get[*SharedStatus](w); ok {
		return s.Get(), true
	}
	return engine.Get[Status](w)
}

// ExtractStatus mirrors the main world status into the render world.
func ExtractStatus(main, render *engine.World) error {
	if s, ok := engine.Get[*SharedStatus](main); ok {
		engine.Insert(render, s.Get())
	}
	return nil
}
