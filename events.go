// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import "github.com/gogpu/xr/engine"

// CreateSession asks the backend to create a session.
// Honored only in StatusAvailable.
type CreateSession struct{}

// BeginSession asks the backend to start the session.
// Honored only in StatusReady.
type BeginSession struct{}

// EndSession asks the backend to stop a running session.
// Honored only in StatusRunning.
type EndSession struct{}

// DestroySession asks the backend to release the session.
// Honored only in StatusExiting.
type DestroySession struct{}

// StatusChanged is sent every time the session status changes.
type StatusChanged struct {
	Status Status
}

// SessionStatusEvent marks a session lifetime edge.
type SessionStatusEvent uint8

const (
	// SessionCreated is sent once when a new session first reports idle.
	SessionCreated SessionStatusEvent = iota + 1

	// SessionAboutToBeDestroyed is sent once when the session starts exiting.
	SessionAboutToBeDestroyed
)

// String returns the event name.
func (e SessionStatusEvent) String() string {
	switch e {
	case SessionCreated:
		return "Created"
	case SessionAboutToBeDestroyed:
		return "AboutToBeDestroyed"
	default:
		return "SessionStatusEvent(?)"
	}
}

// Schedules run by the session layer.
const (
	// Last runs after engine.Last in the main world. Backends poll runtime
	// events and handle lifecycle commands here.
	Last engine.Label = "XrLast"

	// SessionCreatedSchedule runs in the main world when SessionCreated fires.
	SessionCreatedSchedule engine.Label = "XrSessionCreated"

	// SessionEnding runs in the main world when SessionAboutToBeDestroyed fires.
	SessionEnding engine.Label = "XrSessionEnding"

	// RenderSessionEnding runs in the render world while the render-side
	// session resources are torn down.
	RenderSessionEnding engine.Label = "XrRenderSessionEnding"
)

// SetStatus stores st in the main world's status cell and sends
// StatusChanged when the value differs from the previous one.
func SetStatus(w *engine.World, st Status) {
	s, ok := engine.Get[*SharedStatus](w)
	if !ok {
		s = NewSharedStatus(st)
		engine.Insert(w, s)
		engine.Send(w, StatusChanged{Status: st})
		return
	}
	if prev := s.Set(st); prev != st {
		engine.Send(w, StatusChanged{Status: st})
	}
}

// RegisterEvents adds every session event queue to w.
func RegisterEvents(w *engine.World) {
	engine.AddEvent[CreateSession](w)
	engine.AddEvent[BeginSession](w)
	engine.AddEvent[EndSession](w)
	engine.AddEvent[DestroySession](w)
	engine.AddEvent[StatusChanged](w)
	engine.AddEvent[SessionStatusEvent](w)
}
