// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import "github.com/gogpu/xr/engine"

// SessionAvailable holds while a status exists and is not Unavailable.
func SessionAvailable(w *engine.World) bool {
	s, ok := StatusOf(w)
	return ok && s != StatusUnavailable
}

// SessionReadyOrRunning holds in StatusReady and StatusRunning.
func SessionReadyOrRunning(w *engine.World) bool {
	s, ok := StatusOf(w)
	return ok && (s == StatusReady || s == StatusRunning)
}

// SessionRunning holds in StatusRunning.
func SessionRunning(w *engine.World) bool {
	s, ok := StatusOf(w)
	return ok && s == StatusRunning
}

// StatusEquals returns a condition that holds while the status is st.
func StatusEquals(st Status) engine.Condition {
	return func(w *engine.World) bool {
		s, ok := StatusOf(w)
		return ok && s == st
	}
}

// StatusChangedTo returns a condition that holds when a StatusChanged
// event carrying st was sent since the condition last ran.
func StatusChangedTo(st Status) engine.Condition {
	var r engine.Reader[StatusChanged]
	return func(w *engine.World) bool {
		hit := false
		for _, ev := range engine.ReadEvents(w, &r) {
			if ev.Status == st {
				hit = true
			}
		}
		return hit
	}
}
