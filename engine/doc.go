// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package engine is a minimal host for XR plugins.
//
// It provides the three collaborators an XR session layer needs from a
// game engine:
//
//   - a scheduler that runs named phases in order once per tick,
//     with per-system gating conditions
//   - a resource store keyed by Go type (Insert, Get, Remove, Has)
//   - typed, double-buffered event queues read with "new since last read"
//     semantics and rotated at the start of every tick
//
// An App owns two worlds. The main world runs application logic; the
// render world trails it and receives state through extraction functions
// that run at the synchronization point between the two. App.Run can
// execute the worlds sequentially or pipelined on separate goroutines.
//
// Worlds are not safe for concurrent use. The App guarantees that each
// world is touched by one goroutine at a time.
package engine
