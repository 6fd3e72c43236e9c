// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wxr is the WebXR backend.
//
// The browser is reached through the [System], [Session] and [Canvas]
// interfaces. Browser calls that resolve promises run on their own
// goroutines and deliver results to the main world through buffered
// channels, drained at the start of every tick.
//
// Status follows the same model as the native backend:
//
//	Available  the requested mode is supported
//	Idle       the session request resolved (SessionCreated is sent)
//	Ready      the base layer is configured
//	Running    the reference space resolved
//	Exiting    the browser fired the end event
//
// [Runner] selects the frame loop: the session's animation frames while
// a session exists, the page canvas otherwise.
package wxr
