// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package oxr is the OpenXR backend.
//
// [Plugin] initializes the runtime at build time: it negotiates
// extensions, the graphics backend, the blend mode and the swapchain
// format, creates the instance and lets the runtime create the GPU
// device the host renderer then uses. If any step fails the application
// keeps running without XR and the session status is Unavailable.
//
// # Worlds
//
// The main world owns the lifecycle. Every tick it polls runtime events,
// maps session states to [xr.Status] values and services the xr command
// events. A created session is handed to the render world through a
// single-slot mailbox, taken exactly once at extraction.
//
// The render world owns the frame cycle:
//
//	Prepare      wait_frame, locate_views, begin_frame, acquire_image
//	Render       host rendering into Swapchain.Index()
//	Cleanup      end_frame
//	PostCleanup  destroy_render_session (teardown ticks only)
//
// The runtime's blocking frame wait runs on a dedicated goroutine
// ([FrameWaiter]) that feeds frame states through a bounded channel, so
// neither world blocks on the compositor.
//
// # Runtime
//
// The runtime is reached through the [Entry], [Instance] and
// [RuntimeSession] interfaces. Package oxrtest implements them in
// process for tests and the demo.
package oxr
