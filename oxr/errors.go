// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"errors"
	"fmt"
)

// Negotiation errors. Any of them fails initialization and the
// application falls back to rendering without XR.
var (
	// ErrNoAvailableBackend is returned when no requested graphics backend
	// is supported by the runtime.
	ErrNoAvailableBackend = errors.New("oxr: no available graphics backend")

	// ErrNoAvailableBlendMode is returned when no requested blend mode is
	// supported. It wraps ErrNoAvailableBackend.
	ErrNoAvailableBlendMode = fmt.Errorf("oxr: no available blend mode: %w", ErrNoAvailableBackend)

	// ErrNoAvailableFormat is returned when no requested swapchain format
	// is supported.
	ErrNoAvailableFormat = errors.New("oxr: no available swapchain format")

	// ErrNoAvailableViewConfiguration is returned when the system has no
	// stereo view configuration or no view fits the requested resolutions.
	ErrNoAvailableViewConfiguration = errors.New("oxr: no available view configuration")

	// ErrNoRuntime is returned by Init without a runtime entry.
	ErrNoRuntime = errors.New("oxr: no runtime entry")

	// ErrGraphicsRequirements is returned when the runtime's graphics API
	// version requirements cannot be met.
	ErrGraphicsRequirements = errors.New("oxr: graphics requirements not met")
)

// Frame cycle errors.
var (
	// ErrFrameChannelDisconnected means the frame waiter goroutine exited
	// while the session was still running. The session cannot continue.
	ErrFrameChannelDisconnected = errors.New("oxr: frame waiter disconnected")

	// ErrNoFrameState is returned when the frame state did not arrive
	// within the configured number of polls.
	ErrNoFrameState = errors.New("oxr: no frame state received")

	// ErrFrameOrder is returned when frame stream calls are out of order.
	ErrFrameOrder = errors.New("oxr: frame begin/end out of order")

	// ErrImageOrder is returned when swapchain image calls are out of
	// acquire, wait, release order.
	ErrImageOrder = errors.New("oxr: swapchain image calls out of order")
)
