// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graphics describes the GPU side of an XR session: which
// graphics API the runtime renders with, the device handed to the host
// renderer, and the swapchain images the runtime composes.
package graphics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned by ParseBackend for unrecognized names.
var ErrUnknownBackend = errors.New("graphics: unknown backend")

// Backend identifies the graphics API an XR session renders with.
type Backend uint8

const (
	// Vulkan renders through XR_KHR_vulkan_enable2.
	Vulkan Backend = iota + 1
)

// All lists every backend this module implements, in default priority.
var All = []Backend{Vulkan}

// String returns the lower-case backend name.
func (b Backend) String() string {
	switch b {
	case Vulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("Backend(%d)", b)
	}
}

// Extension returns the runtime extension that enables the backend.
func (b Backend) Extension() string {
	switch b {
	case Vulkan:
		return "XR_KHR_vulkan_enable2"
	default:
		return ""
	}
}

// ParseBackend parses a backend name as produced by String.
func ParseBackend(s string) (Backend, error) {
	for _, b := range All {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// AvailableBackends returns the backends whose enabling extension the
// runtime reports, in All order.
func AvailableBackends(hasExtension func(name string) bool) []Backend {
	var out []Backend
	for _, b := range All {
		if hasExtension(b.Extension()) {
			out = append(out, b)
		}
	}
	return out
}
