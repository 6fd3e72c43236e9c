// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xr/graphics"
)

// GraphicsExt is the per-backend capability set: creating the GPU device
// the runtime requires, translating swapchain formats and wrapping
// swapchain images for the host renderer.
type GraphicsExt interface {
	// Backend returns the backend this implementation serves.
	Backend() graphics.Backend

	// InitGraphics creates the GPU device for system and returns the
	// session binding plus the device handed to the host renderer.
	InitGraphics(inst Instance, system SystemID, app AppInfo) (GraphicsBinding, graphics.DeviceHandle, error)

	// FromNativeFormat translates a runtime format code.
	FromNativeFormat(native int64) (gputypes.TextureFormat, bool)

	// ToNativeFormat translates a format to the runtime code.
	ToNativeFormat(f gputypes.TextureFormat) (int64, bool)

	// WrapImage describes a native swapchain image to the host renderer.
	WrapImage(index uint32, handle uint64, info graphics.SwapchainCreateInfo) graphics.Image
}

// GraphicsFactory creates a GraphicsExt.
type GraphicsFactory func() GraphicsExt

var (
	graphicsMu sync.RWMutex
	graphicsReg = make(map[graphics.Backend]GraphicsFactory)
)

// RegisterGraphics registers a backend implementation, replacing any
// previous one for the same backend.
func RegisterGraphics(b graphics.Backend, f GraphicsFactory) {
	graphicsMu.Lock()
	defer graphicsMu.Unlock()
	graphicsReg[b] = f
}

// UnregisterGraphics removes a backend implementation.
// This is useful for testing.
func UnregisterGraphics(b graphics.Backend) {
	graphicsMu.Lock()
	defer graphicsMu.Unlock()
	delete(graphicsReg, b)
}

// LookupGraphics returns the implementation registered for b.
func LookupGraphics(b graphics.Backend) (GraphicsExt, error) {
	graphicsMu.RLock()
	f, ok := graphicsReg[b]
	graphicsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v is not implemented", ErrNoAvailableBackend, b)
	}
	return f(), nil
}

// nativeFormats translates a runtime format list, dropping codes the
// backend does not know. Runtime order is preserved.
func nativeFormats(ext GraphicsExt, codes []int64) []gputypes.TextureFormat {
	out := make([]gputypes.TextureFormat, 0, len(codes))
	for _, c := range codes {
		if f, ok := ext.FromNativeFormat(c); ok {
			out = append(out, f)
		}
	}
	return out
}
