// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graphics

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle is the GPU device an XR runtime created for the session.
//
// The runtime, not the host, chooses the physical device: it must be the
// one driving the headset. The XR plugin hands this handle to the host
// renderer in place of the renderer's own adapter selection.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, so any host
// in the gpucontext ecosystem can consume it directly.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle without a device.
// Used when the host renderer runs without XR.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// SwapchainCreateInfo describes the image pool of one XR swapchain.
type SwapchainCreateInfo struct {
	// Format is the negotiated color format.
	Format gputypes.TextureFormat

	// Usage lists how the host uses the images.
	Usage gputypes.TextureUsage

	// SampleCount is 1; multisampled swapchains are not used.
	SampleCount uint32

	// Width and Height are the per-eye resolution.
	Width  uint32
	Height uint32

	// FaceCount is 1 for flat images.
	FaceCount uint32

	// ArraySize is the number of array layers, one per eye.
	ArraySize uint32

	// MipCount is the number of mip levels.
	MipCount uint32
}

// StereoSwapchainCreateInfo returns a two-layer color swapchain
// description for the given format and per-eye resolution.
func StereoSwapchainCreateInfo(format gputypes.TextureFormat, width, height uint32) SwapchainCreateInfo {
	return SwapchainCreateInfo{
		Format:      format,
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		SampleCount: 1,
		Width:       width,
		Height:      height,
		FaceCount:   1,
		ArraySize:   2,
		MipCount:    1,
	}
}

// Image is one render target of a swapchain as seen by the host renderer.
type Image struct {
	// Index is the image's position in the swapchain.
	Index uint32

	// Handle is the native image handle (a VkImage for Vulkan).
	Handle uint64

	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Layers uint32
}
