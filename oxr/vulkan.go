// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/graphics"
)

// vulkanTargetVersion is the Vulkan API version devices are created with.
var vulkanTargetVersion = NewVersion(1, 1, 0)

// VulkanInstance is implemented by instances created with
// XR_KHR_vulkan_enable2.
type VulkanInstance interface {
	// VulkanGraphicsRequirements returns the supported API version range.
	VulkanGraphicsRequirements(system SystemID) (minVersion, maxVersion Version, err error)

	// CreateVulkanDevice creates the Vulkan instance and device the
	// runtime requires for system.
	CreateVulkanDevice(system SystemID, info VulkanDeviceInfo) (VulkanBinding, error)
}

// VulkanDeviceInfo parameterizes CreateVulkanDevice.
type VulkanDeviceInfo struct {
	AppName    string
	AppVersion uint32
	APIVersion Version
}

// VulkanBinding is the Native part of a Vulkan GraphicsBinding.
type VulkanBinding struct {
	Instance         uintptr
	PhysicalDevice   uintptr
	Device           uintptr
	QueueFamilyIndex uint32
	QueueIndex       uint32

	// Provider exposes the created device to the host renderer.
	Provider graphics.DeviceHandle
}

// vkFormats maps VkFormat codes to texture formats.
var vkFormats = map[int64]gputypes.TextureFormat{
	9:   gputypes.TextureFormatR8Unorm,
	37:  gputypes.TextureFormatRGBA8Unorm,
	44:  gputypes.TextureFormatBGRA8Unorm,
	129: gputypes.TextureFormatDepth24PlusStencil8,
}

type vulkanGraphics struct{}

// NewVulkanGraphics returns the Vulkan implementation of GraphicsExt.
func NewVulkanGraphics() GraphicsExt { return vulkanGraphics{} }

func init() {
	RegisterGraphics(graphics.Vulkan, NewVulkanGraphics)
}

func (vulkanGraphics) Backend() graphics.Backend { return graphics.Vulkan }

func (vulkanGraphics) InitGraphics(inst Instance, system SystemID, app AppInfo) (GraphicsBinding, graphics.DeviceHandle, error) {
	vk, ok := inst.(VulkanInstance)
	if !ok {
		return GraphicsBinding{}, nil, errors.New("oxr: instance does not support XR_KHR_vulkan_enable2")
	}

	minV, maxV, err := vk.VulkanGraphicsRequirements(system)
	if err != nil {
		return GraphicsBinding{}, nil, fmt.Errorf("oxr: vulkan graphics requirements: %w", err)
	}
	if vulkanTargetVersion < minV || vulkanTargetVersion.Major() > maxV.Major() {
		return GraphicsBinding{}, nil, fmt.Errorf("%w: vulkan %v outside supported range %v..%v",
			ErrGraphicsRequirements, vulkanTargetVersion, minV, maxV)
	}

	b, err := vk.CreateVulkanDevice(system, VulkanDeviceInfo{
		AppName:    app.Name,
		AppVersion: app.Version,
		APIVersion: vulkanTargetVersion,
	})
	if err != nil {
		return GraphicsBinding{}, nil, fmt.Errorf("oxr: create vulkan device: %w", err)
	}
	xr.Logger().Debug("oxr: vulkan device created",
		"queue_family", b.QueueFamilyIndex, "queue", b.QueueIndex)

	dev := b.Provider
	if dev == nil {
		dev = graphics.NullDeviceHandle{}
	}
	return GraphicsBinding{Backend: graphics.Vulkan, Native: b}, dev, nil
}

func (vulkanGraphics) FromNativeFormat(native int64) (gputypes.TextureFormat, bool) {
	f, ok := vkFormats[native]
	return f, ok
}

func (vulkanGraphics) ToNativeFormat(f gputypes.TextureFormat) (int64, bool) {
	for code, tf := range vkFormats {
		if tf == f {
			return code, true
		}
	}
	return 0, false
}

func (vulkanGraphics) WrapImage(index uint32, handle uint64, info graphics.SwapchainCreateInfo) graphics.Image {
	return graphics.Image{
		Index:  index,
		Handle: handle,
		Format: info.Format,
		Width:  info.Width,
		Height: info.Height,
		Layers: info.ArraySize,
	}
}
