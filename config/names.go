// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/oxr"
)

var blendModes = map[string]oxr.BlendMode{
	"opaque":      oxr.BlendOpaque,
	"additive":    oxr.BlendAdditive,
	"alpha_blend": oxr.BlendAlphaBlend,
}

var formats = map[string]gputypes.TextureFormat{
	"r8unorm":              gputypes.TextureFormatR8Unorm,
	"rgba8unorm":           gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm":           gputypes.TextureFormatBGRA8Unorm,
	"depth24plusstencil8":  gputypes.TextureFormatDepth24PlusStencil8,
	"depth24plus-stencil8": gputypes.TextureFormatDepth24PlusStencil8,
}

var openxrSpaces = map[string]oxr.ReferenceSpaceType{
	"view":  oxr.SpaceView,
	"local": oxr.SpaceLocal,
	"stage": oxr.SpaceStage,
}

func lookup[T any](m map[string]T, what, s string) (T, error) {
	v, ok := m[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalid, what, s)
	}
	return v, nil
}

// ParseBlendMode parses opaque, additive or alpha_blend.
func ParseBlendMode(s string) (oxr.BlendMode, error) {
	return lookup(blendModes, "blend mode", s)
}

// ParseFormat parses a lower-case WebGPU texture format name such as
// rgba8unorm.
func ParseFormat(s string) (gputypes.TextureFormat, error) {
	return lookup(formats, "texture format", s)
}

// ParseOpenXRSpace parses view, local or stage.
func ParseOpenXRSpace(s string) (oxr.ReferenceSpaceType, error) {
	return lookup(openxrSpaces, "reference space", s)
}

// ParseResolution parses "WIDTHxHEIGHT".
func ParseResolution(s string) (oxr.Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return oxr.Resolution{}, fmt.Errorf("%w: resolution %q is not WIDTHxHEIGHT", ErrInvalid, s)
	}
	width, errW := strconv.ParseUint(w, 10, 32)
	height, errH := strconv.ParseUint(h, 10, 32)
	if errW != nil || errH != nil || width == 0 || height == 0 {
		return oxr.Resolution{}, fmt.Errorf("%w: resolution %q", ErrInvalid, s)
	}
	return oxr.Resolution{Width: uint32(width), Height: uint32(height)}, nil
}

func parseBackend(s string) (graphics.Backend, error) {
	b, err := graphics.ParseBackend(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return b, nil
}
