// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/graphics"
)

// SelectPreferred resolves a preference list against an available set.
//
// With an empty preference list the first available entry wins. Otherwise
// the first preferred entry present in available wins; preference order is
// priority. ok is false when nothing qualifies.
func SelectPreferred[T comparable](preferred, available []T) (choice T, ok bool) {
	if len(preferred) == 0 {
		if len(available) == 0 {
			return choice, false
		}
		return available[0], true
	}
	for _, p := range preferred {
		if slices.Contains(available, p) {
			return p, true
		}
	}
	return choice, false
}

// ResolveExtensions intersects requested with available. Every requested
// extension the runtime lacks is logged and dropped; resolution never fails.
func ResolveExtensions(requested, available Extensions) (enabled Extensions, unavailable []string) {
	for _, name := range requested {
		if available.Has(name) {
			enabled = enabled.With(name)
			continue
		}
		unavailable = append(unavailable, name)
		xr.Logger().Warn("oxr: extension not available in the current runtime, disabling it",
			"extension", name)
	}
	return enabled, unavailable
}

// SelectBackend picks the graphics backend.
func SelectBackend(preferred []graphics.Backend, available Extensions) (graphics.Backend, error) {
	b, ok := SelectPreferred(preferred, graphics.AvailableBackends(available.Has))
	if !ok {
		return 0, ErrNoAvailableBackend
	}
	return b, nil
}

// SelectBlendMode picks the environment blend mode.
func SelectBlendMode(preferred, available []BlendMode) (BlendMode, error) {
	b, ok := SelectPreferred(preferred, available)
	if !ok {
		return 0, ErrNoAvailableBlendMode
	}
	return b, nil
}

// SelectFormat picks the swapchain format.
func SelectFormat(preferred, available []gputypes.TextureFormat) (gputypes.TextureFormat, error) {
	f, ok := SelectPreferred(preferred, available)
	if !ok {
		return gputypes.TextureFormatUndefined, ErrNoAvailableFormat
	}
	return f, nil
}

// RequireStereo checks that the system offers the primary stereo view
// configuration.
func RequireStereo(available []ViewConfigurationType) error {
	if !slices.Contains(available, PrimaryStereo) {
		return fmt.Errorf("%w: primary stereo not supported", ErrNoAvailableViewConfiguration)
	}
	return nil
}

// SelectResolution picks the per-eye swapchain resolution.
//
// A preferred resolution that equals some view's recommended size wins
// first, in preference order. Only when no preference matches a
// recommended size is the first preference that fits within some view's
// maximum accepted. Without preferences the first view's recommended
// size is used. Exactly two views are required.
func SelectResolution(preferred []Resolution, views []ViewConfigurationView) (Resolution, ViewConfigurationView, error) {
	if len(views) != 2 {
		return Resolution{}, ViewConfigurationView{}, fmt.Errorf("%w: %d views, stereo needs 2",
			ErrNoAvailableViewConfiguration, len(views))
	}

	if len(preferred) == 0 {
		v := views[0]
		return Resolution{Width: v.RecommendedWidth, Height: v.RecommendedHeight}, v, nil
	}

	for _, r := range preferred {
		for _, v := range views {
			if v.RecommendedWidth == r.Width && v.RecommendedHeight == r.Height {
				return r, v, nil
			}
		}
	}
	for _, r := range preferred {
		for _, v := range views {
			if r.Width <= v.MaxWidth && r.Height <= v.MaxHeight {
				return r, v, nil
			}
		}
	}
	return Resolution{}, ViewConfigurationView{}, fmt.Errorf("%w: no view supports %v",
		ErrNoAvailableViewConfiguration, preferred)
}
