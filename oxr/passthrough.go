// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"errors"
	"fmt"
)

// ErrPassthroughUnsupported is returned when the runtime session does not
// implement PassthroughSession.
var ErrPassthroughUnsupported = errors.New("oxr: passthrough not supported by session")

// Passthrough is a running XR_FB_passthrough feature and the layer that
// composites the camera feed beneath the rendered views.
type Passthrough struct {
	rt      PassthroughSession
	feature PassthroughHandle
	layer   PassthroughHandle
}

// createPassthrough starts passthrough on sessions that support it.
func createPassthrough(rt RuntimeSession) (*Passthrough, error) {
	ps, ok := rt.(PassthroughSession)
	if !ok {
		return nil, ErrPassthroughUnsupported
	}
	feature, err := ps.CreatePassthrough(true)
	if err != nil {
		return nil, fmt.Errorf("oxr: create passthrough: %w", err)
	}
	layer, err := ps.CreatePassthroughLayer(feature, true)
	if err != nil {
		_ = ps.DestroyPassthrough(feature)
		return nil, fmt.Errorf("oxr: create passthrough layer: %w", err)
	}
	return &Passthrough{rt: ps, feature: feature, layer: layer}, nil
}

// Layer returns the composition layer to submit beneath the projection.
func (p *Passthrough) Layer() PassthroughLayer {
	return PassthroughLayer{Flags: LayerBlendTextureSourceAlpha, Layer: p.layer}
}

// Destroy destroys the layer, then the feature.
func (p *Passthrough) Destroy() error {
	return errors.Join(
		p.rt.DestroyPassthrough(p.layer),
		p.rt.DestroyPassthrough(p.feature),
	)
}
