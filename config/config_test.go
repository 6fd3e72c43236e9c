// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/xr/config"
	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/oxr"
	"github.com/gogpu/xr/wxr"
)

func TestDefault(t *testing.T) {
	f := config.Default()
	o, err := f.OpenXROptions()
	if err != nil {
		t.Fatalf("OpenXROptions() error = %v", err)
	}
	if diff := cmp.Diff(oxr.DefaultOptions(), o); diff != "" {
		t.Errorf("OpenXROptions() mismatch (-want +got):\n%s", diff)
	}
	w, err := f.WebXROptions()
	if err != nil {
		t.Fatalf("WebXROptions() error = %v", err)
	}
	if diff := cmp.Diff(wxr.DefaultOptions(), w); diff != "" {
		t.Errorf("WebXROptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
session:
  manual: true
openxr:
  extensions: [XR_FB_passthrough]
  blend_modes: [alpha_blend, opaque]
  backends: [vulkan]
  formats: [bgra8unorm, rgba8unorm]
  resolutions: [1832x1920, 1440X1600]
  reference_space: local
  frame:
    poll_interval: 2ms
    max_retries: 50
    image_wait_timeout: 100ms
    queue_capacity: 2
webxr:
  mode: ar
  required: [hit-test]
  reference_space: unbounded
  alpha: false
`)
	f, err := config.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !f.Session.Manual {
		t.Error("Session.Manual = false")
	}

	o, err := f.OpenXROptions()
	if err != nil {
		t.Fatal(err)
	}
	want := oxr.DefaultOptions()
	want.Extensions = oxr.Extensions{oxr.ExtFBPassthrough}
	want.BlendModes = []oxr.BlendMode{oxr.BlendAlphaBlend, oxr.BlendOpaque}
	want.Backends = []graphics.Backend{graphics.Vulkan}
	want.Formats = []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm}
	want.Resolutions = []oxr.Resolution{{Width: 1832, Height: 1920}, {Width: 1440, Height: 1600}}
	want.ReferenceSpace = oxr.SpaceLocal
	want.Frame = oxr.FramePolicy{
		PollInterval:     2 * time.Millisecond,
		MaxRetries:       50,
		ImageWaitTimeout: 100 * time.Millisecond,
		QueueCapacity:    2,
	}
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("OpenXROptions() mismatch (-want +got):\n%s", diff)
	}

	w, err := f.WebXROptions()
	if err != nil {
		t.Fatal(err)
	}
	wantW := wxr.Options{
		Mode:           wxr.ImmersiveAR,
		Required:       wxr.FeatureSet{wxr.HitTest},
		Optional:       wxr.FeatureSet{wxr.LocalFloor},
		ReferenceSpace: wxr.SpaceUnbounded,
	}
	if diff := cmp.Diff(wantW, w); diff != "" {
		t.Errorf("WebXROptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	f, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if diff := cmp.Diff(config.Default(), f); diff != "" {
		t.Errorf("Parse(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{name: "unknown key", data: "openxr:\n  blend: opaque\n"},
		{name: "two documents", data: "session:\n  manual: true\n---\nsession:\n  manual: false\n"},
		{name: "blend mode", data: "openxr:\n  blend_modes: [translucent]\n", invalid: true},
		{name: "backend", data: "openxr:\n  backends: [metal]\n", invalid: true},
		{name: "format", data: "openxr:\n  formats: [rgb565]\n", invalid: true},
		{name: "resolution", data: "openxr:\n  resolutions: [1832]\n", invalid: true},
		{name: "zero resolution", data: "openxr:\n  resolutions: [0x1920]\n", invalid: true},
		{name: "space", data: "openxr:\n  reference_space: floor\n", invalid: true},
		{name: "poll interval", data: "openxr:\n  frame:\n    poll_interval: 0s\n", invalid: true},
		{name: "queue capacity", data: "openxr:\n  frame:\n    queue_capacity: 0\n", invalid: true},
		{name: "image timeout", data: "openxr:\n  frame:\n    image_wait_timeout: soon\n", invalid: true},
		{name: "webxr mode", data: "webxr:\n  mode: desktop\n", invalid: true},
		{name: "webxr space", data: "webxr:\n  reference_space: stage\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if got := errors.Is(err, config.ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalid) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xr.yaml")
	if err := os.WriteFile(path, []byte("session:\n  manual: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !f.Session.Manual {
		t.Error("Session.Manual = false")
	}

	if f, err := config.Load(""); err != nil || f == nil {
		t.Errorf("Load(\"\") = %v, %v", f, err)
	}
	if _, err := config.Load(filepath.Join(dir, "xr.json")); err == nil {
		t.Error("Load(.json) error = nil")
	}
	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestParseResolution(t *testing.T) {
	got, err := config.ParseResolution(" 2064x2208 ")
	if err != nil {
		t.Fatal(err)
	}
	if want := (oxr.Resolution{Width: 2064, Height: 2208}); got != want {
		t.Errorf("ParseResolution() = %v, want %v", got, want)
	}
	if got.String() != "2064x2208" {
		t.Errorf("String() = %q", got.String())
	}
}
