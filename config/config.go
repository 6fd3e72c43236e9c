// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads XR plugin settings from YAML.
//
// A file has three optional sections:
//
//	session:
//	  manual: false
//	openxr:
//	  blend_modes: [alpha_blend, opaque]
//	  formats: [rgba8unorm]
//	  reference_space: stage
//	  frame:
//	    poll_interval: 1ms
//	    image_wait_timeout: infinite
//	webxr:
//	  mode: immersive-vr
//	  optional: [local-floor]
//
// Keys not listed here are rejected. Omitted keys keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/xr/oxr"
	"github.com/gogpu/xr/wxr"
)

// ErrInvalid wraps every validation error.
var ErrInvalid = errors.New("config: invalid value")

// File is the decoded form of a configuration file.
type File struct {
	Session SessionConfig `yaml:"session"`
	OpenXR  OpenXRConfig  `yaml:"openxr"`
	WebXR   WebXRConfig   `yaml:"webxr"`
}

// SessionConfig selects the lifecycle policy.
type SessionConfig struct {
	// Manual leaves session commands to the application.
	Manual bool `yaml:"manual"`
}

// OpenXRConfig mirrors oxr.Options with names instead of enum values.
type OpenXRConfig struct {
	AppName        string      `yaml:"app_name"`
	AppVersion     uint32      `yaml:"app_version"`
	Extensions     []string    `yaml:"extensions"`
	BlendModes     []string    `yaml:"blend_modes"`
	Backends       []string    `yaml:"backends"`
	Formats        []string    `yaml:"formats"`
	Resolutions    []string    `yaml:"resolutions"`
	ReferenceSpace string      `yaml:"reference_space"`
	SyncPipelines  bool        `yaml:"synchronous_pipeline_compilation"`
	Frame          FrameConfig `yaml:"frame"`
}

// FrameConfig mirrors oxr.FramePolicy.
type FrameConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxRetries   uint64        `yaml:"max_retries"`
	// ImageWaitTimeout is a duration or "infinite".
	ImageWaitTimeout string `yaml:"image_wait_timeout"`
	QueueCapacity    int    `yaml:"queue_capacity"`
}

// WebXRConfig mirrors wxr.Options.
type WebXRConfig struct {
	Mode           string   `yaml:"mode"`
	Required       []string `yaml:"required"`
	Optional       []string `yaml:"optional"`
	ReferenceSpace string   `yaml:"reference_space"`
	Alpha          bool     `yaml:"alpha"`
}

// Default returns the settings used when no file is given.
func Default() *File {
	o := oxr.DefaultOptions()
	w := wxr.DefaultOptions()
	return &File{
		OpenXR: OpenXRConfig{
			AppName:        o.App.Name,
			AppVersion:     o.App.Version,
			Extensions:     o.Extensions,
			Formats:        []string{"rgba8unorm"},
			ReferenceSpace: "stage",
			SyncPipelines:  o.SynchronousPipelineCompilation,
			Frame: FrameConfig{
				PollInterval:     o.Frame.PollInterval,
				MaxRetries:       o.Frame.MaxRetries,
				ImageWaitTimeout: "infinite",
				QueueCapacity:    o.Frame.QueueCapacity,
			},
		},
		WebXR: WebXRConfig{
			Mode:           w.Mode.String(),
			Required:       w.Required.Strings(),
			Optional:       w.Optional.Strings(),
			ReferenceSpace: w.ReferenceSpace.String(),
			Alpha:          w.Alpha,
		},
	}
}

// Load reads and validates a YAML file. An empty path returns Default.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config: unsupported format %q (only YAML supported)", ext)
	}
	// #nosec G304 -- the path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML over the defaults. Unknown keys, multiple documents
// and invalid names are errors.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return nil, fmt.Errorf("strict parse: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("multiple documents or trailing content")
	}
	if _, err := f.OpenXROptions(); err != nil {
		return nil, err
	}
	if _, err := f.WebXROptions(); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenXROptions converts the openxr section.
func (f *File) OpenXROptions() (oxr.Options, error) {
	c := f.OpenXR
	o := oxr.DefaultOptions()
	o.App = oxr.AppInfo{Name: c.AppName, Version: c.AppVersion}
	o.Extensions = oxr.Extensions(nil).With(c.Extensions...)
	o.SynchronousPipelineCompilation = c.SyncPipelines

	var err error
	if o.BlendModes, err = parseAll(c.BlendModes, ParseBlendMode); err != nil {
		return o, err
	}
	if o.Backends, err = parseAll(c.Backends, parseBackend); err != nil {
		return o, err
	}
	if o.Formats, err = parseAll(c.Formats, ParseFormat); err != nil {
		return o, err
	}
	if o.Resolutions, err = parseAll(c.Resolutions, ParseResolution); err != nil {
		return o, err
	}
	if o.ReferenceSpace, err = ParseOpenXRSpace(c.ReferenceSpace); err != nil {
		return o, err
	}
	if o.Frame, err = c.Frame.policy(); err != nil {
		return o, err
	}
	return o, nil
}

func (c FrameConfig) policy() (oxr.FramePolicy, error) {
	p := oxr.FramePolicy{
		PollInterval:  c.PollInterval,
		MaxRetries:    c.MaxRetries,
		QueueCapacity: c.QueueCapacity,
	}
	if p.PollInterval <= 0 {
		return p, fmt.Errorf("%w: frame.poll_interval %v must be positive", ErrInvalid, c.PollInterval)
	}
	if p.QueueCapacity < 1 {
		return p, fmt.Errorf("%w: frame.queue_capacity %d must be at least 1", ErrInvalid, c.QueueCapacity)
	}
	switch s := strings.TrimSpace(c.ImageWaitTimeout); s {
	case "", "infinite":
		p.ImageWaitTimeout = oxr.InfiniteTimeout
	default:
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return p, fmt.Errorf("%w: frame.image_wait_timeout %q", ErrInvalid, c.ImageWaitTimeout)
		}
		p.ImageWaitTimeout = d
	}
	return p, nil
}

// WebXROptions converts the webxr section.
func (f *File) WebXROptions() (wxr.Options, error) {
	c := f.WebXR
	o := wxr.Options{Alpha: c.Alpha}
	var err error
	if o.Mode, err = wxr.ParseSessionMode(c.Mode); err != nil {
		return o, fmt.Errorf("%w: webxr.mode: %w", ErrInvalid, err)
	}
	if o.ReferenceSpace, err = wxr.ParseReferenceSpace(c.ReferenceSpace); err != nil {
		return o, fmt.Errorf("%w: webxr.reference_space: %w", ErrInvalid, err)
	}
	for _, s := range c.Required {
		o.Required = o.Required.Enable(wxr.Feature(s))
	}
	for _, s := range c.Optional {
		o.Optional = o.Optional.Enable(wxr.Feature(s))
	}
	return o, nil
}

func parseAll[T any](names []string, parse func(string) (T, error)) ([]T, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(names))
	for _, n := range names {
		v, err := parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
