// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"golang.org/x/sync/errgroup"
)

// ErrRendererInitialized is returned by InitRenderer when a renderer was
// already set up.
var ErrRendererInitialized = errors.New("engine: renderer already initialized")

// Plugin configures an App.
type Plugin interface {
	Build(app *App) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(app *App) error

// Build calls f(app).
func (f PluginFunc) Build(app *App) error { return f(app) }

// ExtractFunc copies or moves state from the main world into the render
// world. Extraction runs while neither world is ticking.
type ExtractFunc func(main, render *World) error

// RenderCreation describes how the host renderer obtains its GPU device.
type RenderCreation struct {
	// Device is a device created by someone else, typically an XR runtime.
	// Nil lets the renderer pick its own adapter.
	Device gpucontext.DeviceProvider

	// SynchronousPipelineCompilation compiles pipelines on first use
	// instead of in the background.
	SynchronousPipelineCompilation bool

	// Continuous keeps the renderer ticking without window events.
	Continuous bool
}

// Automatic reports whether the renderer chooses its own device.
func (rc RenderCreation) Automatic() bool { return rc.Device == nil }

// RunMode selects how App.Run schedules the two worlds.
type RunMode uint8

const (
	// Sequential runs main, extraction and render on the calling goroutine.
	Sequential RunMode = iota

	// Pipelined runs the main world for tick N+1 concurrently with the
	// render world for tick N.
	Pipelined
)

// String returns the mode name.
func (m RunMode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Pipelined:
		return "pipelined"
	default:
		return fmt.Sprintf("RunMode(%d)", m)
	}
}

type extractor struct {
	name string
	fn   ExtractFunc
}

// App owns the main and render worlds.
type App struct {
	Main   *World
	Render *World

	extract []extractor
}

// New returns an App with the default phase orders.
func New() *App {
	return &App{
		Main:   NewWorld("main", First, PreUpdate, Update, PostUpdate, Last),
		Render: NewWorld("render", Prepare, Queue, Render, Cleanup, PostCleanup),
	}
}

// AddPlugins builds plugins in order and stops at the first error.
func (a *App) AddPlugins(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Build(a); err != nil {
			return err
		}
	}
	return nil
}

// AddExtract appends an extraction step. Steps run in insertion order.
func (a *App) AddExtract(name string, fn ExtractFunc) {
	a.extract = append(a.extract, extractor{name: name, fn: fn})
}

// InitRenderer records how the host renderer is created. The value is
// visible in both worlds.
func (a *App) InitRenderer(rc RenderCreation) error {
	if Has[RenderCreation](a.Render) {
		return ErrRendererInitialized
	}
	Insert(a.Main, rc)
	Insert(a.Render, rc)
	return nil
}

// Extract runs every extraction step.
func (a *App) Extract(ctx context.Context) error {
	a.Main.ctx = ctx
	a.Render.ctx = ctx
	for _, e := range a.extract {
		if err := e.fn(a.Main, a.Render); err != nil {
			return fmt.Errorf("extract/%s: %w", e.name, err)
		}
	}
	return nil
}

// Update runs one sequential tick: main, extraction, render.
func (a *App) Update(ctx context.Context) error {
	if err := a.Main.Tick(ctx); err != nil {
		return err
	}
	if err := a.Extract(ctx); err != nil {
		return err
	}
	return a.Render.Tick(ctx)
}

// Run executes ticks iterations in the given mode. Both modes run the
// same number of main and render ticks; in Pipelined mode the render
// world trails the main world by one tick.
func (a *App) Run(ctx context.Context, ticks int, mode RunMode) error {
	if ticks <= 0 {
		return nil
	}
	if mode == Sequential {
		for range ticks {
			if err := a.Update(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	if err := a.Main.Tick(ctx); err != nil {
		return err
	}
	if err := a.Extract(ctx); err != nil {
		return err
	}
	for range ticks - 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.Render.Tick(gctx) })
		g.Go(func() error { return a.Main.Tick(gctx) })
		if err := g.Wait(); err != nil {
			return err
		}
		if err := a.Extract(ctx); err != nil {
			return err
		}
	}
	return a.Render.Tick(ctx)
}
