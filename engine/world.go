// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Label names a schedule.
type Label string

// Main world phases, in tick order.
const (
	First      Label = "First"
	PreUpdate  Label = "PreUpdate"
	Update     Label = "Update"
	PostUpdate Label = "PostUpdate"
	Last       Label = "Last"
)

// Render world phases, in tick order.
const (
	Prepare     Label = "Prepare"
	Queue       Label = "Queue"
	Render      Label = "Render"
	Cleanup     Label = "Cleanup"
	PostCleanup Label = "PostCleanup"
)

// ErrUnknownPhase is returned when a phase is positioned relative to a
// phase the world does not run.
var ErrUnknownPhase = errors.New("engine: unknown phase")

// SystemFunc is the body of a system.
type SystemFunc func(w *World) error

// Condition gates a system. Conditions are evaluated immediately before
// the system would run, so they observe the effects of earlier systems.
type Condition func(w *World) bool

type system struct {
	name  string
	run   SystemFunc
	conds []Condition
}

// Schedule is an ordered list of systems.
type Schedule struct {
	label   Label
	systems []system
}

// World is a resource store plus the schedules that operate on it.
type World struct {
	name      string
	ctx       context.Context
	resources map[reflect.Type]any
	schedules map[Label]*Schedule
	phases    []Label
	events    []eventUpdater
}

// NewWorld returns an empty world that runs phases in the given order.
func NewWorld(name string, phases ...Label) *World {
	return &World{
		name:      name,
		ctx:       context.Background(),
		resources: make(map[reflect.Type]any),
		schedules: make(map[Label]*Schedule),
		phases:    slices.Clone(phases),
	}
}

// Name returns the world's name ("main" or "render" inside an App).
func (w *World) Name() string { return w.name }

// Context returns the context of the tick currently running.
func (w *World) Context() context.Context { return w.ctx }

// Phases returns the phase order.
func (w *World) Phases() []Label { return slices.Clone(w.phases) }

// InsertPhaseAfter adds phase to the tick order directly after an
// existing phase. Inserting a phase that is already present is a no-op.
func (w *World) InsertPhaseAfter(after, phase Label) error {
	if slices.Contains(w.phases, phase) {
		return nil
	}
	i := slices.Index(w.phases, after)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPhase, after)
	}
	w.phases = slices.Insert(w.phases, i+1, phase)
	return nil
}

// AddSystem appends a system to the schedule with the given label,
// creating the schedule if needed. The system runs only when every
// condition holds.
func (w *World) AddSystem(label Label, name string, fn SystemFunc, conds ...Condition) {
	s, ok := w.schedules[label]
	if !ok {
		s = &Schedule{label: label}
		w.schedules[label] = s
	}
	s.systems = append(s.systems, system{name: name, run: fn, conds: conds})
}

// HasSchedule reports whether a schedule with the label exists.
func (w *World) HasSchedule(label Label) bool {
	_, ok := w.schedules[label]
	return ok
}

// Systems returns the names of the systems in a schedule, in run order.
func (w *World) Systems(label Label) []string {
	s, ok := w.schedules[label]
	if !ok {
		return nil
	}
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = sys.name
	}
	return names
}

// RunSchedule runs one schedule. Running a schedule that does not exist
// does nothing. The first system error stops the schedule.
func (w *World) RunSchedule(label Label) error {
	s, ok := w.schedules[label]
	if !ok {
		return nil
	}
	for _, sys := range s.systems {
		if !allow(w, sys.conds) {
			continue
		}
		if err := sys.run(w); err != nil {
			return fmt.Errorf("%s/%s/%s: %w", w.name, label, sys.name, err)
		}
	}
	return nil
}

// allow evaluates every condition, even after one fails, so that
// event-reading conditions always consume what they saw.
func allow(w *World, conds []Condition) bool {
	ok := true
	for _, c := range conds {
		if !c(w) {
			ok = false
		}
	}
	return ok
}

// Tick rotates event queues and runs every phase once.
func (w *World) Tick(ctx context.Context) error {
	w.ctx = ctx
	for _, e := range w.events {
		e.Update()
	}
	for _, p := range w.phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.RunSchedule(p); err != nil {
			return err
		}
	}
	return nil
}
