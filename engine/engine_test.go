// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

type counter int

func TestResources(t *testing.T) {
	w := NewWorld("test")

	if Has[counter](w) {
		t.Fatal("Has() = true on empty world")
	}
	Insert(w, counter(3))
	if got := MustGet[counter](w); got != 3 {
		t.Errorf("MustGet() = %d, want 3", got)
	}
	Insert(w, counter(4))
	if got, _ := Get[counter](w); got != 4 {
		t.Errorf("Get() after replace = %d, want 4", got)
	}

	v, ok := Remove[counter](w)
	if !ok || v != 4 {
		t.Errorf("Remove() = %d, %v, want 4, true", v, ok)
	}
	if _, ok := Remove[counter](w); ok {
		t.Error("second Remove() reported a value")
	}
	if Has[counter](w) {
		t.Error("resource still present after Remove")
	}
}

func TestMustGetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGet() on missing resource did not panic")
		}
	}()
	MustGet[counter](NewWorld("test"))
}

func TestEvents_DoubleBuffer(t *testing.T) {
	var (
		e Events[int]
		r Reader[int]
	)

	e.Send(1)
	e.Send(2)
	if got := r.Read(&e); !cmp.Equal(got, []int{1, 2}) {
		t.Errorf("Read() = %v, want [1 2]", got)
	}
	if got := r.Read(&e); len(got) != 0 {
		t.Errorf("second Read() = %v, want none", got)
	}

	// A late reader still sees events from the previous tick.
	var late Reader[int]
	e.Update()
	e.Send(3)
	if got := late.Read(&e); !cmp.Equal(got, []int{1, 2, 3}) {
		t.Errorf("late Read() = %v, want [1 2 3]", got)
	}

	// Two rotations drop them.
	var later Reader[int]
	e.Update()
	e.Update()
	if got := later.Read(&e); len(got) != 0 {
		t.Errorf("Read() after two updates = %v, want none", got)
	}
}

func TestOnEvent(t *testing.T) {
	w := NewWorld("test", Update)
	AddEvent[string](w)
	cond := OnEvent[string]()

	if cond(w) {
		t.Error("OnEvent() = true with no events")
	}
	Send(w, "go")
	if !cond(w) {
		t.Error("OnEvent() = false after Send")
	}
	if cond(w) {
		t.Error("OnEvent() = true for an already consumed event")
	}

	Send(w, "again")
	_ = w.Tick(context.Background())
	_ = w.Tick(context.Background())
	if cond(w) {
		t.Error("OnEvent() = true for an expired event")
	}
}

func TestRunSchedule_ConditionsAndOrder(t *testing.T) {
	w := NewWorld("test", Update)
	var got []string
	record := func(name string) SystemFunc {
		return func(*World) error {
			got = append(got, name)
			return nil
		}
	}

	w.AddSystem(Update, "a", record("a"))
	w.AddSystem(Update, "gated", record("gated"), ResourceExists[counter]())
	w.AddSystem(Update, "insert", func(w *World) error {
		Insert(w, counter(1))
		return nil
	})
	w.AddSystem(Update, "after", record("after"), ResourceEquals(counter(1)))
	w.AddSystem(Update, "not", record("not"), Not(ResourceExists[counter]()))

	if err := w.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "after"}, got); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "gated", "insert", "after", "not"}, w.Systems(Update)); diff != "" {
		t.Errorf("Systems() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSchedule_ConditionsAllEvaluated(t *testing.T) {
	w := NewWorld("test", Update)
	AddEvent[string](w)
	ran := 0
	w.AddSystem(Update, "gated", func(*World) error { ran++; return nil },
		ResourceExists[counter](), OnEvent[string]())

	Send(w, "early")
	if err := w.RunSchedule(Update); err != nil {
		t.Fatal(err)
	}
	Insert(w, counter(1))
	if err := w.RunSchedule(Update); err != nil {
		t.Fatal(err)
	}
	if ran != 0 {
		t.Errorf("system ran %d times for an event consumed while gated, want 0", ran)
	}
}

func TestRunSchedule_StopsOnError(t *testing.T) {
	w := NewWorld("main", Update)
	boom := errors.New("boom")
	ran := false
	w.AddSystem(Update, "fail", func(*World) error { return boom })
	w.AddSystem(Update, "never", func(*World) error { ran = true; return nil })

	err := w.Tick(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Tick() error = %v, want %v", err, boom)
	}
	if want := "main/Update/fail: boom"; err.Error() != want {
		t.Errorf("Tick() error = %q, want %q", err.Error(), want)
	}
	if ran {
		t.Error("system after failing system ran")
	}
}

func TestInsertPhaseAfter(t *testing.T) {
	w := NewWorld("main", First, Update, Last)
	if err := w.InsertPhaseAfter(Last, "XrLast"); err != nil {
		t.Fatal(err)
	}
	if err := w.InsertPhaseAfter(First, "Early"); err != nil {
		t.Fatal(err)
	}
	if err := w.InsertPhaseAfter(First, "XrLast"); err != nil {
		t.Fatal(err)
	}
	want := []Label{First, "Early", Update, Last, "XrLast"}
	if diff := cmp.Diff(want, w.Phases()); diff != "" {
		t.Errorf("Phases() mismatch (-want +got):\n%s", diff)
	}
	if err := w.InsertPhaseAfter("Missing", "X"); !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("InsertPhaseAfter(Missing) error = %v, want %v", err, ErrUnknownPhase)
	}
}

func TestApp_InitRenderer(t *testing.T) {
	app := New()
	if err := app.InitRenderer(RenderCreation{}); err != nil {
		t.Fatal(err)
	}
	if !MustGet[RenderCreation](app.Render).Automatic() {
		t.Error("RenderCreation{} is not automatic")
	}
	if err := app.InitRenderer(RenderCreation{}); !errors.Is(err, ErrRendererInitialized) {
		t.Errorf("second InitRenderer() error = %v, want %v", err, ErrRendererInitialized)
	}
}

func TestApp_Run(t *testing.T) {
	tests := []struct {
		name string
		mode RunMode
	}{
		{"sequential", Sequential},
		{"pipelined", Pipelined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

			app := New()
			var mainTicks, renderTicks atomic.Int32
			app.Main.AddSystem(Update, "count", func(w *World) error {
				mainTicks.Add(1)
				Insert(w, counter(mainTicks.Load()))
				return nil
			})
			app.AddExtract("mirror", func(main, render *World) error {
				Insert(render, MustGet[counter](main))
				return nil
			})
			var seen []counter
			app.Render.AddSystem(Render, "observe", func(w *World) error {
				renderTicks.Add(1)
				seen = append(seen, MustGet[counter](w))
				return nil
			})

			if err := app.Run(context.Background(), 5, tt.mode); err != nil {
				t.Fatal(err)
			}
			if mainTicks.Load() != 5 || renderTicks.Load() != 5 {
				t.Errorf("ticks main=%d render=%d, want 5 and 5", mainTicks.Load(), renderTicks.Load())
			}
			if diff := cmp.Diff([]counter{1, 2, 3, 4, 5}, seen); diff != "" {
				t.Errorf("render observed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApp_RunPropagatesError(t *testing.T) {
	app := New()
	boom := errors.New("render failed")
	app.Render.AddSystem(Cleanup, "fail", func(*World) error { return boom })

	if err := app.Run(context.Background(), 3, Pipelined); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestRunMode_String(t *testing.T) {
	if got := Pipelined.String(); got != "pipelined" {
		t.Errorf("Pipelined.String() = %q", got)
	}
	if got := RunMode(9).String(); got != "RunMode(9)" {
		t.Errorf("RunMode(9).String() = %q", got)
	}
}
