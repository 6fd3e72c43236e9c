// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"github.com/gogpu/xr/engine"
)

// CreateWhenAvailable controls the one-shot automatic session creation.
// It starts true and is cleared after the create request was sent, so a
// session that is later destroyed is not recreated automatically.
type CreateWhenAvailable bool

// SessionPlugin registers the session events and schedules and, unless
// Manual is set, the automatic lifecycle policy.
type SessionPlugin struct {
	// Manual disables the automatic policy.
	Manual bool
}

// Build implements engine.Plugin.
func (p SessionPlugin) Build(app *engine.App) error {
	RegisterEvents(app.Main)
	if err := app.Main.InsertPhaseAfter(engine.Last, Last); err != nil {
		return err
	}
	app.Main.AddSystem(engine.PreUpdate, "xr.run_session_status_schedules", RunSessionStatusSchedules())
	if !p.Manual {
		engine.Insert(app.Main, CreateWhenAvailable(true))
		app.Main.AddSystem(engine.PreUpdate, "xr.auto_handle_session", AutoHandleSession(),
			engine.ResourceExists[*SharedStatus]())
	}
	app.AddExtract("xr.status", ExtractStatus)
	return nil
}

// RunSessionStatusSchedules returns a system that runs
// SessionCreatedSchedule or SessionEnding for every SessionStatusEvent.
func RunSessionStatusSchedules() engine.SystemFunc {
	var r engine.Reader[SessionStatusEvent]
	return func(w *engine.World) error {
		for _, ev := range engine.ReadEvents(w, &r) {
			var label engine.Label
			switch ev {
			case SessionCreated:
				label = SessionCreatedSchedule
			case SessionAboutToBeDestroyed:
				label = SessionEnding
			default:
				continue
			}
			if err := w.RunSchedule(label); err != nil {
				return err
			}
		}
		return nil
	}
}

// AutoHandleSession returns the automatic lifecycle policy. It reacts to
// status edges: Available requests creation (once), Ready requests begin,
// Exiting requests destruction.
func AutoHandleSession() engine.SystemFunc {
	var (
		prev    Status
		hasPrev bool
	)
	return func(w *engine.World) error {
		cur, ok := StatusOf(w)
		if !ok {
			return nil
		}
		if hasPrev && prev == cur {
			return nil
		}
		prev, hasPrev = cur, true

		switch cur {
		case StatusAvailable:
			if create, _ := engine.Get[CreateWhenAvailable](w); create {
				engine.Send(w, CreateSession{})
				engine.Insert(w, CreateWhenAvailable(false))
			}
		case StatusReady:
			engine.Send(w, BeginSession{})
		case StatusExiting:
			engine.Send(w, DestroySession{})
		}
		return nil
	}
}
