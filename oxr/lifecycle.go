// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/internal/mailbox"
	"github.com/gogpu/xr/internal/metrics"
)

// SessionStarted is true between a successful begin and the matching end.
// It is mirrored into the render world at extraction.
type SessionStarted bool

// CleanupSession is set for one tick when the session is being torn down.
// The render world destroys its session resources when it sees it.
type CleanupSession bool

// RenderResources is the bundle handed from the main world to the render
// world after a session is created.
type RenderResources struct {
	Session     *Session
	Stream      *FrameStream
	Swapchain   *Swapchain
	Images      *SwapchainImages
	Info        GraphicsInfo
	Passthrough *Passthrough
}

// Handoff is the single-slot mailbox carrying RenderResources across.
type Handoff = mailbox.Mailbox[RenderResources]

// IsSessionStarted holds while SessionStarted is true.
func IsSessionStarted(w *engine.World) bool {
	v, _ := engine.Get[SessionStarted](w)
	return bool(v)
}

// MapSessionState maps a runtime session state to a session status.
// created is set only for IDLE reached from Available. ok is false only
// for unknown states, which are also reported as an error.
func MapSessionState(s SessionState, cur xr.Status) (st xr.Status, created, ending, ok bool, err error) {
	switch s {
	case SessionStateIdle:
		return xr.StatusIdle, cur == xr.StatusAvailable, false, true, nil
	case SessionStateReady:
		return xr.StatusReady, false, false, true, nil
	case SessionStateSynchronized, SessionStateVisible, SessionStateFocused:
		return xr.StatusRunning, false, false, true, nil
	case SessionStateStopping:
		return xr.StatusStopping, false, false, true, nil
	case SessionStateExiting, SessionStateLossPending:
		return xr.StatusExiting, false, true, true, nil
	default:
		return cur, false, false, false, fmt.Errorf("oxr: unhandled session state %v", s)
	}
}

// PollEvents drains the runtime event queue and drives the session
// status. State changes of any session other than the one held by the
// main world are dropped. An unhandled session state is a runtime
// contract violation and panics.
func PollEvents(w *engine.World) error {
	inst := engine.MustGet[Instance](w)
	status := engine.MustGet[*xr.SharedStatus](w)
	for {
		ev, err := inst.PollEvent()
		if err != nil {
			return fmt.Errorf("oxr: poll event: %w", err)
		}
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case SessionStateChanged:
			cur := status.Get()
			st, created, ending, ok, err := MapSessionState(e.State, cur)
			if err != nil {
				panic(err)
			}
			if s, live := engine.Get[*Session](w); !live || s.Handle() != e.Session {
				xr.Logger().Debug("oxr: state of unknown session dropped",
					"state", e.State.String(), "session", uint64(e.Session))
				continue
			}
			xr.Logger().Debug("oxr: session state", "state", e.State.String(), "status", st.String())
			if !ok {
				continue
			}
			xr.SetStatus(w, st)
			metrics.SetStatus(backendLabel, st.String(), int(st))
			if created {
				engine.Send(w, xr.SessionCreated)
			}
			if ending {
				engine.Send(w, xr.SessionAboutToBeDestroyed)
			}
		case EventsLost:
			xr.Logger().Warn("oxr: runtime events lost", "count", e.Count)
		case InstanceLossPending:
			xr.Logger().Warn("oxr: instance loss pending", "loss_time", int64(e.LossTime))
		default:
			xr.Logger().Debug("oxr: unhandled event", "event", fmt.Sprintf("%T", e))
		}
	}
}

// CreateSessionSystem handles CreateSession in StatusAvailable. A failure
// is logged and leaves the status unchanged so the application keeps
// rendering without XR.
func CreateSessionSystem(w *engine.World) error {
	if engine.Has[*Session](w) {
		return nil
	}
	inst := engine.MustGet[Instance](w)
	system := engine.MustGet[SystemID](w)
	cfg := engine.MustGet[SessionConfigInfo](w)

	res, err := CreateSessionResources(w.Context(), inst, system, cfg)
	if err != nil {
		xr.Logger().Error("oxr: failed to create session", "err", err)
		return nil
	}
	engine.Insert(w, res.Session)
	engine.Insert(w, res.Waiter)
	engine.Insert(w, res.Images)
	engine.Insert(w, res.Info)
	hand := mailbox.New(RenderResources{
		Session:     res.Session,
		Stream:      res.Stream,
		Swapchain:   res.Swapchain,
		Images:      res.Images,
		Info:        res.Info,
		Passthrough: res.Passthrough,
	})
	engine.Insert(w, hand)
	return nil
}

// BeginSessionSystem handles BeginSession in StatusReady: it begins the
// runtime session and starts the frame waiter.
func BeginSessionSystem(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	_, span := startSpan(w.Context(), "oxr.begin_session", attribute.String("xr.session", s.ID.String()))
	err := s.rt.Begin(PrimaryStereo)
	endSpan(span, err)
	if err != nil {
		return fmt.Errorf("oxr: begin session: %w", err)
	}
	s.running.Store(true)
	engine.Insert(w, SessionStarted(true))

	policy, ok := engine.Get[FramePolicy](w)
	if !ok {
		policy = DefaultFramePolicy()
	}
	if fw, ok := engine.Get[*FrameWaiter](w); ok {
		// The waiter outlives the tick that started it.
		fw.Start(context.WithoutCancel(w.Context()), policy.QueueCapacity)
	}
	xr.Logger().Info("oxr: session begun", "session", s.ID)
	return nil
}

// EndSessionSystem handles EndSession in StatusRunning by asking the
// runtime to exit. The runtime answers with STOPPING.
func EndSessionSystem(w *engine.World) error {
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	if err := s.rt.RequestExit(); err != nil {
		return fmt.Errorf("oxr: request exit: %w", err)
	}
	return nil
}

// StopSessionSystem ends the runtime session once the runtime reports
// STOPPING. The runtime then moves the session to IDLE and EXITING.
func StopSessionSystem(w *engine.World) error {
	engine.Insert(w, SessionStarted(false))
	s, ok := engine.Get[*Session](w)
	if !ok {
		return nil
	}
	s.running.Store(false)
	err := s.rt.End()
	if fw, ok := engine.Get[*FrameWaiter](w); ok {
		fw.Stop()
	}
	if err != nil {
		return fmt.Errorf("oxr: end session: %w", err)
	}
	xr.Logger().Info("oxr: session ended", "session", s.ID)
	return nil
}

// DestroySessionSystem handles DestroySession in StatusExiting. The
// status returns to Available and a new session may be created.
func DestroySessionSystem(w *engine.World) error {
	if err := CleanSession(w); err != nil {
		return err
	}
	xr.SetStatus(w, xr.StatusAvailable)
	metrics.SetStatus(backendLabel, xr.StatusAvailable.String(), int(xr.StatusAvailable))
	return nil
}

// CleanSession removes every main-world session resource and flags the
// render world to do the same. It may run more than once per session.
func CleanSession(w *engine.World) error {
	if _, ok := engine.Remove[*Session](w); ok {
		engine.Insert(w, CleanupSession(true))
	}
	if fw, ok := engine.Remove[*FrameWaiter](w); ok {
		fw.Stop()
	}
	engine.Remove[*SwapchainImages](w)
	engine.Remove[GraphicsInfo](w)
	engine.Insert(w, SessionStarted(false))

	// A session destroyed before the render world took it is released here.
	if hand, ok := engine.Remove[*Handoff](w); ok {
		if res, ok := hand.Take(); ok {
			return errors.Join(destroyRenderResources(res)...)
		}
	}
	return nil
}

// ResetCleanup clears CleanupSession at the start of every tick.
func ResetCleanup(w *engine.World) error {
	engine.Insert(w, CleanupSession(false))
	return nil
}
