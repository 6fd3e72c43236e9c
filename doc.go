// Package xr is the backend-independent session model shared by the
// OpenXR (oxr) and WebXR (wxr) plugins.
//
// # Overview
//
// An XR application has exactly one session status, held in a
// [SharedStatus] owned by the main world and mirrored into the render
// world every tick. Backends are the only writers: they translate
// runtime-reported session states into [Status] values and announce
// every change with a [StatusChanged] event.
//
// Applications drive the lifecycle with four command events:
//
//	CreateSession   honored only in StatusAvailable
//	BeginSession    honored only in StatusReady
//	EndSession      honored only in StatusRunning
//	DestroySession  honored only in StatusExiting
//
// A command raised in any other state is ignored by the backend's gating
// conditions; it is not an error.
//
// # Automatic policy
//
// [SessionPlugin] installs a policy that requests session creation the
// first time the status becomes Available, begins the session as soon as
// it is Ready and destroys it once it is Exiting. Disable the policy with
// SessionPlugin{Manual: true} to drive the commands yourself.
//
// # Quick Start
//
//	app := engine.New()
//	err := app.AddPlugins(
//	    xr.SessionPlugin{},
//	    oxr.Plugin{Entry: entry, Options: oxr.DefaultOptions()},
//	)
//	for {
//	    if err := app.Update(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Logging
//
// xr is silent by default. See [SetLogger].
package xr

// Version is the current version of the library.
const Version = "0.1.0"
