package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/config"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/oxr"
	"github.com/gogpu/xr/oxr/oxrtest"
)

type runOptions struct {
	configPath    string
	ticks         int
	pipelined     bool
	logLevel      string
	noPassthrough bool
}

// maxSettleTicks bounds the ticks spent waiting for a status change.
const maxSettleTicks = 100

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

func run(ctx context.Context, out io.Writer, o runOptions) error {
	level, err := parseLevel(o.logLevel)
	if err != nil {
		return err
	}
	xr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	defer xr.SetLogger(nil)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	opts, err := cfg.OpenXROptions()
	if err != nil {
		return err
	}

	rcfg := oxrtest.DefaultConfig()
	rcfg.NoPassthrough = o.noPassthrough
	rt := oxrtest.New(rcfg)

	mode := engine.Sequential
	if o.pipelined {
		mode = engine.Pipelined
	}

	app := engine.New()
	if err := app.AddPlugins(
		xr.SessionPlugin{Manual: cfg.Session.Manual},
		oxr.Plugin{Entry: rt, Options: opts},
	); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := oxr.Shutdown(sctx, app); err != nil {
			xr.Logger().Error("xrdemo: shutdown", "err", err)
		}
	}()

	st := status(app)
	if st == xr.StatusUnavailable {
		return errors.New("xrdemo: XR unavailable")
	}

	if cfg.Session.Manual {
		engine.Send(app.Main, xr.CreateSession{})
	}
	if err := settle(ctx, app, mode, xr.StatusReady, xr.StatusRunning); err != nil {
		return err
	}
	if cfg.Session.Manual {
		engine.Send(app.Main, xr.BeginSession{})
	}
	if err := settle(ctx, app, mode, xr.StatusRunning); err != nil {
		return err
	}

	if err := app.Run(ctx, o.ticks, mode); err != nil {
		return err
	}
	sess := rt.Session()

	engine.Send(app.Main, xr.EndSession{})
	if err := settle(ctx, app, mode, xr.StatusExiting, xr.StatusAvailable); err != nil {
		return err
	}
	if cfg.Session.Manual && status(app) == xr.StatusExiting {
		engine.Send(app.Main, xr.DestroySession{})
	}
	if err := settle(ctx, app, mode, xr.StatusAvailable); err != nil {
		return err
	}

	return report(out, rt, sess)
}

func status(app *engine.App) xr.Status {
	st, _ := xr.StatusOf(app.Main)
	return st
}

// settle ticks until the status is one of want.
func settle(ctx context.Context, app *engine.App, mode engine.RunMode, want ...xr.Status) error {
	for range maxSettleTicks {
		st := status(app)
		for _, w := range want {
			if st == w {
				return nil
			}
		}
		if err := app.Run(ctx, 1, mode); err != nil {
			return err
		}
	}
	return fmt.Errorf("xrdemo: status %v did not reach %v", status(app), want)
}

func report(out io.Writer, rt *oxrtest.Runtime, s *oxrtest.Session) error {
	var b strings.Builder
	if s == nil {
		return errors.New("xrdemo: no session was created")
	}
	frames := s.Submitted()
	rendered := 0
	for _, f := range frames {
		if len(f.Layers) > 0 {
			rendered++
		}
	}
	fmt.Fprintf(&b, "frames submitted: %d (%d with layers)\n", len(frames), rendered)
	if len(frames) > 0 {
		fmt.Fprintf(&b, "blend mode: %v\n", frames[len(frames)-1].BlendMode)
	}
	for _, name := range []string{"CreateSession", "BeginSession", "WaitFrame", "EndFrame", "EndSession", "DestroySession"} {
		fmt.Fprintf(&b, "%s: %d\n", name, rt.Count(name))
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func effectiveConfig(path string) (string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("xrdemo: encode config: %w", err)
	}
	return string(data), nil
}
