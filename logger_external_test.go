package xr_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/engine"
	"github.com/gogpu/xr/oxr"
	"github.com/gogpu/xr/oxr/oxrtest"
	"github.com/gogpu/xr/wxr"
)

// syncBuffer is written by the frame waiter goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T, level slog.Level) *syncBuffer {
	t.Helper()
	var buf syncBuffer
	xr.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { xr.SetLogger(nil) })
	return &buf
}

func TestLogger_BackendsShareLogger(t *testing.T) {
	noXR := oxrtest.DefaultConfig()
	noXR.Extensions = nil
	tests := []struct {
		name   string
		plugin engine.Plugin
		want   string
	}{
		{
			name: "openxr init failure",
			plugin: oxr.Plugin{
				Entry:   oxrtest.New(noXR),
				Options: oxr.DefaultOptions(),
			},
			want: "oxr: failed to initialize",
		},
		{
			name:   "webxr without browser support",
			plugin: wxr.Plugin{Options: wxr.DefaultOptions()},
			want:   "wxr: browser has no WebXR support",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t, slog.LevelWarn)

			app := engine.New()
			if err := app.AddPlugins(xr.SessionPlugin{}, tt.plugin); err != nil {
				t.Fatalf("AddPlugins() error = %v", err)
			}
			if !strings.Contains(logs.String(), tt.want) {
				t.Errorf("log output = %q, want it to contain %q", logs.String(), tt.want)
			}
			if !strings.Contains(logs.String(), "level=WARN") {
				t.Errorf("log output = %q, want a warning", logs.String())
			}
			if st, _ := xr.StatusOf(app.Main); st != xr.StatusUnavailable {
				t.Errorf("status = %v, want Unavailable", st)
			}
		})
	}
}

func TestLogger_SessionLifecycle(t *testing.T) {
	logs := captureLogs(t, slog.LevelInfo)

	app := engine.New()
	rt := oxrtest.New(oxrtest.DefaultConfig())
	if err := app.AddPlugins(xr.SessionPlugin{}, oxr.Plugin{Entry: rt, Options: oxr.DefaultOptions()}); err != nil {
		t.Fatalf("AddPlugins() error = %v", err)
	}
	defer func() { _ = oxr.Shutdown(context.Background(), app) }()

	for range 20 {
		if st, _ := xr.StatusOf(app.Main); st == xr.StatusRunning {
			break
		}
		if err := app.Run(context.Background(), 1, engine.Sequential); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	out := logs.String()
	for _, want := range []string{"oxr: loaded runtime", "oxr: using system"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "level=DEBUG") {
		t.Errorf("debug records written at info level:\n%s", out)
	}
}
