package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "auto", args: []string{"--ticks", "8", "--log-level", "error"}},
		{name: "pipelined", args: []string{"--ticks", "8", "--pipelined", "--log-level", "error"}},
		{name: "no passthrough", args: []string{"--ticks", "4", "--no-passthrough", "--log-level", "error"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			for _, want := range []string{"frames submitted:", "CreateSession: 1", "DestroySession: 1"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRun_Manual(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xr.yaml")
	if err := os.WriteFile(path, []byte("session:\n  manual: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--ticks", "4", "--log-level", "error"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "BeginSession: 1") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Execute() error = nil")
	}
}

func TestConfigCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"openxr:", "reference_space: stage", "poll_interval: 1ms", "mode: immersive-vr"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
