package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
)

type mockApp struct {
	opts   AppOptions
	called map[string]bool
	err    error
}

func newMockApp() *mockApp {
	return &mockApp{called: make(map[string]bool)}
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) RunEstimate() error           { m.called["RunEstimate"] = true; return m.err }
func (m *mockApp) RunList() error               { m.called["RunList"] = true; return m.err }
func (m *mockApp) RunRender() error             { m.called["RunRender"] = true; return m.err }
func (m *mockApp) RunInitConfig() error         { m.called["RunInitConfig"] = true; return m.err }
func (m *mockApp) RunService() error            { m.called["RunService"] = true; return m.err }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedCalled string
		verifyOpts     func(*testing.T, AppOptions)
	}{
		{
			name:           "Default",
			args:           []string{},
			expectedCalled: "RunEstimate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if len(opts.Layouts) != 2 || opts.Layouts[0] != "hexagon" || opts.Layouts[1] != "rectangle" {
					t.Errorf("expected default layouts [hexagon rectangle], got %v", opts.Layouts)
				}
				if opts.Overrides.Colors != nil || opts.Overrides.SamplesPerTrial != nil {
					t.Error("no parameter overrides expected without flags")
				}
			},
		},
		{
			name:           "EstimateWithParameters",
			args:           []string{"--config", "study.yaml", "--colors", "4", "--radius", "1.5", "--strategy", "subset", "--seed", "42", "--workers", "8"},
			expectedCalled: "RunEstimate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.ConfigFile != "study.yaml" {
					t.Errorf("expected ConfigFile study.yaml, got %s", opts.ConfigFile)
				}
				o := opts.Overrides
				if o.Colors == nil || *o.Colors != 4 {
					t.Errorf("expected colors override 4, got %v", o.Colors)
				}
				if o.MinRadius == nil || *o.MinRadius != 1.5 {
					t.Errorf("expected radius override 1.5, got %v", o.MinRadius)
				}
				if o.Strategy == nil || *o.Strategy != "subset" {
					t.Errorf("expected strategy override subset, got %v", o.Strategy)
				}
				if o.Seed == nil || *o.Seed != 42 {
					t.Errorf("expected seed override 42, got %v", o.Seed)
				}
				if o.Workers == nil || *o.Workers != 8 {
					t.Errorf("expected workers override 8, got %v", o.Workers)
				}
				if o.Loc != nil {
					t.Error("loc was not given and should not be overridden")
				}
			},
		},
		{
			name:           "List",
			args:           []string{"--list", "5", "--layout", "grid"},
			expectedCalled: "RunList",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.ListCount != 5 {
					t.Errorf("expected ListCount 5, got %d", opts.ListCount)
				}
				if len(opts.Layouts) != 1 || opts.Layouts[0] != "grid" {
					t.Errorf("expected layouts [grid], got %v", opts.Layouts)
				}
			},
		},
		{
			name:           "Render",
			args:           []string{"--render", "out.png", "--format", "raster"},
			expectedCalled: "RunRender",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.RenderFile != "out.png" || opts.RenderFormat != "raster" {
					t.Errorf("unexpected render options %s / %s", opts.RenderFile, opts.RenderFormat)
				}
			},
		},
		{
			name:           "InitConfig",
			args:           []string{"--init-config", "config.yaml", "--list", "3"},
			expectedCalled: "RunInitConfig",
		},
		{
			name:           "HTTP",
			args:           []string{"--http", "--http-port", "9090"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.HttpMode || opts.HttpPort != 9090 {
					t.Errorf("expected HTTP mode on port 9090, got %v %d", opts.HttpMode, opts.HttpPort)
				}
			},
		},
		{
			name:           "MQTT",
			args:           []string{"--mqtt", "--layout", " hexagon , grid "},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MqttMode {
					t.Error("expected MqttMode true")
				}
				if len(opts.Layouts) != 2 || opts.Layouts[1] != "grid" {
					t.Errorf("layouts should be trimmed, got %q", opts.Layouts)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newMockApp()
			if err := run(tt.args, app, &bytes.Buffer{}); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !app.called[tt.expectedCalled] {
				t.Errorf("expected %s to be called, got %v", tt.expectedCalled, app.called)
			}
			if len(app.called) != 1 {
				t.Errorf("expected exactly one mode, got %v", app.called)
			}
			if tt.verifyOpts != nil {
				tt.verifyOpts(t, app.opts)
			}
		})
	}
}

func TestRun_InvalidFormat(t *testing.T) {
	app := newMockApp()
	err := run([]string{"--render", "x", "--format", "gif"}, app, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown render format") {
		t.Fatalf("expected format error, got %v", err)
	}
	if len(app.called) != 0 {
		t.Errorf("no mode should run on a flag error, got %v", app.called)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	err := run([]string{"--bogus"}, newMockApp(), &stderr)
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(stderr.String(), "bogus") {
		t.Errorf("usage output should mention the flag, got %q", stderr.String())
	}
}

func TestRun_Help(t *testing.T) {
	err := run([]string{"-h"}, newMockApp(), &bytes.Buffer{})
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}

func TestRun_PropagatesModeError(t *testing.T) {
	app := newMockApp()
	app.err = errors.New("boom")
	if err := run(nil, app, &bytes.Buffer{}); err == nil || err.Error() != "boom" {
		t.Errorf("expected mode error, got %v", err)
	}
}
