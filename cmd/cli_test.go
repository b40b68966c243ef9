// SPDX-License-Identifier: MIT
package cmd

import (
	"barscope/internal/config"
	applog "barscope/internal/log"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// chdirTemp runs the test in an empty directory so a config.yaml in the
// working tree is not picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestParseArgsCommands(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantFile string
	}{
		{"default is capture", nil, CommandCapture, ""},
		{"capture", []string{"capture"}, CommandCapture, ""},
		{"list", []string{"list"}, CommandList, ""},
		{"play", []string{"play", "song.flac"}, CommandPlay, "song.flac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs(%v) error = %v", tt.args, err)
			}
			if opts.Command != tt.wantCmd || opts.File != tt.wantFile {
				t.Errorf("got (%q, %q), want (%q, %q)", opts.Command, opts.File, tt.wantCmd, tt.wantFile)
			}
			if opts.Config == nil {
				t.Fatal("Config is nil")
			}
			if opts.Config.Analysis.Bars != config.DefaultBars {
				t.Errorf("Bars = %d, want default %d", opts.Config.Analysis.Bars, config.DefaultBars)
			}
		})
	}
}

func TestParseArgsHelp(t *testing.T) {
	chdirTemp(t)

	opts, err := ParseArgs([]string{"--help"})
	if err != nil || opts != nil {
		t.Errorf("ParseArgs(--help) = %v, %v; want nil, nil", opts, err)
	}
}

func TestParseArgsErrors(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"play without file", []string{"play"}},
		{"unknown command", []string{"dance"}},
		{"unknown flag", []string{"--loud"}},
		{"invalid bars", []string{"--bars", "0"}},
		{"invalid smoothing", []string{"--smoothing", "1"}},
		{"invalid window", []string{"--window", "triangle"}},
		{"ws not a port", []string{"--ws", "eighty"}},
		{"bad udp target", []string{"--udp", "nohostport"}},
		{"missing config", []string{"--config", "missing.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArgs(tt.args); err == nil {
				t.Errorf("ParseArgs(%v) expected error", tt.args)
			}
		})
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	path := filepath.Join(dir, "custom.yaml")
	yaml := `
analysis:
  bars: 32
  smoothing: 0.5
display:
  fps: 30
transport:
  udp_send_interval: 50ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := ParseArgs([]string{
		"capture", "--config", path,
		"--bars", "16", "-d", "3", "-r", "-o", "take.wav",
		"--udp", "127.0.0.1:9999", "--ws", "9000", "-v", "--no-tui",
	})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	cfg := opts.Config

	// From flags.
	if cfg.Analysis.Bars != 16 {
		t.Errorf("Bars = %d, want 16", cfg.Analysis.Bars)
	}
	if cfg.Audio.InputDevice != 3 {
		t.Errorf("InputDevice = %d, want 3", cfg.Audio.InputDevice)
	}
	if !cfg.Recording.Enabled || cfg.Recording.OutputFile != "take.wav" {
		t.Errorf("Recording = %+v", cfg.Recording)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "127.0.0.1:9999" {
		t.Errorf("UDP = %v %q", cfg.Transport.UDPEnabled, cfg.Transport.UDPTargetAddress)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketPort != "9000" {
		t.Errorf("WebSocket = %v %q", cfg.Transport.WebSocketEnabled, cfg.Transport.WebSocketPort)
	}
	if !cfg.Debug || !cfg.Display.NoTUI {
		t.Errorf("Debug = %v NoTUI = %v", cfg.Debug, cfg.Display.NoTUI)
	}

	// From the file, untouched by flags.
	if cfg.Analysis.Smoothing != 0.5 {
		t.Errorf("Smoothing = %v, want 0.5", cfg.Analysis.Smoothing)
	}
	if cfg.Display.FPS != 30 {
		t.Errorf("FPS = %d, want 30", cfg.Display.FPS)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("UDPSendInterval = %v, want 50ms", cfg.Transport.UDPSendInterval)
	}
}

func TestPlayMute(t *testing.T) {
	chdirTemp(t)

	opts, err := ParseArgs([]string{"play", "--mute", "--log-file", "bars.log", "a.ogg"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if !opts.Config.Audio.Mute || opts.LogFile != "bars.log" {
		t.Errorf("Mute = %v LogFile = %q", opts.Config.Audio.Mute, opts.LogFile)
	}

	// Capture flags are not accepted by play.
	if _, err := ParseArgs([]string{"play", "--record", "a.ogg"}); err == nil {
		t.Error("play --record expected error")
	}
}
