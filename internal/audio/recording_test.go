// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func TestRecordingStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "test_recording.wav")
	engine, _ := newTestEngine(t, 2, nil)
	engine.config.Recording.BitDepth = 16

	if err := engine.StartRecording(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if !engine.Recording() {
		t.Error("Engine should be in recording state")
	}

	in := make([]float32, 2*testFrameSize)
	for i := range in {
		in[i] = 0.5
	}
	for range 3 {
		engine.processInputStream(in)
	}

	if err := engine.StopRecording(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if engine.Recording() {
		t.Error("Engine should not be in recording state after stopping")
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Recording file was not created: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("recording is not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}
	if dec.NumChans != 2 || dec.SampleRate != testSampleRate || dec.BitDepth != 16 {
		t.Errorf("header = %d ch, %d Hz, %d bit; want 2, %d, 16", dec.NumChans, dec.SampleRate, dec.BitDepth, testSampleRate)
	}
	if len(buf.Data) != 3*2*testFrameSize {
		t.Errorf("recorded %d samples, want %d", len(buf.Data), 3*2*testFrameSize)
	}
	if want := 32767 / 2; buf.Data[0] < want-1 || buf.Data[0] > want+1 {
		t.Errorf("first sample = %d, want about %d", buf.Data[0], want)
	}
}

func TestRecordingErrorCases(t *testing.T) {
	dir := t.TempDir()

	t.Run("Already recording", func(t *testing.T) {
		engine, _ := newTestEngine(t, 1, nil)
		if err := engine.StartRecording(filepath.Join(dir, "a.wav")); err != nil {
			t.Fatalf("StartRecording() error = %v", err)
		}
		defer engine.StopRecording()

		err := engine.StartRecording(filepath.Join(dir, "b.wav"))
		if err == nil || !strings.Contains(err.Error(), "already recording") {
			t.Errorf("second StartRecording() = %v, want already recording", err)
		}
	})

	t.Run("Invalid path", func(t *testing.T) {
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		engine, _ := newTestEngine(t, 1, nil)
		if err := engine.StartRecording(filepath.Join(blocker, "x.wav")); err == nil {
			t.Error("expected an error for a path below a regular file")
		}
	})

	t.Run("Stop when not recording", func(t *testing.T) {
		engine, _ := newTestEngine(t, 1, nil)
		if err := engine.StopRecording(); err != nil {
			t.Errorf("StopRecording() = %v, want nil", err)
		}
	})
}

func TestRecordingPath(t *testing.T) {
	cfg := newTestConfig()
	cfg.Recording.OutputDir = "out"
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	if got := RecordingPath(cfg, now); got != filepath.Join("out", "capture-20250304-050607.wav") {
		t.Errorf("RecordingPath() = %q", got)
	}

	cfg.Recording.OutputFile = "take.wav"
	if got := RecordingPath(cfg, now); got != "take.wav" {
		t.Errorf("RecordingPath() with output_file = %q, want take.wav", got)
	}
}
