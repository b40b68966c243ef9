// SPDX-License-Identifier: MIT
/*
Package audio implements live capture for the push-driven pipeline:
- PortAudio input stream delivering float32 frames to a callback
- Downmix of interleaved channels to mono
- One PushDriver invocation per callback
- Optional WAV recording of the raw input, written off the callback

Thread Safety:
- The callback only touches pre-allocated buffers
- Recording state is swapped under a short mutex; encoding runs on its own goroutine
- Locks OS thread during audio processing
*/
package audio

import (
	"barscope/internal/config"
	"barscope/internal/driver"
	applog "barscope/internal/log"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Engine owns the capture stream and feeds a PushDriver.
type Engine struct {
	// Core configuration.
	config *config.Config
	driver *driver.PushDriver

	// Audio input handling.
	channels     int
	frames       int
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	streamMu     sync.Mutex
	inputStream  *portaudio.Stream

	// Mono buffer handed to the driver.
	mono []float64

	// Recording tap, nil when not recording.
	recMu    sync.Mutex
	recorder *recorder
}

// NewEngine resolves the input device and pre-allocates the callback buffers.
func NewEngine(cfg *config.Config, drv *driver.PushDriver) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	channels := min(cfg.Audio.InputChannels, inputDevice.MaxInputChannels)
	if channels < 1 {
		return nil, fmt.Errorf("device %q has no input channels", inputDevice.Name)
	}
	if channels != cfg.Audio.InputChannels {
		applog.Warnf("Audio: %s supports %d input channels, capturing %d instead of %d",
			inputDevice.Name, inputDevice.MaxInputChannels, channels, cfg.Audio.InputChannels)
	}

	engine := newEngine(cfg, drv, channels)
	engine.inputDevice = inputDevice

	if cfg.Audio.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

func newEngine(cfg *config.Config, drv *driver.PushDriver, channels int) *Engine {
	return &Engine{
		config:   cfg,
		driver:   drv,
		channels: channels,
		frames:   cfg.Audio.FramesPerBuffer,
		mono:     make([]float64, cfg.Audio.FramesPerBuffer),
	}
}

// Channels is the number of captured channels.
func (e *Engine) Channels() int {
	return e.channels
}

// StartInputStream opens and starts the capture stream. The stream is
// stopped automatically once the driver is stopped.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.frames,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	e.streamMu.Lock()
	e.inputStream = stream
	e.streamMu.Unlock()

	applog.Infof("Audio: Capturing from %s (%d ch, %.0f Hz, %d frames, latency %v)",
		e.inputDevice.Name, e.channels, e.config.Audio.SampleRate, e.frames, e.inputLatency)

	// The callback cannot stop its own stream, so wait for the flag here.
	go func() {
		<-e.driver.Done()
		if err := e.StopInputStream(); err != nil {
			applog.Errorf("Audio: Failed to stop input stream: %v", err)
		}
	}()

	return nil
}

// StopInputStream stops and closes the stream. Safe to call more than once.
func (e *Engine) StopInputStream() error {
	e.streamMu.Lock()
	defer e.streamMu.Unlock()

	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
		applog.Debugf("Audio: Input stream closed")
	}

	return nil
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if e.driver.Stopped() {
		return
	}

	e.recMu.Lock()
	if e.recorder != nil {
		e.recorder.tap(in)
	}
	e.recMu.Unlock()

	e.driver.OnChunk(e.downmix(in))
}

// downmix averages interleaved frames into the mono buffer and returns the
// filled part. A short callback yields a short chunk, which the driver pads.
func (e *Engine) downmix(in []float32) []float64 {
	frames := min(len(in)/e.channels, len(e.mono))
	if e.channels == 1 {
		for i := range frames {
			e.mono[i] = float64(in[i])
		}
		return e.mono[:frames]
	}

	scale := 1 / float64(e.channels)
	for i := range frames {
		var sum float64
		frame := in[i*e.channels : (i+1)*e.channels]
		for _, s := range frame {
			sum += float64(s)
		}
		e.mono[i] = sum * scale
	}
	return e.mono[:frames]
}

// Close stops recording and the input stream.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}
	return e.StopInputStream()
}
