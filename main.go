// SPDX-License-Identifier: MIT
package main

import (
	"barscope/cmd"
	"barscope/internal/analysis"
	"barscope/internal/audio"
	"barscope/internal/config"
	"barscope/internal/driver"
	applog "barscope/internal/log"
	"barscope/internal/source"
	"barscope/internal/transport"
	"barscope/internal/transport/udp"
	"barscope/internal/tui"
	"barscope/pkg/build"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"
)

// summaryInterval is how often headless mode logs the bars.
const summaryInterval = time.Second

// main is the entry point. The program flow is divided into three phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Run one-off commands (device listing)
//   - Build the pipeline, driver and source
//
// 2. Concurrent Phase (Hot Path):
//   - Capture: the PortAudio callback pushes chunks through the driver
//   - Play: the render loop pulls chunks against the playback clock
//   - Publishers copy heights out to UDP/WebSocket/log
//
// 3. Shutdown Phase (Cold Path):
//   - Stop the driver, finalise any recording
//   - Close transports, audio output and PortAudio
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	buildErr := build.Initialize()

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts == nil {
		return // --help or --version
	}
	cfg := opts.Config
	applog.Configure(cfg.LogLevel, cfg.Debug)
	if buildErr != nil && !build.GetBuildFlags().Development() {
		applog.Warnf("Build: incomplete build information: %v", buildErr)
	}

	// One thread for the audio callback, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.Command {
	case cmd.CommandList:
		err = runList()
	case cmd.CommandPlay:
		err = runPlay(ctx, opts)
	default:
		err = runCapture(ctx, opts)
	}
	if err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}

// runList prints the available devices.
func runList() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	return audio.ListDevices(os.Stdout)
}

// runCapture visualises live input.
func runCapture(ctx context.Context, opts *cmd.Options) error {
	cfg := opts.Config

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	pipeline, err := analysis.NewPipeline(cfg.Pipeline(cfg.Audio.SampleRate))
	if err != nil {
		return err
	}
	volume := audio.NewVolume(cfg.Audio.Volume)
	sink := transport.NewFrameSink(pipeline.Bars())
	drv := driver.NewPushDriver(pipeline, driver.Options{Volume: volume, Renderer: sink})

	engine, err := audio.NewEngine(cfg, drv)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			applog.Errorf("Error closing audio engine: %v", err)
		}
	}()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// The first callback marks the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		return err
	}
	defer drv.Stop()

	status := ""
	recordingPath := ""
	if cfg.Recording.Enabled {
		recordingPath = audio.RecordingPath(cfg, time.Now())
		if err := engine.StartRecording(recordingPath); err != nil {
			return err
		}
		status = "REC " + filepath.Base(recordingPath)
	}

	pub, err := startPublisher(cfg, sink)
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Close()
	}

	if cfg.Display.NoTUI {
		applog.Infof("Capturing, press Ctrl+C to stop")
		select {
		case <-ctx.Done():
		case <-drv.Done():
		}
	} else {
		if err := showTUI(ctx, opts, tui.Options{
			Title:    build.GetBuildFlags().Name + " · live",
			Provider: sink,
			Volume:   volume,
			Status:   status,
		}); err != nil {
			return err
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	drv.Stop()
	applog.Infof("Capture: %d frames rendered", sink.Frames())
	if recordingPath != "" {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Error stopping recording: %v", err)
		}
		fmt.Printf("Recording saved to: %s\n", recordingPath)
	}
	return nil
}

// runPlay visualises a decoded file while it plays.
func runPlay(ctx context.Context, opts *cmd.Options) error {
	cfg := opts.Config

	track, err := source.Load(opts.File)
	if err != nil {
		return err
	}
	applog.Infof("Playing %s (%s, %.0f Hz, %v)", filepath.Base(track.Path), track.Format,
		track.SampleRate, track.Duration().Round(time.Second))

	pipeline, err := analysis.NewPipeline(cfg.Pipeline(track.SampleRate))
	if err != nil {
		return err
	}
	volume := audio.NewVolume(cfg.Audio.Volume)
	sink := transport.NewFrameSink(pipeline.Bars())

	// The playback clock starts with the output, so it is created last.
	var (
		playback source.Playback
		onVolume func(float64)
	)
	if cfg.Audio.Mute {
		playback = source.NewWallClock(track.Duration())
	} else {
		player, err := source.NewPlayer(track, volume.Volume())
		if err != nil {
			return err
		}
		defer player.Close()
		playback = player
		onVolume = player.SetVolume
	}

	drv, err := driver.NewPullDriver(pipeline, track.Samples, track.SampleRate, playback,
		driver.Options{Volume: volume, Renderer: sink})
	if err != nil {
		return err
	}
	defer drv.Stop()

	pub, err := startPublisher(cfg, sink)
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Close()
	}

	if cfg.Display.NoTUI {
		state := driver.Run(ctx, drv, cfg.FrameInterval())
		applog.Infof("Playback: %s after %d frames", state, sink.Frames())
		return nil
	}

	return showTUI(ctx, opts, tui.Options{
		Title:    build.GetBuildFlags().Name + " · " + filepath.Base(track.Path),
		Provider: sink,
		Ticker:   drv,
		Volume:   volume,
		OnVolume: onVolume,
		Playback: playback,
	})
}

// showTUI fills in the display settings and runs the terminal UI.
func showTUI(ctx context.Context, opts *cmd.Options, o tui.Options) error {
	cfg := opts.Config
	o.FPS = cfg.Display.FPS
	o.PixelHeight = cfg.Display.PixelHeight
	o.PeakCaps = cfg.Display.PeakCaps
	o.Color = cfg.Display.Color

	var logOut io.Writer
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	_, err := tui.Run(ctx, o, logOut)
	return err
}

// startPublisher creates the configured transports and starts publishing
// heights from provider. It returns nil when nothing is configured.
func startPublisher(cfg *config.Config, provider analysis.HeightsProvider) (*transport.Publisher, error) {
	var transports []transport.Transport
	closeAll := func() {
		for _, t := range transports {
			t.Close()
		}
	}

	interval := cfg.FrameInterval()
	if cfg.Transport.UDPEnabled {
		t, err := udp.NewTransport(cfg.Transport.UDPTargetAddress, provider.Bars())
		if err != nil {
			return nil, err
		}
		transports = append(transports, t)
		interval = cfg.Transport.UDPSendInterval
	}
	if cfg.Transport.WebSocketEnabled {
		t, err := transport.NewWebSocketTransport(net.JoinHostPort("", cfg.Transport.WebSocketPort))
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to start WebSocket server: %w", err)
		}
		transports = append(transports, t)
	}
	if cfg.Display.NoTUI {
		transports = append(transports, transport.NewLoggingTransport(summaryInterval))
	}
	if len(transports) == 0 {
		return nil, nil
	}

	pub, err := transport.NewPublisher(interval, provider, transports...)
	if err != nil {
		closeAll()
		return nil, err
	}
	pub.Start()
	return pub, nil
}
