// SPDX-License-Identifier: MIT
package cmd

import (
	"barscope/internal/analysis"
	"barscope/internal/config"
	"barscope/pkg/build"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Command names.
const (
	CommandCapture = "capture"
	CommandPlay    = "play"
	CommandList    = "list"
)

// Options is the result of parsing the command line.
type Options struct {
	Command string
	File    string // track for the play command
	LogFile string // log destination while the TUI runs; empty discards
	Config  *config.Config
}

// flagValues holds raw flag values until the configuration file is loaded.
type flagValues struct {
	configPath string
	logLevel   string
	logFile    string
	verbose    bool
	device     int
	bars       int
	smoothing  float64
	gain       float64
	volume     float64
	window     string
	backend    string
	fps        int
	noTUI      bool
	record     bool
	output     string
	udp        string
	ws         string
	mute       bool
}

// ParseArgs parses args (without the program name) into Options. The
// configuration file is loaded first; flags given explicitly override it.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{}
	fv := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time log-frequency spectrum bars",
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandCapture
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	captureCmd := &cobra.Command{
		Use:   CommandCapture,
		Short: "Visualise live input from an audio device (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandCapture
			return nil
		},
	}
	playCmd := &cobra.Command{
		Use:   CommandPlay + " <file>",
		Short: "Play and visualise a wav, mp3, flac or ogg file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandPlay
			opts.File = args[0]
			return nil
		},
	}
	listCmd := &cobra.Command{
		Use:   CommandList,
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandList
			return nil
		},
	}
	rootCmd.AddCommand(captureCmd, playCmd, listCmd)

	// Capture and recording flags only make sense for live input.
	for _, c := range []*cobra.Command{rootCmd, captureCmd} {
		c.Flags().IntVarP(&fv.device, "device", "d", config.DefaultDeviceID,
			"Input device ID. Use 'list' to see available devices.")
		c.Flags().BoolVarP(&fv.record, "record", "r", false,
			"Record the captured input to a WAV file")
		c.Flags().StringVarP(&fv.output, "output", "o", "",
			"Recording file name. Default is <output_dir>/capture-YYYYMMDD-HHMMSS.wav")
	}
	playCmd.Flags().BoolVar(&fv.mute, "mute", false,
		"Analyse without audio output, following the wall clock")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&fv.configPath, "config", "", "Configuration file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&fv.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&fv.logFile, "log-file", "", "Write logs to this file while the TUI is shown")
	pf.BoolVarP(&fv.verbose, "verbose", "v", false, "Show verbose (debug) output")

	pf.IntVarP(&fv.bars, "bars", "n", config.DefaultBars, "Number of bars")
	pf.Float64Var(&fv.smoothing, "smoothing", config.DefaultSmoothing, "Smoothing coefficient in [0, 1)")
	pf.Float64Var(&fv.gain, "gain", config.DefaultGain, "Magnitude gain before compression")
	pf.Float64Var(&fv.volume, "volume", config.DefaultVolume, "Initial volume gate in [0, 1]; 0 closes it")
	pf.StringVar(&fv.window, "window", config.DefaultWindow, "Window function (hann, hamming, blackman, nuttall, ...)")
	pf.StringVar(&fv.backend, "fft", analysis.BackendGonum, "FFT backend: gonum or gofft")
	pf.IntVar(&fv.fps, "fps", config.DefaultFPS, "Frames per second")
	pf.BoolVar(&fv.noTUI, "no-tui", false, "Run headless and log periodic summaries")

	pf.StringVar(&fv.udp, "udp", "", "Publish heights as UDP datagrams to host:port")
	pf.StringVar(&fv.ws, "ws", "", "Serve heights to WebSocket clients on this port")

	rootCmd.SetArgs(args)
	executed, err := rootCmd.ExecuteC()
	if err != nil {
		return nil, err
	}
	if opts.Command == "" {
		// --help or --version
		return nil, nil
	}

	cfg, err := config.LoadConfig(fv.configPath)
	if err != nil {
		return nil, err
	}
	if err := fv.apply(executed, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts.Config = cfg
	opts.LogFile = fv.logFile
	return opts, nil
}

// apply copies every flag the user set onto cfg.
func (fv *flagValues) apply(c *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		f := c.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if changed("verbose") {
		cfg.Debug = fv.verbose
	}
	if changed("device") {
		cfg.Audio.InputDevice = fv.device
	}
	if changed("bars") {
		cfg.Analysis.Bars = fv.bars
	}
	if changed("smoothing") {
		cfg.Analysis.Smoothing = fv.smoothing
	}
	if changed("gain") {
		cfg.Analysis.Gain = fv.gain
	}
	if changed("volume") {
		cfg.Audio.Volume = fv.volume
	}
	if changed("window") {
		cfg.Analysis.Window = fv.window
	}
	if changed("fft") {
		cfg.Analysis.FFTBackend = fv.backend
	}
	if changed("fps") {
		cfg.Display.FPS = fv.fps
	}
	if changed("no-tui") {
		cfg.Display.NoTUI = fv.noTUI
	}
	if changed("record") {
		cfg.Recording.Enabled = fv.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = fv.output
	}
	if changed("mute") {
		cfg.Audio.Mute = fv.mute
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = fv.udp != ""
		cfg.Transport.UDPTargetAddress = fv.udp
	}
	if changed("ws") {
		if _, err := strconv.Atoi(fv.ws); err != nil {
			return fmt.Errorf("--ws expects a port number, got %q", fv.ws)
		}
		cfg.Transport.WebSocketEnabled = true
		cfg.Transport.WebSocketPort = fv.ws
	}
	return nil
}
