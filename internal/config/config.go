// SPDX-License-Identifier: MIT
package config

import (
	"barscope/internal/analysis"
	"time"
)

// Core configuration constants that define the boundaries and defaults
// for capture, analysis and display.
const (
	// Audio defaults
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 1024        // One analysis chunk per callback
	DefaultInputChannels   = 2           // Stereo capture, downmixed to mono
	DefaultVolume          = 0.25        // Volume gate and playback volume

	// Analysis defaults
	DefaultWindowCapacity   = 4096
	DefaultBars             = 64
	DefaultMinFrequency     = 20.0
	DefaultMaxFrequency     = 20000.0
	DefaultBinFloor         = 0.1
	DefaultGain             = 2.0
	DefaultExponent         = 0.7
	DefaultMinNormalization = 10.0
	DefaultSmoothing        = 0.80
	DefaultWindow           = "hann"

	// Display defaults
	DefaultPixelHeight  = 560
	DefaultMinBarHeight = 7
	DefaultFPS          = 60

	// Recording defaults
	DefaultRecordingDir = "./recordings"
	DefaultFormat       = "wav"
	DefaultBitDepth     = 16

	// Transport defaults
	DefaultUDPTarget     = "127.0.0.1:9090"
	DefaultUDPInterval   = 33 * time.Millisecond // ~30Hz
	DefaultWebSocketPort = "8080"

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
	MaxVolume       = 1.0
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Force debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectral pipeline settings.
	Display   DisplayConfig   `yaml:"display"`   // Terminal renderer settings.
	Recording RecordingConfig `yaml:"recording"` // Input recording settings.
	Transport TransportConfig `yaml:"transport"` // Heights publishing settings.
}

// AudioConfig holds settings related to audio input and playback.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Capture sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per callback; also the analysis chunk size.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture; averaged to mono.
	Volume          float64 `yaml:"volume"`            // Initial volume in [0, 1]; 0 closes the gate.
	Mute            bool    `yaml:"mute"`              // Play files silently against a wall clock.
}

// AnalysisConfig holds the spectral pipeline settings.
type AnalysisConfig struct {
	WindowCapacity   int     `yaml:"window_capacity"`   // Ring buffer size in samples, a multiple of frames_per_buffer.
	Bars             int     `yaml:"bars"`              // Number of log-spaced bars.
	MinFrequency     float64 `yaml:"min_frequency"`     // Lowest bar edge in Hz.
	MaxFrequency     float64 `yaml:"max_frequency"`     // Highest bar edge in Hz, clamped to Nyquist.
	BinFloor         float64 `yaml:"bin_floor"`         // Minimum bar value before normalisation.
	Gain             float64 `yaml:"gain"`              // Linear magnitude gain.
	Exponent         float64 `yaml:"exponent"`          // Power compression after the gain.
	MinNormalization float64 `yaml:"min_normalization"` // Floor on the normalisation denominator.
	Smoothing        float64 `yaml:"smoothing"`         // Weight of the previous frame, [0, 1).
	Window           string  `yaml:"window"`            // Taper name (e.g., "Hann", "Hamming").
	FFTBackend       string  `yaml:"fft_backend"`       // "gonum" or "gofft".
}

// DisplayConfig holds settings for the terminal renderer.
type DisplayConfig struct {
	PixelHeight  int    `yaml:"pixel_height"`   // Height budget of the tallest bar.
	MinBarHeight int    `yaml:"min_bar_height"` // Minimum visible height while the gate is open.
	FPS          int    `yaml:"fps"`            // Render ticks per second.
	PeakCaps     bool   `yaml:"peak_caps"`      // Draw falling peak markers above the bars.
	Color        string `yaml:"color"`          // Bar colour (lipgloss colour string).
	NoTUI        bool   `yaml:"no_tui"`         // Run headless.
}

// RecordingConfig holds settings related to input recording.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record captured input to a WAV file.
	OutputDir  string `yaml:"output_dir"`  // Directory for auto-named recordings.
	OutputFile string `yaml:"output_file"` // Explicit recording path; overrides output_dir.
	Format     string `yaml:"format"`      // File format for recordings ("wav").
	BitDepth   int    `yaml:"bit_depth"`   // 16, 24 or 32.
}

// TransportConfig holds settings related to sending bar heights over the network.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Publish heights over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve heights to WebSocket clients.
	WebSocketPort    string        `yaml:"websocket_port"`     // Listen port for /ws.
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
			InputChannels:   DefaultInputChannels,
			Volume:          DefaultVolume,
		},
		Analysis: AnalysisConfig{
			WindowCapacity:   DefaultWindowCapacity,
			Bars:             DefaultBars,
			MinFrequency:     DefaultMinFrequency,
			MaxFrequency:     DefaultMaxFrequency,
			BinFloor:         DefaultBinFloor,
			Gain:             DefaultGain,
			Exponent:         DefaultExponent,
			MinNormalization: DefaultMinNormalization,
			Smoothing:        DefaultSmoothing,
			Window:           DefaultWindow,
			FFTBackend:       analysis.BackendGonum,
		},
		Display: DisplayConfig{
			PixelHeight:  DefaultPixelHeight,
			MinBarHeight: DefaultMinBarHeight,
			FPS:          DefaultFPS,
			PeakCaps:     true,
			Color:        "#7D56F4",
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: DefaultRecordingDir,
			Format:    DefaultFormat,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPInterval,
			WebSocketEnabled: false,
			WebSocketPort:    DefaultWebSocketPort,
		},
	}
}

// Pipeline builds the analysis configuration for a source at sampleRate.
// Capture uses Audio.SampleRate; playback passes the decoded track's rate.
func (c *Config) Pipeline(sampleRate float64) analysis.Config {
	return analysis.Config{
		SampleRate:       sampleRate,
		ChunkSize:        c.Audio.FramesPerBuffer,
		WindowCapacity:   c.Analysis.WindowCapacity,
		Bars:             c.Analysis.Bars,
		MinFrequency:     c.Analysis.MinFrequency,
		MaxFrequency:     c.Analysis.MaxFrequency,
		BinFloor:         c.Analysis.BinFloor,
		Gain:             c.Analysis.Gain,
		Exponent:         c.Analysis.Exponent,
		MinNormalization: c.Analysis.MinNormalization,
		Smoothing:        c.Analysis.Smoothing,
		PixelHeight:      c.Display.PixelHeight,
		MinBarHeight:     c.Display.MinBarHeight,
		Window:           c.Analysis.Window,
		FFTBackend:       c.Analysis.FFTBackend,
	}
}

// FrameInterval is the render tick period.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Display.FPS)
}
