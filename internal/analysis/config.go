// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// distinguish a bad configuration from other construction errors.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// FFT transform backends.
const (
	BackendGonum = "gonum"
	BackendGofft = "gofft"
)

// Config is the immutable configuration of one analysis pipeline.
type Config struct {
	SampleRate     float64 // Input sample rate (Hz).
	ChunkSize      int     // Samples per capture/playback chunk.
	WindowCapacity int     // Ring buffer capacity, a multiple of ChunkSize.
	Bars           int     // Number of visual bars.

	MinFrequency float64 // Lowest bar edge (Hz), must be > 0 to exclude DC.
	MaxFrequency float64 // Highest bar edge (Hz), clamped to Nyquist.
	BinFloor     float64 // Lower clamp for every aggregated bar value.
	Gain         float64 // Linear multiplier applied to magnitudes.
	Exponent     float64 // Compression power applied after the gain.

	MinNormalization float64 // Floor on the normalisation denominator.
	Smoothing        float64 // EMA weight of the previous height, [0, 1).
	PixelHeight      int     // Height budget of the tallest bar.
	MinBarHeight     int     // Minimum visible height while the gate is open.

	Window     string // Taper name, see ParseWindowFunc.
	FFTBackend string // BackendGonum or BackendGofft.
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		ChunkSize:        1024,
		WindowCapacity:   4096,
		Bars:             64,
		MinFrequency:     20,
		MaxFrequency:     20000,
		BinFloor:         0.1,
		Gain:             2.0,
		Exponent:         0.7,
		MinNormalization: 10.0,
		Smoothing:        0.80,
		PixelHeight:      560,
		MinBarHeight:     7,
		Window:           "hann",
		FFTBackend:       BackendGonum,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfig, c.SampleRate)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	case c.WindowCapacity < c.ChunkSize || c.WindowCapacity%c.ChunkSize != 0:
		return fmt.Errorf("%w: window capacity %d must be a positive multiple of chunk size %d",
			ErrInvalidConfig, c.WindowCapacity, c.ChunkSize)
	case c.Bars <= 0:
		return fmt.Errorf("%w: bar count must be positive, got %d", ErrInvalidConfig, c.Bars)
	case c.MinFrequency <= 0:
		return fmt.Errorf("%w: min frequency must be positive, got %g", ErrInvalidConfig, c.MinFrequency)
	case c.MinFrequency >= c.MaxFrequency:
		return fmt.Errorf("%w: min frequency %g must be below max frequency %g",
			ErrInvalidConfig, c.MinFrequency, c.MaxFrequency)
	case c.MinFrequency >= c.SampleRate/2:
		return fmt.Errorf("%w: min frequency %g must be below Nyquist %g",
			ErrInvalidConfig, c.MinFrequency, c.SampleRate/2)
	case c.Exponent <= 0:
		return fmt.Errorf("%w: exponent must be positive, got %g", ErrInvalidConfig, c.Exponent)
	case c.Gain < 0:
		return fmt.Errorf("%w: gain must not be negative, got %g", ErrInvalidConfig, c.Gain)
	case c.MinNormalization <= 0:
		return fmt.Errorf("%w: min normalization must be positive, got %g", ErrInvalidConfig, c.MinNormalization)
	case c.Smoothing < 0 || c.Smoothing >= 1:
		return fmt.Errorf("%w: smoothing must be in [0, 1), got %g", ErrInvalidConfig, c.Smoothing)
	case c.PixelHeight <= 0:
		return fmt.Errorf("%w: pixel height must be positive, got %d", ErrInvalidConfig, c.PixelHeight)
	case c.MinBarHeight < 0 || c.MinBarHeight > c.PixelHeight:
		return fmt.Errorf("%w: min bar height must be in [0, %d], got %d",
			ErrInvalidConfig, c.PixelHeight, c.MinBarHeight)
	}

	if _, err := ParseWindowFunc(c.Window); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch strings.ToLower(c.FFTBackend) {
	case BackendGonum, BackendGofft, "":
	default:
		return fmt.Errorf("%w: unknown fft backend %q", ErrInvalidConfig, c.FFTBackend)
	}

	return nil
}

// Nyquist returns half the sample rate.
func (c Config) Nyquist() float64 {
	return c.SampleRate / 2
}

// ChunksPerWindow is the number of chunks the ring buffer holds.
func (c Config) ChunksPerWindow() int {
	return c.WindowCapacity / c.ChunkSize
}
