// SPDX-License-Identifier: MIT
package analysis

import (
	applog "barscope/internal/log"
	"barscope/pkg/bitint"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/argusdusty/gofft"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

var (
	// ErrWindowTooShort is returned for windows holding less than one chunk.
	ErrWindowTooShort = errors.New("analysis window shorter than one chunk")
	// ErrUnplannedLength is returned for window lengths that are not a whole
	// number of chunks within the buffer capacity.
	ErrUnplannedLength = errors.New("analysis window length was not planned")
)

// WindowFunc defines the type for selecting a taper.
type WindowFunc int

// Available window functions, all symmetric.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "BartlettHann"
	case Blackman:
		return "Blackman"
	case BlackmanNuttall:
		return "BlackmanNuttall"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	case Lanczos:
		return "Lanczos"
	case Nuttall:
		return "Nuttall"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// transform computes the one-sided magnitude spectrum of seq into dst.
// len(dst) is len(seq)/2 + 1.
type transform interface {
	magnitudes(dst, seq []float64) error
}

type gonumTransform struct {
	fft    *fourier.FFT
	coeffs []complex128
}

func (t *gonumTransform) magnitudes(dst, seq []float64) error {
	t.coeffs = t.fft.Coefficients(t.coeffs, seq)
	for i, c := range t.coeffs {
		dst[i] = cmplx.Abs(c)
	}
	return nil
}

// gofftTransform runs the in-place radix-2 transform; lengths must be a power of two.
type gofftTransform struct {
	buf []complex128
}

func (t *gofftTransform) magnitudes(dst, seq []float64) error {
	for i, v := range seq {
		t.buf[i] = complex(v, 0)
	}
	if err := gofft.FFT(t.buf); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = cmplx.Abs(t.buf[i])
	}
	return nil
}

// Pre-allocated buffers for one window length.
type spectrumWorkspace struct {
	input    []float64 // windowed samples
	window   []float64 // taper coefficients
	spectrum []float64 // gain-compressed magnitudes
	tr       transform
}

// Analyzer turns an analysis window into a compressed magnitude spectrum.
// Every window length the ring buffer can produce (k * chunk, up to capacity)
// is planned at construction, so Analyze never allocates. An Analyzer is not
// safe for concurrent use; the Pipeline serialises access.
type Analyzer struct {
	chunkSize int
	gain      float64
	exponent  float64
	window    WindowFunc
	plans     []*spectrumWorkspace // indexed by chunk count - 1
}

// NewAnalyzer plans transforms for every window length in cfg.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	windowType, _ := ParseWindowFunc(cfg.Window)
	useGofft := strings.EqualFold(cfg.FFTBackend, BackendGofft)

	a := &Analyzer{
		chunkSize: cfg.ChunkSize,
		gain:      cfg.Gain,
		exponent:  cfg.Exponent,
		window:    windowType,
		plans:     make([]*spectrumWorkspace, cfg.ChunksPerWindow()),
	}

	for k := range a.plans {
		n := (k + 1) * cfg.ChunkSize
		ws := &spectrumWorkspace{
			input:    make([]float64, n),
			window:   make([]float64, n),
			spectrum: make([]float64, n/2+1),
		}
		applyWindow(ws.window, windowType)

		if useGofft && bitint.IsPowerOfTwo(n) {
			if err := gofft.Prepare(n); err != nil {
				return nil, fmt.Errorf("failed to prepare radix-2 fft of size %d: %w", n, err)
			}
			ws.tr = &gofftTransform{buf: make([]complex128, n)}
		} else {
			if useGofft {
				applog.Debugf("Analysis: length %d is not a power of two, using gonum transform", n)
			}
			ws.tr = &gonumTransform{
				fft:    fourier.NewFFT(n),
				coeffs: make([]complex128, n/2+1),
			}
		}
		a.plans[k] = ws
	}

	if useGofft && !bitint.IsPowerOfTwo(cfg.ChunkSize) {
		applog.Warnf("Analysis: gofft needs power-of-two lengths; chunk %d uses gonum for most windows (try %d)",
			cfg.ChunkSize, bitint.NextPowerOfTwo(cfg.ChunkSize))
	}

	applog.Infof("Analysis: Initializing Analyzer (Chunk: %d, Lengths: %d, Window: %v, Backend: %s)",
		cfg.ChunkSize, len(a.plans), windowType, cfg.FFTBackend)

	return a, nil
}

// Analyze tapers the window, transforms it and applies gain and compression.
// The returned slice is owned by the Analyzer and is overwritten by the next
// call with the same window length.
func (a *Analyzer) Analyze(samples []float64) ([]float64, error) {
	n := len(samples)
	if n < a.chunkSize {
		return nil, ErrWindowTooShort
	}
	k := n/a.chunkSize - 1
	if n%a.chunkSize != 0 || k >= len(a.plans) {
		return nil, fmt.Errorf("%w: %d", ErrUnplannedLength, n)
	}
	ws := a.plans[k]

	// --- 1. Taper ---
	for i, s := range samples {
		ws.input[i] = s * ws.window[i]
	}

	// --- 2. Magnitude spectrum ---
	if err := ws.tr.magnitudes(ws.spectrum, ws.input); err != nil {
		return nil, err
	}

	// --- 3. Gain and compression ---
	for i, m := range ws.spectrum {
		ws.spectrum[i] = math.Pow(m*a.gain, a.exponent)
	}

	return ws.spectrum, nil
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
// An empty name selects Hann.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window. The slice is set to 1.0
// first because the gonum functions multiply in place.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	// A single-point window would divide by zero in the gonum formulas.
	if len(coeffs) < 2 {
		return
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}
