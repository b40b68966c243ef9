// SPDX-License-Identifier: MIT
/*
Package analysis implements the real-time spectral pipeline behind the bars:

  - SampleBuffer: fixed-capacity ring of the most recent mono samples
  - Analyzer: taper, magnitude spectrum, gain and power compression
  - Aggregate/binPlan: log-spaced bars with a floor value
  - Smoother: normalisation to pixel heights and exponential smoothing

Real-time notes:
  - Every buffer is allocated by NewPipeline; Process does not allocate
  - Per-length FFT plans and bar index ranges are computed once
  - Heights are published through an RWMutex so render goroutines can read
    while the audio callback writes
*/
package analysis

import (
	"fmt"
	"sync"
)

// Pipeline chains Analyzer, bar aggregation and Smoother for one configuration.
type Pipeline struct {
	cfg      Config
	analyzer *Analyzer
	plans    []*binPlan // indexed like Analyzer.plans
	values   []float64  // bar values of the current frame
	smoother *Smoother

	mu sync.Mutex // serialises Process
}

// Compile-time check.
var _ HeightsProvider = (*Pipeline)(nil)

// NewPipeline validates cfg and pre-allocates every buffer the pipeline needs.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	analyzer, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	plans := make([]*binPlan, cfg.ChunksPerWindow())
	for k := range plans {
		plans[k] = newBinPlan(cfg.Bars, cfg.SampleRate, (k+1)*cfg.ChunkSize, cfg.MinFrequency, cfg.MaxFrequency)
	}

	return &Pipeline{
		cfg:      cfg,
		analyzer: analyzer,
		plans:    plans,
		values:   make([]float64, cfg.Bars),
		smoother: NewSmoother(cfg),
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process runs one frame over window and returns the smoothed heights. The
// returned slice belongs to the pipeline and is rewritten by the next call.
// Windows shorter than one chunk return ErrWindowTooShort and leave the
// heights untouched.
func (p *Pipeline) Process(window []float64, volumeGate float64) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	spectrum, err := p.analyzer.Analyze(window)
	if err != nil {
		return nil, err
	}
	p.plans[len(window)/p.cfg.ChunkSize-1].aggregate(p.values, spectrum, p.cfg.BinFloor)
	return p.smoother.Update(p.values, volumeGate), nil
}

// Values returns a copy of the bar values of the last processed frame.
func (p *Pipeline) Values() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]float64, len(p.values))
	copy(out, p.values)
	return out
}

// HeightsInto copies the latest heights into dst.
func (p *Pipeline) HeightsInto(dst []int) error {
	return p.smoother.HeightsInto(dst)
}

// Heights returns a copy of the latest heights.
func (p *Pipeline) Heights() []int {
	return p.smoother.Heights()
}

// Bars returns the number of bars.
func (p *Pipeline) Bars() int {
	return p.cfg.Bars
}
