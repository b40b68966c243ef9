// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"sync"
)

// Smoother normalises bar values into pixel heights and blends them with the
// previous frame using a single-pole exponential moving average. The heights
// slice is the only cross-frame state of the pipeline besides the sample
// buffer; Update writes it and HeightsInto reads it under one RWMutex.
type Smoother struct {
	minNorm      float64
	pixelHeight  float64
	minBarHeight int
	coef         float64

	mu      sync.RWMutex
	heights []int
}

// NewSmoother creates a smoother for cfg.Bars bars, all starting at zero.
func NewSmoother(cfg Config) *Smoother {
	return &Smoother{
		minNorm:      cfg.MinNormalization,
		pixelHeight:  float64(cfg.PixelHeight),
		minBarHeight: cfg.MinBarHeight,
		coef:         cfg.Smoothing,
		heights:      make([]int, cfg.Bars),
	}
}

// Update folds one frame of bar values into the smoothed heights and returns
// the internal slice. A zero (or negative) volume gate forces every raw height
// to zero; smoothing still runs so the bars decay instead of snapping off.
func (s *Smoother) Update(values []float64, volumeGate float64) []int {
	maxVal := s.minNorm
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	gateOpen := volumeGate > 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.heights {
		raw := 0
		if gateOpen && i < len(values) {
			raw = max(s.minBarHeight, int(math.Round(values[i]/maxVal*s.pixelHeight)))
		}
		s.heights[i] = smooth(s.coef, s.heights[i], raw)
	}
	return s.heights
}

// smooth is round(coef*prev + (1-coef)*raw).
func smooth(coef float64, prev, raw int) int {
	return int(math.Round(coef*float64(prev) + (1-coef)*float64(raw)))
}

// HeightsInto copies the latest heights into dst, which must have one entry
// per bar. It does not allocate and is safe to call from any goroutine.
func (s *Smoother) HeightsInto(dst []int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(dst) != len(s.heights) {
		return fmt.Errorf("destination slice length %d does not match bar count %d", len(dst), len(s.heights))
	}
	copy(dst, s.heights)
	return nil
}

// Heights returns a copy of the latest heights.
func (s *Smoother) Heights() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, len(s.heights))
	copy(out, s.heights)
	return out
}

// Bars returns the number of bars.
func (s *Smoother) Bars() int {
	return len(s.heights)
}
