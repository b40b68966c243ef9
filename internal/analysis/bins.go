// SPDX-License-Identifier: MIT
package analysis

import "math"

// LogEdges returns bars+1 frequencies spaced uniformly on a log scale from
// minFreq to maxFreq inclusive. Both bounds must be positive.
func LogEdges(bars int, minFreq, maxFreq float64) []float64 {
	if bars <= 0 {
		return nil
	}
	edges := make([]float64, bars+1)
	lo, hi := math.Log10(minFreq), math.Log10(maxFreq)
	step := (hi - lo) / float64(bars)
	for i := range edges {
		edges[i] = math.Pow(10, lo+step*float64(i))
	}
	// Pin the end points so rounding in Pow never widens the range.
	edges[0] = minFreq
	edges[bars] = maxFreq
	return edges
}

// Aggregate maps a one-sided magnitude spectrum of a windowLength-sample
// window onto bars log-spaced bars. Bar i averages the magnitudes whose bin
// frequency lies in [edge[i], edge[i+1]); the result is clamped below by
// floor, and a bar that no bin falls into is exactly floor.
func Aggregate(spectrum []float64, bars int, sampleRate float64, windowLength int,
	minFreq, maxFreq, floor float64) []float64 {
	plan := newBinPlan(bars, sampleRate, windowLength, minFreq, maxFreq)
	out := make([]float64, bars)
	plan.aggregate(out, spectrum, floor)
	return out
}

// binRange is the half-open spectrum index range of one bar.
type binRange struct {
	lo, hi int
}

// binPlan caches the index ranges of every bar for one window length.
type binPlan struct {
	ranges []binRange
}

func newBinPlan(bars int, sampleRate float64, windowLength int, minFreq, maxFreq float64) *binPlan {
	nyquist := sampleRate / 2
	if maxFreq > nyquist {
		maxFreq = nyquist
	}
	edges := LogEdges(bars, minFreq, maxFreq)
	plan := &binPlan{ranges: make([]binRange, bars)}

	numBins := windowLength/2 + 1
	binHz := sampleRate / float64(windowLength)

	// Frequencies rise with the index, so each bar is a contiguous run that
	// starts where the previous bar stopped.
	idx := 0
	for b := range bars {
		for idx < numBins && float64(idx)*binHz < edges[b] {
			idx++
		}
		lo := idx
		for idx < numBins && float64(idx)*binHz < edges[b+1] {
			idx++
		}
		plan.ranges[b] = binRange{lo: lo, hi: idx}
	}
	return plan
}

// aggregate writes one value per bar into dst.
func (p *binPlan) aggregate(dst, spectrum []float64, floor float64) {
	for b, r := range p.ranges {
		hi := r.hi
		if hi > len(spectrum) {
			hi = len(spectrum)
		}
		if hi <= r.lo {
			dst[b] = floor
			continue
		}
		var sum float64
		for _, m := range spectrum[r.lo:hi] {
			sum += m
		}
		dst[b] = math.Max(sum/float64(hi-r.lo), floor)
	}
}
