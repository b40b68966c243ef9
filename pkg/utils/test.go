// SPDX-License-Identifier: MIT
// Package utils holds signal generators and fakes shared by tests.
package utils

import (
	"math"
	"sync"
	"time"
)

// MockTransport records every frame sent to it instead of transmitting.
type MockTransport struct {
	mu       sync.Mutex
	LastData []int
	Frames   int
	Closed   bool
	Err      error // returned by Send when set
}

// Send stores a copy of heights for later inspection.
func (m *MockTransport) Send(heights []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastData = make([]int, len(heights))
	copy(m.LastData, heights)
	m.Frames++
	return m.Err
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Count returns the number of frames sent.
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Frames
}

// IsClosed reports whether Close was called.
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

// Last returns the most recent frame.
func (m *MockTransport) Last() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastData
}

// MockRenderer counts frames and keeps a copy of the latest one. Its buffer
// is sized on first use so Render does not allocate afterwards.
type MockRenderer struct {
	Frames int
	Last   []int
}

// Render copies heights into r.Last.
func (r *MockRenderer) Render(heights []int) {
	if len(r.Last) != len(heights) {
		r.Last = make([]int, len(heights))
	}
	copy(r.Last, heights)
	r.Frames++
}

// ManualClock is a playback clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	pos time.Duration
}

// Position returns the current position.
func (c *ManualClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Set moves the clock to pos.
func (c *ManualClock) Set(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = pos
}

// SetSamples moves the clock to the time of sample n at sampleRate.
func (c *ManualClock) SetSamples(n int, sampleRate float64) {
	c.Set(time.Duration(float64(n) / sampleRate * float64(time.Second)))
}

// GenerateComplexWave returns a 440 Hz tone with two harmonics, peak 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateSineWave returns size samples of a sine with the given amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * amplitude
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// Chunks splits samples into consecutive slices of size n; the last one may
// be shorter.
func Chunks(samples []float64, n int) [][]float64 {
	var out [][]float64
	for off := 0; off < len(samples); off += n {
		out = append(out, samples[off:min(off+n, len(samples))])
	}
	return out
}
