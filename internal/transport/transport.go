// SPDX-License-Identifier: MIT
/*
Package transport publishes bar heights to consumers outside the process.

The frame drivers never block on I/O: a driver renders into a FrameSink, and a
Publisher goroutine copies the latest heights out at its own rate and hands
them to every Transport (WebSocket, UDP, log).
*/
package transport

import (
	"barscope/internal/analysis"
	"barscope/internal/driver"
	"fmt"
	"sync"
	"sync/atomic"
)

// Transport delivers one frame of heights. Send must not retain heights.
// Implementations should be thread-safe.
type Transport interface {
	Send(heights []int) error
	Close() error
}

// FrameSink is a Renderer that keeps the most recent frame for other
// goroutines. Render copies into a pre-allocated slice and does not allocate.
type FrameSink struct {
	mu      sync.RWMutex
	heights []int
	frames  atomic.Uint64
}

// NewFrameSink creates a sink for the given number of bars.
func NewFrameSink(bars int) *FrameSink {
	return &FrameSink{heights: make([]int, bars)}
}

// Render stores heights as the latest frame.
func (s *FrameSink) Render(heights []int) {
	s.mu.Lock()
	copy(s.heights, heights)
	s.mu.Unlock()
	s.frames.Add(1)
}

// HeightsInto copies the latest frame into dst.
func (s *FrameSink) HeightsInto(dst []int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(dst) != len(s.heights) {
		return fmt.Errorf("destination slice length %d does not match bar count %d", len(dst), len(s.heights))
	}
	copy(dst, s.heights)
	return nil
}

// Bars returns the number of bars.
func (s *FrameSink) Bars() int {
	return len(s.heights)
}

// Frames returns how many frames have been rendered into the sink.
func (s *FrameSink) Frames() uint64 {
	return s.frames.Load()
}

// Compile-time checks.
var (
	_ driver.Renderer          = (*FrameSink)(nil)
	_ analysis.HeightsProvider = (*FrameSink)(nil)
)
