// SPDX-License-Identifier: MIT
package source

import (
	"sync"
	"time"
)

// WallClock is a pausable playback clock driven by wall time. It replaces the
// Player when a file is analysed without audio output.
type WallClock struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	elapsed  time.Duration // accumulated before the current run
	paused   bool
	duration time.Duration
}

// NewWallClock starts a clock for a track of the given duration.
func NewWallClock(duration time.Duration) *WallClock {
	return newWallClock(duration, time.Now)
}

func newWallClock(duration time.Duration, now func() time.Time) *WallClock {
	return &WallClock{now: now, start: now(), duration: duration}
}

// Position returns the time played so far.
func (c *WallClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.elapsed
	}
	return c.elapsed + c.now().Sub(c.start)
}

// Duration returns the track duration the clock was created with.
func (c *WallClock) Duration() time.Duration {
	return c.duration
}

// TogglePause freezes or resumes the clock.
func (c *WallClock) TogglePause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.start = c.now()
		c.paused = false
		return
	}
	c.elapsed += c.now().Sub(c.start)
	c.paused = true
}

// Paused returns whether the clock is frozen.
func (c *WallClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Playback is the control surface shared by Player and WallClock.
type Playback interface {
	Position() time.Duration
	Duration() time.Duration
	TogglePause()
	Paused() bool
}

var (
	_ Playback = (*Player)(nil)
	_ Playback = (*WallClock)(nil)
)
