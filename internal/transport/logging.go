// SPDX-License-Identifier: MIT
package transport

import (
	applog "barscope/internal/log"
	"time"
)

// LoggingTransport logs a one-line summary of the heights at most once per
// interval. It backs the headless mode.
type LoggingTransport struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
	frames   int
}

// NewLoggingTransport creates a LoggingTransport that logs every interval.
func NewLoggingTransport(interval time.Duration) *LoggingTransport {
	applog.Infof("Transport: Logging summaries every %s", interval)
	return &LoggingTransport{interval: interval, now: time.Now}
}

// Send logs the frame if the interval has elapsed since the last summary.
func (lt *LoggingTransport) Send(heights []int) error {
	lt.frames++
	now := lt.now()
	if !lt.last.IsZero() && now.Sub(lt.last) < lt.interval {
		return nil
	}
	lt.last = now

	mean, peak := summarize(heights)
	if peak < 0 {
		applog.Infof("Bars: frames=%d (no bars)", lt.frames)
		return nil
	}
	applog.Infof("Bars: frames=%d mean=%d peak=%d@bar%d", lt.frames, mean, heights[peak], peak)
	return nil
}

// summarize returns the integer mean height and the index of the tallest bar,
// or -1 for an empty frame.
func summarize(heights []int) (mean, peak int) {
	if len(heights) == 0 {
		return 0, -1
	}
	sum := 0
	for i, h := range heights {
		sum += h
		if h > heights[peak] {
			peak = i
		}
	}
	return sum / len(heights), peak
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("Transport: Logging transport closed after %d frames", lt.frames)
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
