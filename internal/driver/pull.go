// SPDX-License-Identifier: MIT
package driver

import (
	"barscope/internal/analysis"
	"fmt"
	"time"
)

// Clock reports the playback position of a pull-driven source.
type Clock interface {
	Position() time.Duration
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Duration

// Position calls f.
func (f ClockFunc) Position() time.Duration { return f() }

// PullDriver renders one frame per tick from the chunk the clock points at.
// The ring buffer must only ever hold contiguous audio, so every chunk
// between the last pushed one and the current one is pushed (at most one
// window's worth), and a clock that moves backwards resets the buffer.
type PullDriver struct {
	core

	samples    []float64
	sampleRate float64
	clock      Clock
	last       int // index of the last pushed chunk, -1 if none
}

// NewPullDriver creates a pull-driven driver over a decoded mono track.
// The track sample rate must match the pipeline's.
func NewPullDriver(p *analysis.Pipeline, samples []float64, sampleRate float64,
	clock Clock, opts Options) (*PullDriver, error) {
	if clock == nil {
		return nil, fmt.Errorf("pull driver requires a clock")
	}
	if sampleRate != p.Config().SampleRate {
		return nil, fmt.Errorf("track sample rate %g does not match pipeline sample rate %g",
			sampleRate, p.Config().SampleRate)
	}
	return &PullDriver{
		core:       newCore(p, opts),
		samples:    samples,
		sampleRate: sampleRate,
		clock:      clock,
		last:       -1,
	}, nil
}

// ChunkIndex maps a playback position to the chunk it falls into.
func (d *PullDriver) ChunkIndex(pos time.Duration) int {
	if pos < 0 {
		return 0
	}
	return int(pos.Seconds()*d.sampleRate) / d.chunkSize
}

// Duration is the playing time of the track.
func (d *PullDriver) Duration() time.Duration {
	return time.Duration(float64(len(d.samples)) / d.sampleRate * float64(time.Second))
}

// Tick renders the frame for the current clock position.
func (d *PullDriver) Tick() State {
	if d.stopped.Load() {
		return StateStopped
	}

	idx := d.ChunkIndex(d.clock.Position())
	if idx*d.chunkSize >= len(d.samples) {
		return StateEndOfStream
	}

	if idx < d.last {
		// Seek backwards: the buffered audio no longer precedes idx.
		d.buffer.Reset()
		d.last = -1
	}

	if idx > d.last {
		// Older chunks would be evicted again within this tick.
		start := max(d.last+1, idx-d.buffer.Capacity()/d.chunkSize+1, 0)
		for i := start; i <= idx; i++ {
			d.pushChunk(i)
		}
		d.last = idx
	}

	return d.analyse()
}

// pushChunk pushes chunk i of the track, zero-padded past the end.
func (d *PullDriver) pushChunk(i int) {
	lo := i * d.chunkSize
	hi := min(lo+d.chunkSize, len(d.samples))
	d.pushPiece(d.samples[lo:hi])
}
