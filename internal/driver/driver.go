// SPDX-License-Identifier: MIT
/*
Package driver is the scheduling shell around the analysis pipeline. It has
two entry protocols selected by the audio source:

  - PushDriver.OnChunk is invoked by the audio subsystem once per captured
    chunk, inside the real-time callback
  - PullDriver.Tick is invoked once per render tick and reads the chunk that
    the playback clock currently points at

Both push chunks into the ring buffer, snapshot the valid window, run the
pipeline and hand the heights to a Renderer. Shutdown is cooperative: Stop
sets a flag that is checked at the top of every invocation.
*/
package driver

import (
	"barscope/internal/analysis"
	"sync"
	"sync/atomic"
)

// State is the outcome of one driver invocation.
type State int

const (
	// StateRendered means a new frame was analysed and rendered.
	StateRendered State = iota
	// StateSkipped means less than one chunk was buffered; the previous
	// heights were rendered again.
	StateSkipped
	// StateStopped means the shutdown flag was observed; nothing was done.
	StateStopped
	// StateEndOfStream means a pull-driven source has no more samples.
	StateEndOfStream
)

func (s State) String() string {
	switch s {
	case StateRendered:
		return "rendered"
	case StateSkipped:
		return "skipped"
	case StateStopped:
		return "stopped"
	case StateEndOfStream:
		return "end-of-stream"
	default:
		return "unknown"
	}
}

// Done reports whether the state terminates the pipeline.
func (s State) Done() bool {
	return s == StateStopped || s == StateEndOfStream
}

// Renderer consumes one frame of bar heights. It is called on the driver's
// goroutine (possibly the audio callback) and must not block or retain the
// slice after returning.
type Renderer interface {
	Render(heights []int)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(heights []int)

// Render calls f(heights).
func (f RendererFunc) Render(heights []int) { f(heights) }

// Renderers fans one frame out to several renderers in order.
type Renderers []Renderer

// Render calls every renderer.
func (rs Renderers) Render(heights []int) {
	for _, r := range rs {
		r.Render(heights)
	}
}

// VolumeControl supplies the volume gate: zero closes it.
type VolumeControl interface {
	Volume() float64
}

// FixedVolume is a constant VolumeControl.
type FixedVolume float64

// Volume returns v.
func (v FixedVolume) Volume() float64 { return float64(v) }

// Options holds the external collaborators of a driver.
type Options struct {
	Volume   VolumeControl // nil means an always-open gate
	Renderer Renderer      // nil discards frames
}

// core holds the state shared by both protocols. Everything is allocated
// up front; invocations only copy into existing slices.
type core struct {
	pipeline  *analysis.Pipeline
	buffer    *analysis.SampleBuffer
	chunkSize int

	window  []float64 // snapshot scratch, capacity sized
	padded  []float64 // one chunk of padding scratch
	heights []int     // previous heights reused on skipped frames

	volume   VolumeControl
	renderer Renderer

	stopped  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

func newCore(p *analysis.Pipeline, opts Options) core {
	cfg := p.Config()
	if opts.Volume == nil {
		opts.Volume = FixedVolume(1)
	}
	if opts.Renderer == nil {
		opts.Renderer = RendererFunc(func([]int) {})
	}
	return core{
		pipeline:  p,
		buffer:    analysis.NewSampleBuffer(cfg.WindowCapacity),
		chunkSize: cfg.ChunkSize,
		window:    make([]float64, cfg.WindowCapacity),
		padded:    make([]float64, cfg.ChunkSize),
		heights:   make([]int, cfg.Bars),
		volume:    opts.Volume,
		renderer:  opts.Renderer,
		done:      make(chan struct{}),
	}
}

// Stop requests shutdown. Work already in progress completes; every later
// invocation returns StateStopped. Safe to call more than once.
func (c *core) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		close(c.done)
	})
}

// Stopped reports whether Stop has been called.
func (c *core) Stopped() bool {
	return c.stopped.Load()
}

// Done is closed by Stop.
func (c *core) Done() <-chan struct{} {
	return c.done
}

// Buffer exposes the ring buffer for inspection.
func (c *core) Buffer() *analysis.SampleBuffer {
	return c.buffer
}

// pushPiece pushes one piece of at most chunkSize samples, zero-padded.
func (c *core) pushPiece(piece []float64) {
	if len(piece) == c.chunkSize {
		c.buffer.Push(piece)
		return
	}
	n := copy(c.padded, piece)
	clear(c.padded[n:])
	c.buffer.Push(c.padded)
}

// analyse snapshots the buffer and runs the pipeline, or re-renders the
// previous heights when less than one chunk is buffered.
func (c *core) analyse() State {
	n := c.buffer.SnapshotInto(c.window)
	if n < c.chunkSize {
		_ = c.pipeline.HeightsInto(c.heights)
		c.renderer.Render(c.heights)
		return StateSkipped
	}

	heights, err := c.pipeline.Process(c.window[:n], c.volume.Volume())
	if err != nil {
		// Only reachable with a window length the buffer cannot produce.
		_ = c.pipeline.HeightsInto(c.heights)
		c.renderer.Render(c.heights)
		return StateSkipped
	}
	c.renderer.Render(heights)
	return StateRendered
}
