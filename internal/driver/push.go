// SPDX-License-Identifier: MIT
package driver

import "barscope/internal/analysis"

// PushDriver runs the pipeline once per chunk delivered by an audio callback.
type PushDriver struct {
	core
}

// NewPushDriver creates a push-driven driver with its own ring buffer.
func NewPushDriver(p *analysis.Pipeline, opts Options) *PushDriver {
	return &PushDriver{core: newCore(p, opts)}
}

// OnChunk buffers chunk and renders a frame.
//
// Performance Critical (Hot Path):
//   - No allocations, no I/O, no logging
//   - Chunks shorter than the configured size are zero-padded; longer chunks
//     are split into whole chunks (the last one padded)
//   - An empty chunk buffers nothing but still renders
func (d *PushDriver) OnChunk(chunk []float64) State {
	if d.stopped.Load() {
		return StateStopped
	}

	for off := 0; off < len(chunk); off += d.chunkSize {
		end := min(off+d.chunkSize, len(chunk))
		d.pushPiece(chunk[off:end])
	}

	return d.analyse()
}
