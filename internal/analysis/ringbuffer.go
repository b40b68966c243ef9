// SPDX-License-Identifier: MIT
package analysis

import "sync"

// SampleBuffer is a fixed-capacity ring of mono samples. Push and snapshot are
// the only ways in or out, and they are mutually exclusive so a reader on the
// render goroutine never observes a half-written chunk from the audio callback.
type SampleBuffer struct {
	mu     sync.Mutex
	buf    []float64
	w      int // next write position
	filled int // samples held, capped at len(buf)
}

// NewSampleBuffer allocates a buffer holding the most recent capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleBuffer{buf: make([]float64, capacity)}
}

// Push appends chunk at the tail, evicting the same number of samples from
// the head once the buffer is full.
func (b *SampleBuffer) Push(chunk []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.buf)
	if len(chunk) >= size {
		copy(b.buf, chunk[len(chunk)-size:])
		b.w = 0
		b.filled = size
		return
	}

	n := copy(b.buf[b.w:], chunk)
	if n < len(chunk) {
		copy(b.buf, chunk[n:])
	}
	b.w = (b.w + len(chunk)) % size

	b.filled += len(chunk)
	if b.filled > size {
		b.filled = size
	}
}

// ValidLength returns the number of filled trailing samples.
func (b *SampleBuffer) ValidLength() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filled
}

// Capacity returns the fixed size of the buffer.
func (b *SampleBuffer) Capacity() int {
	return len(b.buf)
}

// SnapshotInto copies the trailing valid samples, oldest first, into dst and
// returns how many were written. If dst is shorter than the valid length only
// the most recent len(dst) samples are copied.
func (b *SampleBuffer) SnapshotInto(dst []float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.filled
	if n > len(dst) {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}

	size := len(b.buf)
	start := (b.w - n + size) % size
	if start+n <= size {
		copy(dst, b.buf[start:start+n])
	} else {
		first := copy(dst, b.buf[start:])
		copy(dst[first:n], b.buf[:n-first])
	}
	return n
}

// Reset forgets every sample. Capacity is unchanged.
func (b *SampleBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.buf)
	b.w = 0
	b.filled = 0
}
