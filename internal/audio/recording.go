// SPDX-License-Identifier: MIT
package audio

import (
	"barscope/internal/config"
	applog "barscope/internal/log"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordQueueDepth is the number of callback buffers that may wait for the
// encoder before new input is dropped.
const recordQueueDepth = 32

var errAlreadyRecording = errors.New("already recording")

// recorder encodes captured input to WAV on its own goroutine. The callback
// only copies into a free buffer and queues it.
type recorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	scale   float64

	free    chan []float32
	queue   chan []float32
	done    chan struct{}
	err     error
	dropped atomic.Uint64
	written atomic.Uint64
}

func newRecorder(file *os.File, sampleRate, bitDepth, channels, frames int) *recorder {
	r := &recorder{
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
			Data:           make([]int, frames*channels),
		},
		scale: float64(audio.IntMaxSignedValue(bitDepth)),
		free:  make(chan []float32, recordQueueDepth),
		queue: make(chan []float32, recordQueueDepth),
		done:  make(chan struct{}),
	}
	for range recordQueueDepth {
		r.free <- make([]float32, frames*channels)
	}
	go r.run()
	return r
}

// tap queues a copy of in without blocking.
func (r *recorder) tap(in []float32) {
	select {
	case b := <-r.free:
		n := copy(b[:cap(b)], in)
		r.queue <- b[:n]
	default:
		r.dropped.Add(1)
	}
}

func (r *recorder) run() {
	defer close(r.done)
	for b := range r.queue {
		if r.err == nil {
			r.err = r.write(b)
		}
		r.free <- b[:cap(b)]
	}
}

func (r *recorder) write(samples []float32) error {
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		r.buf.Data[i] = int(v * r.scale)
	}
	r.buf.Data = r.buf.Data[:len(samples)]
	defer func() { r.buf.Data = r.buf.Data[:cap(r.buf.Data)] }()

	if err := r.encoder.Write(r.buf); err != nil {
		return fmt.Errorf("error writing to WAV file: %w", err)
	}
	r.written.Add(uint64(len(samples)))
	return nil
}

// close drains the queue and finalises the file.
func (r *recorder) close() error {
	close(r.queue)
	<-r.done

	errs := []error{r.err}
	if err := r.encoder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RecordingPath returns the configured output file, or a timestamped name in
// the output directory.
func RecordingPath(cfg *config.Config, now time.Time) string {
	if cfg.Recording.OutputFile != "" {
		return cfg.Recording.OutputFile
	}
	return filepath.Join(cfg.Recording.OutputDir, "capture-"+now.Format("20060102-150405")+".wav")
}

// StartRecording begins writing the raw captured input to filename.
func (e *Engine) StartRecording(filename string) error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.recorder != nil {
		return errAlreadyRecording
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	e.recorder = newRecorder(file, int(e.config.Audio.SampleRate), e.config.Recording.BitDepth,
		e.channels, e.frames)

	applog.Infof("Audio: Recording input to %s (%d-bit)", filename, e.config.Recording.BitDepth)
	return nil
}

// Recording reports whether a recording is active.
func (e *Engine) Recording() bool {
	e.recMu.Lock()
	defer e.recMu.Unlock()
	return e.recorder != nil
}

// StopRecording finalises the current recording, if any.
func (e *Engine) StopRecording() error {
	e.recMu.Lock()
	r := e.recorder
	e.recorder = nil
	e.recMu.Unlock()

	if r == nil {
		return nil
	}

	err := r.close()
	if dropped := r.dropped.Load(); dropped > 0 {
		applog.Warnf("Audio: Recording dropped %d buffers", dropped)
	}
	applog.Infof("Audio: Recording stopped after %d samples", r.written.Load())
	return err
}
