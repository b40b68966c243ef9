// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSample = 4 // mono float32

// trackReader streams a mono track as float32 little-endian bytes and counts
// what the output has consumed.
type trackReader struct {
	mu      sync.Mutex
	samples []float64
	pos     int64 // bytes handed out
}

func (r *trackReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := int(r.pos / bytesPerSample)
	if idx >= len(r.samples) {
		return 0, io.EOF
	}
	n := min(len(p)/bytesPerSample, len(r.samples)-idx)
	for i := range n {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(float32(r.samples[idx+i])))
	}
	r.pos += int64(n * bytesPerSample)
	return n * bytesPerSample, nil
}

// Pos returns the number of bytes read so far. This runs ahead of what is
// audible by the output's buffer depth.
func (r *trackReader) Pos() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

func (r *trackReader) length() int64 {
	return int64(len(r.samples)) * bytesPerSample
}

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

// initOto creates the process-wide output context. Oto allows a single
// context per process, so every later track must share its sample rate.
func initOto(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = sampleRate
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", otoInitErr)
	}
	if globalOtoRate != sampleRate {
		return nil, fmt.Errorf("audio output already runs at %d Hz, cannot play %d Hz", globalOtoRate, sampleRate)
	}
	return globalOtoCtx, nil
}

// Player plays a Track through oto and serves as its playback Clock.
type Player struct {
	track     *Track
	reader    *trackReader
	otoPlayer *oto.Player
	volume    float64
	paused    bool
	closed    bool
	mu        sync.Mutex
}

// NewPlayer opens the audio output at the track's rate and starts playback.
func NewPlayer(track *Track, volume float64) (*Player, error) {
	ctx, err := initOto(int(track.SampleRate))
	if err != nil {
		return nil, err
	}

	p := &Player{
		track:  track,
		reader: &trackReader{samples: track.Samples},
		volume: clampUnit(volume),
	}
	p.otoPlayer = ctx.NewPlayer(p.reader)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	return p, nil
}

// Position returns what has been played: bytes read minus what is still
// queued in the player's buffer. Audio already handed to the device is
// counted, so pull frames lead the sound by the device latency.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	buffered := int64(0)
	if p.otoPlayer != nil {
		buffered = int64(p.otoPlayer.BufferedSize())
	}
	p.mu.Unlock()

	played := max(p.reader.Pos()-buffered, 0)
	secs := float64(played/bytesPerSample) / p.track.SampleRate
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.track.Duration()
}

// Finished reports whether every sample has been read and played.
func (p *Player) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reader.Pos() >= p.reader.length() && !p.otoPlayer.IsPlaying()
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = clampUnit(v)
	p.otoPlayer.SetVolume(p.volume)
}

// Close stops playback and releases the output player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.otoPlayer.Pause()
	return p.otoPlayer.Close()
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
