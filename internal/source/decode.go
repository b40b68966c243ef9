// SPDX-License-Identifier: MIT
/*
Package source provides the pull-driven audio source: a decoded mono Track
and a Clock that reports the playback position, either from an audio output
(Player) or from wall time (WallClock).

Files are decoded fully at load time so the render loop only slices memory.
*/
package source

import (
	applog "barscope/internal/log"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Track is a decoded, mono-reduced audio file.
type Track struct {
	Path       string
	Format     string
	Samples    []float64 // mono, nominally in [-1, 1]
	SampleRate float64
	Channels   int // channel count of the source before the downmix
}

// Duration is the playing time of the track.
func (t *Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(t.Samples)) / t.SampleRate * float64(time.Second))
}

// decoded is the interleaved output of a format decoder.
type decoded struct {
	samples    []float64
	sampleRate int
	channels   int
}

type decodeFunc func(r io.ReadSeeker) (*decoded, error)

var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".mp3":  decodeMP3,
	".flac": decodeFLAC,
	".ogg":  decodeOGG,
}

// Supported reports whether path has a known audio extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load detects the format by file extension, decodes the whole file and
// averages its channels to mono.
func Load(path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	start := time.Now()
	d, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if d.channels < 1 || d.sampleRate <= 0 {
		return nil, fmt.Errorf("decoding %s: invalid stream (%d channels, %d Hz)",
			filepath.Base(path), d.channels, d.sampleRate)
	}

	track := &Track{
		Path:       path,
		Format:     strings.TrimPrefix(ext, "."),
		Samples:    Downmix(d.samples, d.channels),
		SampleRate: float64(d.sampleRate),
		Channels:   d.channels,
	}
	applog.Debugf("Source: Decoded %s in %v (%s, %d ch, %.0f Hz, %v)",
		filepath.Base(path), time.Since(start).Round(time.Millisecond),
		track.Format, track.Channels, track.SampleRate, track.Duration().Round(time.Millisecond))
	return track, nil
}

// Downmix averages interleaved frames to mono. A trailing partial frame is
// dropped.
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	scale := 1 / float64(channels)
	for i := range mono {
		var sum float64
		for _, s := range interleaved[i*channels : (i+1)*channels] {
			sum += s
		}
		mono[i] = sum * scale
	}
	return mono
}

// --- WAV decoder ---

func decodeWAV(r io.ReadSeeker) (*decoded, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	samples := make([]float64, len(buf.Data))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			samples[i] = float64(v-128) / 128
		}
	} else {
		scale := 1 / float64(audio.IntMaxSignedValue(bitDepth))
		for i, v := range buf.Data {
			samples[i] = float64(v) * scale
		}
	}

	return &decoded{
		samples:    samples,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
	}, nil
}

// --- MP3 decoder ---

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.ReadSeeker) (*decoded, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 frames: %w", err)
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}

	return &decoded{
		samples:    samples,
		sampleRate: dec.SampleRate(),
		channels:   2,
	}, nil
}

// --- FLAC decoder ---

func decodeFLAC(r io.ReadSeeker) (*decoded, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	scale := 1 / float64(int64(1)<<(info.BitsPerSample-1))

	samples := make([]float64, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding FLAC frame: %w", err)
		}

		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				samples = append(samples, float64(frame.Subframes[ch].Samples[i])*scale)
			}
		}
	}

	return &decoded{
		samples:    samples,
		sampleRate: int(info.SampleRate),
		channels:   channels,
	}, nil
}

// --- OGG Vorbis decoder ---

func decodeOGG(r io.ReadSeeker) (*decoded, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	samples := make([]float64, 0, max(reader.Length(), 0)*int64(channels))
	chunk := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(chunk)
		for _, s := range chunk[:n] {
			samples = append(samples, float64(s))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading OGG samples: %w", err)
		}
	}

	return &decoded{
		samples:    samples,
		sampleRate: reader.SampleRate(),
		channels:   channels,
	}, nil
}
