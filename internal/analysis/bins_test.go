// SPDX-License-Identifier: MIT
package analysis

import (
	"barscope/pkg/utils"
	"math"
	"testing"
)

func TestLogEdges(t *testing.T) {
	tests := []struct {
		name     string
		bars     int
		min, max float64
	}{
		{"Default", 64, 20, 20000},
		{"Four Bars", 4, 40, 10000},
		{"Single Bar", 1, 100, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := LogEdges(tt.bars, tt.min, tt.max)
			if len(edges) != tt.bars+1 {
				t.Fatalf("len(edges) = %d, want %d", len(edges), tt.bars+1)
			}
			if edges[0] != tt.min || edges[tt.bars] != tt.max {
				t.Errorf("edges span [%g, %g], want [%g, %g]", edges[0], edges[tt.bars], tt.min, tt.max)
			}
			ratio := math.Pow(tt.max/tt.min, 1/float64(tt.bars))
			for i := 1; i < len(edges); i++ {
				if edges[i] <= edges[i-1] {
					t.Fatalf("edges not strictly increasing at %d: %g <= %g", i, edges[i], edges[i-1])
				}
				if r := edges[i] / edges[i-1]; math.Abs(r-ratio) > 1e-9*ratio {
					t.Errorf("edge ratio at %d = %g, want %g", i, r, ratio)
				}
			}
		})
	}

	if LogEdges(0, 20, 20000) != nil {
		t.Error("LogEdges with zero bars should be nil")
	}
}

func TestAggregateLengthAndFloor(t *testing.T) {
	const floor = 0.1
	spectrum := make([]float64, 513) // silence, 1024-sample window

	got := Aggregate(spectrum, 64, 44100, 1024, 20, 20000, floor)
	if len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
	for i, v := range got {
		if v != floor {
			t.Errorf("bar %d = %g, want floor %g for silence", i, v, floor)
		}
	}
}

// TestAggregateEmptyBar checks that a bar with no bins is exactly the floor.
func TestAggregateEmptyBar(t *testing.T) {
	spectrum := make([]float64, 9) // 16-sample window at 8 kHz: 500 Hz per bin
	for i := range spectrum {
		spectrum[i] = 5
	}

	got := Aggregate(spectrum, 8, 8000, 16, 20, 4000, 0.25)
	if got[0] != 0.25 {
		t.Errorf("bar 0 spans 20-39 Hz, holds no bin, got %g want floor 0.25", got[0])
	}
	if got[7] != 5 {
		t.Errorf("top bar = %g, want 5", got[7])
	}
}

// TestAggregateBinAssignment checks half-open ranges and Nyquist clamping.
func TestAggregateBinAssignment(t *testing.T) {
	// 100-sample window at 1 kHz: bin i is at 10*i Hz, bins 0..50.
	spectrum := make([]float64, 51)
	for i := range spectrum {
		spectrum[i] = float64(i)
	}

	// The upper bound is clamped to 500 Hz, so edges are 10, 70.7, 500.
	got := Aggregate(spectrum, 2, 1000, 100, 10, 100000, 0)

	// Bar 0 holds bins 1..7, bar 1 holds bins 8..49; bin 50 sits on the
	// exclusive upper edge.
	if got[0] != 4 {
		t.Errorf("bar 0 = %g, want mean of bins 1..7 = 4", got[0])
	}
	if got[1] != 28.5 {
		t.Errorf("bar 1 = %g, want mean of bins 8..49 = 28.5", got[1])
	}
}

// TestAggregateTone runs a 440 Hz tone through the analyzer into four bars.
func TestAggregateTone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 48000
	cfg.ChunkSize = 512
	cfg.WindowCapacity = 512
	cfg.Bars = 4
	cfg.MinFrequency = 40
	cfg.MaxFrequency = 10000
	cfg.BinFloor = 0.1

	a, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	spectrum, err := a.Analyze(utils.GenerateSineWave(512, 48000, 440, 0.8))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	bars := Aggregate(spectrum, cfg.Bars, cfg.SampleRate, 512, cfg.MinFrequency, cfg.MaxFrequency, cfg.BinFloor)

	// Edges are 40, 159, 632, 2515, 10000 Hz: 440 Hz falls into bar 1.
	loudest := 0
	for i, v := range bars {
		if v < cfg.BinFloor {
			t.Errorf("bar %d = %g is below the floor", i, v)
		}
		if v > bars[loudest] {
			loudest = i
		}
	}
	if loudest != 1 {
		t.Errorf("loudest bar = %d (%v), want 1", loudest, bars)
	}
	for i, v := range bars {
		if i != 1 && !(bars[1] > v) {
			t.Errorf("bar 1 = %g is not strictly above bar %d = %g", bars[1], i, v)
		}
	}
}

func TestBinPlanMatchesAggregate(t *testing.T) {
	spectrum := make([]float64, 2049)
	for i := range spectrum {
		spectrum[i] = math.Sin(float64(i)) + 1
	}

	want := Aggregate(spectrum, 64, 44100, 4096, 20, 20000, 0.1)
	plan := newBinPlan(64, 44100, 4096, 20, 20000)
	got := make([]float64, 64)

	allocs := testing.AllocsPerRun(50, func() {
		plan.aggregate(got, spectrum, 0.1)
	})
	if allocs > 0 {
		t.Errorf("binPlan.aggregate allocated %.1f times, want 0", allocs)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bar %d: plan %g, Aggregate %g", i, got[i], want[i])
		}
	}
}

func BenchmarkBinPlanAggregate(b *testing.B) {
	spectrum := make([]float64, 2049)
	plan := newBinPlan(64, 44100, 4096, 20, 20000)
	dst := make([]float64, 64)

	b.ReportAllocs()
	for b.Loop() {
		plan.aggregate(dst, spectrum, 0.1)
	}
}
