// SPDX-License-Identifier: MIT
package analysis

import (
	"barscope/pkg/utils"
	"errors"
	"math"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = 44100
	cfg.ChunkSize = 1024
	cfg.WindowCapacity = 4096
	return cfg
}

func TestAnalyzerSpectrumLength(t *testing.T) {
	a, err := NewAnalyzer(testConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	for _, n := range []int{1024, 2048, 3072, 4096} {
		spectrum, err := a.Analyze(make([]float64, n))
		if err != nil {
			t.Fatalf("Analyze(%d) error = %v", n, err)
		}
		if len(spectrum) != n/2+1 {
			t.Errorf("Analyze(%d) length = %d, want %d", n, len(spectrum), n/2+1)
		}
		for i, v := range spectrum {
			if v != 0 {
				t.Fatalf("Analyze(%d) of silence: bin %d = %g, want 0", n, i, v)
			}
		}
	}
}

func TestAnalyzerRejectsLengths(t *testing.T) {
	a, err := NewAnalyzer(testConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	tests := []struct {
		name string
		n    int
		want error
	}{
		{"Empty", 0, ErrWindowTooShort},
		{"Below One Chunk", 1023, ErrWindowTooShort},
		{"Partial Chunk", 1536, ErrUnplannedLength},
		{"Beyond Capacity", 5120, ErrUnplannedLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(make([]float64, tt.n))
			if !errors.Is(err, tt.want) {
				t.Errorf("Analyze(%d) error = %v, want %v", tt.n, err, tt.want)
			}
		})
	}
}

func TestAnalyzerPeakBin(t *testing.T) {
	a, err := NewAnalyzer(testConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	const n, freq = 4096, 440.0
	spectrum, err := a.Analyze(utils.GenerateSineWave(n, 44100, freq, 0.5))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	peak := utils.FindPeakBin(spectrum, 1, len(spectrum)-1)
	want := freq * n / 44100
	if math.Abs(float64(peak)-want) > 1 {
		t.Errorf("peak bin = %d, want about %.2f", peak, want)
	}
}

// TestAnalyzerBackendsAgree compares the radix-2 and mixed-radix transforms,
// including the non power-of-two length that falls back to gonum.
func TestAnalyzerBackendsAgree(t *testing.T) {
	cfg := testConfig()
	gonumAnalyzer, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer(gonum) error = %v", err)
	}
	cfg.FFTBackend = BackendGofft
	gofftAnalyzer, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer(gofft) error = %v", err)
	}

	signal := utils.GenerateComplexWave(4096, 44100)
	for _, n := range []int{1024, 2048, 3072, 4096} {
		want, err := gonumAnalyzer.Analyze(signal[:n])
		if err != nil {
			t.Fatalf("gonum Analyze(%d) error = %v", n, err)
		}
		got, err := gofftAnalyzer.Analyze(signal[:n])
		if err != nil {
			t.Fatalf("gofft Analyze(%d) error = %v", n, err)
		}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-6*math.Max(1, want[i]) {
				t.Fatalf("n=%d bin %d: gofft %g, gonum %g", n, i, got[i], want[i])
			}
		}
	}
}

func TestAnalyzerGainAndExponent(t *testing.T) {
	cfg := testConfig()
	cfg.Gain = 1
	cfg.Exponent = 1
	linear, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	cfg.Gain = 2
	cfg.Exponent = 0.5
	compressed, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	signal := utils.GenerateSineWave(1024, 44100, 1000, 0.7)
	lin, _ := linear.Analyze(signal)
	comp, _ := compressed.Analyze(signal)
	for i := range lin {
		want := math.Sqrt(lin[i] * 2)
		if math.Abs(comp[i]-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("bin %d = %g, want (2*%g)^0.5 = %g", i, comp[i], lin[i], want)
		}
	}
}

// TestAnalyzeNoAllocs verifies the planned transform does not allocate.
func TestAnalyzeNoAllocs(t *testing.T) {
	a, err := NewAnalyzer(testConfig())
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	signal := utils.GenerateComplexWave(4096, 44100)
	_, _ = a.Analyze(signal)

	allocs := testing.AllocsPerRun(50, func() {
		_, _ = a.Analyze(signal)
	})
	if allocs > 0 {
		t.Errorf("Analyze allocated %.1f times, want 0", allocs)
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"", Hann, false},
		{"BLACKMAN", Blackman, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"hamming", Hamming, false},
		{"lanczos", Lanczos, false},
		{"nuttall", Nuttall, false},
		{"bartletthann", BartlettHann, false},
		{"kaiser", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.name)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("ParseWindowFunc(%q) = %v, %v; want %v, error %v", tt.name, got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestApplyWindowSinglePoint(t *testing.T) {
	coeffs := make([]float64, 1)
	applyWindow(coeffs, Hann)
	if coeffs[0] != 1 {
		t.Errorf("single-point window = %g, want 1", coeffs[0])
	}
}

func BenchmarkAnalyze(b *testing.B) {
	benchmarks := []struct {
		name    string
		backend string
		n       int
	}{
		{"Gonum1024", BackendGonum, 1024},
		{"Gonum4096", BackendGonum, 4096},
		{"Gofft1024", BackendGofft, 1024},
		{"Gofft4096", BackendGofft, 4096},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			cfg := testConfig()
			cfg.FFTBackend = bm.backend
			a, err := NewAnalyzer(cfg)
			if err != nil {
				b.Fatalf("NewAnalyzer() error = %v", err)
			}
			signal := utils.GenerateComplexWave(bm.n, 44100)

			b.ReportAllocs()
			for b.Loop() {
				_, _ = a.Analyze(signal)
			}
		})
	}
}
