package dsp

import (
	"math"
	"testing"

	"github.com/vibesync/vibesync/internal/config"
)

const testRate = 44100.0

func sine(freq, amplitude float64, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return samples
}

func TestAnalyzeEmptyBlockIsSilent(t *testing.T) {
	a := NewAnalyzer(config.Default())

	cases := [][]float64{nil, {}, {0.5}}
	for _, block := range cases {
		got := a.Analyze(block, testRate)
		if got != (BandEnergy{}) {
			t.Fatalf("expected zero energies for block of len %d, got %+v", len(block), got)
		}
	}
}

func TestAnalyzeZeroSampleRateIsSilent(t *testing.T) {
	a := NewAnalyzer(config.Default())
	if got := a.Analyze(sine(440, 1, 2048), 0); got != (BandEnergy{}) {
		t.Fatalf("expected zero energies for zero sample rate, got %+v", got)
	}
}

func TestAnalyzeBassTone(t *testing.T) {
	a := NewAnalyzer(config.Default())
	got := a.Analyze(sine(80, 1.0, 2048), testRate)

	if got.Bass <= 0.5 {
		t.Fatalf("80 Hz tone should light up the bass band, got %f", got.Bass)
	}
	if got.Mid > 0.1 || got.High > 0.1 {
		t.Fatalf("80 Hz tone leaked into mid/high: mid=%f high=%f", got.Mid, got.High)
	}
}

func TestAnalyzeCentroidTracksTone(t *testing.T) {
	a := NewAnalyzer(config.Default())

	for _, freq := range []float64{500, 1000, 2200} {
		got := a.Analyze(sine(freq, 0.8, 2048), testRate)
		if math.Abs(got.Centroid-freq) > 100 {
			t.Fatalf("centroid for %.0f Hz tone: got %.1f Hz", freq, got.Centroid)
		}
	}
}

func TestAnalyzeCentroidStableOverBlocks(t *testing.T) {
	a := NewAnalyzer(config.Default())
	block := sine(1000, 0.8, 2048)

	first := a.Analyze(block, testRate).Centroid
	for i := 0; i < 10; i++ {
		got := a.Analyze(block, testRate).Centroid
		if math.Abs(got-first) > 1 {
			t.Fatalf("centroid drifted on identical input: %.3f vs %.3f", got, first)
		}
	}
}

func TestAnalyzeSilentMidBandHasZeroCentroid(t *testing.T) {
	a := NewAnalyzer(config.Default())
	if got := a.Analyze(sine(80, 1.0, 2048), testRate); got.Centroid > 200 {
		t.Fatalf("bass-only tone should leave the mid centroid near zero, got %f", got.Centroid)
	}
}

func TestAnalyzeEmptyBandMask(t *testing.T) {
	cfg := config.Default()
	// A band narrower than one bin at this block size selects no bins.
	cfg.HighBand = config.Band{Low: 6000, High: 6001}
	a := NewAnalyzer(cfg)

	got := a.Analyze(sine(6000.5, 1.0, 64), testRate)
	if got.High != 0 {
		t.Fatalf("band with no bins must have zero energy, got %f", got.High)
	}
}

func TestAnalyzeEnergiesClamped(t *testing.T) {
	a := NewAnalyzer(config.Default())
	got := a.Analyze(sine(80, 100, 2048), testRate)
	if got.Bass > 1 {
		t.Fatalf("band energy must be clamped to 1, got %f", got.Bass)
	}
}
