package dsp

import (
	"math"
	"testing"
)

func TestHueRingEmptyUsesFallback(t *testing.T) {
	r := NewHueRing(8)
	if got := r.Mean(0.42); got != 0.42 {
		t.Fatalf("empty ring must return fallback, got %f", got)
	}
}

func TestHueRingSimpleMean(t *testing.T) {
	r := NewHueRing(8)
	r.Push(0.30)
	r.Push(0.40)
	if got := r.Mean(0); math.Abs(got-0.35) > 1e-6 {
		t.Fatalf("mean of 0.30/0.40: got %f", got)
	}
}

func TestHueRingWrapAroundMean(t *testing.T) {
	r := NewHueRing(8)
	r.Push(0.95)
	r.Push(0.05)

	got := r.Mean(0)
	// The circular mean of two reds either side of the wrap is red, not cyan.
	dist := math.Min(got, 1-got)
	if dist > 1e-6 {
		t.Fatalf("wrap-around mean should be ~0.0, got %f", got)
	}
}

func TestHueRingEvictsOldest(t *testing.T) {
	r := NewHueRing(3)
	for _, h := range []float64{0.1, 0.2, 0.3, 0.6} {
		r.Push(h)
	}
	if r.Len() != 3 {
		t.Fatalf("ring exceeded capacity: %d", r.Len())
	}
	// 0.1 was evicted; the mean reflects only the newest three.
	want := circularMean([]float64{0.2, 0.3, 0.6})
	if got := r.Mean(0); math.Abs(got-want) > 1e-6 {
		t.Fatalf("mean after eviction: got %f want %f", got, want)
	}
}

func TestHueRingNormalizesInput(t *testing.T) {
	r := NewHueRing(4)
	r.Push(1.25)
	r.Push(-0.75)
	if got := r.Mean(0); math.Abs(got-0.25) > 1e-6 {
		t.Fatalf("out-of-range hues must wrap into [0,1): got %f", got)
	}
}

func circularMean(hues []float64) float64 {
	var sinSum, cosSum float64
	for _, h := range hues {
		sinSum += math.Sin(h * 2 * math.Pi)
		cosSum += math.Cos(h * 2 * math.Pi)
	}
	m := math.Atan2(sinSum, cosSum) / (2 * math.Pi)
	if m < 0 {
		m += 1
	}
	return m
}

func TestSmootherConverges(t *testing.T) {
	s := NewSmoother(0.5)
	s.Step(0)
	v := 0.0
	for i := 0; i < 30; i++ {
		v = s.Step(1)
	}
	if math.Abs(v-1) > 1e-6 {
		t.Fatalf("smoother failed to converge: %f", v)
	}
}

func TestSmootherFirstSampleInitializes(t *testing.T) {
	s := NewSmoother(0.1)
	if got := s.Step(0.7); got != 0.7 {
		t.Fatalf("first sample must initialize directly, got %f", got)
	}
}
