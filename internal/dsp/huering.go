package dsp

import "math"

// HueRing is a fixed-capacity ring buffer of hue samples in [0,1). Pushing
// past capacity evicts the oldest sample in O(1). The mean is computed on the
// circle so hues straddling the 0/1 wrap (reds) don't average out to cyan.
type HueRing struct {
	samples []float64
	head    int
	count   int
}

// NewHueRing creates a ring holding up to capacity samples.
func NewHueRing(capacity int) *HueRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &HueRing{samples: make([]float64, capacity)}
}

// Push appends a hue sample, evicting the oldest when full.
func (r *HueRing) Push(hue float64) {
	r.samples[r.head] = wrapHue(hue)
	r.head = (r.head + 1) % len(r.samples)
	if r.count < len(r.samples) {
		r.count++
	}
}

// Mean returns the circular mean of the buffered samples, or the fallback
// when the ring is empty.
func (r *HueRing) Mean(fallback float64) float64 {
	if r.count == 0 {
		return fallback
	}
	var sinSum, cosSum float64
	for i := 0; i < r.count; i++ {
		angle := r.samples[i] * 2 * math.Pi
		sinSum += math.Sin(angle)
		cosSum += math.Cos(angle)
	}
	if sinSum == 0 && cosSum == 0 {
		// Samples cancel exactly; any direction is as good as another.
		return r.samples[(r.head+len(r.samples)-1)%len(r.samples)]
	}
	mean := math.Atan2(sinSum, cosSum) / (2 * math.Pi)
	return wrapHue(mean)
}

// Len reports how many samples the ring currently holds.
func (r *HueRing) Len() int { return r.count }

func wrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	return h
}
