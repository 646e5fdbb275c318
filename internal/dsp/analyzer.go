package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/vibesync/vibesync/internal/config"
)

const centroidEpsilon = 1e-6

// BandEnergy is the per-block spectral energy split the rest of the pipeline
// runs on. Values are non-negative and roughly normalized to [0,1] by the
// per-band gain before leaving the analyzer.
type BandEnergy struct {
	Bass float64
	Mid  float64
	High float64

	// Centroid is the energy-weighted mean frequency of the mid band in Hz,
	// or 0 when the mid band carried no energy. It tracks where the dominant
	// pitch sits and drives hue selection downstream.
	Centroid float64
}

// Analyzer converts raw audio blocks into band energies via a real-input FFT.
// It reuses its scratch buffers so the audio callback stays allocation-free
// after the first block.
type Analyzer struct {
	bassBand config.Band
	midBand  config.Band
	highBand config.Band

	bassGain float64
	midGain  float64
	highGain float64

	window     []float64
	windowed   []float64
	magnitudes []float64
}

// NewAnalyzer builds an analyzer for the configured band ranges. Sample rate
// is supplied per block because capture devices may renegotiate it.
func NewAnalyzer(cfg config.Config) *Analyzer {
	return &Analyzer{
		bassBand: cfg.BassBand,
		midBand:  cfg.MidBand,
		highBand: cfg.HighBand,
		bassGain: 1.0 / 10.0,
		midGain:  1.0 / 8.0,
		highGain: 1.0 / 5.0,
	}
}

// Analyze computes band energies and the mid-band centroid for one mono
// block. Empty or degenerate blocks produce zero energies, never an error.
func (a *Analyzer) Analyze(samples []float64, sampleRate float64) BandEnergy {
	if len(samples) < 2 || sampleRate <= 0 {
		return BandEnergy{}
	}

	a.ensureWorkspace(len(samples))
	for i, s := range samples {
		a.windowed[i] = s * a.window[i]
	}

	spectrum := fft.FFTReal(a.windowed)
	half := len(spectrum)/2 + 1
	if len(a.magnitudes) != half {
		a.magnitudes = make([]float64, half)
	}
	for i := 0; i < half; i++ {
		a.magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	binWidth := sampleRate / float64(len(samples))

	bass := a.bandSum(a.bassBand, binWidth) * a.bassGain
	mid := a.bandSum(a.midBand, binWidth) * a.midGain
	high := a.bandSum(a.highBand, binWidth) * a.highGain

	return BandEnergy{
		Bass:     clamp(bass, 0, 1),
		Mid:      clamp(mid, 0, 1),
		High:     clamp(high, 0, 1),
		Centroid: a.centroid(a.midBand, binWidth),
	}
}

// bandSum adds up bin magnitudes whose center frequency falls inside the
// band. A band that selects zero bins contributes zero energy.
func (a *Analyzer) bandSum(band config.Band, binWidth float64) float64 {
	lo, hi := a.binRange(band, binWidth)
	if lo >= hi {
		return 0
	}
	sum := 0.0
	for i := lo; i < hi; i++ {
		sum += a.magnitudes[i]
	}
	return sum
}

// centroid returns Σ(freq·mag)/Σ(mag) across the band, epsilon-guarded so a
// silent band maps to zero instead of exploding.
func (a *Analyzer) centroid(band config.Band, binWidth float64) float64 {
	lo, hi := a.binRange(band, binWidth)
	if lo >= hi {
		return 0
	}
	var weighted, total float64
	for i := lo; i < hi; i++ {
		freq := float64(i) * binWidth
		weighted += freq * a.magnitudes[i]
		total += a.magnitudes[i]
	}
	if total < centroidEpsilon {
		return 0
	}
	return weighted / total
}

func (a *Analyzer) binRange(band config.Band, binWidth float64) (int, int) {
	if binWidth <= 0 {
		return 0, 0
	}
	lo := int(math.Ceil(band.Low / binWidth))
	hi := int(math.Floor(band.High/binWidth)) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > len(a.magnitudes) {
		hi = len(a.magnitudes)
	}
	return lo, hi
}

func (a *Analyzer) ensureWorkspace(size int) {
	if len(a.window) != size {
		a.window = make([]float64, size)
		for i := range a.window {
			a.window[i] = hann(float64(i), float64(size))
		}
	}
	if len(a.windowed) != size {
		a.windowed = make([]float64, size)
	}
}

func hann(i, size float64) float64 {
	return 0.5 * (1.0 - math.Cos(2.0*math.Pi*i/size))
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
