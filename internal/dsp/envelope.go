package dsp

import "github.com/vibesync/vibesync/internal/config"

// Envelopes is the smoothed view of one block's band energies: instantaneous
// attack, linear decay, plus the drive ratio of bass energy against its
// long-running average.
type Envelopes struct {
	Bass float64
	Mid  float64
	High float64

	// Drive is bass energy relative to the running average. Values above 1
	// mean the current block is louder than recent history; the onset
	// detector and brightness curve both key off it.
	Drive float64
}

// Tracker owns the running bass average, the per-band envelopes and the
// brightness peak hold. Single writer: the audio callback.
type Tracker struct {
	avgAlpha      float64
	avgFloor      float64
	envDecay      float64
	highDecay     float64
	peakDecay     float64
	avgBass       float64
	bass          float64
	mid           float64
	high          float64
	peak          float64
}

// NewTracker seeds the running average well above zero so the first loud
// blocks don't register as an absurd drive ratio.
func NewTracker(cfg config.Config) *Tracker {
	return &Tracker{
		avgAlpha:  cfg.AvgAlpha,
		avgFloor:  cfg.AvgFloor,
		envDecay:  cfg.EnvDecay,
		highDecay: cfg.EnvDecay * cfg.HighDecayMult,
		peakDecay: cfg.PeakDecay,
		avgBass:   cfg.AvgFloor,
	}
}

// Update folds one block of band energies into the envelopes and returns the
// smoothed view.
func (t *Tracker) Update(e BandEnergy) Envelopes {
	t.avgBass = t.avgBass*t.avgAlpha + e.Bass*(1-t.avgAlpha)
	if t.avgBass < t.avgFloor {
		t.avgBass = t.avgFloor
	}

	t.bass = attackDecay(t.bass, e.Bass, t.envDecay)
	t.mid = attackDecay(t.mid, e.Mid, t.envDecay)
	// High band decays faster to keep transient shimmer detail legible.
	t.high = attackDecay(t.high, e.High, t.highDecay)

	return Envelopes{
		Bass:  t.bass,
		Mid:   t.mid,
		High:  t.high,
		Drive: e.Bass / t.avgBass,
	}
}

// HoldPeak feeds a brightness target through the peak hold: the peak rises
// instantly on a new maximum and otherwise decays linearly, so brightness
// never collapses faster than the configured rate even on sudden silence.
// Returns the effective target (never below the held peak).
func (t *Tracker) HoldPeak(target float64) float64 {
	if target > t.peak {
		t.peak = target
	} else {
		t.peak -= t.peakDecay
		if t.peak < 0 {
			t.peak = 0
		}
	}
	if target > t.peak {
		return target
	}
	return t.peak
}

// Peak exposes the current held peak, mostly for the status monitor.
func (t *Tracker) Peak() float64 { return t.peak }

// Average exposes the running bass average.
func (t *Tracker) Average() float64 { return t.avgBass }

func attackDecay(env, energy, decay float64) float64 {
	decayed := env - decay
	if energy > decayed {
		return energy
	}
	if decayed < 0 {
		return 0
	}
	return decayed
}
