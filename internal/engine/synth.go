package engine

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Synth produces synthetic audio blocks for running the pipeline without a
// capture device: a kick pattern in the bass band, a wandering mid tone and
// occasional high-band noise bursts.
type Synth struct {
	rng        *rand.Rand
	sampleRate float64
	blockSize  int

	t         float64
	kickPhase float64
	tonePhase float64
	toneFreq  float64
	bpm       float64
	block     []float64
}

// NewSynth creates a generator at the given block geometry.
func NewSynth(blockSize int, sampleRate float64) *Synth {
	return &Synth{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sampleRate: sampleRate,
		blockSize:  blockSize,
		toneFreq:   440,
		bpm:        124,
		block:      make([]float64, blockSize),
	}
}

// NextBlock synthesizes one block. The returned slice is reused between
// calls, matching how capture hands out blocks.
func (s *Synth) NextBlock() []float64 {
	dt := 1.0 / s.sampleRate
	beatPeriod := 60.0 / s.bpm

	// Let the tone wander so the centroid (and therefore the hue) moves.
	s.toneFreq += (s.rng.Float64() - 0.5) * 40
	if s.toneFreq < 300 {
		s.toneFreq = 300
	}
	if s.toneFreq > 2500 {
		s.toneFreq = 2500
	}

	hissBurst := s.rng.Float64() < 0.1

	for i := range s.block {
		s.t += dt

		beatPos := math.Mod(s.t, beatPeriod)
		kickEnv := math.Exp(-beatPos * 18)
		s.kickPhase += 2 * math.Pi * 60 * dt
		kick := math.Sin(s.kickPhase) * kickEnv * 0.8

		s.tonePhase += 2 * math.Pi * s.toneFreq * dt
		tone := math.Sin(s.tonePhase) * 0.25

		hiss := 0.0
		if hissBurst {
			hiss = (s.rng.Float64()*2 - 1) * 0.1
		}

		s.block[i] = kick + tone + hiss
	}
	return s.block
}

// SetTempo adjusts the kick rate; fast tempos push the classifier toward
// INTENSE.
func (s *Synth) SetTempo(bpm float64) {
	if bpm > 0 {
		s.bpm = bpm
	}
}

// Feed pumps synthesized blocks into the engine at real-time cadence until
// the context is cancelled.
func (s *Synth) Feed(ctx context.Context, e *Engine) {
	period := time.Duration(float64(s.blockSize) / s.sampleRate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.ProcessBlock(s.NextBlock(), s.sampleRate)
		}
	}
}
