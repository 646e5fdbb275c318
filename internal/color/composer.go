package color

import (
	"math"
	"time"

	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/dsp"
	"github.com/vibesync/vibesync/internal/vibe"
)

// Target is the color state the renderer chases, plus the per-block accent
// scalars that ride along with it.
type Target struct {
	Hue        float64 // [0,1)
	Saturation float64 // [0,1]
	Brightness float64 // [0,1], already peak-held

	// Red is the INTENSE-mode red injection amount; the renderer ducks the
	// other channels proportionally.
	Red float64

	// Shimmer is a white additive overlay driven by high-band detail.
	Shimmer float64

	// Strobe requests a single full-white frame. It is armed for the block
	// that crossed the trigger, latched by the engine, and consumed exactly
	// once by the renderer.
	Strobe bool
}

// PeakHold is the slice of the envelope tracker the composer needs: feed a
// raw brightness target through, get the peak-held one back.
type PeakHold interface {
	HoldPeak(target float64) float64
}

// Composer maps band energies, centroid and mood into a target color. It
// performs no I/O and is deterministic given its inputs and rolling state.
type Composer struct {
	cfg      config.Config
	palettes PaletteSet
	hold     PeakHold

	hueRing    *dsp.HueRing
	target     Target
	paletteIdx int
	rotatedAt  time.Time
	strobedAt  time.Time
}

// NewComposer wires a composer against a validated palette set and the
// tracker's peak hold.
func NewComposer(cfg config.Config, palettes PaletteSet, hold PeakHold) *Composer {
	return &Composer{
		cfg:      cfg,
		palettes: palettes,
		hold:     hold,
		hueRing:  dsp.NewHueRing(cfg.HueWindow),
		target: Target{
			Hue:        0.6, // start in the blues
			Saturation: 1,
		},
		rotatedAt: time.Now(),
	}
}

// Compose folds one analyzed block into the target color.
func (c *Composer) Compose(now time.Time, e dsp.BandEnergy, env dsp.Envelopes, mood vibe.Mood) Target {
	tuning := mood.Tuning()
	c.target.Strobe = false

	var raw float64
	if env.Drive < c.cfg.DriveFloor {
		raw = c.cfg.IdleBrightness
		c.target.Red = 0
		c.target.Saturation = 1
	} else {
		norm := clamp((env.Drive-c.cfg.DriveFloor)/2.0, 0, 1)
		raw = c.cfg.IdleBrightness +
			math.Pow(norm, c.cfg.BrightnessCurve)*(1-c.cfg.IdleBrightness)

		if tuning.RedPriority && raw > c.cfg.RedThreshold {
			c.target.Red = (raw - c.cfg.RedThreshold) * 2.0
		} else {
			c.target.Red = 0
		}

		if tuning.Pastel {
			// Loud passages wash the color out, never past the floor.
			c.target.Saturation = 1 - clamp(norm*0.7, 0, 0.7)
		} else {
			c.target.Saturation = 1
		}
	}

	c.target.Brightness = c.hold.HoldPeak(raw)
	c.target.Shimmer = env.High * c.cfg.ShimmerAmount

	if c.target.Brightness > c.cfg.IdleBrightness && e.Centroid > 0 {
		span := c.cfg.MidBand.High - c.cfg.MidBand.Low
		position := clamp((e.Centroid-c.cfg.MidBand.Low)/span, 0, 1)
		c.hueRing.Push(c.palettes.pick(mood, c.paletteIdx).Hue(position))
		c.target.Hue = c.hueRing.Mean(c.target.Hue)
	}

	// Palette rotation only commits in the dark so the hue jump is invisible.
	if now.Sub(c.rotatedAt) > c.cfg.PaletteHold && c.target.Brightness < c.cfg.DarkThreshold {
		c.paletteIdx++
		c.rotatedAt = now
	}

	if tuning.Strobe && c.target.Brightness > c.cfg.StrobeTrigger &&
		now.Sub(c.strobedAt) > c.cfg.StrobeInterval {
		c.target.Strobe = true
		c.strobedAt = now
	}

	return c.target
}

// PaletteIndex reports the current rotation index.
func (c *Composer) PaletteIndex() int { return c.paletteIdx }

// SkipPalette forces the rotation forward, bypassing the dark gate. Wired to
// a runtime hotkey.
func (c *Composer) SkipPalette(now time.Time) {
	c.paletteIdx++
	c.rotatedAt = now
}

// Target returns the last composed target.
func (c *Composer) Target() Target { return c.target }

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
