// Package color turns spectral features and the current mood into target
// lamp colors.
package color

import (
	"fmt"

	"github.com/vibesync/vibesync/internal/vibe"
)

// Palette is an ordered triple of reference hues in [0,1), indexed by
// intensity tercile: low, mid, high.
type Palette [3]float64

// Hue picks the reference hue for a normalized intensity position.
func (p Palette) Hue(position float64) float64 {
	switch {
	case position < 1.0/3.0:
		return p[0]
	case position < 2.0/3.0:
		return p[1]
	default:
		return p[2]
	}
}

// PaletteSet maps each mood to its rotation of palettes.
type PaletteSet map[vibe.Mood][]Palette

// DefaultPalettes returns the stock palette rotations: cool, loose hues for
// CALM, saturated contrasting sets for ACTIVE, and red-heavy pairs for
// INTENSE.
func DefaultPalettes() PaletteSet {
	return PaletteSet{
		vibe.Calm: {
			{0.50, 0.55, 0.60}, // ocean
			{0.00, 0.05, 0.10}, // embers
			{0.25, 0.30, 0.35}, // forest
		},
		vibe.Active: {
			{0.80, 0.90, 0.00}, // neon
			{0.40, 0.50, 0.60}, // cyber
			{0.10, 0.50, 0.90}, // tropical
		},
		vibe.Intense: {
			{0.00, 0.02, 0.98}, // red shift
			{0.00, 0.00, 0.00}, // pure red
		},
	}
}

// Validate rejects sets that would leave any mood without a palette. This is
// a startup-only check; the composer assumes a valid set afterwards.
func (s PaletteSet) Validate() error {
	for _, mood := range []vibe.Mood{vibe.Calm, vibe.Active, vibe.Intense} {
		palettes, ok := s[mood]
		if !ok || len(palettes) == 0 {
			return fmt.Errorf("no palettes defined for mood %s", mood)
		}
		for i, p := range palettes {
			for _, h := range p {
				if h < 0 || h >= 1 {
					return fmt.Errorf("%s palette %d: hue %f outside [0,1)", mood, i, h)
				}
			}
		}
	}
	return nil
}

// pick selects the active palette for a mood given the rotation index.
func (s PaletteSet) pick(mood vibe.Mood, index int) Palette {
	palettes := s[mood]
	return palettes[index%len(palettes)]
}
