// Package vibe classifies the current music energy into a discrete mood by
// watching bass-onset density through a hysteresis state machine.
package vibe

import (
	"log/slog"
	"time"

	"github.com/vibesync/vibesync/internal/config"
)

// Mood is the discrete classification the composer and renderer key off.
type Mood int

const (
	Calm Mood = iota
	Active
	Intense
)

func (m Mood) String() string {
	switch m {
	case Intense:
		return "INTENSE"
	case Active:
		return "ACTIVE"
	default:
		return "CALM"
	}
}

// Params are the mood-specific rendering parameters. Keeping them on the
// mood rather than scattered through conditionals means a transition swaps
// all of them at once.
type Params struct {
	Smoothing   float64 // exponential smoothing alpha for brightness/saturation
	RedPriority bool    // bass-driven red overlay enabled
	Strobe      bool    // climax strobe enabled
	Pastel      bool    // saturation ducks on loud passages
}

// Tuning returns the rendering parameters for the mood.
func (m Mood) Tuning() Params {
	switch m {
	case Intense:
		return Params{Smoothing: 0.9, RedPriority: true, Strobe: true}
	case Active:
		return Params{Smoothing: 0.75, Pastel: true}
	default:
		return Params{Smoothing: 0.5}
	}
}

// Classifier is the hysteresis state machine. Onsets are recorded every
// block; the mood is re-evaluated at most once per cooldown so adversarial
// density swings can't make the light schizophrenic.
type Classifier struct {
	trigger        float64
	debounce       time.Duration
	window         time.Duration
	cooldown       time.Duration
	activeDensity  float64
	intenseDensity float64

	onsets     []time.Time
	mood       Mood
	lastSwitch time.Time
	logger     *slog.Logger
}

// NewClassifier starts in CALM with the cooldown already expired, so the
// first classification can fire as soon as the window has data.
func NewClassifier(cfg config.Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		trigger:        cfg.OnsetTrigger,
		debounce:       cfg.OnsetDebounce,
		window:         cfg.OnsetWindow,
		cooldown:       cfg.SwitchCooldown,
		activeDensity:  cfg.ActiveDensity,
		intenseDensity: cfg.IntenseDensity,
		onsets:         make([]time.Time, 0, 64),
		lastSwitch:     time.Now().Add(-cfg.SwitchCooldown),
		logger:         logger,
	}
}

// Observe records one block's drive ratio at the given instant and returns
// the (possibly updated) mood. It touches no color state; a transition is
// only logged.
func (c *Classifier) Observe(now time.Time, drive float64) Mood {
	if drive > c.trigger {
		c.prune(now)
		if n := len(c.onsets); n == 0 || now.Sub(c.onsets[n-1]) > c.debounce {
			c.onsets = append(c.onsets, now)
		}
	}

	if now.Sub(c.lastSwitch) < c.cooldown {
		return c.mood
	}

	density := c.Density(now)

	next := Calm
	switch {
	case density > c.intenseDensity:
		next = Intense
	case density > c.activeDensity:
		next = Active
	}

	// Re-affirming the current mood does not reset the cooldown; only an
	// actual change does. That is the hysteresis.
	if next != c.mood {
		c.logger.Info("vibe shift",
			slog.String("from", c.mood.String()),
			slog.String("to", next.String()),
			slog.Float64("density", density))
		c.mood = next
		c.lastSwitch = now
	}
	return c.mood
}

// Mood returns the current classification.
func (c *Classifier) Mood() Mood { return c.mood }

// Density reports onsets per second over the trailing window ending at now.
// It prunes first so reads between classifications never include expired
// onsets.
func (c *Classifier) Density(now time.Time) float64 {
	c.prune(now)
	return float64(len(c.onsets)) / c.window.Seconds()
}

// OnsetCount reports the current log length, mostly for the status monitor.
func (c *Classifier) OnsetCount() int { return len(c.onsets) }

func (c *Classifier) prune(now time.Time) {
	cutoff := now.Add(-c.window)
	keep := 0
	for keep < len(c.onsets) && c.onsets[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		c.onsets = append(c.onsets[:0], c.onsets[keep:]...)
	}
}
