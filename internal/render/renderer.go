// Package render runs the fixed-tick loop that chases the composed target
// color and pushes frames at the lamp.
package render

import (
	"log/slog"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/vibesync/vibesync/internal/color"
	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/vibe"
)

// Transport is the outbound side of the pipeline. Sends may fail; the
// renderer treats every failure as transient.
type Transport interface {
	SendColor(r, g, b uint8) error
}

// RGB is one rendered 8-bit frame.
type RGB struct {
	R, G, B uint8
}

// Renderer holds the current color state and exponentially chases the target
// every tick. It is the only writer of current state; the audio side only
// ever writes targets.
type Renderer struct {
	cfg       config.Config
	transport Transport
	logger    *slog.Logger

	hue        float64
	saturation float64
	brightness float64

	lastSent    RGB
	sentAny     bool
	lastSendErr time.Time
}

// New creates a renderer starting from black.
func New(cfg config.Config, transport Transport, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cfg:        cfg,
		transport:  transport,
		logger:     logger,
		hue:        0.6,
		saturation: 1,
	}
}

// Tick advances the current state toward the target and emits one frame.
// Transport failures are logged and swallowed; the returned frame is what
// was (or would have been) sent.
func (r *Renderer) Tick(target color.Target, mood vibe.Mood) RGB {
	tuning := mood.Tuning()

	r.brightness = lerp(r.brightness, target.Brightness, tuning.Smoothing)
	r.saturation = lerp(r.saturation, target.Saturation, tuning.Smoothing)
	r.hue = stepHue(r.hue, target.Hue, r.cfg.HueStep)

	c := colorful.Hsv(r.hue*360, r.saturation, r.brightness)
	red, green, blue := c.R, c.G, c.B

	if tuning.RedPriority && target.Red > 0 {
		// Red overlay with ducking: the injected red rides on top while the
		// base color steps back proportionally.
		ducking := 1.0 - target.Red*0.8
		red = red*ducking + target.Red*r.brightness
		green *= ducking
		blue *= ducking
	}

	if target.Shimmer > 0 {
		red += target.Shimmer
		green += target.Shimmer
		blue += target.Shimmer
	}

	if target.Strobe {
		red, green, blue = 1, 1, 1
	}

	red = clamp01(red)
	green = clamp01(green)
	blue = clamp01(blue)

	// No dim ember glow at rest: below the cutoff the lamp goes fully dark.
	if r.brightness < r.cfg.BlackCutoff && !target.Strobe {
		red, green, blue = 0, 0, 0
	}

	frame := RGB{
		R: quantize(red, r.cfg.Gamma),
		G: quantize(green, r.cfg.Gamma),
		B: quantize(blue, r.cfg.Gamma),
	}
	r.send(frame)
	return frame
}

// FadeOut walks brightness down to black over the configured fade period and
// leaves the lamp dark. Used on shutdown before the transport is released.
func (r *Renderer) FadeOut() {
	steps := int(r.cfg.FadeOutPeriod / r.cfg.TickPeriod)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		r.Tick(color.Target{Hue: r.hue, Saturation: r.saturation}, vibe.Intense)
		time.Sleep(r.cfg.TickPeriod)
	}
	r.brightness = 0
	r.send(RGB{})
}

// SendFrame pushes an already-rendered frame through the same dedupe and
// fail-soft path as Tick. Manual overrides go through here so the recorded
// wire state stays truthful when automatic control resumes.
func (r *Renderer) SendFrame(frame RGB) {
	r.send(frame)
}

// Current reports the smoothed color state.
func (r *Renderer) Current() (hue, saturation, brightness float64) {
	return r.hue, r.saturation, r.brightness
}

// LastSent returns the most recent frame handed to the transport.
func (r *Renderer) LastSent() RGB { return r.lastSent }

func (r *Renderer) send(frame RGB) {
	if r.sentAny && frame == r.lastSent {
		return
	}
	if err := r.transport.SendColor(frame.R, frame.G, frame.B); err != nil {
		// Non-fatal: the lamp freezes at its last color until the transport
		// recovers. Throttle the log so a dead link doesn't flood it.
		if time.Since(r.lastSendErr) > time.Second {
			r.logger.Warn("color send failed", slog.String("error", err.Error()))
			r.lastSendErr = time.Now()
		}
		return
	}
	r.lastSent = frame
	r.sentAny = true
}

// stepHue moves current toward target along the shortest circular path by at
// most step times the remaining distance.
func stepHue(current, target, step float64) float64 {
	diff := target - current
	if diff > 0.5 {
		diff -= 1.0
	} else if diff < -0.5 {
		diff += 1.0
	}
	h := math.Mod(current+diff*step, 1)
	if h < 0 {
		h += 1
	}
	return h
}

func lerp(current, target, alpha float64) float64 {
	return current + (target-current)*alpha
}

func quantize(v, gamma float64) uint8 {
	return uint8(math.Round(math.Pow(clamp01(v), gamma) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
