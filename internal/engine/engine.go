// Package engine wires capture, analysis, classification, composition and
// rendering into the running pipeline.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vibesync/vibesync/internal/color"
	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/dsp"
	"github.com/vibesync/vibesync/internal/render"
	"github.com/vibesync/vibesync/internal/vibe"
)

// Status is a point-in-time snapshot of the pipeline for the web monitor and
// the console meter.
type Status struct {
	Mood         string  `json:"mood"`
	OnsetDensity float64 `json:"onsetDensity"`
	Drive        float64 `json:"drive"`
	Bass         float64 `json:"bass"`
	Mid          float64 `json:"mid"`
	High         float64 `json:"high"`
	TargetHue    float64 `json:"targetHue"`
	TargetBright float64 `json:"targetBrightness"`
	Hue          float64 `json:"hue"`
	Saturation   float64 `json:"saturation"`
	Brightness   float64 `json:"brightness"`
	PaletteIndex int     `json:"paletteIndex"`
	R            uint8   `json:"r"`
	G            uint8   `json:"g"`
	B            uint8   `json:"b"`
	Override     bool    `json:"override"`
}

// Engine owns the shared state between the audio callback (writer) and the
// render ticker (reader). The callback computes and stores; the ticker reads
// and performs the outbound I/O. Neither path ever blocks on the other's
// I/O.
type Engine struct {
	cfg    config.Config
	logger *slog.Logger

	analyzer   *dsp.Analyzer
	tracker    *dsp.Tracker
	classifier *vibe.Classifier
	composer   *color.Composer
	renderer   *render.Renderer

	mu        sync.Mutex
	target    color.Target
	mood      vibe.Mood
	pinned    *vibe.Mood
	energy    dsp.BandEnergy
	envelopes dsp.Envelopes
	override  *overrideState

	lastFrame render.RGB
}

type overrideState struct {
	frame render.RGB
	until time.Time
}

// New assembles the pipeline. The palette set and config must already be
// validated; invalid ones are startup-fatal upstream.
func New(cfg config.Config, palettes color.PaletteSet, transport render.Transport, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	tracker := dsp.NewTracker(cfg)
	return &Engine{
		cfg:        cfg,
		logger:     logger,
		analyzer:   dsp.NewAnalyzer(cfg),
		tracker:    tracker,
		classifier: vibe.NewClassifier(cfg, logger),
		composer:   color.NewComposer(cfg, palettes, tracker),
		renderer:   render.New(cfg, transport, logger),
	}
}

// ProcessBlock is the audio entry point. It runs on the capture callback
// goroutine: pure computation plus a short critical section, never I/O. It
// tolerates irregular block cadence and malformed blocks.
func (e *Engine) ProcessBlock(samples []float64, sampleRate float64) {
	now := time.Now()

	energy := e.analyzer.Analyze(samples, sampleRate)
	envelopes := e.tracker.Update(energy)

	e.mu.Lock()
	mood := e.classifier.Observe(now, envelopes.Drive)
	if e.pinned != nil {
		mood = *e.pinned
	}
	target := e.composer.Compose(now, energy, envelopes, mood)
	// Latch the strobe so a tick slower than the block cadence can't miss it.
	target.Strobe = target.Strobe || e.target.Strobe
	e.target = target
	e.mood = mood
	e.energy = energy
	e.envelopes = envelopes
	e.mu.Unlock()
}

// Run drives the render ticker until the context is cancelled, then fades
// the lamp to black. Transport errors never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickPeriod)
	defer ticker.Stop()

	e.logger.Info("render loop started",
		slog.Duration("tick", e.cfg.TickPeriod))

	for {
		select {
		case <-ctx.Done():
			e.renderer.FadeOut()
			return ctx.Err()
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	target := e.target
	mood := e.mood
	e.target.Strobe = false // consumed
	ov := e.override
	if ov != nil && time.Now().After(ov.until) {
		e.override = nil
		ov = nil
	}
	e.mu.Unlock()

	if ov != nil {
		// Manual override fully suspends automatic output; no blending. The
		// frame goes through the renderer's send path so the dedupe state
		// reflects what is actually on the wire when control resumes.
		e.renderer.SendFrame(ov.frame)
		return
	}

	frame := e.renderer.Tick(target, mood)

	e.mu.Lock()
	e.lastFrame = frame
	e.mu.Unlock()
}

// Override suspends automatic rendering and holds a fixed color for the
// given duration. A second call replaces the first.
func (e *Engine) Override(frame render.RGB, d time.Duration) {
	e.mu.Lock()
	e.override = &overrideState{frame: frame, until: time.Now().Add(d)}
	e.mu.Unlock()
	e.logger.Info("manual override",
		slog.Int("r", int(frame.R)), slog.Int("g", int(frame.G)), slog.Int("b", int(frame.B)),
		slog.Duration("for", d))
}

// SkipPalette advances the palette rotation immediately. Wired to a hotkey.
func (e *Engine) SkipPalette() {
	e.mu.Lock()
	e.composer.SkipPalette(time.Now())
	e.mu.Unlock()
}

// CyclePinnedMood pins the mood to the next value in CALM→ACTIVE→INTENSE,
// then back to automatic classification. Returns a label for display.
func (e *Engine) CyclePinnedMood() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.pinned == nil:
		m := vibe.Calm
		e.pinned = &m
	case *e.pinned == vibe.Calm:
		m := vibe.Active
		e.pinned = &m
	case *e.pinned == vibe.Active:
		m := vibe.Intense
		e.pinned = &m
	default:
		e.pinned = nil
		return "auto"
	}
	return e.pinned.String()
}

// Status snapshots the pipeline state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	hue, sat, bri := e.renderer.Current()
	return Status{
		Mood:         e.mood.String(),
		OnsetDensity: e.classifier.Density(time.Now()),
		Drive:        e.envelopes.Drive,
		Bass:         e.envelopes.Bass,
		Mid:          e.envelopes.Mid,
		High:         e.envelopes.High,
		TargetHue:    e.target.Hue,
		TargetBright: e.target.Brightness,
		Hue:          hue,
		Saturation:   sat,
		Brightness:   bri,
		PaletteIndex: e.composer.PaletteIndex(),
		R:            e.lastFrame.R,
		G:            e.lastFrame.G,
		B:            e.lastFrame.B,
		Override:     e.override != nil,
	}
}
