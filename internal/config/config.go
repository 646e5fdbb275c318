package config

import (
	"fmt"
	"time"
)

// Band is an inclusive frequency range in Hz used for spectral energy masking.
type Band struct {
	Low  float64
	High float64
}

// Config holds every tunable of the audio-to-light pipeline. It is built once
// at startup, validated, and passed by value into each component; nothing
// mutates it afterwards.
type Config struct {
	// Audio capture.
	DeviceName string
	BlockSize  int
	SampleRate float64 // 0 means use the device default

	// Spectral analysis bands.
	BassBand Band
	MidBand  Band
	HighBand Band

	// Envelope tracking.
	AvgAlpha      float64 // running-average coefficient for bass energy
	AvgFloor      float64 // running average never drops below this
	EnvDecay      float64 // per-block linear decay of band envelopes
	PeakDecay     float64 // per-block linear decay of the brightness peak hold
	HighDecayMult float64 // high band decays this much faster than bass/mid

	// Vibe classification.
	OnsetTrigger   float64       // drive ratio that counts as an onset
	OnsetDebounce  time.Duration // minimum spacing between recorded onsets
	OnsetWindow    time.Duration // trailing window the onset log is pruned to
	SwitchCooldown time.Duration // minimum time between mood changes
	ActiveDensity  float64       // onsets/sec above which the mood is ACTIVE
	IntenseDensity float64       // onsets/sec above which the mood is INTENSE

	// Color composition.
	DriveFloor      float64       // drive ratio below which brightness idles
	IdleBrightness  float64       // brightness target at rest
	BrightnessCurve float64       // power curve applied to normalized drive
	HueWindow       int           // ring buffer length for hue averaging
	PaletteHold     time.Duration // time between palette rotations
	DarkThreshold   float64       // rotation only commits below this brightness
	RedThreshold    float64       // INTENSE red injection starts here
	StrobeInterval  time.Duration // minimum spacing between strobe flashes
	StrobeTrigger   float64       // brightness target that arms the strobe
	ShimmerAmount   float64       // white overlay per unit of high-band envelope

	// Rendering.
	TickPeriod    time.Duration
	HueStep       float64 // fraction of the circular hue distance per tick
	BlackCutoff   float64 // force full black below this brightness
	Gamma         float64
	FadeOutPeriod time.Duration // shutdown fade-to-black duration

	// Transport.
	LampAddress    string
	ConnectTimeout time.Duration

	// IPC.
	SocketPath string
}

// Default returns the tuning that matches the reference lamp setup.
func Default() Config {
	return Config{
		BlockSize: 2048,

		BassBand: Band{Low: 40, High: 150},
		MidBand:  Band{Low: 200, High: 3000},
		HighBand: Band{Low: 2500, High: 6000},

		AvgAlpha:      0.99,
		AvgFloor:      0.1,
		EnvDecay:      0.15,
		PeakDecay:     0.05,
		HighDecayMult: 2.0,

		OnsetTrigger:   1.5,
		OnsetDebounce:  100 * time.Millisecond,
		OnsetWindow:    5 * time.Second,
		SwitchCooldown: 10 * time.Second,
		ActiveDensity:  1.0,
		IntenseDensity: 4.0,

		DriveFloor:      0.5,
		IdleBrightness:  0.1,
		BrightnessCurve: 2.0,
		HueWindow:       20,
		PaletteHold:     60 * time.Second,
		DarkThreshold:   0.2,
		RedThreshold:    0.4,
		StrobeInterval:  2 * time.Second,
		StrobeTrigger:   0.95,
		ShimmerAmount:   0.4,

		TickPeriod:    50 * time.Millisecond,
		HueStep:       0.02,
		BlackCutoff:   0.02,
		Gamma:         2.2,
		FadeOutPeriod: 600 * time.Millisecond,

		ConnectTimeout: 5 * time.Second,
	}
}

// Validate rejects configurations the pipeline cannot run with. These are the
// only fatal errors in the system; everything past startup fails soft.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive (got %d)", c.BlockSize)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("sample rate must be non-negative (got %.0f)", c.SampleRate)
	}
	for _, b := range []struct {
		name string
		band Band
	}{
		{"bass", c.BassBand},
		{"mid", c.MidBand},
		{"high", c.HighBand},
	} {
		if b.band.Low < 0 || b.band.High <= b.band.Low {
			return fmt.Errorf("%s band range invalid: %.0f-%.0f Hz", b.name, b.band.Low, b.band.High)
		}
	}
	if c.AvgAlpha <= 0 || c.AvgAlpha >= 1 {
		return fmt.Errorf("running-average alpha must be in (0,1), got %f", c.AvgAlpha)
	}
	if c.AvgFloor <= 0 {
		return fmt.Errorf("running-average floor must be positive, got %f", c.AvgFloor)
	}
	if c.EnvDecay <= 0 || c.PeakDecay <= 0 {
		return fmt.Errorf("decay rates must be positive (env=%f peak=%f)", c.EnvDecay, c.PeakDecay)
	}
	if c.OnsetTrigger <= 1 {
		return fmt.Errorf("onset trigger must exceed 1.0, got %f", c.OnsetTrigger)
	}
	if c.OnsetDebounce <= 0 || c.OnsetWindow <= 0 || c.SwitchCooldown <= 0 {
		return fmt.Errorf("onset timing values must be positive")
	}
	if c.IntenseDensity <= c.ActiveDensity {
		return fmt.Errorf("intense density (%f) must exceed active density (%f)",
			c.IntenseDensity, c.ActiveDensity)
	}
	if c.HueWindow <= 0 {
		return fmt.Errorf("hue window must be positive, got %d", c.HueWindow)
	}
	if c.IdleBrightness < 0 || c.IdleBrightness > 1 {
		return fmt.Errorf("idle brightness must be in [0,1], got %f", c.IdleBrightness)
	}
	if c.HueStep <= 0 || c.HueStep > 1 {
		return fmt.Errorf("hue step must be in (0,1], got %f", c.HueStep)
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %v", c.TickPeriod)
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive, got %f", c.Gamma)
	}
	return nil
}
