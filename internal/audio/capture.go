package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// BlockFunc receives one mono block per capture callback. It runs on the
// PortAudio callback goroutine, so it must compute and return — no blocking
// I/O.
type BlockFunc func(samples []float64, sampleRate float64)

// Config controls how a Capture is opened.
type Config struct {
	DeviceName string
	BlockSize  int
	SampleRate float64 // 0 means use the device default
}

const defaultBlockSize = 2048

// Capture wraps a PortAudio input stream and pushes fixed-size mono blocks
// into the pipeline.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	device     *portaudio.DeviceInfo
	onBlock    BlockFunc
	mono       []float64
}

// NewCapture opens and starts an input stream. Blocks flow into onBlock
// until Close.
func NewCapture(cfg Config, onBlock BlockFunc) (*Capture, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if onBlock == nil {
		return nil, fmt.Errorf("capture requires a block callback")
	}

	device, err := findDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = device.DefaultSampleRate
	}

	capture := &Capture{
		sampleRate: sampleRate,
		device:     device,
		onBlock:    onBlock,
		mono:       make([]float64, cfg.BlockSize),
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: cfg.BlockSize,
	}, capture.process)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	capture.stream = stream

	if err := capture.stream.Start(); err != nil {
		_ = capture.stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return capture, nil
}

// Close stops and closes the underlying stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil && !isInvalidStreamState(err) {
		return err
	}
	return c.stream.Close()
}

// SampleRate returns the negotiated stream sample rate.
func (c *Capture) SampleRate() float64 { return c.sampleRate }

// DeviceName returns the name of the device the stream was opened on.
func (c *Capture) DeviceName() string {
	if c.device == nil {
		return ""
	}
	return c.device.Name
}

func (c *Capture) process(in []float32) {
	if len(c.mono) != len(in) {
		c.mono = make([]float64, len(in))
	}
	for i, s := range in {
		c.mono[i] = float64(s)
	}
	c.onBlock(c.mono, c.sampleRate)
}

// isInvalidStreamState matches the error PortAudio raises when stopping an
// already stopped stream.
func isInvalidStreamState(err error) bool {
	return err != nil && strings.Contains(err.Error(), "PaErrorCode -9986")
}
