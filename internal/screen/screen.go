// Package screen implements the ambilight mode: the lamp follows the average
// color of the desktop, captured with grim.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // grim emits JPEG with -t jpeg
	"log/slog"
	"os/exec"
	"time"

	"github.com/vibesync/vibesync/internal/dsp"
	"github.com/vibesync/vibesync/internal/render"
)

const (
	capturePeriod = 100 * time.Millisecond
	darkCutoff    = 30.0 // summed 8-bit channels below this go full black
	pixelStride   = 16   // sample every Nth pixel; a screen average needs no more
)

// Syncer captures the screen at ~10 Hz, smooths the average color and sends
// it to the lamp.
type Syncer struct {
	transport render.Transport
	logger    *slog.Logger
	red       *dsp.Smoother
	green     *dsp.Smoother
	blue      *dsp.Smoother
}

// NewSyncer builds a screen syncer over the given transport.
func NewSyncer(transport render.Transport, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		transport: transport,
		logger:    logger,
		red:       dsp.NewSmoother(0.7),
		green:     dsp.NewSmoother(0.7),
		blue:      dsp.NewSmoother(0.7),
	}
}

// Run loops until cancellation. Capture failures are logged and skipped;
// transport failures are non-fatal exactly as in the audio renderer.
func (s *Syncer) Run(ctx context.Context) error {
	if _, err := exec.LookPath("grim"); err != nil {
		return fmt.Errorf("screen sync needs grim on PATH: %w", err)
	}

	for {
		start := time.Now()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r, g, b, err := s.captureAverage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("screen capture failed", slog.String("error", err.Error()))
		} else {
			sr := s.red.Step(r)
			sg := s.green.Step(g)
			sb := s.blue.Step(b)
			if sr+sg+sb < darkCutoff {
				sr, sg, sb = 0, 0, 0
			}
			if err := s.transport.SendColor(uint8(sr), uint8(sg), uint8(sb)); err != nil {
				s.logger.Debug("screen color send failed", slog.String("error", err.Error()))
			}
		}

		// Hold ~10 FPS regardless of how long the capture took.
		sleep := capturePeriod - time.Since(start)
		if sleep < 10*time.Millisecond {
			sleep = 10 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// captureAverage shells out to grim and averages the decoded frame. Low JPEG
// quality keeps the pipe cheap; an average doesn't care.
func (s *Syncer) captureAverage(ctx context.Context) (r, g, b float64, err error) {
	cmd := exec.CommandContext(ctx, "grim", "-t", "jpeg", "-q", "20", "-")
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("grim: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("decode capture: %w", err)
	}

	bounds := img.Bounds()
	var sumR, sumG, sumB, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += pixelStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += pixelStride {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			sumR += uint64(pr >> 8)
			sumG += uint64(pg >> 8)
			sumB += uint64(pb >> 8)
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0, fmt.Errorf("empty capture")
	}
	return float64(sumR) / float64(n), float64(sumG) / float64(n), float64(sumB) / float64(n), nil
}
