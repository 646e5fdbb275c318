package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/vibesync/vibesync/internal/audio"
	"github.com/vibesync/vibesync/internal/color"
	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/engine"
	"github.com/vibesync/vibesync/internal/ipc"
	"github.com/vibesync/vibesync/internal/render"
	"github.com/vibesync/vibesync/internal/transport"
	"github.com/vibesync/vibesync/internal/web"
)

// SyncCmd runs the live audio-to-light pipeline.
type SyncCmd struct {
	Lamp      string  `help:"Lamp BLE address (e.g. C5:50:EB:E3:E5:D0)." env:"VIBESYNC_LAMP"`
	NoLamp    bool    `help:"Render to the terminal instead of a lamp."`
	Device    string  `help:"Audio input device name (substring match)."`
	BlockSize int     `help:"Analysis block size in samples." default:"2048"`
	NoAudio   bool    `help:"Use a synthetic signal instead of capture (for testing)."`
	Tempo     float64 `help:"Synthetic signal tempo in BPM." default:"124"`
	Monitor   string  `help:"Serve the status monitor on this address (e.g. :8080)."`
}

// Run wires the pipeline and blocks until a shutdown signal.
func (c *SyncCmd) Run(g *Globals) error {
	cfg := config.Default()
	cfg.DeviceName = c.Device
	cfg.BlockSize = c.BlockSize
	cfg.LampAddress = c.Lamp
	cfg.SocketPath = g.Socket
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	palettes := color.DefaultPalettes()
	if err := palettes.Validate(); err != nil {
		return fmt.Errorf("invalid palettes: %w", err)
	}

	logger := slog.Default()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out, lamp, err := openTransport(c.Lamp, c.NoLamp, cfg, logger)
	if err != nil {
		return err
	}
	eng := engine.New(cfg, palettes, out, logger)

	if c.NoAudio {
		synth := engine.NewSynth(cfg.BlockSize, 44100)
		synth.SetTempo(c.Tempo)
		go synth.Feed(ctx, eng)
		logger.Info("audio disabled, using synthetic generator")
	} else {
		if err := audio.Initialize(); err != nil {
			return fmt.Errorf("initialize portaudio: %w", err)
		}
		defer audio.Terminate()

		capture, err := audio.NewCapture(audio.Config{
			DeviceName: cfg.DeviceName,
			BlockSize:  cfg.BlockSize,
			SampleRate: cfg.SampleRate,
		}, eng.ProcessBlock)
		if err != nil {
			return fmt.Errorf("audio capture: %w", err)
		}
		defer capture.Close()
		logger.Info("audio capture started",
			slog.String("device", capture.DeviceName()),
			slog.Float64("rate", capture.SampleRate()))
	}

	go func() {
		if err := ipc.NewServer(cfg.SocketPath, eng, logger).Run(ctx); err != nil {
			logger.Warn("ipc server stopped", slog.String("error", err.Error()))
		}
	}()

	if c.Monitor != "" {
		go func() {
			if err := web.NewServer(eng, logger).Run(ctx, c.Monitor); err != nil {
				logger.Warn("status monitor stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go runHotkeys(ctx, cancel, eng, logger)
	if !c.NoLamp {
		go runMeter(ctx, eng)
	}

	err = eng.Run(ctx)
	if lamp != nil {
		_ = lamp.PowerOff()
		_ = lamp.Close()
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nstopping")
		return nil
	}
	return err
}

// openTransport picks the real lamp or the terminal fallback.
func openTransport(address string, noLamp bool, cfg config.Config, logger *slog.Logger) (render.Transport, *transport.Lamp, error) {
	if noLamp || address == "" {
		if address == "" && !noLamp {
			logger.Info("no lamp address given, rendering to terminal")
		}
		return transport.NewConsole(os.Stdout), nil, nil
	}
	lamp, err := transport.Dial(address, cfg.ConnectTimeout, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect lamp: %w", err)
	}
	return lamp, lamp, nil
}

// runHotkeys handles runtime keys: q quits, p skips the palette, m pins the
// mood. Keyboard capture failing (no tty) just disables them.
func runHotkeys(ctx context.Context, cancel context.CancelFunc, eng *engine.Engine, logger *slog.Logger) {
	if err := keyboard.Open(); err != nil {
		logger.Debug("hotkeys disabled", slog.String("error", err.Error()))
		return
	}
	defer keyboard.Close()

	go func() {
		<-ctx.Done()
		_ = keyboard.Close()
	}()

	for {
		char, key, err := keyboard.GetKey()
		if err != nil || ctx.Err() != nil {
			return
		}
		switch {
		case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC || char == 'q':
			cancel()
			return
		case char == 'p':
			eng.SkipPalette()
			logger.Info("palette skipped")
		case char == 'm':
			logger.Info("mood pin", slog.String("mood", eng.CyclePinnedMood()))
		}
	}
}

// runMeter paints a one-line status meter while a real lamp is attached (the
// terminal transport already owns the line otherwise).
func runMeter(ctx context.Context, eng *engine.Engine) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Print("\r\x1b[2K")
			return
		case <-ticker.C:
			st := eng.Status()
			width := 40
			if w, _, err := term.GetSize(fd); err == nil && w > 40 {
				width = w - 40
				if width > 60 {
					width = 60
				}
			}
			bar := strings.Repeat("█", int(st.Brightness*float64(width)))
			fmt.Printf("\r\x1b[2K%-7s dens:%4.1f drive:%4.1f |%-*s|", st.Mood, st.OnsetDensity, st.Drive, width, bar)
		}
	}
}
