package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vibesync/vibesync/internal/audio"
	"github.com/vibesync/vibesync/internal/config"
	"github.com/vibesync/vibesync/internal/ipc"
	"github.com/vibesync/vibesync/internal/screen"
	"github.com/vibesync/vibesync/internal/transport"
	"github.com/vibesync/vibesync/internal/ui"
)

// DevicesCmd lists PortAudio input devices.
type DevicesCmd struct{}

func (DevicesCmd) Run(*Globals) error {
	if err := audio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer audio.Terminate()

	devices, err := audio.ListDevices()
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}

	fmt.Println("Audio input devices:")
	for _, dev := range devices {
		if dev.MaxInput == 0 {
			continue
		}
		marker := ""
		if dev.IsDefaultInput {
			marker = " (default)"
		}
		fmt.Printf("- %s [%s]%s\n    inputs:%d sample:%.0f Hz\n",
			dev.Name, dev.HostAPI, marker, dev.MaxInput, dev.DefaultSampleHz)
	}
	return nil
}

// PingCmd asks a running sync engine for a one-shot flash.
type PingCmd struct {
	Color string `arg:"" optional:"" default:"magenta" help:"Flash color (red, green, blue, yellow, magenta, cyan, white, orange)."`
}

func (c *PingCmd) Run(g *Globals) error {
	if err := ipc.Ping(g.Socket, c.Color); err != nil {
		return err
	}
	fmt.Printf("flashed %s\n", c.Color)
	return nil
}

// ControlCmd runs the manual HSV controller TUI.
type ControlCmd struct {
	Lamp   string `help:"Lamp BLE address." env:"VIBESYNC_LAMP"`
	NoLamp bool   `help:"Preview in the terminal without a lamp."`
}

func (c *ControlCmd) Run(*Globals) error {
	cfg := config.Default()
	cfg.LampAddress = c.Lamp

	// The TUI preview swatch already shows the color, so with --no-lamp the
	// console transport writes to a discarded stream rather than fighting
	// Bubble Tea for the terminal.
	out, lamp, err := openTransport(c.Lamp, c.NoLamp, cfg, slog.Default())
	if err != nil {
		return err
	}
	if lamp == nil {
		out = transport.NewConsole(io.Discard)
	}

	program := tea.NewProgram(ui.New(out), tea.WithAltScreen())
	_, err = program.Run()
	if lamp != nil {
		_ = lamp.Close()
	}
	return err
}

// ScreenCmd runs the ambilight mode.
type ScreenCmd struct {
	Lamp   string `help:"Lamp BLE address." env:"VIBESYNC_LAMP"`
	NoLamp bool   `help:"Render to the terminal instead of a lamp."`
}

func (c *ScreenCmd) Run(*Globals) error {
	cfg := config.Default()
	logger := slog.Default()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out, lamp, err := openTransport(c.Lamp, c.NoLamp, cfg, logger)
	if err != nil {
		return err
	}

	err = screen.NewSyncer(out, logger).Run(ctx)
	if lamp != nil {
		_ = lamp.PowerOff()
		_ = lamp.Close()
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}
