package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var version = "0.2.0"

// Globals are flags shared across subcommands.
type Globals struct {
	Debug  bool   `help:"Enable verbose logging."`
	Socket string `help:"IPC socket path (default: runtime dir)."`
}

// CLI is the vibesync command tree.
type CLI struct {
	Globals

	Sync    SyncCmd    `cmd:"" default:"withargs" help:"Drive the lamp from live audio."`
	Screen  ScreenCmd  `cmd:"" help:"Drive the lamp from the average screen color."`
	Control ControlCmd `cmd:"" help:"Manual HSV controller TUI."`
	Ping    PingCmd    `cmd:"" help:"Flash a color through a running sync engine."`
	Devices DevicesCmd `cmd:"" help:"List audio input devices."`
	Version VersionCmd `cmd:"" help:"Print the version."`
}

type VersionCmd struct{}

func (VersionCmd) Run(*Globals) error {
	fmt.Println("vibesync", version)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("vibesync"),
		kong.Description("Audio-reactive BLE mood lamp controller."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := ctx.Run(&cli.Globals); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
