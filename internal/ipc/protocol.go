// Package ipc exposes a local unix-socket endpoint for one-shot color
// flashes, so desktop scripts can ping the lamp while the sync engine runs.
package ipc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vibesync/vibesync/internal/render"
)

// namedColors are the flash colors the ping protocol accepts.
var namedColors = map[string]render.RGB{
	"red":     {R: 255},
	"green":   {G: 255},
	"blue":    {B: 255},
	"yellow":  {R: 255, G: 255},
	"magenta": {R: 255, B: 255},
	"cyan":    {G: 255, B: 255},
	"white":   {R: 255, G: 255, B: 255},
	"orange":  {R: 255, G: 128},
}

// LookupColor resolves a named flash color.
func LookupColor(name string) (render.RGB, bool) {
	c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// ParsePing validates a "PING <color>" line and returns the flash color.
func ParsePing(line string) (render.RGB, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "PING") {
		return render.RGB{}, fmt.Errorf("malformed command %q (want \"PING <color>\")", line)
	}
	c, ok := LookupColor(fields[1])
	if !ok {
		return render.RGB{}, fmt.Errorf("unknown color %q", fields[1])
	}
	return c, nil
}

// DefaultSocketPath places the socket in the user runtime dir when
// available, /tmp otherwise.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "vibesync.sock")
	}
	return "/tmp/vibesync.sock"
}
