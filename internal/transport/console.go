package transport

import (
	"fmt"
	"io"
)

// Console renders frames as a truecolor swatch on a terminal. It stands in
// for the lamp when no hardware is reachable or --no-lamp is set.
type Console struct {
	out io.Writer
}

// NewConsole writes swatches to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// SendColor paints the swatch. Write errors propagate so the renderer's
// fail-soft path gets exercised the same way as with BLE.
func (c *Console) SendColor(r, g, b uint8) error {
	_, err := fmt.Fprintf(c.out, "\r\x1b[48;2;%d;%d;%dm      \x1b[0m #%02X%02X%02X ", r, g, b, r, g, b)
	return err
}
