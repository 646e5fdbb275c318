package ipc

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Ping sends a one-shot flash command to a running sync engine and waits for
// its acknowledgement.
func Ping(path, colorName string) error {
	if path == "" {
		path = DefaultSocketPath()
	}
	if _, ok := LookupColor(colorName); !ok {
		return fmt.Errorf("unknown color %q", colorName)
	}

	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return fmt.Errorf("sync engine not reachable at %s: %w", path, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := fmt.Fprintf(conn, "PING %s\n", colorName); err != nil {
		return fmt.Errorf("send ping: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if !strings.HasPrefix(reply, "OK") {
		return fmt.Errorf("engine rejected ping: %s", strings.TrimSpace(reply))
	}
	return nil
}
