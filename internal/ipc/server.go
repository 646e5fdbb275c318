package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/vibesync/vibesync/internal/render"
)

// FlashDuration is how long a ping holds the lamp before automatic control
// resumes.
const FlashDuration = 1500 * time.Millisecond

// Flasher is the slice of the engine the server needs.
type Flasher interface {
	Override(frame render.RGB, d time.Duration)
}

// Server accepts PING commands on a unix socket and turns them into manual
// overrides.
type Server struct {
	path    string
	flasher Flasher
	logger  *slog.Logger
}

// NewServer builds a server bound to the given socket path (empty means the
// default location).
func NewServer(path string, flasher Flasher, logger *slog.Logger) *Server {
	if path == "" {
		path = DefaultSocketPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{path: path, flasher: flasher, logger: logger}
}

// Run listens until the context is cancelled, then removes the socket.
func (s *Server) Run(ctx context.Context) error {
	// A stale socket from a crashed run would block the bind.
	_ = os.Remove(s.path)

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	s.logger.Info("ping socket ready", slog.String("path", s.path))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("ipc accept failed", slog.String("error", err.Error()))
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	frame, err := ParsePing(line)
	if err != nil {
		s.logger.Warn("bad ping", slog.String("error", err.Error()))
		fmt.Fprintf(conn, "ERR %v\n", err)
		return
	}
	s.flasher.Override(frame, FlashDuration)
	fmt.Fprintln(conn, "OK")
}
