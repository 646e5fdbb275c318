// Package web serves a small live status endpoint so the pipeline can be
// watched from a browser while the lamp runs.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibesync/vibesync/internal/engine"
)

const statusInterval = 250 * time.Millisecond

// StatusSource is the slice of the engine the monitor reads.
type StatusSource interface {
	Status() engine.Status
}

// Server exposes the pipeline state over plain JSON and a websocket stream.
type Server struct {
	source   StatusSource
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer builds a monitor over the given status source.
func NewServer(source StatusSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Local monitoring tool; any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
		// Request contexts derive from the run context so streaming handlers
		// stop on shutdown; Shutdown alone never closes hijacked conns.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("status monitor listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status monitor: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.source.Status())
}

// handleWebSocket streams status snapshots until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.source.Status()); err != nil {
				return
			}
		}
	}
}
