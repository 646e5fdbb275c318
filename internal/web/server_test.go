package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibesync/vibesync/internal/engine"
)

type staticSource struct {
	status engine.Status
}

func (s staticSource) Status() engine.Status { return s.status }

func testStatus() engine.Status {
	return engine.Status{
		Mood:         "ACTIVE",
		OnsetDensity: 2.4,
		Drive:        3.1,
		Brightness:   0.8,
		R:            120,
		G:            30,
		B:            200,
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := NewServer(staticSource{testStatus()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()

	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var got engine.Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got != testStatus() {
		t.Fatalf("status = %+v, want %+v", got, testStatus())
	}
}

func TestWebSocketStreamsStatus(t *testing.T) {
	s := NewServer(staticSource{testStatus()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got engine.Status
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read status frame: %v", err)
	}
	if got.Mood != "ACTIVE" || got.R != 120 {
		t.Fatalf("streamed status = %+v", got)
	}
}

func TestWebSocketStopsOnShutdown(t *testing.T) {
	s := NewServer(staticSource{testStatus()}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var first engine.Status
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first frame: %v", err)
	}

	cancelled := time.Now()
	cancel()

	// The handler must close the connection on its own; the client only
	// reads. An error well before the read deadline means the stream was
	// closed; hitting the deadline means it kept flowing.
	_ = conn.SetReadDeadline(cancelled.Add(2 * time.Second))
	for {
		var st engine.Status
		if err := conn.ReadJSON(&st); err != nil {
			if time.Since(cancelled) > 1500*time.Millisecond {
				t.Fatal("status stream outlived the serving context")
			}
			return
		}
	}
}
