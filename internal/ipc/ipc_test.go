package ipc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vibesync/vibesync/internal/render"
)

func TestParsePing(t *testing.T) {
	cases := []struct {
		line    string
		want    render.RGB
		wantErr bool
	}{
		{"PING red", render.RGB{R: 255}, false},
		{"ping MAGENTA\n", render.RGB{R: 255, B: 255}, false},
		{"  PING  cyan  ", render.RGB{G: 255, B: 255}, false},
		{"PING", render.RGB{}, true},
		{"PING mauve", render.RGB{}, true},
		{"PONG red", render.RGB{}, true},
		{"PING red extra", render.RGB{}, true},
		{"", render.RGB{}, true},
	}
	for _, tc := range cases {
		got, err := ParsePing(tc.line)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePing(%q): expected error", tc.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePing(%q): %v", tc.line, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePing(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestLookupColorNormalizes(t *testing.T) {
	if _, ok := LookupColor("  Orange "); !ok {
		t.Fatal("case and whitespace should not matter")
	}
	if _, ok := LookupColor("fuchsia"); ok {
		t.Fatal("unknown color resolved")
	}
}

type flashRecorder struct {
	mu     sync.Mutex
	frames []render.RGB
	holds  []time.Duration
}

func (f *flashRecorder) Override(frame render.RGB, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	f.holds = append(f.holds, d)
}

func (f *flashRecorder) snapshot() []render.RGB {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]render.RGB(nil), f.frames...)
}

func TestPingRoundTrip(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "test.sock")
	flashes := &flashRecorder{}
	srv := NewServer(socket, flashes, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// Wait for the socket to appear.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := Ping(socket, "blue"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server never became reachable")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := Ping(socket, "mauve"); err == nil {
		t.Fatal("unknown color accepted")
	}

	got := flashes.snapshot()
	if len(got) != 1 || got[0] != (render.RGB{B: 255}) {
		t.Fatalf("flashes = %+v, want single blue", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop on cancel")
	}
}
