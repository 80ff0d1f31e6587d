package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"retail-dashboard/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: 2 * time.Second,
		},
	}
}

func TestGracefulServer_Serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	httpServer := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})}
	gs := NewGracefulServer(httpServer, slog.New(slog.NewTextHandler(io.Discard, nil)), testConfig())

	var hooks atomic.Int32
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		hooks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if hooks.Load() != 1 {
		t.Errorf("shutdown hook ran %d times, want 1", hooks.Load())
	}
}

func TestGracefulServer_HookError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()},
		slog.New(slog.NewTextHandler(io.Discard, nil)), testConfig())

	errFlush := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return errFlush })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gs.Serve(ctx, ln); !errors.Is(err, errFlush) {
		t.Errorf("Serve() error = %v, want %v", err, errFlush)
	}
}
