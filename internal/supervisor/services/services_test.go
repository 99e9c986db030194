// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type mockHTTPServer struct {
	listenErr     error
	started       chan struct{}
	stop          chan struct{}
	shutdownCalls atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.started <- struct{}{}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCalls.Add(1)
	close(m.stop)
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := newMockHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if got := srv.shutdownCalls.Load(); got != 1 {
		t.Errorf("Shutdown calls = %d, want 1", got)
	}
}

func TestHTTPServerService_StartFailure(t *testing.T) {
	t.Parallel()

	srv := newMockHTTPServer()
	srv.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(srv, 0)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshIfChanged(context.Context) (bool, error) {
	n := c.calls.Add(1)
	return n == 1, c.err
}

func TestCatalogueRefreshService_Paced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"healthy", nil},
		{"refresh errors do not stop the loop", errors.New("duckdb busy")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref := &countingRefresher{err: tt.err}
			svc := NewCatalogueRefreshService(ref, 10*time.Millisecond, 2, time.Second, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			deadline := time.After(5 * time.Second)
			for ref.calls.Load() < 4 {
				select {
				case <-deadline:
					t.Fatalf("refresh calls = %d, want at least 4", ref.calls.Load())
				case <-time.After(5 * time.Millisecond):
				}
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		})
	}
}

func TestCatalogueRefreshService_RateBound(t *testing.T) {
	t.Parallel()

	ref := &countingRefresher{}
	svc := NewCatalogueRefreshService(ref, time.Hour, 1, 0, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := ref.calls.Load(); got != 1 {
		t.Errorf("refresh calls within one interval = %d, want 1 (the burst)", got)
	}
}
