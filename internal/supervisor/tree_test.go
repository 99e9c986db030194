// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type flakyService struct {
	starts   atomic.Int32
	failures int32
	running  chan struct{}
}

func (s *flakyService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.failures {
		return errors.New("transient failure")
	}
	select {
	case s.running <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *flakyService) String() string { return "flaky" }

func TestTree_RestartsFailedService(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tree := NewTree(logger, TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})

	svc := &flakyService{failures: 2, running: make(chan struct{}, 1)}
	tree.AddDataService(svc)
	tree.AddMessagingService(&flakyService{running: make(chan struct{}, 1)})
	tree.AddAPIService(&flakyService{running: make(chan struct{}, 1)})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-svc.running:
	case <-time.After(5 * time.Second):
		t.Fatalf("service not running after %d starts", svc.starts.Load())
	}
	if got := svc.starts.Load(); got != 3 {
		t.Errorf("starts = %d, want 3", got)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped services = %v, %v", report, err)
	}
}
