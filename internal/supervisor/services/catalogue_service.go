// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CatalogueRefresher rebuilds the feature catalogue when the movie table
// changed. *recommend.Engine implements it.
type CatalogueRefresher interface {
	RefreshIfChanged(ctx context.Context) (bool, error)
}

// CatalogueRefreshService checks the catalogue fingerprint at most once per
// interval, with burst checks allowed right after start.
type CatalogueRefreshService struct {
	engine  CatalogueRefresher
	limiter *rate.Limiter
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCatalogueRefreshService creates the service. timeout bounds one
// refresh, including a full rebuild.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogueRefreshService(engine CatalogueRefresher, interval time.Duration, burst int, timeout time.Duration, logger zerolog.Logger) *CatalogueRefreshService {
	if burst < 1 {
		burst = 1
	}
	return &CatalogueRefreshService{
		engine:  engine,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		timeout: timeout,
		logger:  logger.With().Str("service", "catalogue-refresh").Logger(),
	}
}

// Serve implements suture.Service. Refresh errors are logged and retried
// on the next tick rather than restarting the service.
func (s *CatalogueRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Float64("per_second", float64(s.limiter.Limit())).Msg("catalogue refresher started")
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.refresh(ctx)
	}
}

func (s *CatalogueRefreshService) refresh(ctx context.Context) {
	rctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rebuilt, err := s.engine.RefreshIfChanged(rctx)
	switch {
	case err == nil && rebuilt:
		s.logger.Info().Msg("catalogue changed, rebuilt")
	case err == nil:
		s.logger.Debug().Msg("catalogue unchanged")
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Warn().Err(err).Msg("catalogue refresh failed")
	}
}

func (s *CatalogueRefreshService) String() string { return "catalogue-refresh" }
