// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/cache"
	"github.com/tomtom215/cinecompass/internal/metrics"
	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/algorithms"
	"github.com/tomtom215/cinecompass/internal/recommend/features"
	"github.com/tomtom215/cinecompass/internal/recommend/reranking"
	"github.com/tomtom215/cinecompass/internal/recommend/storage"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

// Engine orchestrates catalogue builds, rating writes, recomputes and reads.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	store     Store
	states    userstate.Store
	snapshots *storage.Store

	// Live catalogue; swapped atomically after each rebuild.
	catalogue       atomic.Pointer[features.Catalog]
	rebuildMu       sync.Mutex
	rebuilding      atomic.Bool
	fingerprintMu   sync.Mutex
	lastFingerprint string

	profiles  *algorithms.ProfileBuilder
	ranker    *algorithms.Ranker
	diversity *reranking.Diversity
	gate      *SyncGate
	popular   *cache.LRU[int, []models.Movie]

	schedulerMu sync.RWMutex
	scheduler   RecomputeScheduler

	inflight   sync.Map // userID -> struct{}, held while Recompute runs
	pending    sync.Map // userID -> struct{}, claimed by scheduleBackground
	background sync.WaitGroup
	recomputes atomic.Int64

	now func() time.Time
}

// NewEngine creates a new recommendation engine. snapshots may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, states userstate.Store, snapshots *storage.Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil || states == nil {
		return nil, errors.New("store and user state store are required")
	}

	logger = logger.With().Str("component", "recommend").Logger()
	e := &Engine{
		config:    cfg,
		logger:    logger,
		store:     store,
		states:    states,
		snapshots: snapshots,
		profiles:  algorithms.NewProfileBuilder(cfg.Profile, logger),
		ranker:    algorithms.NewRanker(),
		diversity: reranking.NewDiversity(cfg.Seed),
		popular:   cache.NewLRU[int, []models.Movie](cfg.PopularCacheSize, cfg.PopularCacheTTL),
		now:       time.Now,
	}
	e.gate = NewSyncGate(store, states, cfg.UpdateThreshold, e.catalogueVersion)
	return e, nil
}

// SetScheduler installs the asynchronous recompute scheduler.
func (e *Engine) SetScheduler(s RecomputeScheduler) {
	e.schedulerMu.Lock()
	defer e.schedulerMu.Unlock()
	e.scheduler = s
}

// Gate returns the engine's sync gate.
func (e *Engine) Gate() *SyncGate { return e.gate }

// RecomputeCount returns how many recomputes have completed or failed.
func (e *Engine) RecomputeCount() int64 { return e.recomputes.Load() }

// Wait blocks until background recomputes started by reads finish.
func (e *Engine) Wait() { e.background.Wait() }

func (e *Engine) catalogueVersion() int64 {
	if c := e.catalogue.Load(); c != nil {
		return c.Version()
	}
	return 0
}

// SubmitRating upserts one rating and recomputes when the user is due.
func (e *Engine) SubmitRating(ctx context.Context, userID, movieID int, score float64) (*RatingResult, error) {
	if !models.ValidScore(score) {
		return nil, fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidScore, score, models.MinRatingScore, models.MaxRatingScore)
	}
	known, err := e.store.ExistingMovieIDs(ctx, []int{movieID})
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if _, ok := known[movieID]; !ok {
		return nil, &UnknownItemError{MovieID: movieID}
	}

	now := e.now()
	if err := e.store.UpsertRating(ctx, models.Rating{UserID: userID, MovieID: movieID, Score: score, Timestamp: now}); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	e.touchRating(ctx, userID, now)

	due, err := e.gate.ShouldRecompute(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	res := &RatingResult{Status: "success"}
	if due {
		if err := e.triggerRecompute(ctx, userID, TriggerRating); err != nil {
			return nil, err
		}
		res.Recomputed = true
	}
	return res, nil
}

// SubmitBatchRatings upserts up to MaxBatchSize ratings in one transaction and
// forces exactly one recompute. Invalid entries are counted as rejected.
func (e *Engine) SubmitBatchRatings(ctx context.Context, userID int, inputs []RatingInput) (*BatchResult, error) {
	if len(inputs) > e.config.MaxBatchSize {
		return nil, &BatchSizeError{Size: len(inputs), Max: e.config.MaxBatchSize}
	}

	ids := make([]int, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.MovieID)
	}
	known, err := e.store.ExistingMovieIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check movies: %w", err)
	}

	now := e.now()
	res := &BatchResult{Status: "success"}
	valid := make([]models.Rating, 0, len(inputs))
	for _, in := range inputs {
		switch {
		case !models.ValidScore(in.Rating):
			res.Rejections = append(res.Rejections, RejectedRating{MovieID: in.MovieID, Reason: ErrInvalidScore.Error()})
		case !contains(known, in.MovieID):
			res.Rejections = append(res.Rejections, RejectedRating{MovieID: in.MovieID, Reason: ErrUnknownItem.Error()})
		default:
			valid = append(valid, models.Rating{UserID: userID, MovieID: in.MovieID, Score: in.Rating, Timestamp: now})
		}
	}
	res.Accepted = len(valid)
	res.Rejected = len(res.Rejections)

	if len(valid) > 0 {
		if err := e.store.UpsertRatings(ctx, valid); err != nil {
			return nil, fmt.Errorf("upsert ratings: %w", err)
		}
		e.touchRating(ctx, userID, now)
		if err := e.triggerRecompute(ctx, userID, TriggerBatch); err != nil {
			return nil, err
		}
	}
	res.Message = fmt.Sprintf("processed %d ratings: %d accepted, %d rejected", len(inputs), res.Accepted, res.Rejected)
	return res, nil
}

func contains(set map[int]struct{}, id int) bool {
	_, ok := set[id]
	return ok
}

func (e *Engine) touchRating(ctx context.Context, userID int, at time.Time) {
	if _, err := e.states.Update(ctx, userID, func(st *userstate.State) {
		if at.After(st.LastRatingAt) {
			st.LastRatingAt = at
		}
	}); err != nil {
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("failed to record rating time")
	}
}

// UserRatings returns every rating stored for userID.
func (e *Engine) UserRatings(ctx context.Context, userID int) ([]models.Rating, error) {
	rs, err := e.store.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user: %w", err)
	}
	return rs, nil
}

// Freshness reports the lifecycle state of userID's cache.
func (e *Engine) Freshness(ctx context.Context, userID int) (Freshness, error) {
	if _, running := e.inflight.Load(userID); running {
		return FreshnessRecomputing, nil
	}
	if _, queued := e.pending.Load(userID); queued {
		return FreshnessRecomputing, nil
	}
	st, err := e.states.Get(ctx, userID)
	if errors.Is(err, userstate.ErrNotFound) {
		return FreshnessStalePendingSync, nil
	}
	if err != nil {
		return "", fmt.Errorf("get user state: %w", err)
	}
	if st.LastRecomputeAt.IsZero() || st.LastRatingAt.After(st.LastRecomputeAt) || st.CatalogueVersion != e.catalogueVersion() {
		return FreshnessStalePendingSync, nil
	}
	return FreshnessFresh, nil
}

// GetRecommendations serves one page of a user's cached ranking.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) GetRecommendations(ctx context.Context, req RecommendationRequest) (*RecommendationPage, error) {
	if req.PageSize == 0 {
		req.PageSize = e.config.DefaultPageSize
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 1 || req.PageSize < 1 || req.PageSize > e.config.MaxPageSize {
		return nil, fmt.Errorf("%w: page %d, page_size %d (max %d)", ErrInvalidPage, req.Page, req.PageSize, e.config.MaxPageSize)
	}

	page := &RecommendationPage{Page: req.Page, PageSize: req.PageSize, Items: []models.RecommendationItem{}}

	decision, err := e.gate.Check(ctx, req.UserID, req.LastSync)
	if err != nil {
		return nil, err
	}
	if decision.NeedsSync {
		metrics.RecordSyncDecision("needs_sync")
		page.NeedsSync = true
		page.CatalogueVersion = e.catalogueVersion()
		for _, r := range decision.NewRatings {
			page.NewRatings = append(page.NewRatings, NewRating{MovieID: r.MovieID, Rating: r.Score, Timestamp: r.Timestamp})
		}
		return page, nil
	}

	cat := e.catalogue.Load()
	if cat == nil || cat.Len() == 0 {
		return e.popularPage(ctx, page)
	}
	page.CatalogueVersion = cat.Version()

	rows, total, err := e.store.PageRecommendations(ctx, req.UserID, cat.Version(), req.Page, req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("page recommendations: %w", err)
	}
	page.Total = total

	if total == 0 {
		due, err := e.gate.ShouldRecompute(ctx, req.UserID, e.now())
		if err != nil {
			return nil, err
		}
		if due {
			metrics.RecordSyncDecision("needs_recompute")
			page.NeedsRecompute = true
			e.scheduleBackground(req.UserID, TriggerStaleRead)
			return page, nil
		}
	}
	if err := e.retryFailedRecompute(ctx, req.UserID); err != nil {
		return nil, err
	}
	metrics.RecordSyncDecision("fresh")

	if e.config.DiversityEnabled && len(rows) > 0 {
		offset := req.Page * req.PageSize
		pool, err := e.store.RecommendationPool(ctx, req.UserID, cat.Version(), offset, e.config.DiversityPoolSize)
		if err != nil {
			return nil, fmt.Errorf("recommendation pool: %w", err)
		}
		var blended bool
		rows, blended = e.diversity.Diversify(ctx, rows, pool, req.PageSize, e.config.DiversityThreshold)
		if blended {
			metrics.DiversityBlends.Inc()
			page.Diversified = true
		}
	}

	for i := range rows {
		page.Items = append(page.Items, models.ToItem(rows[i]))
	}
	return page, nil
}

// retryFailedRecompute schedules a background recompute when the user's last
// recompute failed. The cached page is still served.
func (e *Engine) retryFailedRecompute(ctx context.Context, userID int) error {
	st, err := e.states.Get(ctx, userID)
	if errors.Is(err, userstate.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user state: %w", err)
	}
	if !st.LastFailureAt.IsZero() {
		e.logger.Debug().Int("user_id", userID).Time("failed_at", st.LastFailureAt).Msg("retrying failed recompute")
		e.scheduleBackground(userID, TriggerRetry)
	}
	return nil
}

func (e *Engine) popularPage(ctx context.Context, page *RecommendationPage) (*RecommendationPage, error) {
	metrics.RecordSyncDecision("fallback")
	limit := page.Page * page.PageSize
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}
	movies, _, err := e.GetPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	page.Fallback = models.ReasonPopular
	page.Total = len(movies)
	start := (page.Page - 1) * page.PageSize
	for i := start; i < len(movies) && i < start+page.PageSize; i++ {
		m := movies[i]
		page.Items = append(page.Items, models.ToItem(models.CachedRecommendation{
			MovieID: m.ID,
			Details: models.DetailsFromMovie(m),
			Reason:  models.ReasonPopular,
		}))
	}
	return page, nil
}

// Popular listing limits.
const (
	MinPopularLimit     = 1
	MaxPopularLimit     = 100
	DefaultPopularLimit = 10
)

// GetPopular returns up to limit movies by popularity. limit is clamped to
// [1, 100]. The boolean reports a cache hit.
func (e *Engine) GetPopular(ctx context.Context, limit int) ([]models.Movie, bool, error) {
	if limit < MinPopularLimit {
		limit = MinPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}
	if movies, ok := e.popular.Get(limit); ok {
		return movies, true, nil
	}
	movies, err := e.store.PopularMovies(ctx, limit)
	if err != nil {
		return nil, false, fmt.Errorf("popular movies: %w", err)
	}
	e.popular.Add(limit, movies)
	return movies, false, nil
}
