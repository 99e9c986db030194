// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecompass/internal/models"
	"github.com/tomtom215/cinecompass/internal/recommend/storage"
	"github.com/tomtom215/cinecompass/internal/userstate"
)

var (
	testGenres    = []string{"Action", "Comedy", "Drama", "Horror", "Science Fiction", "Romance"}
	testDirectors = []string{"Michael Mann", "Ridley Scott", "Greta Gerwig", "Bong Joon Ho", "Agnes Varda"}
)

func testMovies(n int) []models.Movie {
	movies := make([]models.Movie, 0, n)
	for i := 1; i <= n; i++ {
		movies = append(movies, models.Movie{
			ID:         i,
			Title:      fmt.Sprintf("Movie %d", i),
			Genres:     []string{testGenres[i%len(testGenres)]},
			Director:   testDirectors[i%len(testDirectors)],
			Cast:       []string{fmt.Sprintf("Actor %c", 'A'+rune(i%7))},
			Overview:   fmt.Sprintf("Story number %d about %s.", i, testGenres[(i+1)%len(testGenres)]),
			Popularity: float64(i),
		})
	}
	return movies
}

func newTestEngine(t *testing.T, store *fakeStore, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DiversityEnabled = false
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg, store, userstate.NewMemoryStore(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := e.LoadCatalogue(context.Background()); err != nil {
		t.Fatalf("LoadCatalogue() error = %v", err)
	}
	return e
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxBatchSize = 0
	if _, err := NewEngine(cfg, newFakeStore(), userstate.NewMemoryStore(), nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine() error = nil, want invalid config")
	}
}

func TestSubmitRating_Validation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeStore(testMovies(10)...), nil)
	ctx := context.Background()

	if _, err := e.SubmitRating(ctx, 1, 3, 6); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("score 6 error = %v, want ErrInvalidScore", err)
	}
	_, err := e.SubmitRating(ctx, 1, 999, 4)
	var unknown *UnknownItemError
	if !errors.As(err, &unknown) || unknown.MovieID != 999 {
		t.Errorf("unknown movie error = %v, want UnknownItemError{999}", err)
	}
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("errors.Is(err, ErrUnknownItem) = false")
	}
}

func TestSubmitRating_ThresholdGate(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(10)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	res, err := e.SubmitRating(ctx, 1, 2, 5)
	if err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}
	if !res.Recomputed {
		t.Error("first rating should recompute")
	}

	e.now = func() time.Time { return base.Add(time.Hour) }
	res, err = e.SubmitRating(ctx, 1, 3, 4)
	if err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}
	if res.Recomputed {
		t.Error("rating within threshold should not recompute")
	}

	e.now = func() time.Time { return base.Add(5 * time.Hour) }
	res, err = e.SubmitRating(ctx, 1, 4, 4)
	if err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}
	if !res.Recomputed {
		t.Error("rating after threshold should recompute")
	}
	if got := store.replaceCount(); got != 2 {
		t.Errorf("replaces = %d, want 2", got)
	}
}

func TestSubmitBatchRatings_Limit(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(30)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	batch := func(n int) []RatingInput {
		in := make([]RatingInput, n)
		for i := range in {
			in[i] = RatingInput{MovieID: i + 1, Rating: 4}
		}
		return in
	}

	_, err := e.SubmitBatchRatings(ctx, 1, batch(21))
	var bse *BatchSizeError
	if !errors.As(err, &bse) || bse.Size != 21 || bse.Max != 20 {
		t.Fatalf("21 ratings error = %v, want BatchSizeError{21, 20}", err)
	}
	if rs, _ := store.RatingsForUser(ctx, 1); len(rs) != 0 {
		t.Errorf("ratings stored after rejected batch = %d, want 0", len(rs))
	}

	res, err := e.SubmitBatchRatings(ctx, 1, batch(20))
	if err != nil {
		t.Fatalf("20 ratings error = %v", err)
	}
	if res.Accepted != 20 || res.Rejected != 0 {
		t.Errorf("accepted/rejected = %d/%d, want 20/0", res.Accepted, res.Rejected)
	}
	if got := store.replaceCount(); got != 1 {
		t.Errorf("recomputes = %d, want exactly 1", got)
	}
}

func TestSubmitBatchRatings_AbsorbsInvalid(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(10)...)
	e := newTestEngine(t, store, nil)

	res, err := e.SubmitBatchRatings(context.Background(), 1, []RatingInput{
		{MovieID: 1, Rating: 5},
		{MovieID: 404, Rating: 3},
		{MovieID: 2, Rating: 9},
	})
	if err != nil {
		t.Fatalf("SubmitBatchRatings() error = %v", err)
	}
	if res.Accepted != 1 || res.Rejected != 2 || len(res.Rejections) != 2 {
		t.Errorf("result = %+v, want 1 accepted, 2 rejected", res)
	}
}

func TestGetRecommendations_SyncGateScenario(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(20)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	e.now = func() time.Time { return time.Unix(100, 0) }
	if _, err := e.SubmitRating(ctx, 1, 7, 5); err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}

	early := time.Unix(50, 0)
	page, err := e.GetRecommendations(ctx, RecommendationRequest{UserID: 1, LastSync: &early})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if !page.NeedsSync || len(page.Items) != 0 {
		t.Fatalf("needs_sync = %v, items = %d, want true and 0", page.NeedsSync, len(page.Items))
	}
	if len(page.NewRatings) != 1 || page.NewRatings[0].MovieID != 7 {
		t.Errorf("new_ratings = %+v, want movie 7", page.NewRatings)
	}

	late := time.Unix(150, 0)
	page, err = e.GetRecommendations(ctx, RecommendationRequest{UserID: 1, LastSync: &late})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if page.NeedsSync || len(page.Items) == 0 {
		t.Errorf("needs_sync = %v, items = %d, want a ranked page", page.NeedsSync, len(page.Items))
	}
}

func TestGetRecommendations_PaginationAndExclusion(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(25)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	rated := map[int]bool{3: true, 9: true, 14: true}
	var in []RatingInput
	for id := range rated {
		in = append(in, RatingInput{MovieID: id, Rating: 4.5})
	}
	if _, err := e.SubmitBatchRatings(ctx, 1, in); err != nil {
		t.Fatalf("SubmitBatchRatings() error = %v", err)
	}

	const pageSize = 4
	first, err := e.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Page: 1, PageSize: pageSize})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if first.Total != 22 {
		t.Fatalf("total = %d, want 22", first.Total)
	}

	seen := map[int]bool{}
	pages := (first.Total + pageSize - 1) / pageSize
	for p := 1; p <= pages; p++ {
		page, err := e.GetRecommendations(ctx, RecommendationRequest{UserID: 1, Page: p, PageSize: pageSize})
		if err != nil {
			t.Fatalf("page %d error = %v", p, err)
		}
		for _, it := range page.Items {
			if rated[it.MovieID] {
				t.Errorf("rated movie %d recommended", it.MovieID)
			}
			if seen[it.MovieID] {
				t.Errorf("movie %d appears twice", it.MovieID)
			}
			seen[it.MovieID] = true
		}
	}
	if len(seen) != first.Total {
		t.Errorf("distinct items = %d, want %d", len(seen), first.Total)
	}
}

func TestGetRecommendations_InvalidPage(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeStore(testMovies(5)...), nil)
	for _, req := range []RecommendationRequest{
		{UserID: 1, Page: -1},
		{UserID: 1, PageSize: -3},
		{UserID: 1, PageSize: 1000},
	} {
		if _, err := e.GetRecommendations(context.Background(), req); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("GetRecommendations(%+v) error = %v, want ErrInvalidPage", req, err)
		}
	}
}

func TestGetRecommendations_EmptyCataloguePopularFallback(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	e := newTestEngine(t, store, nil)
	if e.CatalogueStatus().Ready {
		t.Fatal("catalogue ready with no movies")
	}
	page, err := e.GetRecommendations(context.Background(), RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if page.Fallback != models.ReasonPopular || page.Total != 0 {
		t.Errorf("fallback = %q total = %d, want popular and 0", page.Fallback, page.Total)
	}
}

func TestGetRecommendations_StaleCatalogueSchedulesRecompute(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(12)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	if _, err := e.SubmitRating(ctx, 1, 2, 5); err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}
	if _, err := e.ImportCatalogue(ctx, testMovies(15)); err != nil {
		t.Fatalf("ImportCatalogue() error = %v", err)
	}

	page, err := e.GetRecommendations(ctx, RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if !page.NeedsRecompute || len(page.Items) != 0 {
		t.Fatalf("needs_recompute = %v items = %d, want true and 0", page.NeedsRecompute, len(page.Items))
	}

	e.Wait()
	page, err = e.GetRecommendations(ctx, RecommendationRequest{UserID: 1})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if page.NeedsRecompute || page.Total != 14 {
		t.Errorf("after recompute: needs_recompute = %v total = %d, want false and 14", page.NeedsRecompute, page.Total)
	}
}

func TestRecompute_CacheTransactionFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(10)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	if _, err := e.SubmitRating(ctx, 1, 2, 5); err != nil {
		t.Fatalf("SubmitRating() error = %v", err)
	}
	before, _ := e.states.Get(ctx, 1)
	cached := len(store.atVersion(1, e.catalogueVersion()))

	store.mu.Lock()
	store.failNext = errors.New("constraint violation")
	store.mu.Unlock()

	err := e.Recompute(ctx, 1, TriggerManual)
	var cte *CacheTransactionError
	if !errors.As(err, &cte) || !cte.Retryable() || cte.UserID != 1 {
		t.Fatalf("Recompute() error = %v, want retryable CacheTransactionError", err)
	}
	if !errors.Is(err, ErrCacheTransaction) {
		t.Error("errors.Is(err, ErrCacheTransaction) = false")
	}
	after, _ := e.states.Get(ctx, 1)
	if !after.LastRecomputeAt.Equal(before.LastRecomputeAt) {
		t.Error("LastRecomputeAt advanced after failed recompute")
	}
	if got := len(store.atVersion(1, e.catalogueVersion())); got != cached {
		t.Errorf("cache size = %d, want previous %d", got, cached)
	}
}

func TestRecompute_Deterministic(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(20)...)
	e := newTestEngine(t, store, nil)
	e.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	if _, err := e.SubmitBatchRatings(ctx, 1, []RatingInput{{MovieID: 4, Rating: 5}, {MovieID: 11, Rating: 2}}); err != nil {
		t.Fatalf("SubmitBatchRatings() error = %v", err)
	}
	first := store.atVersion(1, e.catalogueVersion())
	if err := e.Recompute(ctx, 1, TriggerManual); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	second := store.atVersion(1, e.catalogueVersion())
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].MovieID != second[i].MovieID || first[i].Score != second[i].Score {
			t.Errorf("position %d differs: %d/%f vs %d/%f", i, first[i].MovieID, first[i].Score, second[i].MovieID, second[i].Score)
		}
	}
}

func TestRebuildCatalogue_InProgress(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeStore(testMovies(5)...), nil)
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()
	if _, err := e.RebuildCatalogue(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("RebuildCatalogue() error = %v, want ErrRebuildInProgress", err)
	}
}

func TestRefreshIfChanged(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(5)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	changed, err := e.RefreshIfChanged(ctx)
	if err != nil || changed {
		t.Fatalf("RefreshIfChanged() = (%v, %v), want (false, nil)", changed, err)
	}
	v := e.CatalogueStatus().Version
	if _, err := store.UpsertMovies(ctx, testMovies(6)); err != nil {
		t.Fatal(err)
	}
	changed, err = e.RefreshIfChanged(ctx)
	if err != nil || !changed {
		t.Fatalf("RefreshIfChanged() = (%v, %v), want (true, nil)", changed, err)
	}
	if e.CatalogueStatus().Version <= v {
		t.Errorf("version = %d, want > %d", e.CatalogueStatus().Version, v)
	}
}

func TestGetPopular(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeStore(testMovies(150)...), nil)
	ctx := context.Background()

	movies, cached, err := e.GetPopular(ctx, 500)
	if err != nil {
		t.Fatalf("GetPopular() error = %v", err)
	}
	if len(movies) != 100 || cached {
		t.Errorf("len = %d cached = %v, want 100 and false", len(movies), cached)
	}
	if movies[0].ID != 150 {
		t.Errorf("top = %d, want 150", movies[0].ID)
	}
	if _, cached, _ = e.GetPopular(ctx, 100); !cached {
		t.Error("second call cached = false, want true")
	}
	if movies, _, _ = e.GetPopular(ctx, 0); len(movies) != 1 {
		t.Errorf("limit 0 clamped len = %d, want 1", len(movies))
	}
}

func TestFreshness(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(8)...)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	if f, _ := e.Freshness(ctx, 1); f != FreshnessStalePendingSync {
		t.Errorf("unknown user freshness = %q", f)
	}
	if _, err := e.SubmitRating(ctx, 1, 1, 4); err != nil {
		t.Fatal(err)
	}
	if f, _ := e.Freshness(ctx, 1); f != FreshnessFresh {
		t.Errorf("after recompute freshness = %q, want fresh", f)
	}
	e.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := e.SubmitRating(ctx, 1, 2, 4); err != nil {
		t.Fatal(err)
	}
	if f, _ := e.Freshness(ctx, 1); f != FreshnessStalePendingSync {
		t.Errorf("after unrecomputed rating freshness = %q, want stale", f)
	}
}

func TestGetRecommendations_DiversityBlend(t *testing.T) {
	t.Parallel()

	var movies []models.Movie
	for i := 1; i <= 12; i++ {
		m := models.Movie{ID: i, Title: fmt.Sprintf("M%d", i), Genres: []string{"Action"}, Director: "Same Person", Overview: "explosions"}
		if i > 8 {
			m.Genres = []string{testGenres[i%len(testGenres)]}
			m.Director = testDirectors[i%len(testDirectors)]
		}
		movies = append(movies, m)
	}
	store := newFakeStore(movies...)
	e := newTestEngine(t, store, func(c *Config) { c.DiversityEnabled = true })
	ctx := context.Background()
	if _, err := e.SubmitRating(ctx, 1, 1, 5); err != nil {
		t.Fatal(err)
	}
	page, err := e.GetRecommendations(ctx, RecommendationRequest{UserID: 1, PageSize: 4})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if !page.Diversified {
		t.Fatal("diversified = false, want true for homogeneous top page")
	}
	found := false
	for _, it := range page.Items {
		if it.Reason == models.ReasonDiversity {
			found = true
		}
	}
	if !found {
		t.Error("no diversity item in blended page")
	}
}

func TestImportCatalogue(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	if st := e.CatalogueStatus(); st.Ready {
		t.Fatalf("CatalogueStatus().Ready = true before import")
	}
	if movies, _, err := e.GetPopular(ctx, 10); err != nil || len(movies) != 0 {
		t.Fatalf("GetPopular() = (%d movies, %v), want empty", len(movies), err)
	}

	res, err := e.ImportCatalogue(ctx, testMovies(8))
	if err != nil {
		t.Fatalf("ImportCatalogue() error = %v", err)
	}
	if res.Imported != 8 || !res.Rebuilt {
		t.Errorf("ImportCatalogue() = %+v, want 8 imported and rebuilt", res)
	}
	if res.Catalogue == nil || !res.Catalogue.Ready || res.Catalogue.Items != 8 {
		t.Errorf("Catalogue = %+v, want ready with 8 items", res.Catalogue)
	}

	movies, cached, err := e.GetPopular(ctx, 10)
	if err != nil {
		t.Fatalf("GetPopular() error = %v", err)
	}
	if cached || len(movies) != 8 {
		t.Errorf("GetPopular() = (%d movies, cached %v), want 8 uncached", len(movies), cached)
	}
}

func TestImportCatalogue_RebuildRunning(t *testing.T) {
	t.Parallel()

	store := newFakeStore(testMovies(3)...)
	e := newTestEngine(t, store, nil)
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	res, err := e.ImportCatalogue(context.Background(), testMovies(6))
	if err != nil {
		t.Fatalf("ImportCatalogue() error = %v", err)
	}
	if res.Imported != 6 || res.Rebuilt {
		t.Errorf("ImportCatalogue() = %+v, want 6 imported without rebuild", res)
	}
}

func TestLoadCatalogue_RestoresSnapshot(t *testing.T) {
	t.Parallel()

	snaps, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewStore() error = %v", err)
	}
	store := newFakeStore(testMovies(6)...)
	ctx := context.Background()

	first, err := NewEngine(DefaultConfig(), store, userstate.NewMemoryStore(), snaps, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := first.LoadCatalogue(ctx); err != nil {
		t.Fatalf("first LoadCatalogue() error = %v", err)
	}
	built := first.CatalogueStatus()

	second, err := NewEngine(DefaultConfig(), store, userstate.NewMemoryStore(), snaps, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := second.LoadCatalogue(ctx); err != nil {
		t.Fatalf("second LoadCatalogue() error = %v", err)
	}
	restored := second.CatalogueStatus()

	if restored.Version != built.Version || restored.Items != built.Items || restored.Terms != built.Terms {
		t.Errorf("restored %+v, want version/items/terms of %+v", restored, built)
	}
	store.mu.Lock()
	builds := len(store.builds)
	store.mu.Unlock()
	if builds != 1 {
		t.Errorf("catalogue builds = %d, want 1 (second load restores the snapshot)", builds)
	}
	if changed, err := second.RefreshIfChanged(ctx); err != nil || changed {
		t.Errorf("RefreshIfChanged() after restore = (%v, %v), want (false, nil)", changed, err)
	}
}
