// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cinecompass/internal/models"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	mu       sync.Mutex
	movies   map[int]models.Movie
	ratings  map[int]map[int]models.Rating
	recs     map[int][]models.CachedRecommendation
	builds   []string
	replaces int
	failNext error
}

func newFakeStore(movies ...models.Movie) *fakeStore {
	s := &fakeStore{
		movies:  make(map[int]models.Movie),
		ratings: make(map[int]map[int]models.Rating),
		recs:    make(map[int][]models.CachedRecommendation),
	}
	for _, m := range movies {
		s.movies[m.ID] = m
	}
	return s
}

func (s *fakeStore) ListMovies(context.Context) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) UpsertMovies(_ context.Context, movies []models.Movie) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range movies {
		s.movies[m.ID] = m
	}
	return len(movies), nil
}

func (s *fakeStore) ExistingMovieIDs(_ context.Context, ids []int) (map[int]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]struct{})
	for _, id := range ids {
		if _, ok := s.movies[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (s *fakeStore) PopularMovies(ctx context.Context, limit int) ([]models.Movie, error) {
	all, _ := s.ListMovies(ctx)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Popularity > all[j].Popularity })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeStore) CatalogueFingerprint(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%d", len(s.movies)), nil
}

func (s *fakeStore) UpsertRating(_ context.Context, r models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratings[r.UserID] == nil {
		s.ratings[r.UserID] = make(map[int]models.Rating)
	}
	s.ratings[r.UserID][r.MovieID] = r
	return nil
}

func (s *fakeStore) UpsertRatings(ctx context.Context, rs []models.Rating) error {
	for _, r := range rs {
		if err := s.UpsertRating(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) RatingsForUser(_ context.Context, userID int) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Rating, 0, len(s.ratings[userID]))
	for _, r := range s.ratings[userID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

func (s *fakeStore) RatingsSince(ctx context.Context, userID int, since time.Time) ([]models.Rating, error) {
	all, _ := s.RatingsForUser(ctx, userID)
	var out []models.Rating
	for _, r := range all {
		if r.Timestamp.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ReplaceRecommendations(_ context.Context, userID int, _ int64, recs []models.CachedRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.recs[userID] = append([]models.CachedRecommendation(nil), recs...)
	return nil
}

// atVersion returns userID's unrated cached rows at version in rank order.
func (s *fakeStore) atVersion(userID int, version int64) []models.CachedRecommendation {
	var out []models.CachedRecommendation
	for _, r := range s.recs[userID] {
		if _, rated := s.ratings[userID][r.MovieID]; rated {
			continue
		}
		if r.CatalogueVersion == version {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MovieID < out[j].MovieID
	})
	return out
}

func (s *fakeStore) PageRecommendations(_ context.Context, userID int, version int64, page, pageSize int) ([]models.CachedRecommendation, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, errors.New("invalid page")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.atVersion(userID, version)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, len(all), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (s *fakeStore) RecommendationPool(_ context.Context, userID int, version int64, offset, limit int) ([]models.CachedRecommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.atVersion(userID, version)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeStore) NextCatalogueVersion(_ context.Context, fp string, _ int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds = append(s.builds, fp)
	return int64(len(s.builds)), nil
}

func (s *fakeStore) LatestCatalogueBuild(context.Context) (int64, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.builds) == 0 {
		return 0, "", false, nil
	}
	return int64(len(s.builds)), s.builds[len(s.builds)-1], true, nil
}

func (s *fakeStore) replaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces
}

var _ Store = (*fakeStore)(nil)
