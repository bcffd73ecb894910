// Package services – MovieService
//
// This file implements the MovieService, which owns every mutation of the
// watchlist collection. Each write is a read-modify-write over the whole
// document: fetch the collection, alter it in memory, persist it back. There
// is no locking and no compare-and-swap on the stored document; when two
// mutations race, the later write wins. That window is acceptable for the
// single-user deployments this system targets and is documented in DESIGN.md.
//
// Validation happens here, before any storage access, so rejected inputs can
// never alter the persisted collection. Service-level errors (e.g.
// ErrMovieNotFound) are returned for predictable cases so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
	"github.com/filmlog/go-watchlist-backend/internal/store"
)

// MovieService provides the list, create, update, delete, and export
// operations over the watchlist collection.
type MovieService struct {
	// Store is the document store holding the collection.
	Store store.Store

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time
}

// NewMovieService constructs a MovieService over st with the real clock.
func NewMovieService(st store.Store) *MovieService {
	return &MovieService{Store: st, Now: time.Now}
}

func (s *MovieService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the full collection sorted by id descending. Snowflake ids
// are time-ordered, so this is newest-first.
func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sortByIDDesc(movies)
	return movies, nil
}

// Create validates the input, appends a new movie to the collection, and
// persists the whole document. Validation failures are reported without
// touching storage; a failed persist returns the storage error and the new
// movie is not considered created.
func (s *MovieService) Create(ctx context.Context, title string, year int, statusRaw string) (*domain.Movie, error) {
	now := s.now()

	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if year < domain.MinYear || year > domain.MaxYear(now) {
		return nil, ErrInvalidYear
	}
	status, ok := domain.ParseStatus(statusRaw)
	if !ok {
		return nil, ErrInvalidStatus
	}

	movies, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	movie := domain.NewMovie(title, year, status, now)
	movies = append(movies, movie)

	if err := s.Store.ReplaceAll(ctx, movies); err != nil {
		return nil, fmt.Errorf("save movie: %w", err)
	}
	return &movie, nil
}

// UpdateStatus sets the watch state of the movie with the given id and
// restamps its updated_at. Status is the only mutable field; everything else
// is carried over untouched. Returns ErrMovieNotFound without writing when
// the id does not exist.
func (s *MovieService) UpdateStatus(ctx context.Context, id int64, statusRaw string) (*domain.Movie, error) {
	status, ok := domain.ParseStatus(statusRaw)
	if !ok {
		return nil, ErrInvalidStatus
	}

	movies, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range movies {
		if movies[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMovieNotFound
	}

	movies[idx].Status = status
	movies[idx] = movies[idx].Touch(s.now())

	if err := s.Store.ReplaceAll(ctx, movies); err != nil {
		return nil, fmt.Errorf("save movie update: %w", err)
	}
	updated := movies[idx]
	return &updated, nil
}

// Delete removes the movie with the given id and persists the remainder.
// Returns ErrMovieNotFound without writing when the id does not exist.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	movies, err := s.Store.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := movies[:0]
	for _, m := range movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(movies) {
		return ErrMovieNotFound
	}

	if err := s.Store.ReplaceAll(ctx, kept); err != nil {
		return fmt.Errorf("save movie deletion: %w", err)
	}
	return nil
}

// Export returns the collection as an indented JSON array, newest first,
// ready to be served as a file download. An empty collection yields
// ErrEmptyWatchlist rather than an empty-array payload.
func (s *MovieService) Export(ctx context.Context) ([]byte, error) {
	movies, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrEmptyWatchlist
	}
	sortByIDDesc(movies)
	return json.MarshalIndent(movies, "", "  ")
}

// sortByIDDesc orders movies newest-first in place.
func sortByIDDesc(movies []domain.Movie) {
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID > movies[j].ID })
}
