package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// memStore is an in-memory Store with call counters and injectable failures.
type memStore struct {
	movies []domain.Movie

	getErr     error
	replaceErr error
	gets       int
	replaces   int
}

func (m *memStore) GetAll(ctx context.Context) ([]domain.Movie, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]domain.Movie, len(m.movies))
	copy(out, m.movies)
	return out, nil
}

func (m *memStore) ReplaceAll(ctx context.Context, movies []domain.Movie) error {
	m.replaces++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.movies = make([]domain.Movie, len(movies))
	copy(m.movies, movies)
	return nil
}

func newTestService(st *memStore) *MovieService {
	svc := NewMovieService(st)
	svc.Now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreate_Valid(t *testing.T) {
	st := &memStore{}
	svc := newTestService(st)

	movie, err := svc.Create(context.Background(), "  Dune  ", 2021, "unwatched")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if movie.Title != "Dune" {
		t.Fatalf("title not trimmed: %q", movie.Title)
	}
	if movie.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if len(st.movies) != 1 {
		t.Fatalf("collection size = %d, want 1", len(st.movies))
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != movie.ID {
		t.Fatalf("created movie missing from listing: %+v", list)
	}
}

func TestCreate_ValidationNeverTouchesStorage(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		year   int
		status string
		want   error
	}{
		{"empty title", "", 2021, "watched", ErrTitleRequired},
		{"whitespace title", "   ", 2021, "watched", ErrTitleRequired},
		{"year too old", "Dune", 1899, "watched", ErrInvalidYear},
		{"year too far out", "Dune", 2026 + 6, "watched", ErrInvalidYear},
		{"bad status", "Dune", 2021, "seen", ErrInvalidStatus},
		{"empty status", "Dune", 2021, "", ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &memStore{}
			svc := newTestService(st)

			_, err := svc.Create(context.Background(), tc.title, tc.year, tc.status)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if st.gets != 0 || st.replaces != 0 {
				t.Fatalf("rejected input reached storage: gets=%d replaces=%d", st.gets, st.replaces)
			}
		})
	}
}

func TestCreate_YearBoundaries(t *testing.T) {
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Oldest", 1900, "watched"); err != nil {
		t.Fatalf("year 1900 must be accepted: %v", err)
	}
	// Clock is pinned to 2026, so 2031 is the newest accepted year.
	if _, err := svc.Create(ctx, "Upcoming", 2031, "unwatched"); err != nil {
		t.Fatalf("currentYear+5 must be accepted: %v", err)
	}
}

func TestCreate_PersistFailure(t *testing.T) {
	st := &memStore{replaceErr: errors.New("store unavailable")}
	svc := newTestService(st)

	if _, err := svc.Create(context.Background(), "Dune", 2021, "watched"); err == nil {
		t.Fatalf("expected error when persistence fails")
	}
	if len(st.movies) != 0 {
		t.Fatalf("failed create must not alter the collection")
	}
}

func TestList_NewestFirst(t *testing.T) {
	now := time.Now()
	first := domain.NewMovie("First", 2000, domain.StatusWatched, now)
	second := domain.NewMovie("Second", 2001, domain.StatusWatched, now)
	st := &memStore{movies: []domain.Movie{first, second}}
	svc := newTestService(st)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestUpdateStatus_ToggleTwice(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.NewMovie("Dune", 2021, domain.StatusWatched, created)
	st := &memStore{movies: []domain.Movie{m}}
	svc := newTestService(st)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, m.ID, "unwatched"); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	got, err := svc.UpdateStatus(ctx, m.ID, "watched")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}

	if got.Status != domain.StatusWatched {
		t.Fatalf("final status = %q, want watched", got.Status)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updated_at (%v) must be newer than created_at (%v)", got.UpdatedAt, got.CreatedAt)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Fatalf("created_at must be immutable")
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	st := &memStore{movies: sample(t)}
	svc := newTestService(st)

	_, err := svc.UpdateStatus(context.Background(), 424242, "watched")
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
	if st.replaces != 0 {
		t.Fatalf("not-found must not write")
	}
}

func TestUpdateStatus_InvalidStatusBeforeStorage(t *testing.T) {
	st := &memStore{}
	svc := newTestService(st)

	_, err := svc.UpdateStatus(context.Background(), 1, "seen")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if st.gets != 0 {
		t.Fatalf("invalid status must be rejected before storage access")
	}
}

func TestDelete(t *testing.T) {
	movies := sample(t)
	st := &memStore{movies: movies}
	svc := newTestService(st)
	ctx := context.Background()

	if err := svc.Delete(ctx, movies[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(st.movies) != len(movies)-1 {
		t.Fatalf("collection size = %d, want %d", len(st.movies), len(movies)-1)
	}
	for _, m := range st.movies {
		if m.ID == movies[0].ID {
			t.Fatalf("deleted movie still present")
		}
	}
}

func TestDelete_NotFoundLeavesCollectionUnchanged(t *testing.T) {
	movies := sample(t)
	st := &memStore{movies: movies}
	svc := newTestService(st)

	err := svc.Delete(context.Background(), 424242)
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("err = %v, want ErrMovieNotFound", err)
	}
	if st.replaces != 0 {
		t.Fatalf("not-found delete must not write")
	}
	if len(st.movies) != len(movies) {
		t.Fatalf("collection changed on not-found delete")
	}
}

func TestExport(t *testing.T) {
	movies := sample(t)
	st := &memStore{movies: movies}
	svc := newTestService(st)

	data, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var decoded []domain.Movie
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export payload is not a movie array: %v", err)
	}
	if len(decoded) != len(movies) {
		t.Fatalf("exported %d records, want %d", len(decoded), len(movies))
	}
	for i := 1; i < len(decoded); i++ {
		if decoded[i-1].ID < decoded[i].ID {
			t.Fatalf("export must be newest first")
		}
	}
}

func TestExport_EmptyWatchlist(t *testing.T) {
	svc := newTestService(&memStore{})

	_, err := svc.Export(context.Background())
	if !errors.Is(err, ErrEmptyWatchlist) {
		t.Fatalf("err = %v, want ErrEmptyWatchlist", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	st := &memStore{getErr: boom}
	svc := newTestService(st)
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, boom) {
		t.Fatalf("List err = %v", err)
	}
	if _, err := svc.Create(ctx, "Dune", 2021, "watched"); !errors.Is(err, boom) {
		t.Fatalf("Create err = %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, 1, "watched"); !errors.Is(err, boom) {
		t.Fatalf("UpdateStatus err = %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("Delete err = %v", err)
	}
	if _, err := svc.Export(ctx); !errors.Is(err, boom) {
		t.Fatalf("Export err = %v", err)
	}
}

func sample(t *testing.T) []domain.Movie {
	t.Helper()
	now := time.Now()
	return []domain.Movie{
		domain.NewMovie("Dune", 2021, domain.StatusUnwatched, now),
		domain.NewMovie("Alien", 1979, domain.StatusWatched, now),
		domain.NewMovie("Heat", 1995, domain.StatusWatched, now),
	}
}
