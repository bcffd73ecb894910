package client

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// State names the controller lifecycle phases.
type State string

// Controller states. Transient updating/deleting flags are layered on top of
// StateReady and queried per movie with IsUpdating/IsDeleting.
const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// StatusFilter selects which records the derived view includes.
type StatusFilter string

// Accepted status filters.
const (
	FilterAll       StatusFilter = "all"
	FilterWatched   StatusFilter = StatusFilter(domain.StatusWatched)
	FilterUnwatched StatusFilter = StatusFilter(domain.StatusUnwatched)
)

// NotifyFunc receives transient user-facing notifications ("error" or "info").
type NotifyFunc func(level, message string)

// Controller keeps an in-memory copy of the collection in sync with the
// server. Mutations are confirmed-then-patched: local state changes only
// after a successful response, so a failed request leaves the view untouched.
//
// All methods are safe for concurrent use, though the intended consumer is a
// single UI loop.
type Controller struct {
	api    *API
	notify NotifyFunc

	mu       sync.Mutex
	state    State
	movies   []domain.Movie
	search   string
	filter   StatusFilter
	updating map[int64]bool
	deleting map[int64]bool
}

// NewController returns a Controller in the loading state. notify may be nil.
func NewController(api *API, notify NotifyFunc) *Controller {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Controller{
		api:      api,
		notify:   notify,
		state:    StateLoading,
		movies:   []domain.Movie{},
		filter:   FilterAll,
		updating: make(map[int64]bool),
		deleting: make(map[int64]bool),
	}
}

// Load fetches the collection once and enters the ready state. A failed fetch
// still enters ready, with an empty collection and a surfaced notification,
// so the UI never sticks on a spinner.
func (ctl *Controller) Load(ctx context.Context) {
	movies, err := ctl.api.List(ctx)

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.state = StateReady
	if err != nil {
		ctl.movies = []domain.Movie{}
		ctl.notify("error", "failed to load movies")
		return
	}
	ctl.movies = movies
}

// State returns the current lifecycle state.
func (ctl *Controller) State() State {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.state
}

// Add creates a movie on the server and, on success, reloads the collection
// so the new record (with its server-assigned id and timestamps) appears.
func (ctl *Controller) Add(ctx context.Context, title string, year int, status string) error {
	if _, err := ctl.api.Create(ctx, title, year, status); err != nil {
		ctl.notify("error", "failed to add movie")
		return err
	}
	movies, err := ctl.api.List(ctx)
	if err != nil {
		ctl.notify("error", "movie added, but refresh failed")
		return nil // the creation itself succeeded
	}
	ctl.mu.Lock()
	ctl.movies = movies
	ctl.mu.Unlock()
	ctl.notify("info", "movie added successfully")
	return nil
}

// ToggleStatus issues the update request and patches the in-memory record
// only after the server confirms. On failure local state is untouched and the
// error is returned so callers can react (e.g. keep a dialog open).
func (ctl *Controller) ToggleStatus(ctx context.Context, id int64, status domain.Status) error {
	ctl.setUpdating(id, true)
	defer ctl.setUpdating(id, false)

	updated, err := ctl.api.UpdateStatus(ctx, id, string(status))
	if err != nil {
		ctl.notify("error", "failed to update movie")
		return err
	}

	ctl.mu.Lock()
	for i := range ctl.movies {
		if ctl.movies[i].ID == id {
			ctl.movies[i].Status = updated.Status
			ctl.movies[i].UpdatedAt = updated.UpdatedAt
			break
		}
	}
	ctl.mu.Unlock()
	return nil
}

// Remove deletes the movie on the server and, on success, drops it from
// local state. On failure local state is untouched.
func (ctl *Controller) Remove(ctx context.Context, id int64) error {
	ctl.setDeleting(id, true)
	defer ctl.setDeleting(id, false)

	if err := ctl.api.Delete(ctx, id); err != nil {
		ctl.notify("error", "failed to delete movie")
		return err
	}

	ctl.mu.Lock()
	kept := ctl.movies[:0]
	for _, m := range ctl.movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	ctl.movies = kept
	ctl.mu.Unlock()
	ctl.notify("info", "movie deleted successfully")
	return nil
}

// SetSearch updates the search string used by View.
func (ctl *Controller) SetSearch(q string) {
	ctl.mu.Lock()
	ctl.search = q
	ctl.mu.Unlock()
}

// SetFilter updates the status filter used by View. Unknown values fall back
// to FilterAll.
func (ctl *Controller) SetFilter(f StatusFilter) {
	switch f {
	case FilterAll, FilterWatched, FilterUnwatched:
	default:
		f = FilterAll
	}
	ctl.mu.Lock()
	ctl.filter = f
	ctl.mu.Unlock()
}

// View returns the derived view: the collection filtered by the search string
// (case-insensitive title substring OR substring of the year's decimal form)
// AND the status filter. The result is a copy.
func (ctl *Controller) View() []domain.Movie {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(ctl.search))
	out := make([]domain.Movie, 0, len(ctl.movies))
	for _, m := range ctl.movies {
		if ctl.filter != FilterAll && string(m.Status) != string(ctl.filter) {
			continue
		}
		if q != "" {
			title := strings.ToLower(m.Title)
			year := strconv.Itoa(m.Year)
			if !strings.Contains(title, q) && !strings.Contains(year, q) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Stats computes summary statistics over the full in-memory collection
// (unfiltered, matching what a stats panel shows).
func (ctl *Controller) Stats() domain.Stats {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return domain.ComputeStats(ctl.movies)
}

// IsUpdating reports whether an update for id is in flight.
func (ctl *Controller) IsUpdating(id int64) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.updating[id]
}

// IsDeleting reports whether a delete for id is in flight.
func (ctl *Controller) IsDeleting(id int64) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.deleting[id]
}

func (ctl *Controller) setUpdating(id int64, v bool) {
	ctl.mu.Lock()
	if v {
		ctl.updating[id] = true
	} else {
		delete(ctl.updating, id)
	}
	ctl.mu.Unlock()
}

func (ctl *Controller) setDeleting(id int64, v bool) {
	ctl.mu.Lock()
	if v {
		ctl.deleting[id] = true
	} else {
		delete(ctl.deleting, id)
	}
	ctl.mu.Unlock()
}
