// Movie HTTP handlers.
//
// This file exposes the REST endpoints for the watchlist collection:
//   - GET    /movies          (list, newest first, weak ETag support)
//   - POST   /movies          (create, idempotency-key aware)
//   - GET    /movies/export   (download the raw collection document)
//   - PUT    /movies/{id}     (update watch status)
//   - DELETE /movies/{id}     (remove a movie)
//
// Handlers are transport-thin: they validate and decode input, call the
// movie service, and translate results into HTTP responses. Every write the
// service performs is a read-modify-write over the whole stored document.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
	"github.com/filmlog/go-watchlist-backend/internal/http/middleware"
	"github.com/filmlog/go-watchlist-backend/internal/services"
)

//
// Service contract (context-aware)
//

// MovieService defines the watchlist operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MovieService interface {
	// List returns the full collection sorted by id descending.
	List(ctx context.Context) ([]domain.Movie, error)
	// Create validates the input and appends a new movie.
	Create(ctx context.Context, title string, year int, status string) (*domain.Movie, error)
	// UpdateStatus sets the watch state of one movie.
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Movie, error)
	// Delete removes one movie from the collection.
	Delete(ctx context.Context, id int64) error
	// Export returns the collection as an indented JSON document.
	Export(ctx context.Context) ([]byte, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the watchlist API. It depends on
// the abstract MovieService to keep transport concerns separate from
// business logic.
type Handlers struct {
	svc  MovieService
	idem *services.IdempotencyRecorder
}

// New constructs a Handlers instance bound to svc. The recorder may be nil,
// in which case Idempotency-Key replay detection is disabled.
func New(svc MovieService, idem *services.IdempotencyRecorder) *Handlers {
	return &Handlers{svc: svc, idem: idem}
}

//
// DTOs
//

// CreateMovieRequest is the JSON payload for adding a movie.
type CreateMovieRequest struct {
	// Title is the movie title; surrounding whitespace is trimmed.
	Title string `json:"title" example:"Dune"`
	// Year is the release year, within [1900, current year + 5].
	Year int `json:"year" example:"2021"`
	// Status is the initial watch state: "watched" or "unwatched".
	Status string `json:"status" example:"unwatched"`
}

// CreateMovieResponse acknowledges a created movie with its assigned id.
type CreateMovieResponse struct {
	Message string `json:"message" example:"movie added successfully"`
	ID      int64  `json:"id" example:"1879966915041761281"`
}

// UpdateMovieRequest is the JSON payload for changing a movie's watch state.
// Status is the only mutable field; payloads carrying anything else are
// rejected outright.
type UpdateMovieRequest struct {
	// Status is the new watch state: "watched" or "unwatched".
	Status string `json:"status" example:"watched"`
}

// UpdateMovieResponse returns the movie as persisted after the update.
type UpdateMovieResponse struct {
	Message string       `json:"message" example:"movie updated successfully"`
	Movie   domain.Movie `json:"movie"`
}

// MessageResponse is the minimal acknowledgement envelope.
type MessageResponse struct {
	Message string `json:"message" example:"movie deleted successfully"`
}

//
// Helpers
//

// movieID parses the :id route parameter. The second return value is false
// when the parameter is not a decimal integer.
func movieID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

// decodeStrict unmarshals the request body into dst, rejecting unknown
// fields. The update payload is deliberately closed: accepting arbitrary
// extra fields here used to suggest they were applied when they were not.
func decodeStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second document in the body is as malformed as an unknown field.
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// collectionETag derives a weak ETag from the collection size and the newest
// updated_at. Any mutation changes one of the two.
func collectionETag(movies []domain.Movie) string {
	var maxTS int64
	for _, m := range movies {
		if ts := m.UpdatedAt.Unix(); ts > maxTS {
			maxTS = ts
		}
	}
	return fmt.Sprintf(`W/"movies:%d:%d"`, len(movies), maxTS)
}

//
// Handlers
//

// ListMovies godoc
// @ID          listMovies
// @Summary     List all movies
// @Description Returns the full watchlist sorted newest-first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Movies
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/"movies:3:1755600000")
//
// @Success     200  {array}   domain.Movie
// @Header      200  {string}  ETag  "Weak ETag for the current collection"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Storage error"
// @Router      /movies [get]
func (h *Handlers) ListMovies(c *gin.Context) {
	movies, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorageError, "failed to fetch movies")
		return
	}

	etag := collectionETag(movies)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}

	ok(c, http.StatusOK, movies)
}

// CreateMovie godoc
// @ID          createMovie
// @Summary     Add a movie
// @Description Validates the payload and appends a movie to the watchlist. With an Idempotency-Key header, retries of a completed request return the original id without appending again.
// @Tags        Movies
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Client-chosen key deduplicating retries"
// @Param       body             body    handlers.CreateMovieRequest  true  "New movie payload"
//
// @Success     201  {object}  handlers.CreateMovieResponse
// @Header      201  {string}  Idempotency-Replayed  "true when answered from a previous creation"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failure"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence failure"
// @Router      /movies [post]
func (h *Handlers) CreateMovie(c *gin.Context) {
	var req CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey && h.idem != nil {
		if id, hit := h.idem.Lookup(key, time.Now().UTC()); hit {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusCreated, CreateMovieResponse{Message: "movie added successfully", ID: id})
			return
		}
	}

	movie, err := h.svc.Create(c.Request.Context(), req.Title, req.Year, req.Status)
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	case err != nil:
		// The movie was not durably saved; its id must not leak out.
		fail(c, http.StatusInternalServerError, ErrCodeStorageError, "failed to save movie")
		return
	}

	if hasKey && h.idem != nil {
		h.idem.Record(key, movie.ID, time.Now().UTC())
	}
	ok(c, http.StatusCreated, CreateMovieResponse{Message: "movie added successfully", ID: movie.ID})
}

// ExportMovies godoc
// @ID          exportMovies
// @Summary     Export the watchlist
// @Description Serves the raw collection document as a JSON file download.
// @Tags        Movies
// @Produce     json
//
// @Success     200  {array}   domain.Movie
// @Header      200  {string}  Content-Disposition  "attachment; filename=movies.json"
// @Failure     404  {object}  handlers.ErrorResponse  "Watchlist is empty"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage error"
// @Router      /movies/export [get]
func (h *Handlers) ExportMovies(c *gin.Context) {
	data, err := h.svc.Export(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrEmptyWatchlist):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no movie watchlist found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeStorageError, "failed to export movies")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="movies.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// UpdateMovie godoc
// @ID          updateMovie
// @Summary     Update a movie's watch status
// @Description Sets the watch state of one movie and restamps updated_at. The payload may contain the status field only.
// @Tags        Movies
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Movie id"
// @Param       body  body  handlers.UpdateMovieRequest  true  "New watch state"
//
// @Success     200  {object}  handlers.UpdateMovieResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id or payload"
// @Failure     404  {object}  handlers.ErrorResponse  "Movie not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence failure"
// @Router      /movies/{id} [put]
func (h *Handlers) UpdateMovie(c *gin.Context) {
	id, okID := movieID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movie id must be an integer")
		return
	}

	var req UpdateMovieRequest
	if err := decodeStrict(c, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payload must be a JSON object with a status field only")
		return
	}

	movie, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	case errors.Is(err, services.ErrMovieNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "movie not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeStorageError, "failed to update movie")
		return
	}

	ok(c, http.StatusOK, UpdateMovieResponse{Message: "movie updated successfully", Movie: *movie})
}

// DeleteMovie godoc
// @ID          deleteMovie
// @Summary     Delete a movie
// @Description Removes one movie from the watchlist and persists the remainder.
// @Tags        Movies
// @Produce     json
//
// @Param       id  path  int  true  "Movie id"
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Movie not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence failure"
// @Router      /movies/{id} [delete]
func (h *Handlers) DeleteMovie(c *gin.Context) {
	id, okID := movieID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movie id must be an integer")
		return
	}

	err := h.svc.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrMovieNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "movie not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeStorageError, "failed to delete movie")
		return
	}

	ok(c, http.StatusOK, MessageResponse{Message: "movie deleted successfully"})
}
