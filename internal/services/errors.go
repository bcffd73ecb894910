// Package services implements the watchlist business logic on top of the
// document store. This file centralizes service-level error values so they
// can be consistently returned by service methods and checked by callers.
//
// Translation into HTTP statuses and user-facing messages happens at the
// handler layer.
package services

import "errors"

var (
	// ErrTitleRequired is returned when a creation request carries an empty
	// (or whitespace-only) title.
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidYear is returned when the release year falls outside the
	// accepted range [1900, current year + 5].
	ErrInvalidYear = errors.New("valid year is required")

	// ErrInvalidStatus is returned when a status value is outside the
	// allowed set (watched, unwatched).
	ErrInvalidStatus = errors.New("valid status is required")

	// ErrMovieNotFound indicates that no movie with the requested id exists
	// in the collection.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrEmptyWatchlist is returned by Export when the collection holds no
	// movies at all.
	ErrEmptyWatchlist = errors.New("no movie watchlist found")
)
