// Package domain defines the persisted watchlist model. A Movie is one entry
// in the collection; the whole collection is serialized as a single JSON
// array, so the struct's JSON tags are the storage format as well as the API
// format.
package domain

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the watch state of a movie. Only two values are valid.
type Status string

const (
	StatusWatched   Status = "watched"
	StatusUnwatched Status = "unwatched"
)

// Valid reports whether s is one of the two allowed watch states.
func (s Status) Valid() bool {
	return s == StatusWatched || s == StatusUnwatched
}

// ParseStatus normalizes and validates a raw status string.
// The second return value is false when the input is not a known state.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Year bounds accepted at creation time. The upper bound is relative to the
// current year to allow upcoming releases.
const (
	MinYear       = 1900
	MaxYearOffset = 5
)

// MaxYear returns the newest release year accepted at time now.
func MaxYear(now time.Time) int {
	return now.Year() + MaxYearOffset
}

// Movie is a single watchlist entry.
//
// Fields:
//   - ID: unique int64, generated from a snowflake node at creation time.
//     Snowflake ids are time-ordered, so sorting by ID descending yields
//     newest-first.
//   - Title: display title, trimmed of surrounding whitespace.
//   - Year: release year, validated against [MinYear, MaxYear] on creation.
//   - Status: watched or unwatched.
//   - CreatedAt: set once at creation, immutable thereafter.
//   - UpdatedAt: refreshed on every mutation via Touch.
type Movie struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch returns a copy of m with UpdatedAt refreshed to now (UTC).
// No other field is altered.
func (m Movie) Touch(now time.Time) Movie {
	m.UpdatedAt = now.UTC()
	return m
}

var (
	idNodeOnce sync.Once
	idNode     *snowflake.Node
)

// newID returns a collision-resistant, time-ordered identifier. A snowflake
// node replaces the wall-clock-millisecond ids of earlier iterations, which
// could collide under rapid successive creation.
func newID() int64 {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			// Node number 1 is always in range; reaching this means the
			// snowflake epoch configuration is broken.
			panic(err)
		}
		idNode = n
	})
	return idNode.Generate().Int64()
}

// NewMovie constructs a Movie with a fresh id and both timestamps set to now.
// The title is trimmed; no further validation happens here — input rules are
// enforced by the caller (see services.MovieService).
func NewMovie(title string, year int, status Status, now time.Time) Movie {
	now = now.UTC()
	return Movie{
		ID:        newID(),
		Title:     strings.TrimSpace(title),
		Year:      year,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
