// Package store persists the watchlist collection as one whole JSON
// document. There is no per-record storage: every operation is
// read-whole / replace-whole, which is the contract the HTTP layer's
// read-modify-write endpoints are built on.
//
// Two implementations exist:
//   - BlobStore: the remote blob object store (production).
//   - SQLiteStore: the same document in a local SQLite row (development,
//     tests).
package store

import (
	"context"

	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// CollectionName is the fixed document name the collection lives under.
const CollectionName = "movies.json"

// Store reads and replaces the whole movie collection document.
type Store interface {
	// GetAll retrieves the full collection. An absent or unreadable document
	// yields an empty collection, not an error; only genuine storage faults
	// (e.g. an unreachable database) are returned as errors.
	GetAll(ctx context.Context) ([]domain.Movie, error)

	// ReplaceAll persists movies as the new collection document, replacing
	// whatever was stored before. There is no partial-write protection; the
	// caller owns the read-modify-write cycle.
	ReplaceAll(ctx context.Context, movies []domain.Movie) error
}
