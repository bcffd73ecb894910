package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/filmlog/go-watchlist-backend/internal/blob"
	"github.com/filmlog/go-watchlist-backend/internal/domain"
)

// BlobStore keeps the collection document in the remote blob object store.
//
// Failure semantics follow the adapter contract: reads never fail the caller
// (they degrade to an empty collection and log), the best-effort delete
// before a write is swallowed, and only the write itself surfaces an error.
// There is no retry and no versioning; a crash between delete and put can
// leave the document missing. That is an accepted limitation of the
// single-document design, not something this layer tries to fix.
type BlobStore struct {
	client   *blob.Client
	pathname string
}

// NewBlobStore returns a BlobStore persisting under pathname
// (CollectionName when empty).
func NewBlobStore(client *blob.Client, pathname string) *BlobStore {
	if pathname == "" {
		pathname = CollectionName
	}
	return &BlobStore{client: client, pathname: pathname}
}

// GetAll fetches and decodes the collection document. Any transport failure,
// a missing document, or a payload that is not a JSON array all yield an
// empty collection.
func (s *BlobStore) GetAll(ctx context.Context) ([]domain.Movie, error) {
	info, ok, err := s.client.Find(ctx, s.pathname)
	if err != nil {
		log.Error().Err(err).Str("pathname", s.pathname).Msg("blob store: list failed, serving empty collection")
		return []domain.Movie{}, nil
	}
	if !ok {
		return []domain.Movie{}, nil
	}

	raw, err := s.client.Fetch(ctx, info.URL)
	if err != nil {
		log.Error().Err(err).Str("url", info.URL).Msg("blob store: fetch failed, serving empty collection")
		return []domain.Movie{}, nil
	}

	var movies []domain.Movie
	if err := json.Unmarshal(raw, &movies); err != nil {
		log.Error().Err(err).Str("pathname", s.pathname).Msg("blob store: document is not a movie array, serving empty collection")
		return []domain.Movie{}, nil
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// ReplaceAll serializes movies and writes them as the new document. The old
// document is deleted first (best effort); a failed delete is logged and the
// write proceeds anyway, since the put under the same pathname supersedes it.
func (s *BlobStore) ReplaceAll(ctx context.Context, movies []domain.Movie) error {
	if movies == nil {
		movies = []domain.Movie{}
	}
	payload, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return fmt.Errorf("blob store: encode collection: %w", err)
	}

	if info, ok, err := s.client.Find(ctx, s.pathname); err != nil {
		log.Warn().Err(err).Str("pathname", s.pathname).Msg("blob store: pre-write lookup failed, skipping delete")
	} else if ok {
		if err := s.client.Delete(ctx, info.URL); err != nil {
			log.Warn().Err(err).Str("url", info.URL).Msg("blob store: best-effort delete failed")
		}
	}

	if _, err := s.client.Put(ctx, s.pathname, payload, "application/json"); err != nil {
		return fmt.Errorf("blob store: write collection: %w", err)
	}
	return nil
}
