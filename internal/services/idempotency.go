// Package services – idempotency recorder.
//
// Creation requests may carry an Idempotency-Key header. Because the storage
// layer is a single non-versioned document, a client retry after a lost
// response would append the same movie twice; the recorder lets the create
// handler answer such retries with the originally assigned id instead of
// appending again.
//
// The recorder is process-local and in-memory on purpose: the system targets
// a single concurrent user, and the stored document offers no place to keep
// request journals. Entries expire after a TTL and are garbage-collected
// opportunistically during lookups, the same way the rate limiter evicts
// idle buckets.
package services

import (
	"sync"
	"time"
)

// idemEntry remembers the movie created for one key and when the memory of
// it lapses.
type idemEntry struct {
	movieID int64
	expires time.Time
}

// IdempotencyRecorder maps idempotency keys to the id of the movie their
// original request created. It is safe for concurrent use.
type IdempotencyRecorder struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]idemEntry
	lookups uint64
}

// NewIdempotencyRecorder returns a recorder whose entries live for ttl.
// Non-positive ttl values default to 24h.
func NewIdempotencyRecorder(ttl time.Duration) *IdempotencyRecorder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyRecorder{
		ttl:     ttl,
		entries: make(map[string]idemEntry),
	}
}

// Lookup returns the movie id recorded for key, if a live entry exists at
// time now. Expired entries are treated as absent.
func (r *IdempotencyRecorder) Lookup(key string, now time.Time) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Opportunistic cleanup after a threshold of lookups, before reading the
	// requested entry so that an expired entry cannot be resurrected.
	r.lookups++
	if r.lookups >= 5000 {
		for k, e := range r.entries {
			if !e.expires.After(now) {
				delete(r.entries, k)
			}
		}
		r.lookups = 0
	}

	e, ok := r.entries[key]
	if !ok || !e.expires.After(now) {
		return 0, false
	}
	return e.movieID, true
}

// Record stores the movie id created for key, valid for the recorder's TTL
// from now.
func (r *IdempotencyRecorder) Record(key string, movieID int64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = idemEntry{movieID: movieID, expires: now.Add(r.ttl)}
}
