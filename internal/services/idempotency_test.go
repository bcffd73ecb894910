package services

import (
	"testing"
	"time"
)

func TestIdempotencyRecorder_RecordAndLookup(t *testing.T) {
	r := NewIdempotencyRecorder(time.Hour)
	now := time.Now()

	if _, hit := r.Lookup("k1", now); hit {
		t.Fatalf("unexpected hit before recording")
	}

	r.Record("k1", 12345, now)

	id, hit := r.Lookup("k1", now.Add(time.Minute))
	if !hit || id != 12345 {
		t.Fatalf("lookup = (%d, %v), want (12345, true)", id, hit)
	}
}

func TestIdempotencyRecorder_Expiry(t *testing.T) {
	r := NewIdempotencyRecorder(time.Minute)
	now := time.Now()

	r.Record("k1", 1, now)

	if _, hit := r.Lookup("k1", now.Add(2*time.Minute)); hit {
		t.Fatalf("expired key must not hit")
	}
}

func TestIdempotencyRecorder_TTLDefault(t *testing.T) {
	r := NewIdempotencyRecorder(0)
	now := time.Now()

	r.Record("k1", 1, now)
	if _, hit := r.Lookup("k1", now.Add(23*time.Hour)); !hit {
		t.Fatalf("default TTL should keep keys for 24h")
	}
	if _, hit := r.Lookup("k1", now.Add(25*time.Hour)); hit {
		t.Fatalf("default TTL should expire keys after 24h")
	}
}
