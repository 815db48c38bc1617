// Package rendercache persists rendered fragments keyed by their source
// content. Conversion is deterministic, so a cached fragment never goes
// stale; entries are aged out only to bound disk growth.
package rendercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store defines the interface for persisting and retrieving rendered
// fragments.
type Store interface {
	// Get returns the fragment cached under key; ok is false on a miss.
	Get(ctx context.Context, key string) (html []byte, ok bool, err error)

	// Put stores a rendered fragment under key, replacing any previous
	// entry.
	Put(ctx context.Context, key string, html []byte) error

	// Prune removes entries created more than retention ago and reports
	// how many were removed.
	Prune(ctx context.Context, retention time.Duration) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}

// Key derives the cache key for a source buffer rendered under a given
// variant. The variant encodes every option that changes the output, so
// differently configured renders of one source cannot collide.
func Key(src []byte, variant string) string {
	h := sha256.New()
	h.Write(src)
	h.Write([]byte{0})
	h.Write([]byte(variant))
	return hex.EncodeToString(h.Sum(nil))
}
