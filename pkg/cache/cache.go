// Package cache stores computed metric reports keyed by diagram content.
//
// Three backends implement [Cache]:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys come from a [Keyer]. Keys depend on a hash of the diagram's canonical
// encoding, so an unchanged diagram hits the cache regardless of file name.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultTTL is how long reports stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// ReportKeyOpts holds the options that change a report for the same diagram.
type ReportKeyOpts struct {
	WithCrossings bool `json:"with_crossings,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	ReportKey(diagramHash string, opts ReportKeyOpts) string
}

// DefaultKeyer produces "report:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey hashes the diagram hash together with opts.
func (DefaultKeyer) ReportKey(diagramHash string, opts ReportKeyOpts) string {
	return hashKey("report", diagramHash, opts)
}
