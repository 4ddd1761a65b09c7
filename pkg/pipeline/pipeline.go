// Package pipeline runs metric analysis with caching and optional report
// persistence. Both the CLI and the HTTP server go through a [Runner] so
// they share one code path for hashing, caching, timeouts and logging.
package pipeline

import (
	"time"

	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/metrics"
)

// Options controls a single analysis.
type Options struct {
	// Timeout bounds the longest-path search. Zero means no limit.
	Timeout time.Duration

	// WithCrossings also lists the individual crossing segment pairs.
	WithCrossings bool

	// Save persists the report to the runner's store, if it has one.
	Save bool
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.Timeout < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// Result is the outcome of [Runner.Analyze].
type Result struct {
	Report      metrics.Report     `json:"report"`
	Crossings   []metrics.Crossing `json:"crossings,omitempty"`
	DiagramHash string             `json:"diagram_hash"`
	RecordID    string             `json:"record_id,omitempty"`
	CacheHit    bool               `json:"cache_hit"`
	Duration    time.Duration      `json:"duration_ns"`
}

// cached is the payload stored in the cache.
type cached struct {
	Report    metrics.Report     `json:"report"`
	Crossings []metrics.Crossing `json:"crossings,omitempty"`
}
