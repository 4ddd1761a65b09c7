package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutmetrics/pkg/cache"
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/metrics"
	"github.com/matzehuels/layoutmetrics/pkg/observability"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

// Runner encapsulates analysis with caching. It holds no per-run state, so
// one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer, a nil logger uses log.Default(). The store may
// be nil, in which case Options.Save is ignored.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// Close releases the cache and store.
func (r *Runner) Close(ctx context.Context) error {
	err := r.Cache.Close()
	if r.Store != nil {
		err = errors.Join(err, r.Store.Close(ctx))
	}
	return err
}

// Hash returns the content hash of d used for cache keys and records.
func Hash(d *diagram.Diagram) (string, error) {
	data, err := diagram.Marshal(d)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode diagram")
	}
	return cache.Hash(data), nil
}

// Analyze computes the metrics for d, consulting the cache first.
func (r *Runner) Analyze(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	hash, err := Hash(d)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.ReportKey(hash, cache.ReportKeyOpts{WithCrossings: opts.WithCrossings})

	res := &Result{DiagramHash: hash}
	if c, ok := r.lookup(ctx, key); ok {
		res.Report, res.Crossings, res.CacheHit = c.Report, c.Crossings, true
		r.Logger.Debug("report cache hit", "diagram", d.Name(), "hash", hash[:12])
	} else {
		c, err := r.compute(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		res.Report, res.Crossings = c.Report, c.Crossings
		r.store(ctx, key, c)
	}

	if opts.Save && r.Store != nil {
		rec := store.NewRecord(d.Name(), hash, res.Report)
		if err := r.Store.Save(ctx, rec); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "save report")
		}
		res.RecordID = rec.ID
	}

	res.Duration = time.Since(start)
	r.Logger.Info("computed metrics",
		"diagram", d.Name(),
		"crossings", res.Report.Crossings,
		"segments", res.Report.Segments,
		"longest_path", res.Report.LongestPathLength,
		"cached", res.CacheHit,
		"duration", res.Duration.Round(time.Microsecond))
	return res, nil
}

func (r *Runner) compute(ctx context.Context, d *diagram.Diagram, opts Options) (*cached, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	observability.Analysis().OnAnalyzeStart(ctx, d.Name(), d.NodeCount(), d.FlowCount())
	start := time.Now()
	report, err := metrics.Analyze(ctx, d)
	observability.Analysis().OnAnalyzeComplete(ctx, d.Name(), time.Since(start), err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, err, "longest path search exceeded %s", opts.Timeout)
	case errors.Is(err, context.Canceled):
		return nil, apperrors.Wrap(apperrors.ErrCodeCanceled, err, "analysis canceled")
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "analyze")
	}

	c := &cached{Report: *report}
	if opts.WithCrossings {
		c.Crossings = metrics.Crossings(d)
	}
	return c, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*cached, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var c cached
	if err := json.Unmarshal(data, &c); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "err", err)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	return &c, true
}

func (r *Runner) store(ctx context.Context, key string, c *cached) {
	data, err := json.Marshal(c)
	if err != nil {
		r.Logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache write failed", "err", fmt.Errorf("set %s: %w", key, err))
	}
}
