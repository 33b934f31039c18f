// Package search fans company queries out across every country adapter and
// merges the answers into one ranked list.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/metrics"
	"companyhouse/internal/ports"
	"companyhouse/internal/services/ranking"
)

const (
	DefaultSearchLimit  = 50
	DefaultSuggestLimit = 10

	DefaultSearchTTL  = 300 * time.Second
	DefaultSuggestTTL = 60 * time.Second
)

type Options struct {
	// Cache is optional; nil disables memoization.
	Cache      ports.Cache
	SearchTTL  time.Duration
	SuggestTTL time.Duration
	Logger     *zap.Logger
	Metrics    *metrics.Registry
}

type Engine struct {
	dir        *countries.Directory
	cache      ports.Cache
	searchTTL  time.Duration
	suggestTTL time.Duration
	log        *zap.Logger
	metrics    *metrics.Registry
}

func New(dir *countries.Directory, opts Options) *Engine {
	e := &Engine{
		dir:        dir,
		cache:      opts.Cache,
		searchTTL:  opts.SearchTTL,
		suggestTTL: opts.SuggestTTL,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}
	if e.searchTTL <= 0 {
		e.searchTTL = DefaultSearchTTL
	}
	if e.suggestTTL <= 0 {
		e.suggestTTL = DefaultSuggestTTL
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e
}

// SearchAll queries one country when country is set, otherwise all of them.
// An unknown country is an ErrInvalidCountry; a failing country only
// contributes nothing.
func (e *Engine) SearchAll(ctx context.Context, query, country string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	codes := e.dir.Registry().Codes()
	if country != "" {
		_, cfg, err := e.dir.Adapter(country)
		if err != nil {
			return nil, err
		}
		codes = []string{cfg.Code}
		country = cfg.Code
	}
	key := cacheKey("search", query, country, limit)
	return e.memoize(ctx, "search", key, e.searchTTL, func() ([]domain.SearchResult, bool) {
		found, complete := e.fanOut(ctx, codes, func(ctx context.Context, a ports.CountryAdapter) ([]domain.Company, error) {
			return a.Search(ctx, query, limit)
		})
		return e.rank(found, query, limit), complete
	}), nil
}

// Suggest is the autocomplete variant: name matches only, all countries,
// small limit, shorter cache lifetime.
func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	key := cacheKey("suggest", query, "", limit)
	return e.memoize(ctx, "suggest", key, e.suggestTTL, func() ([]domain.SearchResult, bool) {
		found, complete := e.fanOut(ctx, e.dir.Registry().Codes(), func(ctx context.Context, a ports.CountryAdapter) ([]domain.Company, error) {
			return a.Suggest(ctx, query, limit)
		})
		return e.rank(found, query, limit), complete
	}), nil
}

func (e *Engine) ClearCache(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	if err := e.cache.Flush(ctx); err != nil {
		return fmt.Errorf("flush search cache: %w", err)
	}
	return nil
}

type queryFunc func(ctx context.Context, a ports.CountryAdapter) ([]domain.Company, error)

// fanOut runs fn against every country concurrently and waits for all of
// them. Each country writes only its own slot, and no goroutine reports an
// error to the group, so one failure never cancels the others. complete is
// false when any country failed, timed out or was abandoned by the caller.
func (e *Engine) fanOut(ctx context.Context, codes []string, fn queryFunc) (merged []domain.Company, complete bool) {
	parent := ctx
	ctx, degraded := countries.TrackDegraded(ctx)
	complete = true
	parts := make([][]domain.Company, len(codes))
	var failed atomic.Bool
	markIncomplete := func() { failed.Store(true) }
	var g errgroup.Group
	for i, code := range codes {
		adapter, _, err := e.dir.Adapter(code)
		if err != nil {
			e.log.Error("registered country has no adapter", zap.String("country", code), zap.Error(err))
			complete = false
			continue
		}
		g.Go(func() error {
			found, err := fn(ctx, adapter)
			if err != nil {
				e.log.Warn("country search failed", zap.String("country", code), zap.Error(err))
				markIncomplete()
				return nil
			}
			parts[i] = found
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range parts {
		merged = append(merged, p...)
	}
	if failed.Load() || degraded() || parent.Err() != nil {
		complete = false
	}
	return merged, complete
}

func (e *Engine) rank(found []domain.Company, query string, limit int) []domain.SearchResult {
	reg := e.dir.Registry()
	results := ranking.Rank(found, query, func(code string) string {
		cfg, err := reg.Get(code)
		if err != nil {
			return strings.ToUpper(code)
		}
		return cfg.DisplayName
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// memoize serves key from the cache when possible. Cache faults are logged
// and fall through to compute; entries are written as one complete value.
// A degraded answer is returned to its caller but never stored, so one slow
// or cancelled request cannot hide results from everyone else.
func (e *Engine) memoize(ctx context.Context, op, key string, ttl time.Duration, compute func() ([]domain.SearchResult, bool)) []domain.SearchResult {
	e.metrics.Searches.WithLabelValues(op).Inc()
	if e.cache != nil {
		raw, ok, err := e.cache.Get(ctx, key)
		switch {
		case err != nil:
			e.log.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			var cached []domain.SearchResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				e.metrics.CacheHits.WithLabelValues(op).Inc()
				return cached
			}
			e.log.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
		e.metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	results, complete := compute()
	if !complete {
		e.metrics.Degraded.WithLabelValues(op).Inc()
		e.log.Debug("not caching degraded result", zap.String("key", key))
		return results
	}
	if e.cache != nil {
		raw, err := json.Marshal(results)
		if err == nil {
			err = e.cache.Set(ctx, key, raw, ttl)
		}
		if err != nil {
			e.log.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return results
}

func cacheKey(op, query, country string, limit int) string {
	return fmt.Sprintf("%s|%q|%s|%d", op, strings.ToLower(query), country, limit)
}
