package countries

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"companyhouse/internal/domain"
	"companyhouse/internal/metrics"
	"companyhouse/internal/ports"
)

// Guard wraps a CountryAdapter so that a failing or slow data source never
// escapes as an error: list queries degrade to empty results and lookups to
// ErrNotFound, with a logged diagnostic.
type Guard struct {
	next    ports.CountryAdapter
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Registry
}

func NewGuard(next ports.CountryAdapter, timeout time.Duration, log *zap.Logger, m *metrics.Registry) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Guard{next: next, timeout: timeout, log: log, metrics: m}
}

func (g *Guard) Country() string { return g.next.Country() }

func (g *Guard) Search(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	var out []domain.Company
	err := g.run(ctx, "search", func(ctx context.Context) (err error) {
		out, err = g.next.Search(ctx, query, limit)
		return err
	})
	if err != nil {
		return []domain.Company{}, nil
	}
	return capCompanies(out, limit), nil
}

func (g *Guard) Suggest(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	var out []domain.Company
	err := g.run(ctx, "suggest", func(ctx context.Context) (err error) {
		out, err = g.next.Suggest(ctx, query, limit)
		return err
	})
	if err != nil {
		return []domain.Company{}, nil
	}
	return capCompanies(out, limit), nil
}

func (g *Guard) FindBySlug(ctx context.Context, slug string) (domain.Company, error) {
	var out domain.Company
	err := g.run(ctx, "find_by_slug", func(ctx context.Context) (err error) {
		out, err = g.next.FindBySlug(ctx, slug)
		return err
	})
	if err != nil {
		return domain.Company{}, fmt.Errorf("%s company %q: %w", g.Country(), slug, domain.ErrNotFound)
	}
	return out, nil
}

func (g *Guard) FindByID(ctx context.Context, id int64) (domain.Company, error) {
	var out domain.Company
	err := g.run(ctx, "find_by_id", func(ctx context.Context) (err error) {
		out, err = g.next.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Company{}, fmt.Errorf("%s company %d: %w", g.Country(), id, domain.ErrNotFound)
	}
	return out, nil
}

func (g *Guard) ListReports(ctx context.Context, scope domain.PricingScope) ([]domain.Report, error) {
	var out []domain.Report
	err := g.run(ctx, "list_reports", func(ctx context.Context) (err error) {
		out, err = g.next.ListReports(ctx, scope)
		return err
	})
	if err != nil || out == nil {
		return []domain.Report{}, nil
	}
	return out, nil
}

type degradedKey struct{}

// TrackDegraded returns a context that records whether any guarded call made
// with it failed or was cut short, and a func reporting that. Callers use it
// to tell a genuine empty answer from a degraded one.
func TrackDegraded(ctx context.Context) (context.Context, func() bool) {
	flag := new(atomic.Bool)
	return context.WithValue(ctx, degradedKey{}, flag), flag.Load
}

func markDegraded(ctx context.Context) {
	if flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

// run executes fn under the guard timeout. It returns fn's error unchanged so
// callers can tell a miss from a failure. A caller that gave up is not a
// source outage: only failures under a live caller context are counted and
// logged at warn.
func (g *Guard) run(ctx context.Context, op string, fn func(context.Context) error) error {
	parent := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	country := g.Country()
	start := time.Now()
	err := fn(ctx)
	g.metrics.AdapterLatency.WithLabelValues(country, op).Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	markDegraded(parent)
	if parent.Err() != nil {
		g.log.Debug("country query abandoned by caller",
			zap.String("country", country),
			zap.String("op", op),
			zap.Error(parent.Err()))
		return err
	}
	g.metrics.AdapterFailures.WithLabelValues(country, op).Inc()
	g.log.Warn("country data source failed",
		zap.String("country", country),
		zap.String("op", op),
		zap.Error(err))
	return err
}

func capCompanies(in []domain.Company, limit int) []domain.Company {
	if in == nil {
		return []domain.Company{}
	}
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
