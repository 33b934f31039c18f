// Package companies resolves companies across every country's data source.
package companies

import (
	"context"
	"errors"
	"fmt"

	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/services/pricing"
)

type Service struct {
	dir    *countries.Directory
	prices *pricing.Resolver
}

func New(dir *countries.Directory, prices *pricing.Resolver) *Service {
	return &Service{dir: dir, prices: prices}
}

// ResolveBySlug asks each country in registry order and returns the first
// company carrying slug.
func (s *Service) ResolveBySlug(ctx context.Context, slug string) (domain.Company, error) {
	for _, code := range s.dir.Registry().Codes() {
		adapter, _, err := s.dir.Adapter(code)
		if err != nil {
			return domain.Company{}, err
		}
		c, err := adapter.FindBySlug(ctx, slug)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Company{}, err
		}
	}
	return domain.Company{}, fmt.Errorf("company %q: %w", slug, domain.ErrNotFound)
}

// FindByID looks a company up by its id within one country. A source that
// could not answer is ErrUnavailable rather than a miss.
func (s *Service) FindByID(ctx context.Context, country string, id int64) (domain.Company, error) {
	adapter, cfg, err := s.dir.Adapter(country)
	if err != nil {
		return domain.Company{}, err
	}
	lookup, degraded := countries.TrackDegraded(ctx)
	c, err := adapter.FindByID(lookup, id)
	if err != nil && degraded() {
		return domain.Company{}, fmt.Errorf("%s company %d: %w", cfg.Code, id, domain.ErrUnavailable)
	}
	return c, err
}

// Detail is the company page: the company plus what can be bought for it.
func (s *Service) Detail(ctx context.Context, slug string) (domain.CompanyDetail, error) {
	c, err := s.ResolveBySlug(ctx, slug)
	if err != nil {
		return domain.CompanyDetail{}, err
	}
	return s.describe(ctx, c)
}

// DetailByID is Detail for a company addressed by country and id.
func (s *Service) DetailByID(ctx context.Context, country string, id int64) (domain.CompanyDetail, error) {
	c, err := s.FindByID(ctx, country, id)
	if err != nil {
		return domain.CompanyDetail{}, err
	}
	return s.describe(ctx, c)
}

func (s *Service) describe(ctx context.Context, c domain.Company) (domain.CompanyDetail, error) {
	cfg, err := s.dir.Registry().Get(c.Country)
	if err != nil {
		return domain.CompanyDetail{}, err
	}
	reports, err := s.prices.Resolve(ctx, c)
	if err != nil {
		return domain.CompanyDetail{}, err
	}
	return domain.CompanyDetail{
		Company:     c,
		CountryName: cfg.DisplayName,
		Currency:    cfg.Currency,
		Reports:     reports,
	}, nil
}
