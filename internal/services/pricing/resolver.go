// Package pricing answers "what does report R cost for company C". Every
// price shown or added to a cart is read through Resolver.
package pricing

import (
	"context"
	"fmt"
	"sort"

	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
)

type Resolver struct {
	dir *countries.Directory
}

func New(dir *countries.Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve lists the reports purchasable for company ordered by sort order.
// The country's pricing schema picks the strategy; a state-scoped company
// without a state has no reports.
func (r *Resolver) Resolve(ctx context.Context, company domain.Company) ([]domain.Report, error) {
	adapter, cfg, err := r.dir.Adapter(company.Country)
	if err != nil {
		return nil, err
	}

	var scope domain.PricingScope
	switch cfg.PricingSchema {
	case domain.PricingDirect:
		// company identity plays no part in a direct catalog
	case domain.PricingStateScoped:
		if company.PricingDiscriminant == nil {
			return []domain.Report{}, nil
		}
		scope.StateID = company.PricingDiscriminant
	default:
		return nil, fmt.Errorf("country %q: unknown pricing schema %q", cfg.Code, cfg.PricingSchema)
	}

	reports, err := adapter.ListReports(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s reports: %w", cfg.Code, err)
	}
	return purchasable(reports), nil
}

// Price returns one report as priced for company, or ErrNotFound.
func (r *Resolver) Price(ctx context.Context, company domain.Company, reportID int64) (domain.Report, error) {
	reports, err := r.Resolve(ctx, company)
	if err != nil {
		return domain.Report{}, err
	}
	for _, rep := range reports {
		if rep.ID == reportID {
			return rep, nil
		}
	}
	return domain.Report{}, fmt.Errorf("report %d for %s company %d: %w", reportID, company.Country, company.ID, domain.ErrNotFound)
}

func purchasable(in []domain.Report) []domain.Report {
	out := make([]domain.Report, 0, len(in))
	for _, rep := range in {
		if rep.Active {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
