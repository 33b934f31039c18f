package ports

import (
	"context"

	"companyhouse/internal/domain"
)

// Searcher runs ranked company searches across countries.
type Searcher interface {
	SearchAll(ctx context.Context, query, country string, limit int) ([]domain.SearchResult, error)
	Suggest(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	ClearCache(ctx context.Context) error
}

// Companies resolves companies and their purchasable reports.
type Companies interface {
	ResolveBySlug(ctx context.Context, slug string) (domain.Company, error)
	FindByID(ctx context.Context, country string, id int64) (domain.Company, error)
	Detail(ctx context.Context, slug string) (domain.CompanyDetail, error)
	DetailByID(ctx context.Context, country string, id int64) (domain.CompanyDetail, error)
}
