package ports

import (
	"context"

	"companyhouse/internal/domain"
)

// CountryAdapter queries one country's data source and normalises its rows
// into domain records. Implementations are read-only.
type CountryAdapter interface {
	Country() string
	// Search matches name and the country's secondary identity fields.
	Search(ctx context.Context, query string, limit int) ([]domain.Company, error)
	// Suggest matches on name only.
	Suggest(ctx context.Context, query string, limit int) ([]domain.Company, error)
	FindBySlug(ctx context.Context, slug string) (domain.Company, error)
	FindByID(ctx context.Context, id int64) (domain.Company, error)
	// ListReports returns priced reports for the given scope, ordered by sort order.
	ListReports(ctx context.Context, scope domain.PricingScope) ([]domain.Report, error)
}
