package postgres

import (
	"context"

	"companyhouse/internal/domain"
)

const stateCompanySelect = `
	SELECT c.id, c.slug, c.name, c.brand_name, c.address, c.state_id, s.name AS state_name
	FROM companies c
	LEFT JOIN states s ON s.id = c.state_id
`

// StateScopedAdapter serves a country whose prices live in a per-state table.
type StateScopedAdapter struct {
	db      *DB
	country string
}

func NewStateScopedAdapter(db *DB, country string) *StateScopedAdapter {
	return &StateScopedAdapter{db: db, country: country}
}

func (a *StateScopedAdapter) Country() string { return a.country }

func (a *StateScopedAdapter) Search(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.db.queryCompanies(ctx, a.country, stateCompanySelect+`
		WHERE c.name ILIKE $1 ESCAPE '\'
		   OR c.brand_name ILIKE $1 ESCAPE '\'
		   OR c.slug ILIKE $1 ESCAPE '\'
		ORDER BY c.id
		LIMIT $2
	`, likePattern(query), limitArg(limit))
}

func (a *StateScopedAdapter) Suggest(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.db.queryCompanies(ctx, a.country, stateCompanySelect+`
		WHERE c.name ILIKE $1 ESCAPE '\'
		ORDER BY c.id
		LIMIT $2
	`, likePattern(query), limitArg(limit))
}

func (a *StateScopedAdapter) FindBySlug(ctx context.Context, slug string) (domain.Company, error) {
	return a.db.queryCompany(ctx, a.country, stateCompanySelect+`WHERE c.slug = $1`, slug)
}

func (a *StateScopedAdapter) FindByID(ctx context.Context, id int64) (domain.Company, error) {
	return a.db.queryCompany(ctx, a.country, stateCompanySelect+`WHERE c.id = $1`, id)
}

// ListReports joins the catalog against the price table for scope's state.
// Without a state there is nothing to price.
func (a *StateScopedAdapter) ListReports(ctx context.Context, scope domain.PricingScope) ([]domain.Report, error) {
	if scope.StateID == nil {
		return []domain.Report{}, nil
	}
	return a.db.queryReports(ctx, `
		SELECT r.id, r.name, r.info, rs.amount::text AS amount, r."order" AS sort_order, (r.status = 1) AS active
		FROM report_state rs
		JOIN reports r ON r.id = rs.report_id
		WHERE rs.state_id = $1 AND r.status = 1
		ORDER BY r."order", r.id
	`, *scope.StateID)
}
