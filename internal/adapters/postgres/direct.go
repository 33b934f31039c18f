package postgres

import (
	"context"

	"companyhouse/internal/domain"
)

const directCompanyColumns = `id, slug, name, former_names, registration_number, address`

// DirectAdapter serves a country whose reports carry their own price.
type DirectAdapter struct {
	db      *DB
	country string
}

func NewDirectAdapter(db *DB, country string) *DirectAdapter {
	return &DirectAdapter{db: db, country: country}
}

func (a *DirectAdapter) Country() string { return a.country }

func (a *DirectAdapter) Search(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.db.queryCompanies(ctx, a.country, `
		SELECT `+directCompanyColumns+` FROM companies
		WHERE name ILIKE $1 ESCAPE '\'
		   OR former_names ILIKE $1 ESCAPE '\'
		   OR registration_number ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT $2
	`, likePattern(query), limitArg(limit))
}

func (a *DirectAdapter) Suggest(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.db.queryCompanies(ctx, a.country, `
		SELECT `+directCompanyColumns+` FROM companies
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT $2
	`, likePattern(query), limitArg(limit))
}

func (a *DirectAdapter) FindBySlug(ctx context.Context, slug string) (domain.Company, error) {
	return a.db.queryCompany(ctx, a.country, `SELECT `+directCompanyColumns+` FROM companies WHERE slug = $1`, slug)
}

func (a *DirectAdapter) FindByID(ctx context.Context, id int64) (domain.Company, error) {
	return a.db.queryCompany(ctx, a.country, `SELECT `+directCompanyColumns+` FROM companies WHERE id = $1`, id)
}

// ListReports ignores scope: every company sees the same catalog.
func (a *DirectAdapter) ListReports(ctx context.Context, _ domain.PricingScope) ([]domain.Report, error) {
	return a.db.queryReports(ctx, `
		SELECT id, name, info, amount::text AS amount, "order" AS sort_order, is_active AS active
		FROM reports
		WHERE is_active
		ORDER BY "order", id
	`)
}
