package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"companyhouse/internal/domain"
)

type companyRow struct {
	ID                 int64   `db:"id"`
	Slug               string  `db:"slug"`
	Name               string  `db:"name"`
	FormerNames        *string `db:"former_names"`
	RegistrationNumber *string `db:"registration_number"`
	BrandName          *string `db:"brand_name"`
	Address            *string `db:"address"`
	StateID            *int64  `db:"state_id"`
	StateName          *string `db:"state_name"`
}

func (r companyRow) toDomain(country string) domain.Company {
	return domain.Company{
		ID:                  r.ID,
		Country:             country,
		Name:                r.Name,
		Slug:                r.Slug,
		RegistrationNumber:  r.RegistrationNumber,
		FormerNames:         r.FormerNames,
		BrandName:           r.BrandName,
		Address:             r.Address,
		PricingDiscriminant: r.StateID,
		StateName:           r.StateName,
	}
}

// amount is selected as text so it can be parsed without float rounding.
type reportRow struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	Info      *string `db:"info"`
	Amount    string  `db:"amount"`
	SortOrder int     `db:"sort_order"`
	Active    bool    `db:"active"`
}

func (r reportRow) toDomain() (domain.Report, error) {
	price, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Report{}, fmt.Errorf("report %d amount %q: %w", r.ID, r.Amount, err)
	}
	rep := domain.Report{ID: r.ID, Name: r.Name, Price: price, SortOrder: r.SortOrder, Active: r.Active}
	if r.Info != nil {
		rep.Description = *r.Info
	}
	return rep, nil
}

// likePattern builds a contains-pattern with LIKE metacharacters escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (db *DB) queryCompanies(ctx context.Context, country, sql string, args ...any) ([]domain.Company, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[companyRow])
	if err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(found))
	for _, r := range found {
		out = append(out, r.toDomain(country))
	}
	return out, nil
}

func (db *DB) queryCompany(ctx context.Context, country, sql string, args ...any) (domain.Company, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return domain.Company{}, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[companyRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Company{}, err
	}
	return row.toDomain(country), nil
}

func (db *DB) queryReports(ctx context.Context, sql string, args ...any) ([]domain.Report, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[reportRow])
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(found))
	for _, r := range found {
		rep, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}
