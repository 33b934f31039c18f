package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"companyhouse/internal/domain"
)

//go:embed migrations
var migrations embed.FS

func migrationDir(schema domain.PricingSchema) (string, error) {
	switch schema {
	case domain.PricingDirect:
		return "migrations/direct", nil
	case domain.PricingStateScoped:
		return "migrations/statescoped", nil
	}
	return "", fmt.Errorf("no migrations for pricing schema %q", schema)
}

// Migrate applies the embedded schema for a country's pricing schema and
// returns the resulting version.
func (db *DB) Migrate(ctx context.Context, schema domain.PricingSchema) (int64, error) {
	dir, err := migrationDir(schema)
	if err != nil {
		return 0, err
	}
	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return 0, err
	}
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, sub)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("migrate %s (%s): %w", db.country, schema, err)
	}
	return provider.GetDBVersion(ctx)
}
