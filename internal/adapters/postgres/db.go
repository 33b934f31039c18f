// Package postgres implements the country data adapters over PostgreSQL.
// Each country owns its own database and pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is one country's connection pool.
type DB struct {
	Pool    *pgxpool.Pool
	country string
}

// Connect opens and pings a pool for country. The country code is sent as
// the application name so server-side stats can tell the pools apart.
func Connect(ctx context.Context, country, url string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse %s dsn: %w", country, err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.RuntimeParams["application_name"] = "companyhouse-" + country
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", country, err)
	}
	return &DB{Pool: pool, country: country}, nil
}

func (db *DB) Close() { db.Pool.Close() }
