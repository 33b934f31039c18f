// Package app builds the process-wide dependencies shared by the server and
// the operator CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"companyhouse/internal/adapters/memory"
	pebbleadapter "companyhouse/internal/adapters/pebble"
	pg "companyhouse/internal/adapters/postgres"
	redisadapter "companyhouse/internal/adapters/redis"
	"companyhouse/internal/cache"
	"companyhouse/internal/config"
	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
)

const (
	cachePrefix   = "companyhouse:search:"
	sessionPrefix = "companyhouse:session:"
)

// Closer releases everything opened by a constructor in this package.
type Closer func()

// CountryDB is one country's open pool.
type CountryDB struct {
	Config domain.CountryConfig
	DB     *pg.DB
}

// ConnectCountries opens a pool per registered country, reading each DSN
// from the env var the registry names.
func ConnectCountries(ctx context.Context, reg *countries.Registry) ([]CountryDB, Closer, error) {
	var out []CountryDB
	closeAll := func() {
		for _, c := range out {
			c.DB.Close()
		}
	}
	for _, cfg := range reg.All() {
		dsn := os.Getenv(cfg.DatabaseURLEnv)
		if cfg.DatabaseURLEnv == "" || dsn == "" {
			closeAll()
			return nil, nil, fmt.Errorf("country %s: %s is not set", cfg.Code, envName(cfg))
		}
		db, err := pg.Connect(ctx, cfg.Code, dsn)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("country %s: db connect: %w", cfg.Code, err)
		}
		out = append(out, CountryDB{Config: cfg, DB: db})
	}
	return out, closeAll, nil
}

func envName(cfg domain.CountryConfig) string {
	if cfg.DatabaseURLEnv == "" {
		return "database_url_env"
	}
	return cfg.DatabaseURLEnv
}

// Adapters returns one data adapter per registered country: the demo data
// set when seed is true, Postgres otherwise.
func Adapters(ctx context.Context, reg *countries.Registry, seed bool) ([]ports.CountryAdapter, Closer, error) {
	if seed {
		return memory.Demo(), func() {}, nil
	}
	dbs, closeAll, err := ConnectCountries(ctx, reg)
	if err != nil {
		return nil, nil, err
	}
	out := make([]ports.CountryAdapter, 0, len(dbs))
	for _, c := range dbs {
		switch c.Config.PricingSchema {
		case domain.PricingDirect:
			out = append(out, pg.NewDirectAdapter(c.DB, c.Config.Code))
		case domain.PricingStateScoped:
			out = append(out, pg.NewStateScopedAdapter(c.DB, c.Config.Code))
		}
	}
	return out, closeAll, nil
}

// Stores is the cache and session backends selected by configuration.
type Stores struct {
	Cache    ports.Cache
	Sessions ports.SessionProvider
}

func OpenStores(ctx context.Context, cfg config.Config, log *zap.Logger) (Stores, Closer, error) {
	var (
		st      Stores
		closers []func()
		rdb     *redis.Client
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if cfg.CacheBackend == "redis" || cfg.SessionBackend == "redis" {
		var err error
		rdb, err = redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return st, nil, fmt.Errorf("redis connect: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
	}

	switch cfg.CacheBackend {
	case "redis":
		st.Cache = redisadapter.NewCache(rdb, cachePrefix)
	case "memory":
		st.Cache = cache.NewMemory()
	}

	switch cfg.SessionBackend {
	case "redis":
		st.Sessions = redisadapter.NewSessions(rdb, sessionPrefix, cfg.SessionTTL)
	case "pebble":
		p, err := pebbleadapter.Open(cfg.PebbleDir)
		if err != nil {
			closeAll()
			return st, nil, fmt.Errorf("open session store: %w", err)
		}
		closers = append(closers, func() {
			if err := p.Close(); err != nil {
				log.Warn("session store close failed", zap.Error(err))
			}
		})
		st.Sessions = p
	default:
		st.Sessions = cache.NewSessions()
	}
	log.Info("stores ready",
		zap.String("cache", cfg.CacheBackend),
		zap.String("sessions", cfg.SessionBackend))
	return st, closeAll, nil
}
