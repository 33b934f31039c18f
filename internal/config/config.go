package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env              string
	ListenAddr       string
	LogLevel         string
	CountriesFile    string
	QueryTimeout     time.Duration
	SearchCacheTTL   time.Duration
	SuggestCacheTTL  time.Duration
	CacheBackend     string // memory|redis|none
	SessionBackend   string // memory|redis|pebble
	RedisURL         string
	SessionTTL       time.Duration
	PebbleDir        string
	CheckoutCurrency string
	SeedDemo         bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		CountriesFile:    os.Getenv("COUNTRIES_FILE"),
		QueryTimeout:     getenvDuration("QUERY_TIMEOUT", 3*time.Second),
		SearchCacheTTL:   getenvDuration("SEARCH_CACHE_TTL", 300*time.Second),
		SuggestCacheTTL:  getenvDuration("SUGGEST_CACHE_TTL", 60*time.Second),
		CacheBackend:     strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		SessionBackend:   strings.ToLower(getenv("SESSION_BACKEND", "memory")),
		RedisURL:         os.Getenv("REDIS_URL"),
		SessionTTL:       getenvDuration("SESSION_TTL", 120*time.Minute),
		PebbleDir:        getenv("PEBBLE_DIR", "./data/sessions"),
		CheckoutCurrency: getenv("CHECKOUT_CURRENCY", "USD"),
		SeedDemo:         getenvBool("SEED_DEMO", false),
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CacheBackend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("CACHE_BACKEND %q not supported", c.CacheBackend)
	}
	switch c.SessionBackend {
	case "memory", "redis", "pebble":
	default:
		return fmt.Errorf("SESSION_BACKEND %q not supported", c.SessionBackend)
	}
	if (c.CacheBackend == "redis" || c.SessionBackend == "redis") && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for redis backends")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	return nil
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
