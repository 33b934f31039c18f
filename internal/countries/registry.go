// Package countries holds the static country registry and the guarded set of
// per-country data adapters built from it.
package countries

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"companyhouse/internal/domain"
)

// Registry is the read-only lookup table of supported countries, in
// configuration order.
type Registry struct {
	order  []string
	byCode map[string]domain.CountryConfig
}

func NewRegistry(cfgs ...domain.CountryConfig) (*Registry, error) {
	r := &Registry{byCode: make(map[string]domain.CountryConfig, len(cfgs))}
	for _, c := range cfgs {
		c.Code = strings.ToLower(strings.TrimSpace(c.Code))
		if c.Code == "" {
			return nil, fmt.Errorf("country code is required")
		}
		if !c.PricingSchema.Valid() {
			return nil, fmt.Errorf("country %s: unknown pricing schema %q", c.Code, c.PricingSchema)
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, fmt.Errorf("country %s configured twice", c.Code)
		}
		if c.DisplayName == "" {
			c.DisplayName = strings.ToUpper(c.Code)
		}
		r.byCode[c.Code] = c
		r.order = append(r.order, c.Code)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("no countries configured")
	}
	return r, nil
}

// Default returns the built-in Singapore/Mexico registry.
func Default() *Registry {
	r, err := NewRegistry(
		domain.CountryConfig{Code: "sg", DisplayName: "Singapore", Currency: "SGD", PricingSchema: domain.PricingDirect, DatabaseURLEnv: "SG_DATABASE_URL"},
		domain.CountryConfig{Code: "mx", DisplayName: "Mexico", Currency: "MXN", PricingSchema: domain.PricingStateScoped, DatabaseURLEnv: "MX_DATABASE_URL"},
	)
	if err != nil {
		panic(err)
	}
	return r
}

type fileEntry struct {
	Code           string `mapstructure:"code"`
	DisplayName    string `mapstructure:"display_name"`
	Currency       string `mapstructure:"currency"`
	PricingSchema  string `mapstructure:"pricing_schema"`
	DatabaseURLEnv string `mapstructure:"database_url_env"`
}

// Load reads a registry from a config file (any format viper understands).
// An empty path yields Default().
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read countries file: %w", err)
	}
	var entries []fileEntry
	if err := v.UnmarshalKey("countries", &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal countries: %w", err)
	}
	cfgs := make([]domain.CountryConfig, 0, len(entries))
	for _, e := range entries {
		cfgs = append(cfgs, domain.CountryConfig{
			Code:           e.Code,
			DisplayName:    e.DisplayName,
			Currency:       e.Currency,
			PricingSchema:  domain.PricingSchema(e.PricingSchema),
			DatabaseURLEnv: e.DatabaseURLEnv,
		})
	}
	return NewRegistry(cfgs...)
}

// Get fails with ErrInvalidCountry for unknown codes.
func (r *Registry) Get(code string) (domain.CountryConfig, error) {
	c, ok := r.byCode[strings.ToLower(code)]
	if !ok {
		return domain.CountryConfig{}, domain.InvalidCountry(code)
	}
	return c, nil
}

func (r *Registry) Has(code string) bool {
	_, ok := r.byCode[strings.ToLower(code)]
	return ok
}

func (r *Registry) Codes() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) All() []domain.CountryConfig {
	out := make([]domain.CountryConfig, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}
