package countries

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"companyhouse/internal/domain"
	"companyhouse/internal/metrics"
	"companyhouse/internal/ports"
)

type GuardConfig struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Registry
}

// Directory pairs every registered country with its guarded adapter.
type Directory struct {
	reg      *Registry
	adapters map[string]ports.CountryAdapter
}

// NewDirectory requires exactly one adapter per registered country.
func NewDirectory(reg *Registry, adapters []ports.CountryAdapter, gc GuardConfig) (*Directory, error) {
	d := &Directory{reg: reg, adapters: make(map[string]ports.CountryAdapter, len(adapters))}
	for _, a := range adapters {
		code := a.Country()
		if !reg.Has(code) {
			return nil, fmt.Errorf("adapter for unregistered country %q", code)
		}
		if _, dup := d.adapters[code]; dup {
			return nil, fmt.Errorf("two adapters for country %q", code)
		}
		d.adapters[code] = NewGuard(a, gc.Timeout, gc.Logger, gc.Metrics)
	}
	for _, code := range reg.Codes() {
		if _, ok := d.adapters[code]; !ok {
			return nil, fmt.Errorf("no adapter for country %q", code)
		}
	}
	return d, nil
}

func (d *Directory) Registry() *Registry { return d.reg }

// Adapter returns the guarded adapter and configuration for code.
func (d *Directory) Adapter(code string) (ports.CountryAdapter, domain.CountryConfig, error) {
	cfg, err := d.reg.Get(code)
	if err != nil {
		return nil, domain.CountryConfig{}, err
	}
	return d.adapters[cfg.Code], cfg, nil
}
