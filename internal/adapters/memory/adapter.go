// Package memory is an in-process country data source. It backs tests and the
// demo data set served when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"companyhouse/internal/domain"
)

// StatePrice is one row of a state-scoped price table.
type StatePrice struct {
	ReportID int64
	StateID  int64
	Amount   decimal.Decimal
}

// Adapter implements ports.CountryAdapter over slices held in memory.
type Adapter struct {
	mu        sync.RWMutex
	country   string
	schema    domain.PricingSchema
	companies []domain.Company
	reports   []domain.Report
	states    map[int64]string
	prices    []StatePrice
	failure   error
	delay     time.Duration
}

// NewDirect builds a source whose reports carry their own price.
func NewDirect(country string, companies []domain.Company, reports []domain.Report) *Adapter {
	return &Adapter{
		country:   country,
		schema:    domain.PricingDirect,
		companies: stamp(country, companies),
		reports:   reports,
	}
}

// NewStateScoped builds a source priced through a per-state table. Report
// prices on the catalog rows are ignored.
func NewStateScoped(country string, companies []domain.Company, reports []domain.Report, states map[int64]string, prices []StatePrice) *Adapter {
	return &Adapter{
		country:   country,
		schema:    domain.PricingStateScoped,
		companies: stamp(country, companies),
		reports:   reports,
		states:    states,
		prices:    prices,
	}
}

func stamp(country string, in []domain.Company) []domain.Company {
	out := make([]domain.Company, len(in))
	for i, c := range in {
		c.Country = country
		out[i] = c
	}
	return out
}

// FailWith makes every subsequent query return err; nil restores service.
func (a *Adapter) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failure = err
}

// SetDelay makes every query wait d (or until ctx is done) before answering.
func (a *Adapter) SetDelay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// SetState moves a company to another state, as a data correction would.
func (a *Adapter) SetState(companyID int64, stateID *int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.companies {
		if a.companies[i].ID == companyID {
			a.companies[i].PricingDiscriminant = stateID
		}
	}
}

func (a *Adapter) Country() string { return a.country }

func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.match(ctx, query, limit, false)
}

func (a *Adapter) Suggest(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return a.match(ctx, query, limit, true)
}

func (a *Adapter) match(ctx context.Context, query string, limit int, nameOnly bool) ([]domain.Company, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	q := strings.ToLower(query)
	out := []domain.Company{}
	for _, c := range a.companies {
		if limit > 0 && len(out) >= limit {
			break
		}
		fields := []string{c.Name}
		if !nameOnly {
			fields = append(fields, a.secondary(c)...)
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, a.decorate(c))
				break
			}
		}
	}
	return out, nil
}

func (a *Adapter) secondary(c domain.Company) []string {
	var out []string
	add := func(p *string) {
		if p != nil {
			out = append(out, *p)
		}
	}
	if a.schema == domain.PricingStateScoped {
		add(c.BrandName)
		out = append(out, c.Slug)
	} else {
		add(c.FormerNames)
		add(c.RegistrationNumber)
	}
	return out
}

func (a *Adapter) decorate(c domain.Company) domain.Company {
	if c.PricingDiscriminant != nil {
		if name, ok := a.states[*c.PricingDiscriminant]; ok {
			c.StateName = &name
		}
	}
	return c
}

func (a *Adapter) FindBySlug(ctx context.Context, slug string) (domain.Company, error) {
	return a.find(ctx, func(c domain.Company) bool { return c.Slug == slug })
}

func (a *Adapter) FindByID(ctx context.Context, id int64) (domain.Company, error) {
	return a.find(ctx, func(c domain.Company) bool { return c.ID == id })
}

func (a *Adapter) find(ctx context.Context, pred func(domain.Company) bool) (domain.Company, error) {
	if err := a.wait(ctx); err != nil {
		return domain.Company{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, c := range a.companies {
		if pred(c) {
			return a.decorate(c), nil
		}
	}
	return domain.Company{}, domain.ErrNotFound
}

func (a *Adapter) ListReports(ctx context.Context, scope domain.PricingScope) ([]domain.Report, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.schema == domain.PricingDirect {
		return append([]domain.Report(nil), a.reports...), nil
	}
	if scope.StateID == nil {
		return []domain.Report{}, nil
	}
	out := []domain.Report{}
	for _, p := range a.prices {
		if p.StateID != *scope.StateID {
			continue
		}
		for _, r := range a.reports {
			if r.ID == p.ReportID {
				r.Price = p.Amount
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (a *Adapter) wait(ctx context.Context) error {
	a.mu.RLock()
	failure, delay := a.failure, a.delay
	a.mu.RUnlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return failure
}
