// Package cart keeps a session's report cart. Every mutation loads the whole
// item list from the session store, changes it in memory and writes it back.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/metrics"
	"companyhouse/internal/ports"
	"companyhouse/internal/services/pricing"
)

const (
	StoreKey    = "cart_items"
	MinQuantity = 1
	MaxQuantity = 10

	lockStripes = 64
)

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Registry
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service hands out per-session ledgers. Mutations for one session id are
// serialized within the process.
type Service struct {
	sessions ports.SessionProvider
	dir      *countries.Directory
	prices   *pricing.Resolver
	log      *zap.Logger
	metrics  *metrics.Registry
	now      func() time.Time
	stripes  [lockStripes]sync.Mutex
}

func New(sessions ports.SessionProvider, dir *countries.Directory, prices *pricing.Resolver, opts Options) *Service {
	s := &Service{
		sessions: sessions,
		dir:      dir,
		prices:   prices,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ledger returns the cart of one session.
func (s *Service) Ledger(sessionID string) *Ledger {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &Ledger{
		svc:   s,
		store: s.sessions.Session(sessionID),
		mu:    &s.stripes[h.Sum32()%lockStripes],
	}
}

type Ledger struct {
	svc   *Service
	store ports.SessionStore
	mu    *sync.Mutex
}

// ComputeIdentity is Identity with the schema taken from the registry.
func (l *Ledger) ComputeIdentity(companyID, reportID int64, country string, discriminant *int64) (string, error) {
	cfg, err := l.svc.dir.Registry().Get(country)
	if err != nil {
		return "", err
	}
	return Identity(cfg.PricingSchema, companyID, reportID, cfg.Code, discriminant), nil
}

// Add puts one report for one company into the cart at the price the
// resolver quotes now. An item already in the cart is a *domain.DuplicateError;
// quantities are never merged.
func (l *Ledger) Add(ctx context.Context, companyID, reportID int64, country string, quantity int) (domain.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return domain.CartItem{}, err
	}
	adapter, cfg, err := l.svc.dir.Adapter(country)
	if err != nil {
		return domain.CartItem{}, err
	}
	company, err := adapter.FindByID(ctx, companyID)
	if err != nil {
		return domain.CartItem{}, err
	}
	report, err := l.svc.prices.Price(ctx, company, reportID)
	if err != nil {
		return domain.CartItem{}, err
	}

	item := domain.CartItem{
		ID:                  Identity(cfg.PricingSchema, company.ID, report.ID, cfg.Code, company.PricingDiscriminant),
		CompanyID:           company.ID,
		ReportID:            report.ID,
		Country:             cfg.Code,
		PricingDiscriminant: company.PricingDiscriminant,
		Quantity:            quantity,
		CompanyName:         company.Name,
		ReportName:          report.Name,
		UnitPrice:           report.Price,
		AddedAt:             l.svc.now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx)
	if err != nil {
		return domain.CartItem{}, err
	}
	if i := indexOf(items, item.ID); i >= 0 {
		return domain.CartItem{}, &domain.DuplicateError{Existing: Describe(items[i])}
	}
	if err := l.save(ctx, append(items, item)); err != nil {
		return domain.CartItem{}, err
	}
	l.mutated("add")
	l.svc.log.Debug("cart item added",
		zap.String("item", item.ID),
		zap.String("country", item.Country),
		zap.Int64("company_id", item.CompanyID),
		zap.Int64("report_id", item.ReportID))
	return item, nil
}

func (l *Ledger) IsPresent(ctx context.Context, companyID, reportID int64, country string) (bool, error) {
	info, err := l.DescribeDuplicate(ctx, companyID, reportID, country)
	return info != nil, err
}

// DescribeDuplicate returns the display details of the item Add would collide
// with, or nil when there is none.
func (l *Ledger) DescribeDuplicate(ctx context.Context, companyID, reportID int64, country string) (*domain.DuplicateInfo, error) {
	id, err := l.identityFor(ctx, companyID, reportID, country)
	if err != nil {
		return nil, err
	}
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(items, id); i >= 0 {
		info := Describe(items[i])
		return &info, nil
	}
	return nil, nil
}

// identityFor computes the identity Add would assign. State-scoped countries
// need the company's current state; a company that does not exist hashes as
// stateless. When the source could not answer the state is unknown, and
// guessing stateless would report a cart item as absent, so that is
// ErrUnavailable.
func (l *Ledger) identityFor(ctx context.Context, companyID, reportID int64, country string) (string, error) {
	adapter, cfg, err := l.svc.dir.Adapter(country)
	if err != nil {
		return "", err
	}
	var discriminant *int64
	if cfg.PricingSchema == domain.PricingStateScoped {
		lookup, degraded := countries.TrackDegraded(ctx)
		c, err := adapter.FindByID(lookup, companyID)
		switch {
		case err == nil:
			discriminant = c.PricingDiscriminant
		case degraded():
			return "", fmt.Errorf("%s company %d: %w", cfg.Code, companyID, domain.ErrUnavailable)
		case !errors.Is(err, domain.ErrNotFound):
			return "", err
		}
	}
	return Identity(cfg.PricingSchema, companyID, reportID, cfg.Code, discriminant), nil
}

// Remove drops itemID. Removing an item that is not there is not an error.
func (l *Ledger) Remove(ctx context.Context, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, itemID)
	if i < 0 {
		return nil
	}
	if err := l.save(ctx, append(items[:i], items[i+1:]...)); err != nil {
		return err
	}
	l.mutated("remove")
	return nil
}

func (l *Ledger) UpdateQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return domain.CartItem{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx)
	if err != nil {
		return domain.CartItem{}, err
	}
	i := indexOf(items, itemID)
	if i < 0 {
		return domain.CartItem{}, fmt.Errorf("cart item %s: %w", itemID, domain.ErrNotFound)
	}
	items[i].Quantity = quantity
	if err := l.save(ctx, items); err != nil {
		return domain.CartItem{}, err
	}
	l.mutated("update")
	return items[i], nil
}

func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Delete(ctx, StoreKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	l.mutated("clear")
	return nil
}

// Settle removes the paid items, matched by id and quantity, in one locked
// step. Anything added or changed after paid was read stays in the cart.
func (l *Ledger) Settle(ctx context.Context, paid []domain.CartItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, err := l.load(ctx)
	if err != nil {
		return err
	}
	settled := make(map[string]int, len(paid))
	for _, it := range paid {
		settled[it.ID] = it.Quantity
	}
	kept := items[:0]
	for _, it := range items {
		if q, ok := settled[it.ID]; ok && q == it.Quantity {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) == 0 {
		err = l.store.Delete(ctx, StoreKey)
	} else {
		err = l.save(ctx, kept)
	}
	if err != nil {
		return fmt.Errorf("settle cart: %w", err)
	}
	l.mutated("settle")
	return nil
}

// Items returns the cart in insertion order.
func (l *Ledger) Items(ctx context.Context) ([]domain.CartItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *Ledger) TotalCount(ctx context.Context) (int, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return 0, err
	}
	return Count(items), nil
}

func (l *Ledger) TotalPrice(ctx context.Context) (decimal.Decimal, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(items), nil
}

// Count sums item quantities.
func Count(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Total sums unit price × quantity over items. Prices from different
// countries are added as plain amounts; no currency conversion happens.
func Total(items []domain.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (l *Ledger) load(ctx context.Context) ([]domain.CartItem, error) {
	raw, ok, err := l.store.Get(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items := []domain.CartItem{}
	if !ok || len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (l *Ledger) save(ctx context.Context, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := l.store.Put(ctx, StoreKey, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (l *Ledger) mutated(op string) {
	l.svc.metrics.CartMutations.WithLabelValues(op).Inc()
}

func checkQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return domain.Invalid("quantity", fmt.Sprintf("must be between %d and %d", MinQuantity, MaxQuantity))
	}
	return nil
}

func indexOf(items []domain.CartItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Describe is the display summary of it used in duplicate reports.
func Describe(it domain.CartItem) domain.DuplicateInfo {
	return domain.DuplicateInfo{
		ItemID:      it.ID,
		CompanyName: it.CompanyName,
		ReportName:  it.ReportName,
		Country:     it.Country,
		Quantity:    it.Quantity,
	}
}
