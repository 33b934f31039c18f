// Package checkout turns a session's cart into a paid order.
package checkout

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
	"companyhouse/internal/services/cart"
)

type Payment struct {
	CardNumber    string `json:"card_number"`
	ExpiryDate    string `json:"expiry_date"`
	CVC           string `json:"cvc"`
	CustomerName  string `json:"name"`
	CustomerEmail string `json:"email"`
}

type Receipt struct {
	TransactionID string            `json:"transaction_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Items         []domain.CartItem `json:"items"`
	PaidAt        time.Time         `json:"paid_at"`
}

type Service struct {
	carts    *cart.Service
	gateway  ports.PaymentGateway
	currency string
	log      *zap.Logger
	now      func() time.Time
}

func New(carts *cart.Service, gateway ports.PaymentGateway, currency string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{carts: carts, gateway: gateway, currency: currency, log: log, now: time.Now}
}

// Checkout charges the cart total and settles the cart once the charge has
// gone through. A failed charge leaves the cart untouched. Only the items
// that were charged are removed, so an item added while the charge was in
// flight survives for the next checkout.
func (s *Service) Checkout(ctx context.Context, sessionID string, p Payment) (Receipt, error) {
	p.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	if err := s.validate(p); err != nil {
		return Receipt{}, err
	}
	ledger := s.carts.Ledger(sessionID)
	items, err := ledger.Items(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if len(items) == 0 {
		return Receipt{}, domain.Invalid("cart", "is empty")
	}
	// the per-country prices are summed as-is and charged in s.currency
	total := cart.Total(items)

	txn, err := s.gateway.Charge(ctx, ports.Charge{
		Amount:        total,
		Currency:      s.currency,
		CardNumber:    p.CardNumber,
		ExpiryDate:    p.ExpiryDate,
		CVC:           p.CVC,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("charge: %w", err)
	}
	if err := ledger.Settle(ctx, items); err != nil {
		// the charge stands; the caller still gets the receipt
		s.log.Error("cart not settled after payment", zap.String("transaction_id", txn), zap.Error(err))
	}
	s.log.Info("checkout completed",
		zap.String("transaction_id", txn),
		zap.String("amount", total.StringFixed(2)),
		zap.String("currency", s.currency),
		zap.Int("items", len(items)))
	return Receipt{
		TransactionID: txn,
		Amount:        total,
		Currency:      s.currency,
		Items:         items,
		PaidAt:        s.now().UTC(),
	}, nil
}

func (s *Service) validate(p Payment) error {
	if n := len(p.CardNumber); n < 13 || n > 19 || !isDigits(p.CardNumber) {
		return domain.Invalid("card_number", "must be 13 to 19 digits")
	}
	if err := checkExpiry(p.ExpiryDate, s.now()); err != nil {
		return err
	}
	if n := len(p.CVC); n < 3 || n > 4 || !isDigits(p.CVC) {
		return domain.Invalid("cvc", "must be 3 or 4 digits")
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return domain.Invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(p.CustomerEmail); err != nil {
		return domain.Invalid("email", "is not a valid address")
	}
	return nil
}

// checkExpiry accepts MM/YY for the current month or later.
func checkExpiry(v string, now time.Time) error {
	mm, yy, ok := strings.Cut(v, "/")
	if !ok || len(mm) != 2 || len(yy) != 2 {
		return domain.Invalid("expiry_date", "must be MM/YY")
	}
	month, err1 := strconv.Atoi(mm)
	year, err2 := strconv.Atoi(yy)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return domain.Invalid("expiry_date", "must be MM/YY")
	}
	year += 2000
	if year < now.Year() || (year == now.Year() && time.Month(month) < now.Month()) {
		return domain.Invalid("expiry_date", "card has expired")
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
