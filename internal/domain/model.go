package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Core domain models. Companies and reports are read-only projections of a
// country data source; cart items are owned by the cart ledger.

// PricingSchema selects how report prices are derived for a country.
type PricingSchema string

const (
	// PricingDirect reads the price straight off each report record.
	PricingDirect PricingSchema = "direct"
	// PricingStateScoped reads the price from a per-state price table.
	PricingStateScoped PricingSchema = "state-scoped"
)

func (s PricingSchema) Valid() bool {
	return s == PricingDirect || s == PricingStateScoped
}

type CountryConfig struct {
	Code           string
	DisplayName    string
	Currency       string
	PricingSchema  PricingSchema
	DatabaseURLEnv string
}

type Company struct {
	ID                  int64   `json:"id"`
	Country             string  `json:"country"`
	Name                string  `json:"name"`
	Slug                string  `json:"slug"`
	RegistrationNumber  *string `json:"registration_number,omitempty"`
	FormerNames         *string `json:"former_names,omitempty"`
	BrandName           *string `json:"brand_name,omitempty"`
	Address             *string `json:"address,omitempty"`
	PricingDiscriminant *int64  `json:"state_id,omitempty"`
	StateName           *string `json:"state_name,omitempty"`
}

// Report is only meaningful for the company (and state) it was resolved for.
type Report struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SortOrder   int             `json:"sort_order"`
	Active      bool            `json:"is_active"`
}

type SearchResult struct {
	Company
	RelevanceScore int    `json:"relevance_score"`
	CountryName    string `json:"country_name"`
}

type CartItem struct {
	ID                  string          `json:"id"`
	CompanyID           int64           `json:"company_id"`
	ReportID            int64           `json:"report_id"`
	Country             string          `json:"country"`
	PricingDiscriminant *int64          `json:"state_id,omitempty"`
	Quantity            int             `json:"quantity"`
	CompanyName         string          `json:"company_name"`
	ReportName          string          `json:"report_name"`
	UnitPrice           decimal.Decimal `json:"price"`
	AddedAt             time.Time       `json:"added_at"`
}

// Subtotal is UnitPrice × Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PricingScope narrows a report listing to one pricing discriminant.
// A nil StateID means "no state", which is all a direct-schema source needs.
type PricingScope struct {
	StateID *int64
}

// CompanyDetail is a company together with the reports purchasable for it.
type CompanyDetail struct {
	Company     Company  `json:"company"`
	CountryName string   `json:"country_name"`
	Currency    string   `json:"currency"`
	Reports     []Report `json:"reports"`
}
