package memory

import (
	"github.com/shopspring/decimal"

	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
)

func str(s string) *string { return &s }
func id(v int64) *int64    { return &v }

// Demo returns a small Singapore (direct) and Mexico (state-scoped) data set.
func Demo() []ports.CountryAdapter {
	sg := NewDirect("sg",
		[]domain.Company{
			{ID: 1, Name: "Acme Pte Ltd", Slug: "acme-pte-ltd", RegistrationNumber: str("201912345K"), Address: str("1 Raffles Place")},
			{ID: 2, Name: "Lion City Logistics", Slug: "lion-city-logistics", RegistrationNumber: str("199801234M"), FormerNames: str("Merlion Freight")},
			{ID: 3, Name: "Straits Capital Holdings", Slug: "straits-capital-holdings", RegistrationNumber: str("200505050Z")},
		},
		[]domain.Report{
			{ID: 1, Name: "Company Profile", Description: "Registered particulars and officers", Price: decimal.RequireFromString("25.00"), SortOrder: 1, Active: true},
			{ID: 2, Name: "Financial Statements", Description: "Latest filed accounts", Price: decimal.RequireFromString("60.00"), SortOrder: 2, Active: true},
			{ID: 3, Name: "Historical Extract", Description: "Retired product", Price: decimal.RequireFromString("10.00"), SortOrder: 3, Active: false},
		},
	)
	mx := NewStateScoped("mx",
		[]domain.Company{
			{ID: 1, Name: "Acme de Mexico SA de CV", Slug: "acme-de-mexico", BrandName: str("Acme MX"), PricingDiscriminant: id(9)},
			{ID: 2, Name: "Tequilera del Valle", Slug: "tequilera-del-valle", BrandName: str("Valle Azul"), PricingDiscriminant: id(14)},
			{ID: 3, Name: "Sin Estado SC", Slug: "sin-estado-sc"},
		},
		[]domain.Report{
			{ID: 1, Name: "Acta Constitutiva", Description: "Articles of incorporation", SortOrder: 1, Active: true},
			{ID: 2, Name: "Poderes", Description: "Powers of attorney", SortOrder: 2, Active: true},
		},
		map[int64]string{9: "Ciudad de Mexico", 14: "Jalisco"},
		[]StatePrice{
			{ReportID: 1, StateID: 9, Amount: decimal.RequireFromString("850.00")},
			{ReportID: 2, StateID: 9, Amount: decimal.RequireFromString("400.00")},
			{ReportID: 1, StateID: 14, Amount: decimal.RequireFromString("700.00")},
		},
	)
	return []ports.CountryAdapter{sg, mx}
}
